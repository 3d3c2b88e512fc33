package result

import "testing"

func TestOf(t *testing.T) {
	r := Of(42)
	if !r.Ok {
		t.Fatalf("expected Ok=true")
	}
	if r.Value != 42 {
		t.Fatalf("expected value 42, got %d", r.Value)
	}
	if r.Err != nil {
		t.Fatalf("expected nil Err, got %v", r.Err)
	}
}

func TestFail(t *testing.T) {
	r := Fail[int](CodeNotFound, "запись не найдена")
	if r.Ok {
		t.Fatalf("expected Ok=false")
	}
	if r.Err == nil || r.Err.Code != CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", r.Err)
	}
	if r.Err.Error() != "запись не найдена" {
		t.Fatalf("unexpected message: %q", r.Err.Error())
	}
}

func TestFromErr(t *testing.T) {
	wrapped := &Err{Code: CodeCRMError, Message: "crm down"}
	r := FromErr[string](wrapped)
	if r.Ok || r.Err.Code != CodeCRMError {
		t.Fatalf("expected CodeCRMError passthrough, got %v", r.Err)
	}

	plain := FromErr[string](errPlain{})
	if plain.Err.Code != CodeInternalError {
		t.Fatalf("expected fallback to internal_error, got %v", plain.Err)
	}
}

type errPlain struct{}

func (errPlain) Error() string { return "boom" }
