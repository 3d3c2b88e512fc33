package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func echoHandler(ctx context.Context, args json.RawMessage) (any, error) {
	return string(args), nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{Name: "zena_search", Description: "search", Handler: echoHandler})

	got, err := r.Get("zena_search")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "zena_search" {
		t.Errorf("got tool %q, want zena_search", got.Name)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nope"); err == nil {
		t.Error("expected error for unregistered tool")
	}
}

func TestRegistryAllReturnsEverything(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{Name: "a", Handler: echoHandler})
	r.Register(Tool{Name: "b", Handler: echoHandler})

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d tools, want 2", len(all))
	}
}
