package tenant

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if got := FromContext(ctx); got != "" {
		t.Fatalf("expected empty tenant name, got %q", got)
	}

	ctx = NewContext(ctx, "sofia")

	if got := FromContext(ctx); got != "sofia" {
		t.Errorf("tenant name = %q, want %q", got, "sofia")
	}
}
