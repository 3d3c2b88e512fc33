// Package tenant carries the current tenant's name through a request's
// context, so a tool handler, the choice-log writer, and log lines it
// emits along the way all agree on which tenant they're serving.
package tenant

import "context"

type contextKey string

const nameKey contextKey = "tenant_name"

// NewContext stores a tenant name in the context.
func NewContext(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, nameKey, name)
}

// FromContext extracts the tenant name from the context. Returns "" if
// none is set.
func FromContext(ctx context.Context) string {
	name, _ := ctx.Value(nameKey).(string)
	return name
}
