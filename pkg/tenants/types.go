// Package tenants holds one builder file per tenant (C9): each composes a
// fixed set of tools from the shared CRM gateway, availability engine, and
// retrievers, closing handlers over that tenant's name, timezone, and
// branch list. pkg/tenants/registry.go lists the static tenant registry
// spec.md §3 describes.
package tenants

import (
	"context"

	"github.com/ai2b-pro/toolfleet/pkg/availability"
	"github.com/ai2b-pro/toolfleet/pkg/catalogue"
	"github.com/ai2b-pro/toolfleet/pkg/choicelog"
	"github.com/ai2b-pro/toolfleet/pkg/crm"
	"github.com/ai2b-pro/toolfleet/pkg/retriever"
	"github.com/ai2b-pro/toolfleet/pkg/tools"
)

// QdrantCollections names the three collections a search/FAQ/recommendation
// tool may query, resolved once from Settings at supervisor startup.
type QdrantCollections struct {
	FAQ      string
	Services string
	Products string
}

// Deps are the process-shared components every tenant builder closes its
// tool handlers over. Nothing here is tenant-specific; tenant scoping comes
// from the tenant name and branch list passed alongside Deps to Build.
type Deps struct {
	CRM          *crm.Client
	Availability *availability.Engine
	Catalogue    *catalogue.Store
	Retriever    retriever.Retriever
	ChoiceLog    *choicelog.Writer
	Collections  QdrantCollections
}

// Spec is one entry in the static tenant registry (C12's Tenant Spec).
// Name doubles as the pkg/tz timezone lookup key.
type Spec struct {
	Name           string
	PortEnv        string
	ChannelsEnv    string
	ToolsNamespace string
	Build          BuildFunc
}

// BuildFunc composes the tool registry for one tenant, given the
// process-shared Deps and that tenant's resolved branch list.
type BuildFunc func(ctx context.Context, deps Deps, tenantName string, channelIDs []int) (*tools.Registry, error)
