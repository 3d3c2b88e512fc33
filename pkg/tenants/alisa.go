package tenants

import (
	"context"
	"fmt"

	"github.com/ai2b-pro/toolfleet/pkg/tools"
)

// BuildAlisa composes Alisa's 7-tool set, carried over from Anisa's
// tenant registration in the original source (the nearest real tenant to
// the spec's literal "Alisa" example): faq, services, booking,
// master-choice memory, product-choice validation, plain query-only
// product search, and branch fan-out availability. Unlike Sofia, Alisa's
// catalogue doesn't expose indication/contraindication/body-part filters,
// so she gets the simpler productSearchQueryTool.
func BuildAlisa(ctx context.Context, deps Deps, tenantName string, channelIDs []int) (*tools.Registry, error) {
	if len(channelIDs) == 0 {
		return nil, fmt.Errorf("alisa: no branch channel ids configured")
	}

	registry := tools.NewRegistry()
	for _, t := range []tools.Tool{
		faqTool(deps),
		servicesTool(deps),
		recordTimeTool(deps),
		rememberMasterTool(),
		rememberProductIDTool(deps),
		productSearchQueryTool(deps),
		availableTimeForMasterTool(deps, tenantName, channelIDs),
	} {
		registry.Register(t)
	}
	return registry, nil
}
