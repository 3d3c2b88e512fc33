package tenants

import (
	"context"
	"fmt"

	"github.com/ai2b-pro/toolfleet/pkg/tools"
)

// BuildSofia composes Sofia's full 15-tool set: faq, services, booking,
// rescheduling, session-memory stashes, full-filter product search, and
// branch fan-out availability. Sofia's catalogue supports the
// indications/contraindications/body-part filters, so she gets
// productSearchFullTool rather than the plain query-only variant.
func BuildSofia(ctx context.Context, deps Deps, tenantName string, channelIDs []int) (*tools.Registry, error) {
	if len(channelIDs) == 0 {
		return nil, fmt.Errorf("sofia: no branch channel ids configured")
	}

	keys, err := deps.Catalogue.CatalogueKeys(ctx, channelIDs[0])
	if err != nil {
		return nil, fmt.Errorf("sofia: loading catalogue keys for primary branch %d: %w", channelIDs[0], err)
	}

	registry := tools.NewRegistry()
	for _, t := range []tools.Tool{
		faqTool(deps),
		servicesTool(deps),
		recordTimeTool(deps),
		clientRecordsTool(deps, channelIDs),
		recordDeleteTool(deps),
		rememberOfficeTool(),
		rememberMasterTool(),
		recommendationsTool(deps),
		recordRescheduleTool(deps),
		callAdministratorTool(deps),
		rememberProductIDTool(deps),
		productSearchFullTool(deps, keys),
		rememberDesiredDateTool(),
		rememberDesiredTimeTool(),
		availableTimeForMasterTool(deps, tenantName, channelIDs),
	} {
		registry.Register(t)
	}
	return registry, nil
}
