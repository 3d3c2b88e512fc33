// Package availability implements the branch fan-out slot-resolution
// algorithm (C11): given a requested office and product, it asks the
// primary branch first and only falls back to the tenant's other
// configured branches when the primary has nothing free.
package availability

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ai2b-pro/toolfleet/pkg/catalogue"
	"github.com/ai2b-pro/toolfleet/pkg/crm"
	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const defaultCountSlots = 30

// BranchAvailability is one queried branch's free-slot outcome.
type BranchAvailability struct {
	OfficeID      int               `json:"office_id"`
	AvailableTime []crm.MasterSlots `json:"available_time"`
	Message       string            `json:"message"`
}

// Engine resolves availability across a tenant's branches. One Engine is
// shared by every tool handler across every tenant; nothing here is
// tenant-specific beyond the parameters passed to ResolveAvailability.
type Engine struct {
	crm       *crm.Client
	catalogue *catalogue.Store
}

// NewEngine builds a fan-out engine over the shared CRM gateway and
// catalogue store.
func NewEngine(crmClient *crm.Client, catalogueStore *catalogue.Store) *Engine {
	return &Engine{crm: crmClient, catalogue: catalogueStore}
}

// Params are the inputs to ResolveAvailability.
type Params struct {
	SessionID  string
	TenantName string // timezone lookup key
	OfficeID   int
	Date       string
	ProductID  string // "{primary_channel}-{article}"
	ChannelIDs []int  // tenant's configured branch list, in order
	CountSlots int    // defaults to 30
}

// ResolveAvailability implements the algorithm from spec §4.4: resolve and
// fetch the primary branch first; only when it comes back empty does it
// map and fan out to the tenant's remaining branches in parallel, with
// per-branch error isolation.
func (e *Engine) ResolveAvailability(ctx context.Context, p Params) result.Result[[]BranchAvailability] {
	primaryChannel, article, err := parseProductID(p.ProductID)
	if err != nil {
		return result.Fail[[]BranchAvailability](result.CodeValidationError, err.Error())
	}

	countSlots := p.CountSlots
	if countSlots <= 0 {
		countSlots = defaultCountSlots
	}

	primaryServiceID := article
	if p.OfficeID != primaryChannel {
		mapped, found, mapErr := e.catalogue.CrossBranchArticle(ctx, article, primaryChannel, p.OfficeID)
		if mapErr != nil {
			return result.Fail[[]BranchAvailability](result.CodeInternalError, "не удалось определить услугу для указанного филиала")
		}
		if !found {
			return result.Fail[[]BranchAvailability](result.CodeValidationError, fmt.Sprintf("нет сопоставления артикула для office_id=%d", p.OfficeID))
		}
		primaryServiceID = mapped
	}

	primary := e.crm.AvailableTimeForMaster(ctx, p.TenantName, p.Date, primaryServiceID, countSlots)
	if !primary.Ok {
		return result.Fail[[]BranchAvailability](primary.Err.Code, primary.Err.Message)
	}

	branches := []BranchAvailability{
		{OfficeID: p.OfficeID, AvailableTime: primary.Value, Message: availabilityMessage(primary.Value)},
	}

	if len(primary.Value) > 0 {
		return result.Of(branches)
	}

	others := otherBranches(p.ChannelIDs, p.OfficeID)
	if len(others) == 0 {
		return result.Of(branches)
	}

	extra := make([]BranchAvailability, len(others))

	type job struct {
		idx       int
		branch    int
		serviceID string
	}
	var jobs []job
	for i, branch := range others {
		mapped, found, mapErr := e.catalogue.CrossBranchArticle(ctx, article, primaryChannel, branch)
		if mapErr != nil || !found {
			extra[i] = BranchAvailability{OfficeID: branch, AvailableTime: []crm.MasterSlots{}, Message: "не удалось определить услугу для этого филиала"}
			continue
		}
		jobs = append(jobs, job{idx: i, branch: branch, serviceID: mapped})
	}

	var g errgroup.Group
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			res := e.crm.AvailableTimeForMaster(ctx, p.TenantName, p.Date, j.serviceID, countSlots)
			slots := res.Value
			if !res.Ok {
				slots = []crm.MasterSlots{}
			}
			extra[j.idx] = BranchAvailability{OfficeID: j.branch, AvailableTime: slots, Message: availabilityMessage(slots)}
			return nil
		})
	}
	// Every goroutine above always returns nil: a branch failure becomes an
	// empty result for that branch, never an error for the group, so one
	// branch's outage never cancels its siblings.
	_ = g.Wait()

	branches = append(branches, extra...)
	return result.Of(branches)
}

func parseProductID(productID string) (channel int, article string, err error) {
	if strings.Count(productID, "-") != 1 {
		return 0, "", fmt.Errorf("product_id должен иметь вид X-Y, получено %q", productID)
	}
	parts := strings.SplitN(productID, "-", 2)
	if parts[0] == "" || parts[1] == "" {
		return 0, "", fmt.Errorf("product_id должен иметь непустые части, получено %q", productID)
	}
	ch, convErr := strconv.Atoi(parts[0])
	if convErr != nil {
		return 0, "", fmt.Errorf("не удалось распознать primary_channel в product_id %q", productID)
	}
	return ch, parts[1], nil
}

// otherBranches returns channelIDs minus officeID, preserving configured
// order and deduplicating.
func otherBranches(channelIDs []int, officeID int) []int {
	seen := make(map[int]bool, len(channelIDs))
	out := make([]int, 0, len(channelIDs))
	for _, id := range channelIDs {
		if id == officeID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func availabilityMessage(slots []crm.MasterSlots) string {
	if len(slots) == 0 {
		return "нет свободных слотов"
	}
	return ""
}
