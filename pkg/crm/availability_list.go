package crm

import (
	"context"
	"fmt"
	"sort"

	"github.com/ai2b-pro/toolfleet/pkg/result"
	"github.com/ai2b-pro/toolfleet/pkg/tz"
)

// masterOverride replaces the CRM's reported master for a handful of
// services whose real performer differs from the scheduling system's
// default assignment.
type masterOverride struct {
	MasterID   string
	MasterName string
}

// masterSubstitutions maps a service_id to the master who actually performs
// it, overriding whatever master_id/master_name the CRM sequence reports.
var masterSubstitutions = map[string]masterOverride{
	"2950601": {MasterID: "881127", MasterName: "Термотерапия"},
	"2950597": {MasterID: "864147", MasterName: "Прессотерапия"},
	"2950609": {MasterID: "914499", MasterName: "Ролик"},
	"2950603": {MasterID: "914503", MasterName: "Токовые Процедуры"},
}

type productListRequest struct {
	ServiceIDs []string `json:"service_ids"`
	BaseDate   string   `json:"base_date"`
}

// rawSequence is one "avaliable_sequences" entry: a bookable combination of
// back-to-back services starting at TotalStartTime. The CRM never sends a
// service_name for a step — only a service_id, master_id, master_name, and
// start_time.
type rawSequence struct {
	SequenceID     any       `json:"sequence_id"`
	TotalStartTime string    `json:"total_start_time"`
	Steps          []rawStep `json:"steps"`
}

type rawStep struct {
	ServiceID  any    `json:"service_id"`
	MasterID   any    `json:"master_id"`
	MasterName string `json:"master_name"`
	StartTime  string `json:"start_time"`
}

// SequenceService is one leg of a multi-service appointment sequence.
type SequenceService struct {
	ProductID  string `json:"product_id"`
	MasterID   string `json:"master_id"`
	MasterName string `json:"master_name"`
	DateTime   string `json:"date_time"`
}

// SequenceSlot is one bookable combination of back-to-back services, each
// possibly performed by a different master.
type SequenceSlot struct {
	SequenceID string            `json:"sequence_id"`
	StartTime  string            `json:"start_time"`
	Services   []SequenceService `json:"services"`
}

// AvailableTimeForMasterList fetches bookable combinations across several
// services at once ("avaliable_sequences" in the CRM response). Master
// identity is overridden per masterSubstitutions before a step is returned
// to the caller — the same substitution the original applies to every step
// keyed off service_id, regardless of which master the CRM itself reports.
// The CRM never qualifies a step by service name, so there is no name-based
// filtering: every step the CRM returns is kept.
func (c *Client) AvailableTimeForMasterList(ctx context.Context, serverName, date string, serviceIDs []string, countSlots int) result.Result[[]SequenceSlot] {
	if len(serviceIDs) == 0 {
		return result.Fail[[]SequenceSlot](result.CodeValidationError, "не указаны service_id")
	}

	now, err := tz.NowLocal(serverName)
	if err != nil {
		return result.Fail[[]SequenceSlot](result.CodeInternalError, "не удалось определить часовой пояс филиала")
	}
	loc, err := tz.Resolve(serverName)
	if err != nil {
		return result.Fail[[]SequenceSlot](result.CodeInternalError, "не удалось определить часовой пояс филиала")
	}

	if countSlots <= 0 {
		countSlots = 30
	}

	resp, fetchErr := postJSON[productResponse](ctx, c, productPath, productListRequest{ServiceIDs: serviceIDs, BaseDate: date}, 0)
	if fetchErr != nil {
		return result.Of([]SequenceSlot{})
	}
	if !resp.Success {
		return result.Of([]SequenceSlot{})
	}

	kept := make([]SequenceSlot, 0, len(resp.Result.AvaliableSequences))
	for _, seq := range resp.Result.AvaliableSequences {
		startTime, okStart := tz.ParseSlot(loc, seq.TotalStartTime)
		if okStart != nil || !startTime.After(now) {
			continue
		}

		services := make([]SequenceService, 0, len(seq.Steps))
		for _, step := range seq.Steps {
			serviceID := fmt.Sprint(step.ServiceID)
			masterID := fmt.Sprint(step.MasterID)
			masterName := step.MasterName
			if override, ok := masterSubstitutions[serviceID]; ok {
				masterID = override.MasterID
				masterName = override.MasterName
			}

			services = append(services, SequenceService{
				ProductID:  "7-" + serviceID,
				MasterID:   masterID,
				MasterName: masterName,
				DateTime:   step.StartTime,
			})
		}
		if len(services) == 0 {
			continue
		}

		kept = append(kept, SequenceSlot{
			SequenceID: fmt.Sprint(seq.SequenceID),
			StartTime:  seq.TotalStartTime,
			Services:   services,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		ti, oki := tz.ParseSlot(loc, kept[i].StartTime)
		tj, okj := tz.ParseSlot(loc, kept[j].StartTime)
		if oki != nil {
			return false
		}
		if okj != nil {
			return true
		}
		return ti.Before(tj)
	})

	if len(kept) > countSlots {
		kept = kept[:countSlots]
	}

	return result.Of(kept)
}
