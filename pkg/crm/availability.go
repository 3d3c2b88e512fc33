package crm

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/result"
	"github.com/ai2b-pro/toolfleet/pkg/tz"
)

const productPath = "/appointments/yclients/product"

const dateLayout = "2006-01-02"

// MasterSlots is one master's free slots in a branch, already filtered to
// strictly-future and truncated to the caller's requested count.
type MasterSlots struct {
	MasterName  string   `json:"master_name"`
	MasterID    string   `json:"master_id"`
	MasterSlots []string `json:"master_slots"`
}

type productRequest struct {
	ServiceID string `json:"service_id"`
	BaseDate  string `json:"base_date"`
}

type rawStaffMember struct {
	ID    any      `json:"id"`
	Name  string   `json:"name"`
	Dates []string `json:"dates"`
}

type productResult struct {
	Service *struct {
		Staff []rawStaffMember `json:"staff"`
	} `json:"service"`
	AvaliableSequences []rawSequence `json:"avaliable_sequences"`
}

type productResponse struct {
	Success bool          `json:"success"`
	Result  productResult `json:"result"`
}

// AvailableTimeForMaster fetches free slots for one service in one branch,
// for serverName's tenant timezone. Past dates are rejected with a
// validation error rather than queried. Each master's slots are sorted
// ascending, filtered to strictly-future, and truncated to countSlots.
func (c *Client) AvailableTimeForMaster(ctx context.Context, serverName, date, serviceID string, countSlots int) result.Result[[]MasterSlots] {
	if strings.TrimSpace(serviceID) == "" {
		return result.Fail[[]MasterSlots](result.CodeValidationError, "не указан service_id")
	}

	parsedDate, err := time.Parse(dateLayout, date)
	if err != nil {
		return result.Fail[[]MasterSlots](result.CodeValidationError, "некорректный формат даты, ожидается YYYY-MM-DD")
	}

	now, err := tz.NowLocal(serverName)
	if err != nil {
		return result.Fail[[]MasterSlots](result.CodeInternalError, "не удалось определить часовой пояс филиала")
	}
	requestedDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, now.Location())
	if requestedDay.Before(stripTime(now)) {
		return result.Fail[[]MasterSlots](result.CodeValidationError, "нельзя запрашивать доступное время в прошлом")
	}

	if countSlots <= 0 {
		countSlots = 30
	}

	resp, fetchErr := postJSON[productResponse](ctx, c, productPath, productRequest{ServiceID: serviceID, BaseDate: date}, 0)
	if fetchErr != nil {
		// Matches the source: any transport failure here degrades to an
		// empty availability list rather than propagating as err, so a
		// single branch's outage never blocks the fan-out in C11.
		return result.Of([]MasterSlots{})
	}
	if !resp.Success || resp.Result.Service == nil {
		return result.Of([]MasterSlots{})
	}

	loc, err := tz.Resolve(serverName)
	if err != nil {
		return result.Fail[[]MasterSlots](result.CodeInternalError, "не удалось определить часовой пояс филиала")
	}

	out := make([]MasterSlots, 0, len(resp.Result.Service.Staff))
	for _, staff := range resp.Result.Service.Staff {
		if staff.Dates == nil {
			continue
		}
		slots := futureSortedSlots(loc, now, staff.Dates, countSlots)
		out = append(out, MasterSlots{
			MasterName:  staff.Name,
			MasterID:    toID(staff.ID),
			MasterSlots: slots,
		})
	}
	return result.Of(out)
}

// futureSortedSlots parses each raw slot against loc, keeps only those
// strictly after now, sorts ascending, and truncates to count.
func futureSortedSlots(loc *time.Location, now time.Time, raw []string, count int) []string {
	type parsed struct {
		t time.Time
		s string
	}
	parsedSlots := make([]parsed, 0, len(raw))
	for _, s := range raw {
		t, err := tz.ParseSlot(loc, s)
		if err != nil {
			continue
		}
		if !t.After(now) {
			continue
		}
		parsedSlots = append(parsedSlots, parsed{t: t, s: s})
	}
	sort.Slice(parsedSlots, func(i, j int) bool { return parsedSlots[i].t.Before(parsedSlots[j].t) })

	if len(parsedSlots) > count {
		parsedSlots = parsedSlots[:count]
	}
	out := make([]string, len(parsedSlots))
	for i, p := range parsedSlots {
		out[i] = p.s
	}
	return out
}

func stripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func toID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return trimFloat(x)
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
