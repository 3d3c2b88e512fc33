package crm

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const clientStatisticsPath = "/appointments/go_crm/client_info"

const abonementDateLayout = "02.01.2006"

var abonementPattern = regexp.MustCompile(`х(\d+)\s*№(\d+)`)

type statisticsRequest struct {
	ChannelID string `json:"channel_id"`
	Phone     string `json:"phone"`
}

type visitRecord struct {
	Date       string `json:"date"`
	Abonement  string `json:"abonement"`
	Comment    string `json:"comment"`
	IsStart    bool   `json:"is_start"`
	IsFinish   bool   `json:"is_finish"`
	IsMakeup   bool   `json:"is_makeup"`
}

type statisticsResponse struct {
	Success    bool          `json:"success"`
	Abonements []any         `json:"abonements"`
	Visits     []visitRecord `json:"visits"`
}

// AbonementSummary is the computed state of a client's subscription, derived
// from their raw visit history.
type AbonementSummary struct {
	AbonementNumber  string `json:"abonement_number"`
	LessonsTotal     int    `json:"lessons_total"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	UsedLessons      int    `json:"used_lessons"`
	RemainingLessons int    `json:"remaining_lessons"`
	MakeupLessons    int    `json:"makeup_lessons"`
	TransfersUsed    int    `json:"transfers_used"`
	TransfersLeft    int    `json:"transfers_left"`
	NextTransferAfter string `json:"next_transfer_after"`
	NoVisitsYet      bool   `json:"-"`
}

// GetClientStatistics fetches a client's subscription state, computed from
// their raw visit history. A client with no visits yet is ok() with
// NoVisitsYet set, not an error.
func (c *Client) GetClientStatistics(ctx context.Context, phone, channelID string) result.Result[AbonementSummary] {
	if strings.TrimSpace(phone) == "" {
		return result.Fail[AbonementSummary](result.CodeValidationError, "не указан телефон клиента")
	}

	resp, err := postJSON[statisticsResponse](ctx, c, clientStatisticsPath, statisticsRequest{ChannelID: channelID, Phone: phone}, 0)
	if err != nil {
		return mapTransportErr[AbonementSummary](err)
	}
	if !resp.Success {
		return result.Fail[AbonementSummary](result.CodeNotFound, "нет данных в системе для указанного телефона")
	}

	if len(resp.Abonements) == 0 && len(resp.Visits) == 0 {
		return result.Of(AbonementSummary{NoVisitsYet: true})
	}

	return result.Of(calculateAbonement(resp.Visits))
}

func calculateAbonement(visits []visitRecord) AbonementSummary {
	var summary AbonementSummary

	start := findStartRecord(visits)
	if start == nil {
		return summary
	}

	total, number := parseAbonementText(start.Abonement)
	summary.AbonementNumber = number
	summary.LessonsTotal = total

	startDate, ok := parseAbonementDate(start.Date)
	if !ok {
		return summary
	}
	summary.StartDate = startDate.Format(abonementDateLayout)
	endDate := startDate.AddDate(0, 0, 30)
	summary.EndDate = endDate.Format(abonementDateLayout)

	var used, makeup int
	var transferDates []time.Time
	for _, r := range visits {
		if r.IsMakeup {
			makeup++
			continue
		}
		if r.IsStart || r.IsFinish {
			continue
		}
		used++
		if dt, ok := parseAbonementDate(r.Date); ok && dt.After(endDate) {
			transferDates = append(transferDates, dt)
		}
	}
	sort.Slice(transferDates, func(i, j int) bool { return transferDates[i].Before(transferDates[j]) })

	summary.UsedLessons = used
	summary.MakeupLessons = makeup
	summary.TransfersUsed = len(transferDates)

	if total > 0 {
		remaining := total - used
		if remaining < 0 {
			remaining = 0
		}
		summary.RemainingLessons = remaining
		left := remaining - summary.TransfersUsed
		if left < 0 {
			left = 0
		}
		summary.TransfersLeft = left
	}

	var nextAfter time.Time
	switch summary.TransfersUsed {
	case 0:
		nextAfter = endDate
	case 1:
		nextAfter = transferDates[len(transferDates)-1]
	default:
		nextAfter = endDate.AddDate(0, 1, 0)
	}
	summary.NextTransferAfter = nextAfter.Format(abonementDateLayout)

	return summary
}

func findStartRecord(visits []visitRecord) *visitRecord {
	for i := range visits {
		if visits[i].IsStart || visits[i].Comment == "СТАРТ" {
			return &visits[i]
		}
	}
	return nil
}

func parseAbonementText(text string) (int, string) {
	m := abonementPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, m[2]
	}
	return n, m[2]
}

func parseAbonementDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(abonementDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
