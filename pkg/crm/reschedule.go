package crm

import (
	"context"
	"strings"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const rescheduleClientRecordPath = "/appointments/client/records/reschedule"

type rescheduleRequest struct {
	UserCompanyChat int    `json:"user_companychat"`
	ChannelID       int    `json:"channel_id"`
	RecordID        int    `json:"record_id"`
	MasterID        int    `json:"master_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Comment         string `json:"comment"`
}

// RescheduleResult is the raw CRM response to a reschedule call.
type RescheduleResult struct {
	Success bool `json:"success"`
}

// RescheduleParams are the inputs to RescheduleClientRecord.
type RescheduleParams struct {
	UserCompanyChat int
	ChannelID       int
	RecordID        int
	MasterID        int
	Date            string
	Time            string
	Comment         string // defaults to "Автоперенос ботом через API" when empty
}

// RescheduleClientRecord moves a booking to a new master/date/time. HTTP
// 5xx is retried by C3 and, on exhaustion, surfaces as crm_unavailable;
// HTTP 4xx returns a status-mapped err; an unparseable body returns
// invalid_response.
func (c *Client) RescheduleClientRecord(ctx context.Context, p RescheduleParams) result.Result[RescheduleResult] {
	if p.RecordID <= 0 || p.MasterID <= 0 {
		return result.Fail[RescheduleResult](result.CodeValidationError, "не указаны record_id или master_id")
	}
	if strings.TrimSpace(p.Date) == "" || strings.TrimSpace(p.Time) == "" {
		return result.Fail[RescheduleResult](result.CodeValidationError, "не указаны дата или время переноса")
	}

	comment := p.Comment
	if comment == "" {
		comment = "Автоперенос ботом через API"
	}

	body := rescheduleRequest{
		UserCompanyChat: p.UserCompanyChat,
		ChannelID:       p.ChannelID,
		RecordID:        p.RecordID,
		MasterID:        p.MasterID,
		Date:            p.Date,
		Time:            p.Time,
		Comment:         comment,
	}

	resp, err := postJSON[RescheduleResult](ctx, c, rescheduleClientRecordPath, body, 0)
	if err != nil {
		return mapTransportErr[RescheduleResult](err)
	}
	return result.Of(resp)
}
