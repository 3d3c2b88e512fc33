package crm

import (
	"context"
	"fmt"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const deleteClientRecordPath = "/appointments/client/records/delete"

type deleteClientRecordRequest struct {
	UserCompanyChat int `json:"user_companychat"`
	ChannelID       int `json:"channel_id"`
	RecordID        int `json:"record_id"`
}

type deleteClientRecordResponse struct {
	Success bool `json:"success"`
}

// DeleteClientRecord cancels one booking. CRM success=false means the
// record no longer exists (or never did), surfaced as not_found rather than
// a transport error.
func (c *Client) DeleteClientRecord(ctx context.Context, userCompanyChat, officeID, recordID int) result.Result[string] {
	if userCompanyChat <= 0 || recordID <= 0 {
		return result.Fail[string](result.CodeValidationError, "не указаны user_companychat или record_id")
	}

	body := deleteClientRecordRequest{UserCompanyChat: userCompanyChat, ChannelID: officeID, RecordID: recordID}
	resp, err := postJSON[deleteClientRecordResponse](ctx, c, deleteClientRecordPath, body, 0)
	if err != nil {
		return mapTransportErr[string](err)
	}

	if !resp.Success {
		return result.Fail[string](result.CodeNotFound, fmt.Sprintf("Запись record_id=%d не существует", recordID))
	}
	return result.Of(fmt.Sprintf("Запись record_id=%d удалена", recordID))
}
