package crm

import (
	"context"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const mastersPath = "/appointments/yclients/staff/actual"

// Master is one staff member available in a branch.
type Master struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mastersRequest struct {
	ChannelID int `json:"channel_id"`
}

type mastersResponse struct {
	Success bool     `json:"success"`
	Staff   []Master `json:"staff"`
}

// GetMasters lists the active staff in one branch.
func (c *Client) GetMasters(ctx context.Context, channelID int) result.Result[[]Master] {
	if channelID <= 0 {
		return result.Fail[[]Master](result.CodeValidationError, "не указан channel_id")
	}

	resp, err := postJSON[mastersResponse](ctx, c, mastersPath, mastersRequest{ChannelID: channelID}, 0)
	if err != nil {
		return mapTransportErr[[]Master](err)
	}
	if !resp.Success {
		return result.Fail[[]Master](result.CodeCRMBadResponse, "CRM вернул success=false для списка мастеров")
	}
	return result.Of(resp.Staff)
}
