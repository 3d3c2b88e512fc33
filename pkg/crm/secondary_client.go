package crm

import (
	"context"
	"strings"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const createClientPath = "/appointments/go_crm/create_client"

type createClientRequest struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	ParentFio string `json:"parent_fio"`
	Phone     string `json:"phone"`
	Mail      string `json:"mail"`
	ChildFio  string `json:"child_fio"`
	Birthday  string `json:"birthday"`
	Comment   string `json:"comment"`
}

type createClientResponse struct {
	Success bool `json:"success"`
}

// UpdateClientInfoParams are the inputs to UpdateClientInfo.
type UpdateClientInfoParams struct {
	UserID            string
	ChannelID         string
	ParentName        string
	Phone             string
	Email             string
	ChildName         string
	ChildDateOfBirth  string
	ContactReason     string
}

// UpdateClientInfo registers a prospective client in the secondary CRM.
// Every field is required; CRM rejection surfaces as crm_bad_response rather than
// a field-level validation failure, matching the secondary system's
// all-or-nothing intake form.
func (c *Client) UpdateClientInfo(ctx context.Context, p UpdateClientInfoParams) result.Result[string] {
	fields := map[string]string{
		"user_id":             p.UserID,
		"channel_id":          p.ChannelID,
		"parent_name":         p.ParentName,
		"phone":               p.Phone,
		"email":               p.Email,
		"child_name":          p.ChildName,
		"child_date_of_birth": p.ChildDateOfBirth,
		"contact_reason":      p.ContactReason,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return result.Fail[string](result.CodeValidationError, "не указано поле "+name)
		}
	}

	body := createClientRequest{
		UserID:    strings.TrimSpace(p.UserID),
		ChannelID: strings.TrimSpace(p.ChannelID),
		ParentFio: strings.TrimSpace(p.ParentName),
		Phone:     strings.TrimSpace(p.Phone),
		Mail:      strings.TrimSpace(p.Email),
		ChildFio:  strings.TrimSpace(p.ChildName),
		Birthday:  strings.TrimSpace(p.ChildDateOfBirth),
		Comment:   "Создан через API. Причина обращения: " + strings.TrimSpace(p.ContactReason),
	}

	resp, err := postJSON[createClientResponse](ctx, c, createClientPath, body, 0)
	if err != nil {
		return mapTransportErr[string](err)
	}
	if !resp.Success {
		return result.Fail[string](result.CodeCRMBadResponse, "ошибка создания нового клиента в CRM")
	}
	return result.Of("Ваши данные сохранены. С вами скоро свяжется администратор.")
}
