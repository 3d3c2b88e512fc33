package crm

import (
	"context"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const historyOutgoingPath = "/v1/telegram/n8n/outgoing"

// CallAdministratorParams are the inputs to CallAdministrator.
type CallAdministratorParams struct {
	UserID             int
	UserCompanyChat    int
	ReplyToHistoryID   int
	AccessToken        string
	Text               string // defaults to "Клиент просит администратора."
	Tokens             map[string]any
	Tools              []string
	ToolsArgs          map[string]any
	ToolsResult        map[string]any
	PromptSystem       string
	TemplatePromptSystem string
	DialogState        string
	DialogStateNew     string
	CallManager        bool
}

type callAdministratorPayload struct {
	UserID               int            `json:"user_id"`
	UserCompanyChat      int            `json:"user_companychat"`
	ReplyToHistoryID     int            `json:"reply_to_history_id"`
	AccessToken          string         `json:"access_token"`
	Text                 string         `json:"text"`
	Tokens               map[string]any `json:"tokens"`
	Tools                []string       `json:"tools"`
	ToolsArgs            map[string]any `json:"tools_args"`
	ToolsResult          map[string]any `json:"tools_result"`
	PromptSystem         string         `json:"prompt_system"`
	TemplatePromptSystem string         `json:"template_prompt_system"`
	DialogState          string         `json:"dialog_state"`
	DialogStateNew       string         `json:"dialog_state_new"`
	CallManager          bool           `json:"call_manager"`
}

// CallAdministrator escalates the conversation to a human operator,
// forwarding the dialog context and tool-call history so the operator picks
// up with full context. Used both when a client explicitly asks for a human
// and when the conversation context suggests the assistant is failing them.
func (c *Client) CallAdministrator(ctx context.Context, p CallAdministratorParams) result.Result[string] {
	if p.UserID <= 0 || p.UserCompanyChat <= 0 || p.AccessToken == "" {
		return result.Fail[string](result.CodeValidationError, "не указаны user_id, user_companychat или access_token")
	}

	text := p.Text
	if text == "" {
		text = "Клиент просит администратора."
	}

	body := callAdministratorPayload{
		UserID:               p.UserID,
		UserCompanyChat:      p.UserCompanyChat,
		ReplyToHistoryID:     p.ReplyToHistoryID,
		AccessToken:          p.AccessToken,
		Text:                 text,
		Tokens:               orEmptyMap(p.Tokens),
		Tools:                p.Tools,
		ToolsArgs:            orEmptyMap(p.ToolsArgs),
		ToolsResult:          orEmptyMap(p.ToolsResult),
		PromptSystem:         p.PromptSystem,
		TemplatePromptSystem: p.TemplatePromptSystem,
		DialogState:          p.DialogState,
		DialogStateNew:       p.DialogStateNew,
		CallManager:          p.CallManager,
	}

	if err := postNoContent(ctx, c, historyOutgoingPath, body, 0); err != nil {
		return mapTransportErr[string](err)
	}
	return result.Of("Администратор вызван.")
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
