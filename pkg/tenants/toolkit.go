package tenants

import (
	"context"
	"fmt"
	"strings"

	"github.com/ai2b-pro/toolfleet/pkg/availability"
	"github.com/ai2b-pro/toolfleet/pkg/catalogue"
	"github.com/ai2b-pro/toolfleet/pkg/crm"
	"github.com/ai2b-pro/toolfleet/pkg/result"
	"github.com/ai2b-pro/toolfleet/pkg/retriever"
	"github.com/ai2b-pro/toolfleet/pkg/tools"
)

// objectSchema builds a JSON Schema object literal for a tool's arguments.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func stringArrayProp(description string, allowed []string) map[string]any {
	prop := map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": description}
	if len(allowed) > 0 {
		prop["items"].(map[string]any)["enum"] = allowed
	}
	return prop
}

// faqTool answers organizational FAQs from the FAQ collection.
func faqTool(deps Deps) tools.Tool {
	type in struct {
		Query     string `json:"query"`
		ChannelID int    `json:"channel_id"`
	}
	return tools.Tool{
		Name:        "faq",
		Description: "Ответ на часто задаваемые клиентами организационные вопросы: график работы, заморозка абонемента, рассрочка, перенос записи и т.п.",
		InputSchema: objectSchema(map[string]any{
			"query":      stringProp("Вопрос клиента в естественном языке."),
			"channel_id": intProp("id филиала."),
		}, "query", "channel_id"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]retriever.Hit] {
			hits, err := deps.Retriever.Search(ctx, deps.Collections.FAQ, p.Query, retriever.Filters{}, 5)
			if err != nil {
				return result.Fail[[]retriever.Hit](result.CodeInternalError, "не удалось получить ответ на вопрос")
			}
			return result.Of(hits)
		}),
	}
}

// servicesTool returns full details (description, indications,
// contraindications, prep instructions) for a named service or category.
func servicesTool(deps Deps) tools.Tool {
	type in struct {
		Query     string `json:"query"`
		ChannelID int    `json:"channel_id"`
	}
	return tools.Tool{
		Name:        "services",
		Description: "Получение полной информации об услуге: описание, показания, противопоказания, подготовка к посещению.",
		InputSchema: objectSchema(map[string]any{
			"query":      stringProp("Запрос об услуге на естественном языке."),
			"channel_id": intProp("id филиала."),
		}, "query"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]retriever.Hit] {
			hits, err := deps.Retriever.Search(ctx, deps.Collections.Services, p.Query, retriever.Filters{}, 5)
			if err != nil {
				return result.Fail[[]retriever.Hit](result.CodeInternalError, "не удалось найти информацию об услуге")
			}
			return result.Of(hits)
		}),
	}
}

// recommendationsTool suggests pre/post-session guidance for a chosen
// product, reusing the services collection with a tight limit.
func recommendationsTool(deps Deps) tools.Tool {
	type in struct {
		SessionID   string `json:"session_id"`
		ProductName string `json:"product_name"`
		ChannelID   int    `json:"channel_id"`
	}
	return tools.Tool{
		Name:        "recommendations",
		Description: "Получение рекомендаций и инструкций по подготовке к выбранной клиентом услуге.",
		InputSchema: objectSchema(map[string]any{
			"session_id":   stringProp("id диалоговой сессии."),
			"product_name": stringProp("Название выбранной услуги."),
			"channel_id":   intProp("id филиала."),
		}, "session_id", "product_name", "channel_id"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]retriever.Hit] {
			hits, err := deps.Retriever.Search(ctx, deps.Collections.Services, p.ProductName, retriever.Filters{}, 1)
			if err != nil {
				return result.Of([]retriever.Hit{})
			}
			return result.Of(hits)
		}),
	}
}

// productSearchFullTool is the filtered search offered to tenants whose
// catalogue supports indications/contraindications/body-part filters
// (Sofia). keys is read once at builder-construction time so the
// description enumerates that tenant's allowed filter values.
func productSearchFullTool(deps Deps, keys catalogue.Keys) tools.Tool {
	type in struct {
		SessionID         string   `json:"session_id"`
		Query             string   `json:"query,omitempty"`
		ChannelID         int      `json:"channel_id"`
		Indications       []string `json:"indications,omitempty"`
		Contraindications []string `json:"contraindications,omitempty"`
		BodyParts         []string `json:"body_parts,omitempty"`
	}
	return tools.Tool{
		Name: "product_search",
		Description: "Поиск услуг по текстовому запросу с опциональными фильтрами по показаниям, " +
			"противопоказаниям и зонам тела. Следуй спискам допустимых значений при формировании запроса." +
			"\nДопустимые показания: " + strings.Join(keys.IndicationsKey, ", ") +
			"\nДопустимые противопоказания: " + strings.Join(keys.ContraindicationsKey, ", ") +
			"\nДопустимые зоны тела: " + strings.Join(keys.BodyParts, ", "),
		InputSchema: objectSchema(map[string]any{
			"session_id":        stringProp("id диалоговой сессии."),
			"query":             stringProp("Свободный текстовый запрос."),
			"channel_id":        intProp("id филиала."),
			"indications":       stringArrayProp("Показания.", keys.IndicationsKey),
			"contraindications": stringArrayProp("Противопоказания.", keys.ContraindicationsKey),
			"body_parts":        stringArrayProp("Зоны тела.", keys.BodyParts),
		}, "session_id", "channel_id"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]retriever.Hit] {
			filters := retriever.Filters{
				IndicationsKey:       p.Indications,
				ContraindicationsKey: p.Contraindications,
				BodyParts:            p.BodyParts,
			}
			hits, err := deps.Retriever.Search(ctx, deps.Collections.Products, p.Query, filters, 10)
			if err != nil {
				return result.Fail[[]retriever.Hit](result.CodeInternalError, "не удалось выполнить поиск услуг")
			}
			return result.Of(hits)
		}),
	}
}

// productSearchQueryTool is the unfiltered search offered to tenants whose
// catalogue doesn't expose indication/contraindication/body-part filters.
func productSearchQueryTool(deps Deps) tools.Tool {
	type in struct {
		SessionID string `json:"session_id"`
		Query     string `json:"query"`
		ChannelID int    `json:"channel_id"`
	}
	return tools.Tool{
		Name:        "product_search",
		Description: "Поиск услуг по текстовому запросу.",
		InputSchema: objectSchema(map[string]any{
			"session_id": stringProp("id диалоговой сессии."),
			"query":      stringProp("Свободный текстовый запрос."),
			"channel_id": intProp("id филиала."),
		}, "session_id", "query"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]retriever.Hit] {
			hits, err := deps.Retriever.Search(ctx, deps.Collections.Products, p.Query, retriever.Filters{}, 10)
			if err != nil {
				return result.Fail[[]retriever.Hit](result.CodeInternalError, "не удалось выполнить поиск услуг")
			}
			return result.Of(hits)
		}),
	}
}

func recordTimeTool(deps Deps) tools.Tool {
	type in struct {
		ProductID     string `json:"product_id"`
		Date          string `json:"date"`
		Time          string `json:"time"`
		UserID        int    `json:"user_id"`
		StaffID       int    `json:"staff_id"`
		ChannelID     int    `json:"channel_id"`
		Comment       string `json:"comment,omitempty"`
		NotifyBySMS   int    `json:"notify_by_sms,omitempty"`
		NotifyByEmail int    `json:"notify_by_email,omitempty"`
	}
	return tools.Tool{
		Name:        "record_time",
		Description: "Записывает клиента на выбранную услугу к мастеру на указанные дату и время.",
		InputSchema: objectSchema(map[string]any{
			"product_id": stringProp(`id услуги в формате "филиал-артикул".`),
			"date":       stringProp("Дата записи YYYY-MM-DD."),
			"time":       stringProp("Время записи HH:MM."),
			"user_id":    intProp("id клиента."),
			"staff_id":   intProp("id мастера."),
			"channel_id": intProp("id филиала."),
			"comment":    stringProp("Комментарий к записи."),
		}, "product_id", "date", "time", "user_id", "staff_id", "channel_id"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[crm.BookingResult] {
			return deps.CRM.RecordTime(ctx, crm.RecordTimeParams{
				ProductID:     p.ProductID,
				Date:          p.Date,
				Time:          p.Time,
				UserID:        p.UserID,
				StaffID:       p.StaffID,
				ChannelID:     p.ChannelID,
				Comment:       p.Comment,
				NotifyBySMS:   p.NotifyBySMS,
				NotifyByEmail: p.NotifyByEmail,
			})
		}),
	}
}

// clientRecordsTool returns the tenant's full cross-branch booking list:
// grounded on class_client_records.py's MCPClientRecords, it takes no
// channel_id at all — channel_ids are fixed at tool-construction time (the
// tenant's whole branch set, the same closure pattern
// availableTimeForMasterTool uses for its fan-out list) and every call
// queries all of them, aggregating into one list. any_success/last_error
// mirror the Python aggregation: ok only if at least one branch answered;
// otherwise the last branch error (or a generic fallback) is surfaced.
func clientRecordsTool(deps Deps, channelIDs []int) tools.Tool {
	type in struct {
		UserCompanyChat int `json:"user_companychat"`
	}
	return tools.Tool{
		Name:        "client_records",
		Description: "Возвращает список ожидающих подтверждения записей клиента по всем филиалам сети.",
		InputSchema: objectSchema(map[string]any{
			"user_companychat": intProp("id клиента в чате."),
		}, "user_companychat"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]crm.ClientRecord] {
			var aggregated []crm.ClientRecord
			var lastErr *result.Err
			anySuccess := false

			for _, channelID := range channelIDs {
				r := deps.CRM.GetClientRecords(ctx, p.UserCompanyChat, channelID)
				if r.Ok {
					anySuccess = true
					aggregated = append(aggregated, r.Value...)
					continue
				}
				if r.Err != nil {
					lastErr = r.Err
				}
			}

			if !anySuccess {
				if lastErr != nil {
					return result.Fail[[]crm.ClientRecord](lastErr.Code, lastErr.Message)
				}
				return result.Fail[[]crm.ClientRecord](result.CodeCRMError, "не удалось получить записи")
			}
			return result.Of(aggregated)
		}),
	}
}

func recordDeleteTool(deps Deps) tools.Tool {
	type in struct {
		UserCompanyChat int `json:"user_companychat"`
		ChannelID       int `json:"channel_id"`
		RecordID        int `json:"record_id"`
	}
	return tools.Tool{
		Name:        "record_delete",
		Description: "Отменяет существующую запись клиента.",
		InputSchema: objectSchema(map[string]any{
			"user_companychat": intProp("id клиента в чате."),
			"channel_id":       intProp("id филиала."),
			"record_id":        intProp("id записи."),
		}, "user_companychat", "channel_id", "record_id"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[string] {
			return deps.CRM.DeleteClientRecord(ctx, p.UserCompanyChat, p.ChannelID, p.RecordID)
		}),
	}
}

func recordRescheduleTool(deps Deps) tools.Tool {
	type in struct {
		UserCompanyChat int    `json:"user_companychat"`
		ChannelID       int    `json:"channel_id"`
		RecordID        int    `json:"record_id"`
		MasterID        int    `json:"master_id"`
		Date            string `json:"date"`
		Time            string `json:"time"`
		Comment         string `json:"comment,omitempty"`
	}
	return tools.Tool{
		Name:        "record_reschedule",
		Description: "Переносит существующую запись клиента на новые дату/время/мастера.",
		InputSchema: objectSchema(map[string]any{
			"user_companychat": intProp("id клиента в чате."),
			"channel_id":       intProp("id филиала."),
			"record_id":        intProp("id записи."),
			"master_id":        intProp("id нового мастера."),
			"date":             stringProp("Новая дата YYYY-MM-DD."),
			"time":             stringProp("Новое время HH:MM."),
			"comment":          stringProp("Комментарий к переносу."),
		}, "user_companychat", "channel_id", "record_id", "master_id", "date", "time"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[crm.RescheduleResult] {
			return deps.CRM.RescheduleClientRecord(ctx, crm.RescheduleParams{
				UserCompanyChat: p.UserCompanyChat,
				ChannelID:       p.ChannelID,
				RecordID:        p.RecordID,
				MasterID:        p.MasterID,
				Date:            p.Date,
				Time:            p.Time,
				Comment:         p.Comment,
			})
		}),
	}
}

func callAdministratorTool(deps Deps) tools.Tool {
	type in struct {
		UserID           int    `json:"user_id"`
		UserCompanyChat  int    `json:"user_companychat"`
		ReplyToHistoryID int    `json:"reply_to_history_id,omitempty"`
		AccessToken      string `json:"access_token"`
		Text             string `json:"text,omitempty"`
	}
	return tools.Tool{
		Name:        "call_administrator",
		Description: "Вызывает администратора-человека, когда клиент явно просит об этом или бот не может помочь.",
		InputSchema: objectSchema(map[string]any{
			"user_id":             intProp("id пользователя."),
			"user_companychat":    intProp("id чата компании."),
			"access_token":        stringProp("Токен доступа для эскалации."),
			"text":                stringProp("Текст обращения клиента."),
			"reply_to_history_id": intProp("id сообщения, на которое отвечаем."),
		}, "user_id", "user_companychat", "access_token"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[string] {
			return deps.CRM.CallAdministrator(ctx, crm.CallAdministratorParams{
				UserID:           p.UserID,
				UserCompanyChat:  p.UserCompanyChat,
				ReplyToHistoryID: p.ReplyToHistoryID,
				AccessToken:      p.AccessToken,
				Text:             p.Text,
			})
		}),
	}
}

// availableTimeForMasterTool runs the branch fan-out availability algorithm
// (C11), keyed by a ProductID shaped "{primary_channel}-{article}".
func availableTimeForMasterTool(deps Deps, tenantName string, channelIDs []int) tools.Tool {
	type in struct {
		SessionID  string `json:"session_id"`
		OfficeID   int    `json:"office_id"`
		Date       string `json:"date"`
		ProductID  string `json:"product_id"`
		CountSlots int    `json:"count_slots,omitempty"`
	}
	return tools.Tool{
		Name:        "available_time_for_master",
		Description: "Возвращает свободные слоты мастеров на указанную дату; при отсутствии слотов в выбранном филиале ищет в остальных филиалах сети.",
		InputSchema: objectSchema(map[string]any{
			"session_id":  stringProp("id диалоговой сессии."),
			"office_id":   intProp("id выбранного клиентом филиала."),
			"date":        stringProp("Дата YYYY-MM-DD."),
			"product_id":  stringProp(`id услуги в формате "филиал-артикул".`),
			"count_slots": intProp("Максимум слотов на мастера (по умолчанию 30)."),
		}, "session_id", "office_id", "date", "product_id"),
		Handler: tools.Handle(func(ctx context.Context, p in) result.Result[[]availability.BranchAvailability] {
			return deps.Availability.ResolveAvailability(ctx, availability.Params{
				SessionID:  p.SessionID,
				TenantName: tenantName,
				OfficeID:   p.OfficeID,
				Date:       p.Date,
				ProductID:  p.ProductID,
				ChannelIDs: channelIDs,
				CountSlots: p.CountSlots,
			})
		}),
	}
}

// rememberOfficeTool stashes the branch the client picked for booking; a
// pure confirmation, no side effect beyond echoing the chosen values back
// for the conversational agent's own state.
func rememberOfficeTool() tools.Tool {
	type in struct {
		OfficeID      string `json:"office_id"`
		OfficeAddress string `json:"office_address"`
	}
	type out struct {
		Success       bool   `json:"success"`
		OfficeID      string `json:"office_id"`
		OfficeAddress string `json:"office_address"`
	}
	return tools.Tool{
		Name:        "remember_office",
		Description: "Сохраняет выбранный клиентом филиал для записи.",
		InputSchema: objectSchema(map[string]any{
			"office_id":      stringProp("id филиала."),
			"office_address": stringProp("Адрес филиала."),
		}, "office_id", "office_address"),
		Handler: tools.HandlePlain(func(ctx context.Context, p in) (out, error) {
			return out{Success: true, OfficeID: p.OfficeID, OfficeAddress: p.OfficeAddress}, nil
		}),
	}
}

func rememberMasterTool() tools.Tool {
	type in struct {
		MasterID   string `json:"master_id"`
		MasterName string `json:"master_name"`
	}
	type out struct {
		Success    bool   `json:"success"`
		MasterID   string `json:"master_id"`
		MasterName string `json:"master_name"`
	}
	return tools.Tool{
		Name:        "remember_master",
		Description: "Сохраняет выбранного клиентом мастера для записи.",
		InputSchema: objectSchema(map[string]any{
			"master_id":   stringProp("id мастера."),
			"master_name": stringProp("Имя мастера."),
		}, "master_id", "master_name"),
		Handler: tools.HandlePlain(func(ctx context.Context, p in) (out, error) {
			return out{Success: true, MasterID: p.MasterID, MasterName: p.MasterName}, nil
		}),
	}
}

func rememberDesiredDateTool() tools.Tool {
	type in struct {
		DateISO string `json:"date_iso"`
	}
	type out struct {
		Success      bool   `json:"success"`
		DesiredDate  string `json:"desired_date"`
	}
	return tools.Tool{
		Name:        "remember_desired_date",
		Description: "Сохраняет выбранную клиентом дату для записи.",
		InputSchema: objectSchema(map[string]any{
			"date_iso": stringProp("Желаемая дата записи YYYY-MM-DD."),
		}, "date_iso"),
		Handler: tools.HandlePlain(func(ctx context.Context, p in) (out, error) {
			return out{Success: true, DesiredDate: p.DateISO}, nil
		}),
	}
}

func rememberDesiredTimeTool() tools.Tool {
	type in struct {
		TimeHHMM string `json:"time_hhmm"`
	}
	type out struct {
		Success     bool   `json:"success"`
		DesiredTime string `json:"desired_time"`
	}
	return tools.Tool{
		Name:        "remember_desired_time",
		Description: "Сохраняет выбранное клиентом время для записи.",
		InputSchema: objectSchema(map[string]any{
			"time_hhmm": stringProp("Желаемое время записи HH:MM."),
		}, "time_hhmm"),
		Handler: tools.HandlePlain(func(ctx context.Context, p in) (out, error) {
			return out{Success: true, DesiredTime: p.TimeHHMM}, nil
		}),
	}
}

// rememberProductIDTool confirms a client's service choice against the
// catalogue before it's recorded, rejecting a mismatched name rather than
// trusting whatever the LLM echoes back.
func rememberProductIDTool(deps Deps) tools.Tool {
	type in struct {
		SessionID   string `json:"session_id"`
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
	}
	type product struct {
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
	}
	type out struct {
		Success  bool      `json:"success"`
		Message  string    `json:"message,omitempty"`
		Products []product `json:"products,omitempty"`
	}
	return tools.Tool{
		Name:        "remember_product_id",
		Description: "Подтверждает выбор клиентом конкретной услуги по id и названию.",
		InputSchema: objectSchema(map[string]any{
			"session_id":   stringProp("id диалоговой сессии."),
			"product_id":   stringProp(`id выбранной услуги, формат "2-113323232".`),
			"product_name": stringProp("Название выбранной услуги."),
		}, "session_id", "product_id", "product_name"),
		Handler: tools.HandlePlain(func(ctx context.Context, p in) (out, error) {
			failure := out{Success: false, Message: "Ошибка в выборе услуги. Покажи заново найденные услуги."}

			name, found, err := deps.Catalogue.ProductName(ctx, p.ProductID)
			if err != nil {
				return out{}, fmt.Errorf("looking up product name: %w", err)
			}
			if !found {
				return failure, nil
			}
			if !strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(p.ProductName)) {
				return failure, nil
			}
			return out{Success: true, Products: []product{{ProductID: p.ProductID, ProductName: name}}}, nil
		}),
	}
}
