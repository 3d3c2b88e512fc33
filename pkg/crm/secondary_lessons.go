package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const getRecordsPath = "/appointments/go_crm/get_records"
const rescheduleRecordPath = "/appointments/go_crm/reschedule_record"

type lessonsRequest struct {
	ChannelID string `json:"channel_id"`
	Phone     string `json:"phone"`
}

// Lesson is one scheduled class in a client's secondary-CRM timetable.
type Lesson struct {
	RecordID string `json:"record_id"`
	Service  string `json:"service"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Teacher  string `json:"teacher"`
}

type rawLesson struct {
	RecordID any    `json:"record_id"`
	Service  string `json:"service"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Teacher  string `json:"teacher"`
}

type lessonsResponse struct {
	Success bool        `json:"success"`
	Lessons []rawLesson `json:"lessons"`
}

// GetClientLessons returns a client's scheduled classes from the secondary
// CRM timetable.
func (c *Client) GetClientLessons(ctx context.Context, phone, channelID string) result.Result[[]Lesson] {
	if strings.TrimSpace(phone) == "" || strings.TrimSpace(channelID) == "" {
		return result.Fail[[]Lesson](result.CodeValidationError, "не указаны phone или channel_id")
	}

	resp, err := postJSON[lessonsResponse](ctx, c, getRecordsPath, lessonsRequest{ChannelID: channelID, Phone: phone}, 0)
	if err != nil {
		return mapTransportErr[[]Lesson](err)
	}
	if !resp.Success {
		return result.Fail[[]Lesson](result.CodeNotFound, fmt.Sprintf("нет данных в системе для channel_id=%s, phone=%s", channelID, phone))
	}

	lessons := make([]Lesson, 0, len(resp.Lessons))
	for _, raw := range resp.Lessons {
		lessons = append(lessons, Lesson{
			RecordID: fmt.Sprint(raw.RecordID),
			Service:  raw.Service,
			Date:     raw.Date,
			Time:     raw.Time,
			Teacher:  raw.Teacher,
		})
	}
	return result.Of(lessons)
}

type rescheduleLessonRequest struct {
	ChannelID      string `json:"channel_id"`
	Phone          string `json:"phone"`
	RecordID       string `json:"record_id"`
	InstructorName string `json:"instructor_name"`
	NewDate        string `json:"new_date"`
	NewTime        string `json:"new_time"`
	Service        string `json:"service"`
	Reason         string `json:"reason"`
}

type rescheduleLessonResponse struct {
	Success bool   `json:"success"`
	NewDate string `json:"new_date"`
	NewTime string `json:"new_time"`
}

// UpdateClientLessonParams are the inputs to UpdateClientLesson.
type UpdateClientLessonParams struct {
	Phone          string
	ChannelID      string
	RecordID       string
	InstructorName string
	NewDate        string // DD.MM.YYYY or YYYY-MM-DD
	NewTime        string
	Service        string
	Reason         string
}

// UpdateClientLesson reschedules a class to a new date/time. A client who
// has already used both of their monthly post-subscription transfers is
// blocked until the date returned by their subscription statistics.
func (c *Client) UpdateClientLesson(ctx context.Context, p UpdateClientLessonParams) result.Result[string] {
	fields := map[string]string{
		"phone":           p.Phone,
		"channel_id":      p.ChannelID,
		"record_id":       p.RecordID,
		"instructor_name": p.InstructorName,
		"new_date":        p.NewDate,
		"new_time":        p.NewTime,
		"service":         p.Service,
		"reason":          p.Reason,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return result.Fail[string](result.CodeValidationError, "не указано поле "+name)
		}
	}

	normalizedDate, ok := normalizeLessonDate(p.NewDate)
	if !ok {
		return result.Fail[string](result.CodeValidationError, fmt.Sprintf("неверный формат даты: %s, ожидается DD.MM.YYYY", p.NewDate))
	}

	transferDate, err := time.Parse(abonementDateLayout, normalizedDate)
	if err != nil {
		return result.Fail[string](result.CodeValidationError, fmt.Sprintf("неверный формат даты: %s, ожидается DD.MM.YYYY", p.NewDate))
	}

	stats := c.GetClientStatistics(ctx, p.Phone, p.ChannelID)
	if stats.Ok && !stats.Value.NoVisitsYet {
		endDt, endOk := parseAbonementDate(stats.Value.EndDate)
		nextDt, nextOk := parseAbonementDate(stats.Value.NextTransferAfter)
		if endOk && nextOk {
			if !(transferDate.Equal(endDt) || transferDate.Before(endDt) || transferDate.Equal(nextDt) || transferDate.After(nextDt)) {
				return result.Fail[string](result.CodeConflict, fmt.Sprintf(
					"в этом месяце после окончания абонемента у вас уже было 2 переноса, вы можете перенести занятие после %s",
					stats.Value.NextTransferAfter,
				))
			}
		}
	}

	body := rescheduleLessonRequest{
		ChannelID:      strings.TrimSpace(p.ChannelID),
		Phone:          strings.TrimSpace(p.Phone),
		RecordID:       strings.TrimSpace(p.RecordID),
		InstructorName: strings.TrimSpace(p.InstructorName),
		NewDate:        normalizedDate,
		NewTime:        strings.TrimSpace(p.NewTime),
		Service:        strings.TrimSpace(p.Service),
		Reason:         strings.TrimSpace(p.Reason),
	}

	resp, postErr := postJSON[rescheduleLessonResponse](ctx, c, rescheduleRecordPath, body, 0)
	if postErr != nil {
		return mapTransportErr[string](postErr)
	}
	if !resp.Success {
		return result.Fail[string](result.CodeCRMBadResponse, "ошибка переноса урока")
	}

	apiDate := resp.NewDate
	if apiDate == "" {
		apiDate = normalizedDate
	}
	apiTime := resp.NewTime
	if apiTime == "" {
		apiTime = p.NewTime
	}
	return result.Of(fmt.Sprintf("перенос урока выполнен успешно на %s %s", apiDate, apiTime))
}

func normalizeLessonDate(value string) (string, bool) {
	for _, layout := range []string{"02.01.2006", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02.01.2006"), true
		}
	}
	return "", false
}
