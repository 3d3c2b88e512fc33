package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const createBookingPath = "/appointments/yclients/create_booking"

// BookingResult is the data payload of a record_time response, whether or
// not the booking actually succeeded — a business-level failure still comes
// back as result.Of, since it isn't a transport/validation error.
type BookingResult struct {
	Success bool   `json:"success"`
	Info    string `json:"info,omitempty"`
	Error   string `json:"error,omitempty"`
}

type createBookingPayload struct {
	ProductID       string `json:"product_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	UserID          int    `json:"user_id"`
	StaffID         int    `json:"staff_id"`
	ChannelID       int    `json:"channel_id"`
	Comment         string `json:"comment"`
	NotifyBySMS     int    `json:"notify_by_sms"`
	NotifyByEmail   int    `json:"notify_by_email"`
}

// RecordTimeParams are the inputs to RecordTime.
type RecordTimeParams struct {
	ProductID     string
	Date          string
	Time          string
	UserID        int
	StaffID       int
	ChannelID     int
	Comment       string // defaults to "Запись через API" when empty
	NotifyBySMS   int
	NotifyByEmail int
	TimeoutOverride time.Duration
}

// RecordTime books an appointment. A CRM-side business failure is still an
// ok(BookingResult) with Success false, and the documented 400-bug becomes
// an ok(BookingResult) with Success true. Transport and parse failures are
// also folded into an ok(BookingResult) with Success false (see
// bookingFailureFromTransportErr); only validation failures become err.
func (c *Client) RecordTime(ctx context.Context, p RecordTimeParams) result.Result[BookingResult] {
	if strings.TrimSpace(p.ProductID) == "" {
		return result.Fail[BookingResult](result.CodeValidationError, "не указан product_id")
	}
	if strings.TrimSpace(p.Date) == "" || strings.TrimSpace(p.Time) == "" {
		return result.Fail[BookingResult](result.CodeValidationError, "не указаны дата или время записи")
	}

	comment := p.Comment
	if comment == "" {
		comment = "Запись через API"
	}

	payload := createBookingPayload{
		ProductID:     p.ProductID,
		Date:          p.Date,
		Time:          p.Time,
		UserID:        p.UserID,
		StaffID:       p.StaffID,
		ChannelID:     p.ChannelID,
		Comment:       comment,
		NotifyBySMS:   p.NotifyBySMS,
		NotifyByEmail: p.NotifyByEmail,
	}

	resp, err := postJSON[bookingResponse](ctx, c, createBookingPath, payload, p.TimeoutOverride)
	if err != nil {
		return result.Of(bookingFailureFromTransportErr(err))
	}

	if isBooking400Bug(resp) {
		return result.Of(BookingResult{
			Success: true,
			Info:    fmt.Sprintf("Запись к master_id=%d на время %s %s сделана", p.StaffID, p.Date, p.Time),
		})
	}

	return result.Of(BookingResult{Success: resp.Success, Error: resp.Error})
}

// postJSON posts body as JSON to path and decodes the response into T,
// going through the retry envelope. Any non-2xx status or parse failure is
// surfaced as an error the caller maps via mapTransportErr.
func postJSON[T any](ctx context.Context, c *Client, path string, body any, timeoutOverride time.Duration) (T, error) {
	var zero T

	encoded, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("marshalling request: %w", err)
	}

	return doWithRetry[T](ctx, c, func(ctx context.Context) (T, error) {
		ctx, cancel := c.withTimeout(ctx, timeoutOverride)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(encoded))
		if err != nil {
			return zero, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return zero, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return zero, &httpStatusError{status: resp.StatusCode}
		}

		var decoded T
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return zero, &parseError{cause: err}
		}
		return decoded, nil
	})
}

// parseError marks a response body that didn't decode into the expected
// shape — never retried, since retrying won't change a malformed body.
type parseError struct{ cause error }

func (e *parseError) Error() string { return "invalid CRM response: " + e.cause.Error() }
func (e *parseError) Unwrap() error { return e.cause }

// bookingFailureFromTransportErr folds a transport failure into a
// business-shaped BookingResult, matching the source's behavior of always
// returning a dict from record_time_async rather than raising.
func bookingFailureFromTransportErr(err error) BookingResult {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return BookingResult{Success: false, Error: fmt.Sprintf("HTTP ошибка: %d", statusErr.status)}
	}

	var parseErr *parseError
	if errors.As(err, &parseErr) {
		return BookingResult{Success: false, Error: "invalid_response"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return BookingResult{Success: false, Error: "network_error"}
	}

	return BookingResult{Success: false, Error: "Неизвестная ошибка при записи"}
}
