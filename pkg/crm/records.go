package crm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

const clientRecordsPath = "/appointments/client/records"

// pendingStatus is the CRM's sentinel string for a still-open booking; only
// records in this status are exposed to tools.
const pendingStatus = "Ожидает..."

// ClientRecord is one booking in a user's history.
type ClientRecord struct {
	RecordID    string `json:"record_id"`
	RecordDate  string `json:"record_date"`
	OfficeID    int    `json:"office_id"`
	MasterID    string `json:"master_id"`
	MasterName  string `json:"master_name"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

type clientRecordsRequest struct {
	UserCompanyChat int `json:"user_companychat"`
	ChannelID       int `json:"channel_id"`
}

type rawClientRecord struct {
	ID     any    `json:"id"`
	Date   string `json:"date"`
	Status string `json:"status"`
	Master struct {
		ID   any    `json:"id"`
		Name string `json:"name"`
	} `json:"master_id"`
	Product struct {
		ID   any    `json:"id"`
		Name string `json:"name"`
	} `json:"product"`
}

type clientRecordsResponse struct {
	Success bool               `json:"success"`
	Records []rawClientRecord  `json:"records"`
}

// recordDateLayouts are the formats the CRM has been observed to emit for
// record_date, tried in order.
var recordDateLayouts = []string{
	"2006-01-02 15:04",
	"02.01.2006 15:04",
	"02.01.06 15:04",
}

func parseRecordDate(s string) (time.Time, bool) {
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetClientRecords returns a user's pending bookings for one branch, sorted
// ascending by parsed record date; unparseable dates sort last. Always
// ok(list) — an empty list is not an error.
func (c *Client) GetClientRecords(ctx context.Context, userCompanyChat, channelID int) result.Result[[]ClientRecord] {
	if userCompanyChat <= 0 {
		return result.Fail[[]ClientRecord](result.CodeValidationError, "не указан user_companychat")
	}

	body := clientRecordsRequest{UserCompanyChat: userCompanyChat, ChannelID: channelID}
	resp, err := postJSON[clientRecordsResponse](ctx, c, clientRecordsPath, body, 0)
	if err != nil {
		return mapTransportErr[[]ClientRecord](err)
	}

	records := make([]ClientRecord, 0, len(resp.Records))
	for _, raw := range resp.Records {
		if raw.Status != pendingStatus {
			continue
		}
		records = append(records, ClientRecord{
			RecordID:    fmt.Sprint(raw.ID),
			RecordDate:  raw.Date,
			OfficeID:    channelID,
			MasterID:    fmt.Sprint(raw.Master.ID),
			MasterName:  raw.Master.Name,
			ProductID:   fmt.Sprint(raw.Product.ID),
			ProductName: raw.Product.Name,
		})
	}

	sortClientRecordsByDate(records)

	return result.Of(records)
}

// sortClientRecordsByDate sorts ascending by parsed record date; records
// whose date doesn't parse sort last, in their original relative order.
func sortClientRecordsByDate(records []ClientRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, oki := parseRecordDate(records[i].RecordDate)
		tj, okj := parseRecordDate(records[j].RecordDate)
		if !oki {
			return false
		}
		if !okj {
			return true
		}
		return ti.Before(tj)
	})
}
