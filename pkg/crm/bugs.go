package crm

// bookingBugErrorText is the exact CRM error string that marks the known
// 400-status booking bug: the backend reports failure even though the
// booking was actually created. Kept as a named constant, not inlined, so
// the normalization is auditable and removable the day upstream fixes it.
const bookingBugErrorText = "Неожиданный код статуса: 400"

// bookingResponse is the shape of a raw CRM booking response, before the
// 400-bug normalization is applied.
type bookingResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// isBooking400Bug reports whether resp matches the documented CRM bug where
// a booking actually succeeded but the backend reports
// {success:false, error:"Неожиданный код статуса: 400"}.
func isBooking400Bug(resp bookingResponse) bool {
	return !resp.Success && resp.Error == bookingBugErrorText
}
