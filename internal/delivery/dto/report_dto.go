package dto

// ReportResponse counts appointments scheduled within an optional range.
type ReportResponse struct {
	From     *string          `json:"from,omitempty"`
	To       *string          `json:"to,omitempty"`
	Total    int64            `json:"total"`
	Urgent   int64            `json:"urgent"`
	ByStatus map[string]int64 `json:"by_status"`
}

type AdminDashboardResponse struct {
	Report   ReportResponse        `json:"report"`
	Upcoming []AppointmentResponse `json:"upcoming"`
}
