package transport

// TaskRequest is the payload for creating or updating a task. Due date and
// reference instants travel as RFC3339 strings.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
	HasDueTime  bool   `json:"has_due_time"`
	Priority    int    `json:"priority"`
	Reference   string `json:"reference,omitempty"`
}

// MoveToTodayRequest carries the caller's local midnight.
type MoveToTodayRequest struct {
	StartOfLocalDay string `json:"start_of_local_day"`
}

// ParseRequest asks for a dry-run title extraction, used by the form to
// highlight matched spans while typing.
type ParseRequest struct {
	Text      string `json:"text"`
	Reference string `json:"reference,omitempty"`
}

type ProfileUpdateRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	TimeZone    string `json:"time_zone"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
