package domain

import "time"

// User represents an authenticated identity owning tasks.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	TimeZone    string    `json:"time_zone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateTimeZone checks that the stored zone name resolves on this host.
func (u *User) ValidateTimeZone() error {
	if u == nil || u.TimeZone == "" {
		return nil
	}
	if _, err := time.LoadLocation(u.TimeZone); err != nil {
		return WrapError(ErrCodeInvalid, "unknown time zone", err)
	}
	return nil
}
