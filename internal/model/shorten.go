package model

import (
	"encoding/json"
	"strconv"
)

// ShortenRequest is the body of POST /api/shorten.
type ShortenRequest struct {
	URL           string `json:"url"`
	CustomCode    string `json:"custom_code,omitempty"`
	ExpiresInDays *Days  `json:"expires_in_days,omitempty"`
}

// ShortenResponse is the success body of POST /api/shorten.
type ShortenResponse struct {
	ShortURL  string `json:"short_url"`
	ShortCode string `json:"short_code,omitempty"`
	Reused    bool   `json:"reused"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Days is a link lifetime in days. A value that is not a number is kept with
// Valid unset and travels as JSON null.
type Days struct {
	Value int
	Valid bool
}

// NewDays returns a valid Days.
func NewDays(n int) *Days {
	return &Days{Value: n, Valid: true}
}

func (d Days) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(d.Value), 10), nil
}

func (d *Days) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Days{}
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*d = Days{Value: n, Valid: true}
	return nil
}
