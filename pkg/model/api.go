package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination holds pagination metadata for list endpoints.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListOptions configures run listing.
type ListOptions struct {
	Limit  int
	Offset int
	State  RunState // empty lists every state
}

// DefaultListOptions returns the first page of 20 runs.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 20}
}

// Clamp keeps Limit within [1, 100] and Offset non-negative.
func (o *ListOptions) Clamp() {
	switch {
	case o.Limit <= 0:
		o.Limit = 20
	case o.Limit > 100:
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
