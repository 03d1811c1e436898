package model

import "time"

// Response is the envelope every API endpoint returns: the payload under
// Data, the request id echoed back for log correlation, and either a nil
// Error or a structured one. List endpoints fill in Pagination.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination describes the window a list response covers.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListOptions selects a window of runs or trace events.
type ListOptions struct {
	Limit  int
	Offset int
	State  string // run state filter (PENDING, RUNNING, COMPLETED, FAILED); ignored for traces
}

// DefaultListOptions returns the standard first page.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 20, Offset: 0}
}

// Clamp bounds the window. The cap is generous because trace listings are
// the heavy consumer: a run emits several events per tick.
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
