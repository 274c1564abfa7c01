package submit

import (
	"encoding/json"
	"sort"
	"sync"
)

// Status classifies one submission.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusFailed          Status = "failed"
	StatusInvalidResponse Status = "invalid_response"
	StatusConnectionError Status = "connection_error"
)

// ErrorDetail is recorded for calls the service rejected.
type ErrorDetail struct {
	Error    string          `json:"error"`
	Messages json.RawMessage `json:"messages,omitempty"`
}

// Outcome is the result of one item submission.
type Outcome struct {
	Row    int
	Code   string
	Status Status
	// NodeID is set on success.
	NodeID string
	// Detail is set on failure: an ErrorDetail for rejected calls, a string
	// otherwise.
	Detail any
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// DetailString renders Detail for logs and storage.
func (o Outcome) DetailString() string {
	switch d := o.Detail.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Outcomes collects results from concurrent submissions. Successes are keyed
// by item code and errors by row, so concurrent writers never share a key.
type Outcomes struct {
	mu      sync.Mutex
	list    []Outcome
	success map[string]string
	errors  map[int]any
}

// NewOutcomes returns an empty collection.
func NewOutcomes() *Outcomes {
	return &Outcomes{
		success: make(map[string]string),
		errors:  make(map[int]any),
	}
}

// Add records o and returns how many outcomes have been recorded so far.
func (s *Outcomes) Add(o Outcome) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, o)
	if o.OK() {
		s.success[o.Code] = o.NodeID
	} else {
		s.errors[o.Row] = o.Detail
	}
	return len(s.list)
}

// Success returns a copy of code → node id.
func (s *Outcomes) Success() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.success))
	for k, v := range s.success {
		out[k] = v
	}
	return out
}

// Errors returns a copy of row → error detail.
func (s *Outcomes) Errors() map[int]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]any, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// List returns every outcome ordered by row.
func (s *Outcomes) List() []Outcome {
	s.mu.Lock()
	out := make([]Outcome, len(s.list))
	copy(out, s.list)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// Counts returns the number of distinct successes and errors.
func (s *Outcomes) Counts() (succeeded, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.success), len(s.errors)
}
