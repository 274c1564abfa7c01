// Package api talks to the assessment item service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"itemimport/internal/datasource/httpds"
)

// ObjectType is the object type of every submitted item.
const ObjectType = "AssessmentItem"

// RelationAssociatedTo links an item to a concept.
const RelationAssociatedTo = "associatedTo"

// StatusFailed is the params.status the service uses for rejected calls.
const StatusFailed = "failed"

// ErrInvalidResponse is returned (wrapped) when the service answers with
// something that is not a response envelope.
var ErrInvalidResponse = errors.New("invalid API response")

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Envelope is the request body for an item update.
type Envelope struct {
	Request Request `json:"request"`
}

// Request wraps the item.
type Request struct {
	AssessmentItem AssessmentItem `json:"assessment_item"`
}

// AssessmentItem is the item as the service expects it. Metadata is any JSON
// marshaler; the importer passes an ordered document.
type AssessmentItem struct {
	Identifier   string     `json:"identifier"`
	ObjectType   string     `json:"objectType"`
	Metadata     any        `json:"metadata"`
	OutRelations []Relation `json:"outRelations,omitempty"`
}

// Relation is an outgoing edge from the item.
type Relation struct {
	EndNodeID    string `json:"endNodeId"`
	RelationType string `json:"relationType"`
}

// Response is the service reply.
type Response struct {
	Params *Params `json:"params"`
	Result *Result `json:"result"`
}

// Params carries the call status.
type Params struct {
	Status string `json:"status"`
	ErrMsg string `json:"errmsg"`
}

// Result carries the created node id, or validation messages on failure.
type Result struct {
	NodeID   string          `json:"node_id"`
	Messages json.RawMessage `json:"messages,omitempty"`
}

// Failed reports whether the service rejected the call.
func (r *Response) Failed() bool {
	return r.Params != nil && r.Params.Status == StatusFailed
}

// NodeID returns result.node_id, or "".
func (r *Response) NodeID() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.NodeID
}

// Client updates items over HTTP.
type Client struct {
	http    *httpds.Client
	base    string
	headers http.Header
}

// NewClient returns a Client for the service rooted at base, sending userID
// in the user-id header.
func NewClient(c *httpds.Client, base, userID string) *Client {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("user-id", userID)
	return &Client{http: c, base: strings.TrimRight(base, "/"), headers: h}
}

// ItemURL returns the update URL for id.
func (c *Client) ItemURL(id string) string {
	return c.base + "/v1/assessmentitem/" + url.PathEscape(id)
}

// UpdateItem PATCHes env to the item id.
//
// A transport failure is returned as is. A reply that does not decode into a
// Response with params is reported as ErrInvalidResponse. A decoded reply is
// returned whatever its HTTP status; the caller checks Failed.
func (c *Client) UpdateItem(ctx context.Context, id string, env Envelope) (*Response, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode item %s: %w", id, err)
	}

	resp, err := c.http.Patch(ctx, c.ItemURL(id), body, c.headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out Response
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&out); err != nil || out.Params == nil {
		return nil, fmt.Errorf("%w for %s (HTTP %d)", ErrInvalidResponse, id, resp.StatusCode)
	}
	return &out, nil
}
