// Package submit sends prepared items to the item service with bounded
// concurrency and collects a per-item outcome. A failing item never stops the
// others: every item is attempted exactly once.
package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"itemimport/internal/api"
	"itemimport/internal/item"
	"itemimport/internal/metrics"
)

// DefaultConcurrency is the in-flight cap when none is configured.
const DefaultConcurrency = 10

// Updater is the service call made per item. *api.Client implements it.
type Updater interface {
	UpdateItem(ctx context.Context, id string, env api.Envelope) (*api.Response, error)
}

// Pipeline submits items.
type Pipeline struct {
	Client      Updater
	Concurrency int
	Log         zerolog.Logger
	// Job labels metrics.
	Job string
	// Progress, when set, is called after every completed call with the
	// number done so far. It may be called from several goroutines.
	Progress func(done, total int)
}

// Envelope builds the request body for it. The identifier is the item code;
// each concept id becomes an associatedTo relation.
func Envelope(it item.Item) api.Envelope {
	ai := api.AssessmentItem{
		Identifier: it.Code(),
		ObjectType: api.ObjectType,
		Metadata:   it.Metadata,
	}
	for _, cid := range it.ConceptIDs {
		ai.OutRelations = append(ai.OutRelations, api.Relation{
			EndNodeID:    cid,
			RelationType: api.RelationAssociatedTo,
		})
	}
	return api.Envelope{Request: api.Request{AssessmentItem: ai}}
}

// Run submits every item and returns the collected outcomes. It returns once
// all calls have finished. Cancelling ctx makes the remaining calls fail fast;
// they are recorded as connection errors.
func (p *Pipeline) Run(ctx context.Context, items []item.Item) *Outcomes {
	out := NewOutcomes()
	if len(items) == 0 {
		return out
	}

	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	total := len(items)

	for _, it := range items {
		g.Go(func() error {
			start := time.Now()
			o := p.submitOne(ctx, it)
			metrics.RecordCall(p.Job, string(o.Status), time.Since(start))

			done := out.Add(o)
			p.logOutcome(o)
			if p.Progress != nil {
				p.Progress(done, total)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pipeline) submitOne(ctx context.Context, it item.Item) Outcome {
	code := it.Code()
	o := Outcome{Row: it.Index, Code: code}

	resp, err := p.Client.UpdateItem(ctx, code, Envelope(it))
	switch {
	case errors.Is(err, api.ErrInvalidResponse):
		o.Status = StatusInvalidResponse
		o.Detail = "Invalid API response for: " + code
	case err != nil:
		o.Status = StatusConnectionError
		o.Detail = fmt.Sprintf("Connection error: %v", err)
	case resp.Failed():
		o.Status = StatusFailed
		d := ErrorDetail{Error: resp.Params.ErrMsg}
		if resp.Result != nil {
			d.Messages = resp.Result.Messages
		}
		o.Detail = d
	default:
		o.Status = StatusSuccess
		o.NodeID = resp.NodeID()
	}
	return o
}

func (p *Pipeline) logOutcome(o Outcome) {
	if o.OK() {
		p.Log.Debug().Int("row", o.Row).Str("code", o.Code).Str("node_id", o.NodeID).Msg("item loaded")
		return
	}
	p.Log.Debug().Int("row", o.Row).Str("code", o.Code).Str("status", string(o.Status)).
		Str("detail", o.DetailString()).Msg("item failed")
}
