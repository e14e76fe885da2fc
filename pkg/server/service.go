package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikeboe/research-assistant/pkg/grounding"
	"github.com/mikeboe/research-assistant/pkg/research"
)

var (
	// ErrEmptyQuery is returned for blank research tasks.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrSearchInFlight is returned while the session already has a search running.
	ErrSearchInFlight = errors.New("a research task is already running for this session")
)

type Service struct {
	Searcher grounding.Searcher
	Sessions *SessionStore
	Model    string
}

func NewService(searcher grounding.Searcher, sessions *SessionStore, model string) *Service {
	return &Service{
		Searcher: searcher,
		Sessions: sessions,
		Model:    model,
	}
}

// SubmitTask stores query in the session and starts a search that outlives
// the calling request. Blank queries and submits while loading are ignored.
func (s *Service) SubmitTask(ctx context.Context, sess *Session, query string) {
	o := sess.Orchestrator
	o.SetQuery(query)
	if o.Submit(context.WithoutCancel(ctx), query) == nil {
		sess.Logger.Info("Submit ignored", "loading", o.Snapshot().Loading())
	}
}

// Search runs a search for the session and waits for its outcome. A failed
// search is reported through the snapshot, not the error. The search belongs
// to the session: when ctx ends only the wait stops, and the search settles
// for the session as usual.
func (s *Service) Search(ctx context.Context, sess *Session, query string) (research.Snapshot, error) {
	o := sess.Orchestrator
	if o.Snapshot().Loading() {
		return o.Snapshot(), ErrSearchInFlight
	}
	if isBlank(query) {
		return o.Snapshot(), ErrEmptyQuery
	}

	done := o.Submit(context.WithoutCancel(ctx), query)
	if done == nil {
		return o.Snapshot(), ErrSearchInFlight
	}

	select {
	case <-done:
		return o.Snapshot(), nil
	case <-ctx.Done():
		return o.Snapshot(), fmt.Errorf("search interrupted: %w", ctx.Err())
	}
}

// GroundedSearch is the stateless form used by MCP clients.
func (s *Service) GroundedSearch(ctx context.Context, query string) (*grounding.SearchResult, error) {
	if isBlank(query) {
		return nil, ErrEmptyQuery
	}
	return s.Searcher.Search(ctx, query)
}
