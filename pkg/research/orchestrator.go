package research

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mikeboe/research-assistant/pkg/grounding"
)

// DefaultFailureMessage is surfaced when a failure carries no message.
const DefaultFailureMessage = "Failed to complete the research task."

// Orchestrator owns the query text and the state of the single research
// operation. A submit is accepted only when the query is not blank and no
// search is in flight.
type Orchestrator struct {
	searcher      grounding.Searcher
	Logger        *slog.Logger
	OnStateUpdate func(Snapshot)

	mu         sync.Mutex
	query      string
	state      OperationState
	configErr  bool
	generation uint64
	cancel     context.CancelFunc
}

func NewOrchestrator(searcher grounding.Searcher) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		Logger:   slog.Default(),
	}
}

// SetQuery replaces the query text without touching the operation state.
func (o *Orchestrator) SetQuery(query string) {
	o.mu.Lock()
	o.query = query
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

// LoadExample sets the query to ExampleTask.
func (o *Orchestrator) LoadExample() {
	o.SetQuery(ExampleTask)
}

// Submit starts a grounded search for query and returns a channel that is
// closed once the outcome has been applied or discarded. It returns nil and
// changes nothing when query is blank or a search is already in flight.
// ctx bounds the search itself.
func (o *Orchestrator) Submit(ctx context.Context, query string) <-chan struct{} {
	o.mu.Lock()
	if isBlank(query) || o.state.Status == Loading {
		o.mu.Unlock()
		return nil
	}

	o.query = query
	o.generation++
	gen := o.generation
	callCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state = OperationState{Status: Loading}
	o.configErr = false
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.Logger.Info("Research task submitted", "generation", gen, "query_len", len(query))
	o.notify(snap)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		result, err := o.searcher.Search(callCtx, query)
		o.settle(gen, result, err)
	}()
	return done
}

// Clear resets the query, result and error. An in-flight search is cancelled
// and its outcome discarded.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.query = ""
	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.state = OperationState{Status: Idle}
	o.configErr = false
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) settle(gen uint64, result *grounding.SearchResult, err error) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		o.Logger.Info("Discarding stale research outcome", "generation", gen)
		return
	}
	o.cancel = nil

	if err != nil {
		o.state = OperationState{Status: Failed, Message: failureMessage(err)}
		o.configErr = grounding.IsConfigurationError(err) || grounding.IsConfigurationMessage(o.state.Message)
	} else {
		o.state = OperationState{Status: Succeeded, Result: ownResult(result)}
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if err != nil {
		o.Logger.Error("Research task failed", "generation", gen, "error", snap.State.Message, "config_error", snap.ConfigError)
	} else {
		o.Logger.Info("Research task completed", "generation", gen, "sources", len(snap.State.Result.Sources))
	}
	o.notify(snap)
}

// ownResult copies a searcher's result so later changes on either side are not
// shared. Missing sources become an empty list.
func ownResult(result *grounding.SearchResult) *grounding.SearchResult {
	owned := &grounding.SearchResult{Sources: []grounding.Source{}}
	if result == nil {
		return owned
	}
	owned.Text = result.Text
	owned.Sources = append(owned.Sources, result.Sources...)
	return owned
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{Query: o.query, State: o.state}
	if o.state.Result != nil {
		copied := *o.state.Result
		copied.Sources = make([]grounding.Source, len(o.state.Result.Sources))
		copy(copied.Sources, o.state.Result.Sources)
		snap.State.Result = &copied
	}
	snap.ConfigError = o.state.Status == Failed && o.configErr
	return snap
}

func (o *Orchestrator) notify(snap Snapshot) {
	if o.OnStateUpdate != nil {
		o.OnStateUpdate(snap)
	}
}

func failureMessage(err error) string {
	if msg := grounding.Message(err); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
