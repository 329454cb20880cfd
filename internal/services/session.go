package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
)

// ErrSuperseded is returned to a submission that was replaced by a newer
// one before its response arrived. The stale response is discarded.
var ErrSuperseded = errors.New("submission superseded by a newer one")

// Session serializes the submissions of one user: only the latest one
// counts. Submitting again cancels the in-flight call of the previous
// submission, and a response that still arrives for it is dropped before
// reconciliation.
type Session struct {
	orchestrator *PredictionOrchestrator

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc
}

func NewSession(o *PredictionOrchestrator) *Session {
	return &Session{orchestrator: o}
}

// Submission is the answer to one Submit call.
type Submission struct {
	ID      string
	Outcome *PredictionOutcome
}

// Pending is a registered submission whose result has not been awaited.
type Pending struct {
	ID string

	session *Session
	ctx     context.Context
	cancel  context.CancelFunc
	req     prediction.Request
}

// Submit validates in and runs it, superseding any earlier submission.
// Validation errors are returned without disturbing the in-flight one.
func (s *Session) Submit(ctx context.Context, in models.PredictRequest) (*Submission, error) {
	p, err := s.Start(ctx, in)
	if err != nil {
		return nil, err
	}
	return p.Wait()
}

// Start validates in and makes it the current submission, cancelling the
// previous one. The call itself runs in Wait, so callers that must keep
// submission order register with Start and wait elsewhere.
func (s *Session) Start(ctx context.Context, in models.PredictRequest) (*Pending, error) {
	req, err := prediction.BuildRequest(in.Ticker, in.Period, in.InitialBalance, in.FutureDays)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(WithRequestID(ctx, id))

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.current = id
	s.cancel = cancel
	s.mu.Unlock()

	return &Pending{ID: id, session: s, ctx: ctx, cancel: cancel, req: req}, nil
}

// Wait runs the submission. It returns ErrSuperseded when a newer
// submission was started before the result was ready.
func (p *Pending) Wait() (*Submission, error) {
	s := p.session
	defer s.finish(p.ID, p.cancel)

	outcome, err := s.orchestrator.predict(p.ctx, p.req, func() bool { return s.isCurrent(p.ID) })
	if err != nil {
		if !s.isCurrent(p.ID) {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	return &Submission{ID: p.ID, Outcome: outcome}, nil
}

// Current returns the ID of the latest submission, if any.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel aborts the in-flight submission, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = ""
}

func (s *Session) isCurrent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == id
}

func (s *Session) finish(id string, cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == id {
		s.cancel = nil
	}
}
