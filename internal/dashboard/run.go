package dashboard

import (
	"context"
	"fmt"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// Progress is the coarse status of the submission in flight.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

var (
	progressSending    = Progress{Percent: 10, Message: "파일 분석 완료, 서버로 전송 중...", Active: true}
	progressSimulating = Progress{Percent: 50, Message: "시뮬레이션 실행 중...", Active: true}
	progressProcessing = Progress{Percent: 90, Message: "데이터 처리 중...", Active: true}
	progressDone       = Progress{Percent: 100, Message: "완료!"}
)

const defaultMaxTurns = 5

// SimulationError is a failed submission: the backend was unreachable,
// answered with an error status, or sent an unreadable body.
type SimulationError struct {
	Err error
}

func (e *SimulationError) Error() string { return "run simulation: " + e.Err.Error() }

func (e *SimulationError) Unwrap() error { return e.Err }

// RunParams are the user's knobs for one simulation. Zero values take defaults.
type RunParams struct {
	MaxTurns   int `validate:"gte=0,lte=50"`
	MaxSamples int `validate:"gte=0,lte=1000"`
}

func (s *Service) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// cacheInsight keeps the aggregates of the run that was just stored.
func (s *Service) cacheInsight(runID string, ins aggregator.Insight) {
	s.mu.Lock()
	s.insight = runInsight{runID: runID, insight: ins}
	s.mu.Unlock()
}

// insightFor returns the aggregates of snap, computing them if the cache holds another run.
func (s *Service) insightFor(runID string, conversations []types.ConversationRecord) aggregator.Insight {
	s.mu.RLock()
	cached := s.insight
	s.mu.RUnlock()
	if cached.runID == runID {
		return cached.insight
	}
	ins := aggregator.Aggregate(conversations)
	s.cacheInsight(runID, ins)
	return ins
}

func (s *Service) setProgress(p Progress) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// Run submits a scenario file and, on success, replaces the current result.
// On any failure the progress is cleared and the current result is kept.
func (s *Service) Run(ctx context.Context, up transport.Upload, p RunParams) (string, error) {
	log := s.log.WithField("file", up.Filename)

	if err := transport.AdmitFile(up.Filename); err != nil {
		log.Warn("upload rejected")
		return "", err
	}
	if err := s.validate.Struct(p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.MaxTurns == 0 {
		p.MaxTurns = defaultMaxTurns
	}
	if p.MaxSamples == 0 {
		p.MaxSamples = transport.DefaultMaxSamples
	}

	s.setProgress(progressSending)
	accepted := transport.OnAccepted(ctx, func() { s.setProgress(progressSimulating) })
	res, err := s.transport.Submit(accepted, up, p.MaxTurns, p.MaxSamples)
	if err != nil {
		s.setProgress(Progress{})
		log.WithField("error", err.Error()).Error("simulation failed")
		return "", &SimulationError{Err: err}
	}

	s.setProgress(progressProcessing)
	ins := aggregator.Aggregate(res.Conversations)
	id := s.store.Set(res)
	s.cacheInsight(id, ins)
	s.setProgress(progressDone)

	log.WithField("run_id", id).
		WithField("total_samples", res.Summary.TotalSamples).
		WithField("success_rate", res.Summary.SuccessRate).
		Info("simulation completed")
	return id, nil
}
