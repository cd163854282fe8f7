package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/2021147588/boheommian-rhapsody/internal/aggregator"
	"github.com/2021147588/boheommian-rhapsody/internal/dataset"
	"github.com/2021147588/boheommian-rhapsody/internal/logger"
	"github.com/2021147588/boheommian-rhapsody/internal/prefs"
	"github.com/2021147588/boheommian-rhapsody/internal/presentation"
	"github.com/2021147588/boheommian-rhapsody/internal/session"
	"github.com/2021147588/boheommian-rhapsody/internal/transport"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

var (
	ErrNoResults            = errors.New("no simulation results loaded")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidParams        = errors.New("invalid simulation parameters")
)

// Transport is the simulation backend as seen by the dashboard.
type Transport interface {
	Submit(ctx context.Context, up transport.Upload, maxTurns, maxSamples int) (types.SimulationResult, error)
	FetchReport(ctx context.Context, name string) (types.FinalReport, error)
	GenerateReport(ctx context.Context, conv types.ConversationRecord) (transport.Document, error)
}

type Preferences interface {
	Theme() (prefs.Theme, error)
	SetTheme(prefs.Theme) error
	Toggle() (prefs.Theme, error)
}

const (
	defaultReportCacheTTL  = 10 * time.Minute
	defaultReportCacheSize = 128
)

type Service struct {
	transport Transport
	store     *session.Store
	prefs     Preferences
	adapter   *presentation.Adapter
	validate  *validator.Validate
	log       *logger.Logger

	cacheTTL time.Duration
	reports  *expirable.LRU[string, types.FinalReport]

	mu       sync.RWMutex
	progress Progress
	insight  runInsight
}

type runInsight struct {
	runID   string
	insight aggregator.Insight
}

type Option func(*Service)

// WithReportCacheTTL bounds how long a fetched report is reused. Zero disables expiry.
func WithReportCacheTTL(d time.Duration) Option {
	return func(s *Service) { s.cacheTTL = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.Component("dashboard") }
}

// WithClock sets the clock used for ages and document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.adapter = &presentation.Adapter{Now: now} }
}

func New(t Transport, store *session.Store, p Preferences, opts ...Option) *Service {
	s := &Service{
		transport: t,
		store:     store,
		prefs:     p,
		adapter:   presentation.New(),
		validate:  validator.New(),
		log:       logger.New().Component("dashboard"),
		cacheTTL:  defaultReportCacheTTL,
	}
	for _, o := range opts {
		o(s)
	}
	s.reports = expirable.NewLRU[string, types.FinalReport](defaultReportCacheSize, nil, s.cacheTTL)
	return s
}

// Seed installs a previously saved result as the current one.
func (s *Service) Seed(res types.SimulationResult) string {
	id := s.store.Set(res)
	s.log.WithField("run_id", id).WithField("conversations", len(res.Conversations)).Info("results seeded")
	return id
}

// Snapshot is the current run, or ErrNoResults.
func (s *Service) Snapshot() (session.Snapshot, error) {
	snap, ok := s.store.Snapshot()
	if !ok {
		return session.Snapshot{}, ErrNoResults
	}
	return snap, nil
}

func (s *Service) conversation(idx int) (session.Snapshot, types.ConversationRecord, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return snap, types.ConversationRecord{}, err
	}
	if idx < 0 || idx >= len(snap.Result.Conversations) {
		return snap, types.ConversationRecord{}, fmt.Errorf("%w: index %d", ErrConversationNotFound, idx)
	}
	return snap, snap.Result.Conversations[idx], nil
}

// WriteResults streams the current result as JSON.
func (s *Service) WriteResults(w io.Writer) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	return dataset.Write(w, snap.Result)
}

func (s *Service) Theme() (prefs.Theme, error) { return s.prefs.Theme() }

func (s *Service) SetTheme(t prefs.Theme) error { return s.prefs.SetTheme(t) }

func (s *Service) ToggleTheme() (prefs.Theme, error) { return s.prefs.Toggle() }
