package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/resolveit/complaints-api/internal/models"
	"github.com/resolveit/complaints-api/pkg/config"
	appErrors "github.com/resolveit/complaints-api/pkg/errors"
)

const escalationStatsCacheKey = "escalation:stats"

// candidateTimeout bounds how long a single candidate escalation may take so
// one slow row cannot stall the whole sweep.
const candidateTimeout = 10 * time.Second

type escalationComplaintStore interface {
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	ListSweepCandidates(ctx context.Context) ([]models.Complaint, error)
	CountEscalated(ctx context.Context) (int64, error)
	CountEscalatedSince(ctx context.Context, since time.Time) (int64, error)
}

type lifecycleApplier interface {
	Apply(ctx context.Context, c *models.Complaint, req TransitionRequest) error
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

// CandidateView pairs a complaint with the policy verdict that would apply
// to it right now. Used by the dry-run endpoint.
type CandidateView struct {
	Complaint models.Complaint          `json:"complaint"`
	Decision  models.EscalationDecision `json:"decision"`
}

// EscalationService owns the automatic escalation sweep. At most one sweep
// runs per process at any moment, whether started by the ticker or by an
// admin; the loser gets a SWEEP_IN_PROGRESS error rather than queueing.
type EscalationService struct {
	store     escalationComplaintStore
	lifecycle lifecycleApplier
	cache     statsCache
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time

	sweeping atomic.Bool

	mu  sync.RWMutex
	cfg config.EscalationConfig
}

// NewEscalationService wires the sweep engine.
func NewEscalationService(
	store escalationComplaintStore,
	lifecycle lifecycleApplier,
	cache statsCache,
	metrics *MetricsService,
	cfg config.EscalationConfig,
	logger *zap.Logger,
) *EscalationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationService{
		store:     store,
		lifecycle: lifecycle,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the periodic sweep loop until the context is cancelled. It is
// meant to be launched as a goroutine from main.
func (s *EscalationService) Start(ctx context.Context) {
	cfg := s.Config()
	if !cfg.Enabled {
		s.logger.Info("automatic escalation disabled, scheduler not started")
		return
	}

	interval := cfg.SchedulingInterval
	if interval <= 0 {
		interval = time.Hour
	}
	s.logger.Info("escalation scheduler started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("escalation scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.RunSweep(ctx, models.TriggerScheduled); err != nil {
				if errors.Is(err, appErrors.ErrSweepInProgress) {
					s.logger.Warn("scheduled sweep skipped, previous sweep still running")
					continue
				}
				s.logger.Error("scheduled sweep failed", zap.Error(err))
			}
		}
	}
}

// RunSweep takes a snapshot of candidate complaints, evaluates the policy
// against a single observation of the clock, and escalates every match
// through the state machine. Per-candidate failures are collected in the
// result and never abort the sweep. If another sweep is already running the
// call fails immediately with SWEEP_IN_PROGRESS.
func (s *EscalationService) RunSweep(ctx context.Context, trigger models.SweepTrigger) (*models.SweepResult, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return nil, appErrors.ErrSweepInProgress
	}
	defer s.sweeping.Store(false)

	cfg := s.Config()
	now := s.now()
	result := &models.SweepResult{Trigger: trigger, StartedAt: now}

	candidates, err := s.store.ListSweepCandidates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load sweep candidates")
	}
	result.Scanned = len(candidates)

	for i := range candidates {
		c := &candidates[i]
		decision := EvaluateEscalation(c, cfg, now)
		if !decision.IsCandidate {
			continue
		}
		if err := s.escalateCandidate(ctx, c, decision); err != nil {
			// Conflicts mean a human raced us on this row; the next sweep
			// re-evaluates it against fresh state.
			result.Errors = append(result.Errors, models.SweepError{
				ComplaintID: c.ID,
				Message:     err.Error(),
			})
			s.logger.Warn("candidate escalation failed",
				zap.String("complaint_id", c.ID),
				zap.String("reason", string(decision.Reason)),
				zap.Error(err))
			continue
		}
		result.Escalated++
		if s.metrics != nil {
			s.metrics.RecordEscalation(string(models.EscalationAutomated), string(decision.Reason))
		}
	}

	result.FinishedAt = s.now()
	if s.metrics != nil {
		s.metrics.RecordSweep(string(trigger), result.FinishedAt.Sub(result.StartedAt))
	}
	if result.Escalated > 0 {
		s.invalidateStats(ctx)
	}

	s.logger.Info("escalation sweep finished",
		zap.String("trigger", string(trigger)),
		zap.Int("scanned", result.Scanned),
		zap.Int("escalated", result.Escalated),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("took", result.FinishedAt.Sub(result.StartedAt)))
	return result, nil
}

func (s *EscalationService) escalateCandidate(ctx context.Context, c *models.Complaint, decision models.EscalationDecision) error {
	ctx, cancel := context.WithTimeout(ctx, candidateTimeout)
	defer cancel()

	return s.lifecycle.Apply(ctx, c, TransitionRequest{
		Transition: TransitionEscalate,
		Reason:     string(decision.Reason) + ": " + decision.Detail,
		Priority:   decision.Priority,
		Source:     models.EscalationAutomated,
		Comment:    "Automatically escalated: " + decision.Detail,
	})
}

// Candidates evaluates the policy without mutating anything. It shares no
// state with a running sweep and is safe to call at any time.
func (s *EscalationService) Candidates(ctx context.Context) ([]CandidateView, error) {
	cfg := s.Config()
	now := s.now()

	complaints, err := s.store.ListSweepCandidates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load sweep candidates")
	}

	views := make([]CandidateView, 0)
	for i := range complaints {
		decision := EvaluateEscalation(&complaints[i], cfg, now)
		if decision.IsCandidate {
			views = append(views, CandidateView{Complaint: complaints[i], Decision: decision})
		}
	}
	return views, nil
}

// Evaluate runs the policy against a single complaint without mutating it,
// so admins can see why a complaint would or would not escalate.
func (s *EscalationService) Evaluate(ctx context.Context, id string) (*CandidateView, error) {
	complaint, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	decision := EvaluateEscalation(complaint, s.Config(), s.now())
	return &CandidateView{Complaint: *complaint, Decision: decision}, nil
}

// Stats reports aggregate escalation counters, cached briefly to keep the
// dashboard cheap.
func (s *EscalationService) Stats(ctx context.Context) (*models.EscalationStats, error) {
	if s.cache != nil {
		var cached models.EscalationStats
		if err := s.cache.Get(ctx, escalationStatsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	now := s.now()
	total, err := s.store.CountEscalated(ctx)
	if err != nil {
		return nil, err
	}
	last24h, err := s.store.CountEscalatedSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	lastWeek, err := s.store.CountEscalatedSince(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}

	pending, err := s.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.EscalationStats{
		TotalEscalated:       total,
		EscalatedLast24Hours: last24h,
		EscalatedLastWeek:    lastWeek,
		PendingEscalation:    len(pending),
	}

	if s.cache != nil {
		ttl := s.Config().StatsCacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		_ = s.cache.Set(ctx, escalationStatsCacheKey, stats, ttl)
	}
	return stats, nil
}

// Config returns a snapshot of the current escalation thresholds.
func (s *EscalationService) Config() config.EscalationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig replaces the thresholds at runtime. A sweep already in flight
// keeps the snapshot it started with; the next sweep observes the new values.
func (s *EscalationService) UpdateConfig(cfg config.EscalationConfig) config.EscalationConfig {
	s.mu.Lock()
	if cfg.SchedulingInterval <= 0 {
		cfg.SchedulingInterval = s.cfg.SchedulingInterval
	}
	if cfg.StatsCacheTTL <= 0 {
		cfg.StatsCacheTTL = s.cfg.StatsCacheTTL
	}
	s.cfg = cfg
	s.mu.Unlock()

	s.logger.Info("escalation config updated",
		zap.Int("unassigned_threshold_hours", cfg.UnassignedThresholdHours),
		zap.Int("stuck_threshold_hours", cfg.StuckThresholdHours),
		zap.Bool("enabled", cfg.Enabled))
	return cfg
}

// Sweeping reports whether a sweep is currently running.
func (s *EscalationService) Sweeping() bool {
	return s.sweeping.Load()
}

func (s *EscalationService) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, escalationStatsCacheKey)
	}
}
