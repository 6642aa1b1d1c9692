package app

import (
	"context"
	"time"

	"rarefy/adapters/stats/engine"
	"rarefy/domain/core"
	"rarefy/domain/count"
	"rarefy/domain/rarefaction"
	"rarefy/internal"
	apperrors "rarefy/internal/errors"
	"rarefy/ports"
)

// codeVersion feeds the run fingerprint so behavioral changes invalidate
// stored fingerprints.
const codeVersion = "v0.1.0"

// RarefactionService executes rarefaction runs and optionally persists them
type RarefactionService struct {
	engine *engine.Engine
	runs   ports.RunRepository // nil means no persistence
	logger *internal.Logger
}

// RunRequest defines the inputs for one deterministic rarefaction run
type RunRequest struct {
	Table  *count.Table
	Config rarefaction.Config
	RunID  core.RunID // optional, generated when empty
}

// RunOutcome contains the complete output of a rarefaction run
type RunOutcome struct {
	RunID       core.RunID                 `json:"run_id"`
	Fingerprint rarefaction.RunFingerprint `json:"fingerprint"`
	Result      *rarefaction.Result        `json:"result"`
	RuntimeMs   int64                      `json:"runtime_ms"`
}

// NewRarefactionService creates a rarefaction service. runs may be nil when
// persistence is not configured.
func NewRarefactionService(eng *engine.Engine, runs ports.RunRepository, logger *internal.Logger) *RarefactionService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RarefactionService{engine: eng, runs: runs, logger: logger}
}

// Execute runs rarefaction on the request's table and stores the completed
// run when a repository is configured.
func (s *RarefactionService) Execute(ctx context.Context, req RunRequest) (*RunOutcome, error) {
	startTime := time.Now()

	if req.Table == nil {
		return nil, apperrors.TableInvalid("run request has no count table")
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	result, err := s.engine.Run(ctx, req.Table, req.Config)
	if err != nil {
		return nil, err
	}

	if len(result.Excluded) > 0 {
		s.logger.Warn("run %s: %d sample(s) below depth %d excluded from every draw: %v",
			runID, len(result.Excluded), result.Depth, result.Excluded)
	}

	fingerprint := rarefaction.NewRunFingerprint(req.Table.Fingerprint(), result.Depth, req.Config, codeVersion)

	outcome := &RunOutcome{
		RunID:       runID,
		Fingerprint: fingerprint,
		Result:      result,
		RuntimeMs:   time.Since(startTime).Milliseconds(),
	}

	if s.runs != nil {
		run := &rarefaction.Run{
			ID:          runID,
			Fingerprint: fingerprint,
			Config:      req.Config,
			Result:      result,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.runs.Save(ctx, run); err != nil {
			return nil, apperrors.Wrap(err, "persisting completed run")
		}
		s.logger.Info("run %s persisted (metric=%s depth=%d iterations=%d)",
			runID, result.Metric, result.Depth, result.Iterations)
	}

	return outcome, nil
}

// GetRun fetches a stored run by identifier.
func (s *RarefactionService) GetRun(ctx context.Context, id core.RunID) (*rarefaction.Run, error) {
	if s.runs == nil {
		return nil, apperrors.NotFound("run repository")
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns the most recent stored runs, newest first.
func (s *RarefactionService) ListRuns(ctx context.Context, limit int) ([]*rarefaction.Run, error) {
	if s.runs == nil {
		return nil, apperrors.NotFound("run repository")
	}
	return s.runs.List(ctx, limit)
}
