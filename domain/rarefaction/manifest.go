package rarefaction

import (
	"fmt"
	"time"

	"rarefy/domain/core"
)

// RunFingerprint captures every input that determines a run's output, so a
// stored run can be replayed and byte-compared.
type RunFingerprint struct {
	TableHash   core.TableHash `json:"table_hash"`
	TargetDepth int64          `json:"target_depth"`
	Iterations  int            `json:"iterations"`
	Seed        int64          `json:"seed"`
	Metric      Metric         `json:"metric"`
	Mode        Mode           `json:"mode"`
	CodeVersion string         `json:"code_version"`
	Fingerprint core.Hash      `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters.
// TargetDepth here is the resolved depth, not the configured zero-default.
func NewRunFingerprint(tableHash core.TableHash, depth int64, cfg Config, codeVersion string) RunFingerprint {
	data := fmt.Sprintf("table:%s|depth:%d|iterations:%d|seed:%d|metric:%s|mode:%s|code:%s",
		tableHash, depth, cfg.Iterations, cfg.Seed, cfg.Metric, cfg.EffectiveMode(), codeVersion)

	return RunFingerprint{
		TableHash:   tableHash,
		TargetDepth: depth,
		Iterations:  cfg.Iterations,
		Seed:        cfg.Seed,
		Metric:      cfg.Metric,
		Mode:        cfg.EffectiveMode(),
		CodeVersion: codeVersion,
		Fingerprint: core.NewHash([]byte(data)),
	}
}

// Run is a completed rarefaction run as persisted by a run repository.
type Run struct {
	ID          core.RunID     `json:"id"`
	Fingerprint RunFingerprint `json:"fingerprint"`
	Config      Config         `json:"config"`
	Result      *Result        `json:"result"`
	CreatedAt   time.Time      `json:"created_at"`
}
