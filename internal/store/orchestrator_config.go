package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/worker"
)

// SaveAgentConfig persists agentName's worker.AgentConfig.
func (s *Store) SaveAgentConfig(agentName string, cfg worker.AgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO orchestrator_config
		 (agent_name, default_template_id, default_worker_mode, default_max_parallelism,
		  default_retry_limit, default_failure_policy, default_merge_policy, parallelism_warn_threshold)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(agent_name) DO UPDATE SET
		 	default_template_id = excluded.default_template_id,
		 	default_worker_mode = excluded.default_worker_mode,
		 	default_max_parallelism = excluded.default_max_parallelism,
		 	default_retry_limit = excluded.default_retry_limit,
		 	default_failure_policy = excluded.default_failure_policy,
		 	default_merge_policy = excluded.default_merge_policy,
		 	parallelism_warn_threshold = excluded.parallelism_warn_threshold`,
		agentName, nullableString(cfg.DefaultTemplateID), string(cfg.DefaultWorkerMode),
		nullableInt(cfg.DefaultMaxParallelism), cfg.DefaultRetryLimit,
		string(cfg.DefaultFailurePolicy), string(cfg.DefaultMergePolicy), cfg.ParallelismWarnThreshold,
	)
	if err != nil {
		return fmt.Errorf("save agent config: %w", err)
	}
	return nil
}

// GetAgentConfig loads agentName's worker.AgentConfig, falling back to
// worker.DefaultAgentConfig when no row exists yet.
func (s *Store) GetAgentConfig(agentName string) (worker.AgentConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg worker.AgentConfig
	var templateID sql.NullString
	var maxParallelism sql.NullInt64
	var mode, failurePolicy, mergePolicy string

	row := s.db.QueryRow(
		`SELECT default_template_id, default_worker_mode, default_max_parallelism,
		 	default_retry_limit, default_failure_policy, default_merge_policy, parallelism_warn_threshold
		 FROM orchestrator_config WHERE agent_name = ?`, agentName,
	)
	err := row.Scan(&templateID, &mode, &maxParallelism, &cfg.DefaultRetryLimit,
		&failurePolicy, &mergePolicy, &cfg.ParallelismWarnThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return worker.DefaultAgentConfig(), nil
	}
	if err != nil {
		return worker.AgentConfig{}, fmt.Errorf("get agent config: %w", err)
	}

	cfg.DefaultTemplateID = templateID.String
	cfg.DefaultWorkerMode = worker.Mode(mode)
	cfg.DefaultFailurePolicy = worker.FailurePolicy(failurePolicy)
	cfg.DefaultMergePolicy = worker.MergePolicy(mergePolicy)
	if maxParallelism.Valid {
		v := int(maxParallelism.Int64)
		cfg.DefaultMaxParallelism = &v
	}
	return cfg, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
