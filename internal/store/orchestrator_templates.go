package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/worker"
)

// SaveTemplate persists a worker.Template, overwriting any row with the
// same TemplateID.
func (s *Store) SaveTemplate(t worker.Template) error {
	profilesJSON, err := json.Marshal(t.SpawnProfiles)
	if err != nil {
		return fmt.Errorf("marshal spawn profiles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO orchestrator_templates
		 (template_id, name, description, default_worker_mode, default_max_parallelism,
		  default_retry_limit, default_failure_policy, default_merge_policy, spawn_profiles_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(template_id) DO UPDATE SET
		 	name = excluded.name, description = excluded.description,
		 	default_worker_mode = excluded.default_worker_mode,
		 	default_max_parallelism = excluded.default_max_parallelism,
		 	default_retry_limit = excluded.default_retry_limit,
		 	default_failure_policy = excluded.default_failure_policy,
		 	default_merge_policy = excluded.default_merge_policy,
		 	spawn_profiles_json = excluded.spawn_profiles_json`,
		t.TemplateID, t.Name, t.Description,
		nullableMode(t.DefaultWorkerMode), nullableInt(t.DefaultMaxParallelism),
		nullableInt(t.DefaultRetryLimit), nullableFailurePolicy(t.DefaultFailurePolicy),
		nullableMergePolicy(t.DefaultMergePolicy), string(profilesJSON),
	)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// GetTemplate loads a worker.Template by id.
func (s *Store) GetTemplate(templateID string) (worker.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t worker.Template
	var mode, failurePolicy, mergePolicy sql.NullString
	var maxParallelism, retryLimit sql.NullInt64
	var profilesJSON string

	row := s.db.QueryRow(
		`SELECT template_id, name, description, default_worker_mode, default_max_parallelism,
		 	default_retry_limit, default_failure_policy, default_merge_policy, spawn_profiles_json
		 FROM orchestrator_templates WHERE template_id = ?`, templateID,
	)
	if err := row.Scan(&t.TemplateID, &t.Name, &t.Description, &mode, &maxParallelism,
		&retryLimit, &failurePolicy, &mergePolicy, &profilesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worker.Template{}, fmt.Errorf("%w: template %s", merr.ErrNotFound, templateID)
		}
		return worker.Template{}, fmt.Errorf("get template: %w", err)
	}

	if mode.Valid {
		m := worker.Mode(mode.String)
		t.DefaultWorkerMode = &m
	}
	if maxParallelism.Valid {
		v := int(maxParallelism.Int64)
		t.DefaultMaxParallelism = &v
	}
	if retryLimit.Valid {
		v := int(retryLimit.Int64)
		t.DefaultRetryLimit = &v
	}
	if failurePolicy.Valid {
		p := worker.FailurePolicy(failurePolicy.String)
		t.DefaultFailurePolicy = &p
	}
	if mergePolicy.Valid {
		p := worker.MergePolicy(mergePolicy.String)
		t.DefaultMergePolicy = &p
	}
	if err := json.Unmarshal([]byte(profilesJSON), &t.SpawnProfiles); err != nil {
		return worker.Template{}, fmt.Errorf("unmarshal spawn profiles: %w", err)
	}
	return t, nil
}

func nullableMode(m *worker.Mode) any {
	if m == nil {
		return nil
	}
	return string(*m)
}

func nullableFailurePolicy(p *worker.FailurePolicy) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func nullableMergePolicy(p *worker.MergePolicy) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
