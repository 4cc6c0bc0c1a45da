// Package store implements the SQLite-backed PersistentStore: one file per
// agent holding short-term memory, the secrets vault, scheduled jobs,
// webhooks, MCP servers, API tokens, and the full orchestrator job/task/
// event/template/config tables, plus a single shared swarm-memory file.
//
// Every exported method acquires Store.mu, performs exactly one statement
// (or one short read-modify-write sequence), and releases the lock before
// returning — per spec §5, hold durations must stay short enough that a
// caller can safely chain "look up store -> write -> perform I/O or an LLM
// call" without deadlocking.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mattsolo1/moxxy/internal/logging"
)

var log = logging.New("store")

const schema = `
CREATE TABLE IF NOT EXISTS short_term_memory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_stm_session ON short_term_memory(session_id, id);

CREATE TABLE IF NOT EXISTS global_docs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	agent_source TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scheduled_jobs (
	name TEXT PRIMARY KEY,
	cron TEXT NOT NULL,
	prompt TEXT NOT NULL,
	source TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mcp_servers (
	name TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	args TEXT NOT NULL,
	env TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS webhooks (
	name TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	secret TEXT NOT NULL,
	prompt_template TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS api_tokens (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	token_hash TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS secrets_vault (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orchestrator_jobs (
	job_id TEXT PRIMARY KEY,
	agent_name TEXT NOT NULL,
	status TEXT NOT NULL,
	prompt TEXT NOT NULL,
	worker_mode TEXT NOT NULL,
	summary TEXT,
	error TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS orchestrator_worker_runs (
	worker_run_id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL,
	worker_agent TEXT NOT NULL,
	worker_mode TEXT NOT NULL,
	task_prompt TEXT NOT NULL,
	status TEXT NOT NULL,
	attempt INTEGER NOT NULL DEFAULT 1,
	started_at DATETIME,
	finished_at DATETIME,
	output TEXT,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_worker_runs_job ON orchestrator_worker_runs(job_id);

CREATE TABLE IF NOT EXISTS orchestrator_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload_json TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_job ON orchestrator_events(job_id, id);

CREATE TABLE IF NOT EXISTS orchestrator_tasks (
	task_id TEXT NOT NULL,
	job_id TEXT NOT NULL,
	role TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	context_json TEXT NOT NULL,
	depends_on_json TEXT NOT NULL,
	status TEXT NOT NULL,
	worker_agent TEXT,
	output TEXT,
	error TEXT,
	seq INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (job_id, task_id)
);

CREATE TABLE IF NOT EXISTS orchestrator_templates (
	template_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	default_worker_mode TEXT,
	default_max_parallelism INTEGER,
	default_retry_limit INTEGER,
	default_failure_policy TEXT,
	default_merge_policy TEXT,
	spawn_profiles_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS orchestrator_config (
	agent_name TEXT PRIMARY KEY,
	default_template_id TEXT,
	default_worker_mode TEXT NOT NULL,
	default_max_parallelism INTEGER,
	default_retry_limit INTEGER NOT NULL,
	default_failure_policy TEXT NOT NULL,
	default_merge_policy TEXT NOT NULL,
	parallelism_warn_threshold INTEGER NOT NULL
);
`

// Store wraps one agent's (or the shared swarm's) SQLite connection behind
// a single exclusive mutex. Per spec §5, all mutation and read paths must
// clone the *Store out of a Registry under a brief registry lock, then
// operate on it without holding the registry lock.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open creates (if needed) and migrates the SQLite file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // one exclusive connection; mu above serializes callers anyway
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenMemory opens an in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	return Open("file::memory:?cache=shared")
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the filesystem path this store was opened against.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying connection for packages, such as vault, that
// guard their own tables on the same per-agent database file.
func (s *Store) DB() *sql.DB {
	return s.db
}
