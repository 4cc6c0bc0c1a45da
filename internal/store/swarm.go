package store

import (
	"fmt"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// swarmContentMaxChars caps one swarm-memory write. Unlike short-term
// memory, an oversized write here is rejected outright rather than
// truncated: the swarm log is append-only and shared across every agent, so
// silently mutating a caller's content would be surprising at a distance.
const swarmContentMaxChars = 2000

// SwarmEntry is one row of the global, cross-agent append-only log.
type SwarmEntry struct {
	ID          int64
	AgentSource string
	Content     string
	Timestamp   string
}

// AppendSwarm records one global_docs entry, returning merr.ErrValidation
// when content exceeds swarmContentMaxChars.
func (s *Store) AppendSwarm(agentSource, content string) (int64, error) {
	if len([]rune(content)) > swarmContentMaxChars {
		return 0, fmt.Errorf("%w: swarm content exceeds %d characters", merr.ErrValidation, swarmContentMaxChars)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO global_docs (agent_source, content) VALUES (?, ?)`,
		agentSource, content,
	)
	if err != nil {
		return 0, fmt.Errorf("append swarm: %w", err)
	}
	return res.LastInsertId()
}

// RecentSwarm returns up to limit most recent swarm entries, oldest first.
func (s *Store) RecentSwarm(limit int) ([]SwarmEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, agent_source, content, timestamp FROM global_docs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent swarm: %w", err)
	}
	defer rows.Close()

	var out []SwarmEntry
	for rows.Next() {
		var e SwarmEntry
		if err := rows.Scan(&e.ID, &e.AgentSource, &e.Content, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan swarm row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
