package store

import "fmt"

// stmContentMaxChars is the untruncated character budget for one short-term
// memory write. Content longer than this is hard-truncated to this many
// characters and has truncationSentinel appended.
const stmContentMaxChars = 2000

// truncationSentinel is appended verbatim to oversized STM content. The
// resulting stored length is stmContentMaxChars + len(truncationSentinel),
// i.e. 2015, not 2013 — see DESIGN.md's Open Question entry for short_term
// truncation, which resolves an arithmetic mismatch in the distilled spec.
const truncationSentinel = "... [truncated]"

// StmEntry is one row of an agent's short-term memory log.
type StmEntry struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	Timestamp string
}

// truncateStmContent applies the hard truncation-at-write invariant: content
// at or under the budget passes through unchanged; content over budget is
// cut to stmContentMaxChars runes and has the sentinel appended, regardless
// of how far over budget it was.
func truncateStmContent(content string) string {
	runes := []rune(content)
	if len(runes) <= stmContentMaxChars {
		return content
	}
	return string(runes[:stmContentMaxChars]) + truncationSentinel
}

// AppendStm writes one short-term memory entry for sessionID, truncating
// content that exceeds stmContentMaxChars before it ever reaches disk.
func (s *Store) AppendStm(sessionID, role, content string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := truncateStmContent(content)
	res, err := s.db.Exec(
		`INSERT INTO short_term_memory (session_id, role, content) VALUES (?, ?, ?)`,
		sessionID, role, stored,
	)
	if err != nil {
		return 0, fmt.Errorf("append stm: %w", err)
	}
	return res.LastInsertId()
}

// RecentStm returns up to limit most recent entries for sessionID, oldest
// first, mirroring how a provider wire adapter replays conversation history.
func (s *Store) RecentStm(sessionID string, limit int) ([]StmEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, session_id, role, content, timestamp FROM short_term_memory
		 WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent stm: %w", err)
	}
	defer rows.Close()

	var out []StmEntry
	for rows.Next() {
		var e StmEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stm row: %w", err)
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

// ClearStm deletes every entry for sessionID.
func (s *Store) ClearStm(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM short_term_memory WHERE session_id = ?`, sessionID)
	return err
}
