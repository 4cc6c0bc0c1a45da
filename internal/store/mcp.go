package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// McpServer is one registered Model Context Protocol server an agent can
// attach tool calls to.
type McpServer struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

// UpsertMcpServer inserts or replaces an MCP server registration by name.
func (s *Store) UpsertMcpServer(m McpServer) error {
	argsJSON, err := json.Marshal(m.Args)
	if err != nil {
		return fmt.Errorf("marshal mcp args: %w", err)
	}
	envJSON, err := json.Marshal(m.Env)
	if err != nil {
		return fmt.Errorf("marshal mcp env: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO mcp_servers (name, command, args, env) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET command = excluded.command, args = excluded.args, env = excluded.env`,
		m.Name, m.Command, string(argsJSON), string(envJSON),
	)
	if err != nil {
		return fmt.Errorf("upsert mcp server: %w", err)
	}
	return nil
}

func scanMcpServer(row interface {
	Scan(dest ...any) error
}) (McpServer, error) {
	var m McpServer
	var argsJSON, envJSON string
	if err := row.Scan(&m.Name, &m.Command, &argsJSON, &envJSON); err != nil {
		return McpServer{}, err
	}
	if err := json.Unmarshal([]byte(argsJSON), &m.Args); err != nil {
		return McpServer{}, fmt.Errorf("unmarshal mcp args: %w", err)
	}
	if err := json.Unmarshal([]byte(envJSON), &m.Env); err != nil {
		return McpServer{}, fmt.Errorf("unmarshal mcp env: %w", err)
	}
	return m, nil
}

// GetMcpServer looks up an MCP server by name.
func (s *Store) GetMcpServer(name string) (McpServer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT name, command, args, env FROM mcp_servers WHERE name = ?`, name)
	m, err := scanMcpServer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return McpServer{}, fmt.Errorf("%w: mcp server %s", merr.ErrNotFound, name)
		}
		return McpServer{}, fmt.Errorf("get mcp server: %w", err)
	}
	return m, nil
}

// ListMcpServers returns every registered MCP server, ordered by name.
func (s *Store) ListMcpServers() ([]McpServer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name, command, args, env FROM mcp_servers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list mcp servers: %w", err)
	}
	defer rows.Close()

	var out []McpServer
	for rows.Next() {
		m, err := scanMcpServer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mcp server row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMcpServer removes an MCP server registration by name.
func (s *Store) DeleteMcpServer(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM mcp_servers WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete mcp server: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: mcp server %s", merr.ErrNotFound, name)
	}
	return nil
}
