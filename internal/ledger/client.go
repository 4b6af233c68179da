package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Client is a customer record.
type Client struct {
	ID        int64
	Name      string
	Contacts  string
	Notes     string
	CreatedAt time.Time
}

// CreateClient inserts a new client and returns its id.
// Atomic per call: on error no partial record is persisted.
func (l *Ledger) CreateClient(ctx context.Context, name, contacts, notes string) (int64, error) {
	result, err := l.db.ExecContext(ctx, `
		INSERT INTO clients (name, name_norm, contacts, notes)
		VALUES (?, ?, ?, ?)
	`, name, NormalizeName(name), contacts, notes)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create client: last insert id: %w", err)
	}
	return id, nil
}

// FindClient resolves a reference to a client by numeric id or exact
// (normalized) name. Returns ErrNotFound on zero matches and
// ErrAmbiguousName when a name matches more than one client.
func (l *Ledger) FindClient(ctx context.Context, ref string) (*Client, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return l.clientByID(ctx, id)
	}
	return l.clientByName(ctx, ref)
}

func (l *Ledger) clientByID(ctx context.Context, id int64) (*Client, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, name, contacts, notes, created_at
		FROM clients WHERE id = ?
	`, id)

	client, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("client by id %d: %w", id, err)
	}
	return client, nil
}

func (l *Ledger) clientByName(ctx context.Context, name string) (*Client, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, contacts, notes, created_at
		FROM clients WHERE name_norm = ?
		ORDER BY id
		LIMIT 2
	`, NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("client by name: %w", err)
	}
	defer rows.Close()

	var matches []*Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("client by name: %w", err)
		}
		matches = append(matches, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("client by name: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousName
	}
}

// ListClients returns all clients ordered by id.
func (l *Ledger) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, contacts, notes, created_at
		FROM clients ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// ClientNames returns all client names ordered by id, for prompt
// suggestions.
func (l *Ledger) ClientNames(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT name FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("client names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("client names: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("client names: %w", err)
	}
	return names, nil
}

// scanRow is satisfied by both *sql.Row and *sql.Rows.
type scanRow interface {
	Scan(dest ...any) error
}

func scanClient(row scanRow) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Contacts, &c.Notes, &c.CreatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return &c, nil
}
