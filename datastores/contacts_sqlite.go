package datastores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const contactsSchema = `CREATE TABLE IF NOT EXISTS contacts (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL UNIQUE,
	phones   TEXT NOT NULL DEFAULT '[]',
	birthday TEXT NOT NULL DEFAULT ''
)`

// ContactsSQLite implements [ContactsStore] on top of a SQLite database.
// Insertion order follows the seq column, which an upsert leaves untouched.
type ContactsSQLite struct {
	db *sql.DB
}

var _ ContactsStore = (*ContactsSQLite)(nil)

// OpenContactsSQLite opens the database at path and creates the schema if needed.
func OpenContactsSQLite(path string) (*ContactsSQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(contactsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &ContactsSQLite{db: db}, nil
}

func (s *ContactsSQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *ContactsSQLite) Add(ctx context.Context, c *Contact) error {
	if err := ValidateName(c.Name).Err(); err != nil {
		return err
	}
	phones, err := json.Marshal(nonNil(c.Phones))
	if err != nil {
		return fmt.Errorf("encode phones: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (name, phones, birthday) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET phones = excluded.phones, birthday = excluded.birthday`,
		c.Name, string(phones), formatBirthday(c.Birthday),
	)
	if err != nil {
		return fmt.Errorf("add contact: %w", err)
	}
	return nil
}

func (s *ContactsSQLite) Get(ctx context.Context, name string) (*Contact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, phones, birthday FROM contacts WHERE name = ?`, name)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (s *ContactsSQLite) All(ctx context.Context) ([]*Contact, error) {
	return s.query(ctx, `SELECT name, phones, birthday FROM contacts ORDER BY seq`)
}

func (s *ContactsSQLite) List(ctx context.Context, offset, length int) ([]*Contact, error) {
	return s.query(ctx, `SELECT name, phones, birthday FROM contacts ORDER BY seq LIMIT ? OFFSET ?`,
		max(length, 0), max(offset, 0))
}

// Search filters in Go so that matching stays identical to [ContactsInmem].
func (s *ContactsSQLite) Search(ctx context.Context, query string) ([]*Contact, error) {
	contacts, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return filter(contacts, query), nil
}

func (s *ContactsSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

func (s *ContactsSQLite) query(ctx context.Context, query string, args ...any) ([]*Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("list contacts: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func scanContact(row interface{ Scan(...any) error }) (*Contact, error) {
	var (
		c                Contact
		phones, birthday string
	)
	if err := row.Scan(&c.Name, &phones, &birthday); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(phones), &c.Phones); err != nil {
		return nil, fmt.Errorf("decode phones of %q: %w", c.Name, err)
	}
	if birthday != "" {
		var err error
		if c.Birthday, err = time.Parse(time.DateOnly, birthday); err != nil {
			return nil, fmt.Errorf("decode birthday of %q: %w", c.Name, err)
		}
	}
	return &c, nil
}

func formatBirthday(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func nonNil(phones []string) []string {
	if phones == nil {
		return []string{}
	}
	return phones
}
