// Package history records every bundle nlkit writes, so an operator can
// tell which configuration produced the files currently deployed.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/db"
)

// ErrNotFound is returned by Get when no generation has the given id.
var ErrNotFound = errors.New("generation not found")

// Entry is one recorded generation.
type Entry struct {
	ID        string
	CreatedAt time.Time
	BrandName string
	Features  bundle.Features
	OutputDir string
	Files     []string
	Digest    string
}

// Store provides access to the generations table.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Record stores a generation of b written to outputDir as files.
func (s *Store) Record(ctx context.Context, b *bundle.Bundle, outputDir string, files []string) (*Entry, error) {
	if files == nil {
		files = []string{}
	}
	e := Entry{
		ID:        uuid.New().String(),
		CreatedAt: s.now().UTC().Truncate(time.Second),
		BrandName: b.Brand.BrandName,
		Features:  b.Features,
		OutputDir: outputDir,
		Files:     files,
		Digest:    b.Digest(),
	}

	filesJSON, err := json.Marshal(e.Files)
	if err != nil {
		return nil, fmt.Errorf("marshalling file list: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generations (
			id, created_at, brand_name, email_provider, template,
			verification, gmail_detection, ai_content, warmup, auto_provision,
			output_dir, files, digest
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.CreatedAt.Format(time.DateTime),
		e.BrandName,
		string(e.Features.Provider),
		string(e.Features.Template),
		e.Features.Verification,
		e.Features.GmailDetection,
		e.Features.AIContent,
		e.Features.Warmup,
		e.Features.AutoProvision,
		e.OutputDir,
		string(filesJSON),
		e.Digest,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting generation: %w", err)
	}
	return &e, nil
}

// Get retrieves a single generation.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading generation %s: %w", id, err)
	}
	return e, nil
}

// List returns generations newest first. A non-positive limit returns all
// of them.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectColumns + " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

const selectColumns = `SELECT id, created_at, brand_name, email_provider, template,
	verification, gmail_detection, ai_content, warmup, auto_provision,
	output_dir, files, digest FROM generations`

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e                  Entry
		ts                 string
		provider, template string
		filesJSON          string
	)

	err := sc.Scan(
		&e.ID, &ts, &e.BrandName, &provider, &template,
		&e.Features.Verification, &e.Features.GmailDetection, &e.Features.AIContent,
		&e.Features.Warmup, &e.Features.AutoProvision,
		&e.OutputDir, &filesJSON, &e.Digest,
	)
	if err != nil {
		return nil, err
	}

	e.Features.Provider = config.EmailProvider(provider)
	e.Features.Template = config.Template(template)

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.CreatedAt = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.CreatedAt = t
	}

	if err := json.Unmarshal([]byte(filesJSON), &e.Files); err != nil {
		e.Files = nil
	}
	return &e, nil
}
