package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stylusnotes/internal/domain"
)

// StylusNoteStore implements domain.StylusNoteStore on any of the SQL drivers.
type StylusNoteStore struct {
	db *DB
}

func NewStylusNoteStore(db *DB) *StylusNoteStore {
	return &StylusNoteStore{db: db}
}

const noteColumns = `id, title, image_path, folder, tags_json, pinned, width, height, created_at, updated_at`

func (s *StylusNoteStore) CreateNote(ctx context.Context, n *domain.StylusNote) error {
	n.Normalize()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.Conn().ExecContext(ctx, s.db.rebind(
		`INSERT INTO stylus_notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		n.ID, n.Title, n.ImagePath, n.Folder, string(tags), boolInt(n.Pinned), n.Width, n.Height, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stylus note: %w", err)
	}
	return nil
}

func (s *StylusNoteStore) GetNote(ctx context.Context, id string) (*domain.StylusNote, error) {
	row := s.db.Conn().QueryRowContext(ctx, s.db.rebind(
		`SELECT `+noteColumns+` FROM stylus_notes WHERE id = ?`), id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stylus note: %w", err)
	}
	return n, nil
}

func (s *StylusNoteStore) ListNotes(ctx context.Context, folder string) ([]domain.StylusNote, error) {
	query := `SELECT ` + noteColumns + ` FROM stylus_notes`
	var args []any
	if folder != "" {
		query += ` WHERE folder = ?`
		args = append(args, folder)
	}
	query += ` ORDER BY pinned DESC, created_at DESC`

	rows, err := s.db.Conn().QueryContext(ctx, s.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list stylus notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.StylusNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stylus note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *StylusNoteStore) UpdateNote(ctx context.Context, n *domain.StylusNote) error {
	n.Normalize()
	n.UpdatedAt = time.Now().UTC()
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.Conn().ExecContext(ctx, s.db.rebind(
		`UPDATE stylus_notes SET title = ?, image_path = ?, folder = ?, tags_json = ?, pinned = ?, width = ?, height = ?, updated_at = ? WHERE id = ?`),
		n.Title, n.ImagePath, n.Folder, string(tags), boolInt(n.Pinned), n.Width, n.Height, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update stylus note: %w", err)
	}
	return requireAffected(res)
}

func (s *StylusNoteStore) DeleteNote(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, s.db.rebind(`DELETE FROM stylus_notes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete stylus note: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (*domain.StylusNote, error) {
	var (
		n      domain.StylusNote
		tags   string
		pinned int
	)
	if err := sc.Scan(&n.ID, &n.Title, &n.ImagePath, &n.Folder, &tags, &pinned, &n.Width, &n.Height, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	n.Pinned = pinned != 0
	n.Normalize()
	return &n, nil
}

// requireAffected maps a zero-row update or delete to ErrNoteNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
