package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no saved filter has the given name.
var ErrNotFound = errors.New("saved filter not found")

// SavedFilterRepo handles saved_filters.
type SavedFilterRepo struct {
	db *sql.DB
}

func NewSavedFilterRepo(db *sql.DB) *SavedFilterRepo { return &SavedFilterRepo{db: db} }

const savedFilterColumns = `id, name, data, anno, mese, conto_id, tag_id, created_at, updated_at`

// Save inserts f or replaces the filter with the same name.
func (r *SavedFilterRepo) Save(ctx context.Context, f SavedFilter) (SavedFilter, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return SavedFilter{}, fmt.Errorf("saved filter name is required")
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO saved_filters(id, name, data, anno, mese, conto_id, tag_id)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		data=excluded.data,
		anno=excluded.anno,
		mese=excluded.mese,
		conto_id=excluded.conto_id,
		tag_id=excluded.tag_id,
		updated_at=CURRENT_TIMESTAMP;
	`, f.ID, f.Name, f.Data, f.Anno, f.Mese, f.ContoID, f.TagID)
	if err != nil {
		return SavedFilter{}, fmt.Errorf("save filter %q: %w", f.Name, err)
	}
	return r.ByName(ctx, f.Name)
}

// ByName returns ErrNotFound when name is unknown.
func (r *SavedFilterRepo) ByName(ctx context.Context, name string) (SavedFilter, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+savedFilterColumns+` FROM saved_filters WHERE name = ?`, strings.TrimSpace(name))
	f, err := scanSavedFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedFilter{}, ErrNotFound
	}
	return f, err
}

// List returns every saved filter ordered by name.
func (r *SavedFilterRepo) List(ctx context.Context) ([]SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+savedFilterColumns+` FROM saved_filters ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SavedFilter
	for rows.Next() {
		f, err := scanSavedFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SavedFilterRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSavedFilter(s scanner) (SavedFilter, error) {
	var f SavedFilter
	err := s.Scan(&f.ID, &f.Name, &f.Data, &f.Anno, &f.Mese, &f.ContoID, &f.TagID, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}
