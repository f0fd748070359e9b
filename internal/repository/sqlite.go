package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fibertrack/deployform/internal/models"
)

// SettingLastSynced holds the RFC 3339 time of the last successful reference sync
const SettingLastSynced = "last_synced"

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; :memory: needs it
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY,
			city TEXT NOT NULL,
			ring TEXT NOT NULL,
			work_type TEXT NOT NULL,
			fdt TEXT NOT NULL,
			activity TEXT NOT NULL,
			primary_boq TEXT,
			boq REAL NOT NULL DEFAULT 0,
			completed REAL NOT NULL DEFAULT 0,
			remaining REAL NOT NULL DEFAULT 0,
			date TEXT NOT NULL,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reference_rows (
			position INTEGER PRIMARY KEY,
			city TEXT,
			ring TEXT,
			fdt TEXT,
			activity TEXT,
			primary_boq TEXT,
			boq TEXT,
			completed TEXT,
			remaining TEXT,
			notes TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS form_session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			state TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Insert default settings if not exists.
	// The sink URLs start empty until configured from the settings dialog.
	defaultSettings := map[string]string{
		"primary_url":   "",
		"secondary_url": "",
		"language":      "en",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Entry Methods ====================

const entryColumns = `id, city, ring, work_type, fdt, activity, primary_boq, boq, completed, remaining, date, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (models.Entry, error) {
	var e models.Entry
	var primaryBoq, notes sql.NullString
	err := s.Scan(&e.ID, &e.City, &e.Ring, &e.WorkType, &e.Fdt, &e.Activity,
		&primaryBoq, &e.Boq, &e.Completed, &e.Remaining, &e.Date, &notes)
	if err != nil {
		return models.Entry{}, err
	}
	e.PrimaryBoq = primaryBoq.String
	e.Notes = notes.String
	e.City = models.CanonicalCity(e.City)
	return e, nil
}

// CreateEntry stores a submitted entry under its pre-assigned id
func (r *Repository) CreateEntry(ctx context.Context, e models.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.City, e.Ring, e.WorkType, e.Fdt, e.Activity,
		nullIfEmpty(e.PrimaryBoq), e.Boq, e.Completed, e.Remaining, e.Date, e.Notes)
	return err
}

// GetEntry retrieves one entry by id
func (r *Repository) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntries returns all entries in creation order
func (r *Repository) ListEntries(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes an entry
func (r *Repository) DeleteEntry(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
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

// LastEntryID returns the highest entry id, or 0 when there are none
func (r *Repository) LastEntryID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM entries`).Scan(&id)
	return id, err
}

// CountEntries returns the number of stored entries
func (r *Repository) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Reference Methods ====================

// ReplaceReferenceRows swaps the stored dataset and its sync time in one transaction
func (r *Repository) ReplaceReferenceRows(ctx context.Context, rows []models.ReferenceRow, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reference_rows`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reference_rows (position, city, ring, fdt, activity, primary_boq, boq, completed, remaining, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, i, row.City, row.Ring, row.Fdt, row.Activity,
			row.PrimaryBoq, row.Boq, row.Completed, row.Remaining, row.Notes); err != nil {
			return fmt.Errorf("insert reference row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
		SettingLastSynced, syncedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadReferenceRows returns the stored dataset in its original order. The time
// is zero when no sync has ever been stored.
func (r *Repository) LoadReferenceRows(ctx context.Context) ([]models.ReferenceRow, time.Time, error) {
	var syncedAt time.Time
	raw, err := r.GetSetting(ctx, SettingLastSynced)
	switch {
	case err == ErrNotFound:
	case err != nil:
		return nil, time.Time{}, err
	default:
		syncedAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse %s: %w", SettingLastSynced, err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT city, ring, fdt, activity, primary_boq, boq, completed, remaining, notes
		FROM reference_rows ORDER BY position
	`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	result := make([]models.ReferenceRow, 0)
	for rows.Next() {
		var city, ring, fdt, activity, primaryBoq, boq, completed, remaining, notes sql.NullString
		if err := rows.Scan(&city, &ring, &fdt, &activity, &primaryBoq, &boq, &completed, &remaining, &notes); err != nil {
			return nil, time.Time{}, err
		}
		result = append(result, models.ReferenceRow{
			City:       city.String,
			Ring:       ring.String,
			Fdt:        fdt.String,
			Activity:   activity.String,
			PrimaryBoq: primaryBoq.String,
			Boq:        boq.String,
			Completed:  completed.String,
			Remaining:  remaining.String,
			Notes:      notes.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	return result, syncedAt, nil
}

// ==================== Form Session Methods ====================

// SaveFormState stores the open form session, replacing any previous one
func (r *Repository) SaveFormState(ctx context.Context, state string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO form_session (id, state, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP
	`, state)
	return err
}

// LoadFormState returns the stored form session
func (r *Repository) LoadFormState(ctx context.Context) (string, error) {
	var state string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM form_session WHERE id = 1`).Scan(&state)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return state, err
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
