package store

import (
	"database/sql"
	"errors"
	"time"
)

// CaptureKind distinguishes screenshots from saved drawings.
type CaptureKind string

const (
	CaptureScreenshot CaptureKind = "screenshot"
	CaptureDrawing    CaptureKind = "drawing"
)

// Capture is an image file written to the output directory.
type Capture struct {
	ID        string      `json:"id"`
	Kind      CaptureKind `json:"kind"`
	Path      string      `json:"path"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	CreatedAt time.Time   `json:"created_at"`
}

// CaptureRepository catalogs captures.
type CaptureRepository struct {
	db *sql.DB
}

// Captures returns the capture repository for this store.
func (s *Store) Captures() *CaptureRepository {
	return &CaptureRepository{db: s.db}
}

// Create inserts c. CreatedAt is set when zero.
func (r *CaptureRepository) Create(c *Capture) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO captures (id, kind, path, width, height, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.Kind), c.Path, c.Width, c.Height, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a capture by its ID.
func (r *CaptureRepository) GetByID(id string) (*Capture, error) {
	c := &Capture{}
	var kind string

	err := r.db.QueryRow(
		`SELECT id, kind, path, width, height, created_at FROM captures WHERE id = ?`,
		id,
	).Scan(&c.ID, &kind, &c.Path, &c.Width, &c.Height, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c.Kind = CaptureKind(kind)
	return c, nil
}

// List returns captures newest first. An empty kind lists all kinds; a
// limit of zero or less means no limit.
func (r *CaptureRepository) List(kind CaptureKind, limit int) ([]*Capture, error) {
	query := `SELECT id, kind, path, width, height, created_at FROM captures`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		var k string
		if err := rows.Scan(&c.ID, &k, &c.Path, &c.Width, &c.Height, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Kind = CaptureKind(k)
		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return captures, nil
}

// Delete removes a capture record. The image file is left in place.
func (r *CaptureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
