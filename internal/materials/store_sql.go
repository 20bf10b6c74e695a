package materials

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, m Material) (Material, error)
	Get(ctx context.Context, id string) (Material, error)
	ListByModule(ctx context.Context, moduleID string) ([]Material, error)
	ListLatest(ctx context.Context, limit int) ([]Material, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, m Material) (Material, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_materials (id, module_id, title, type, url, object_key, original_filename, description, uploaded_by, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.ModuleID, m.Title, m.Type, m.URL, m.ObjectKey, m.OriginalFilename,
		m.Description, m.UploadedBy, m.CreatedAt)
	return m, err
}

const materialCols = `r.id, r.module_id, r.title, r.type, r.url, r.object_key,
	r.original_filename, r.description, r.uploaded_by, u.name, r.created_at`

func scanMaterial(row interface{ Scan(...any) error }) (Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.ModuleID, &m.Title, &m.Type, &m.URL, &m.ObjectKey,
		&m.OriginalFilename, &m.Description, &m.UploadedBy, &m.UploaderName, &m.CreatedAt)
	return m, err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Material, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+materialCols+` FROM reference_materials r JOIN users u ON u.id = r.uploaded_by WHERE r.id=$1`, id)
	m, err := scanMaterial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	return m, err
}

func (s *SQLStore) ListByModule(ctx context.Context, moduleID string) ([]Material, error) {
	return s.list(ctx,
		`SELECT `+materialCols+` FROM reference_materials r JOIN users u ON u.id = r.uploaded_by
		 WHERE r.module_id=$1 ORDER BY r.created_at DESC`, moduleID)
}

func (s *SQLStore) ListLatest(ctx context.Context, limit int) ([]Material, error) {
	return s.list(ctx,
		`SELECT `+materialCols+` FROM reference_materials r JOIN users u ON u.id = r.uploaded_by
		 ORDER BY r.created_at DESC LIMIT $1`, limit)
}

func (s *SQLStore) list(ctx context.Context, q string, args ...any) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reference_materials WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
