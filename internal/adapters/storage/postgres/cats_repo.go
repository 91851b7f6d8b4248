package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"cat-registry/internal/domain/cats"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// CatsRepo implementa cats.Repository sobre Postgres + PostGIS.
// location es geometry(Point,4326); el contains de área lo resuelve
// ST_Contains con el polígono de bounds en WKT.
type CatsRepo struct {
	db *sql.DB
}

func NewCatsRepo(db *sql.DB) *CatsRepo {
	return &CatsRepo{db: db}
}

const catColumns = `
	id, owner_user_id,
	name, breed, weight,
	birth_date, attributes,
	ST_X(location), ST_Y(location),
	created_at, updated_at
`

func (r *CatsRepo) Create(ctx context.Context, c cats.Cat) error {
	attrs, err := marshalAttributes(c.Attributes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cats (
			id, owner_user_id,
			name, breed, weight,
			birth_date, attributes, location,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,ST_SetSRID(ST_MakePoint($8,$9),4326),$10,$11)
	`,
		c.ID,
		c.OwnerUserID,
		c.Name,
		c.Breed,
		c.Weight,
		toNullDate(c.BirthDate),
		attrs,
		c.Location[0], // lng
		c.Location[1], // lat
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CatsRepo) GetByID(ctx context.Context, id string) (cats.Cat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cats.Cat{}, cats.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+catColumns+`
		FROM cats
		WHERE id = $1
	`, id)

	return scanCat(row)
}

func (r *CatsRepo) List(ctx context.Context) ([]cats.Cat, error) {
	return r.queryCats(ctx, `
		SELECT `+catColumns+`
		FROM cats
		ORDER BY created_at ASC
	`)
}

func (r *CatsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]cats.Cat, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	return r.queryCats(ctx, `
		SELECT `+catColumns+`
		FROM cats
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
}

func (r *CatsRepo) ListWithinBounds(ctx context.Context, bounds orb.Polygon) ([]cats.Cat, error) {
	return r.queryCats(ctx, `
		SELECT `+catColumns+`
		FROM cats
		WHERE ST_Contains(ST_GeomFromText($1, 4326), location)
		ORDER BY created_at ASC
	`, wkt.MarshalString(bounds))
}

func (r *CatsRepo) Update(ctx context.Context, c cats.Cat, requireOwner string) error {
	attrs, err := marshalAttributes(c.Attributes)
	if err != nil {
		return err
	}

	query := `
		UPDATE cats
		SET
			name = $2,
			breed = $3,
			weight = $4,
			birth_date = $5,
			attributes = $6,
			location = ST_SetSRID(ST_MakePoint($7,$8),4326),
			updated_at = $9
		WHERE id = $1
	`
	args := []any{
		c.ID,
		c.Name,
		c.Breed,
		c.Weight,
		toNullDate(c.BirthDate),
		attrs,
		c.Location[0],
		c.Location[1],
		c.UpdatedAt,
	}

	// Guard condicional de owner: si el owner cambió entre el check y este
	// write, RowsAffected queda en cero y el caller ve ErrNotFound.
	if requireOwner != "" {
		query += ` AND owner_user_id = $10`
		args = append(args, requireOwner)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cats.ErrNotFound
	}
	return nil
}

func (r *CatsRepo) Delete(ctx context.Context, id string, requireOwner string) error {
	query := `DELETE FROM cats WHERE id = $1`
	args := []any{id}

	if requireOwner != "" {
		query += ` AND owner_user_id = $2`
		args = append(args, requireOwner)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cats.ErrNotFound
	}
	return nil
}

func (r *CatsRepo) queryCats(ctx context.Context, query string, args ...any) ([]cats.Cat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cats.Cat, 0)
	for rows.Next() {
		c, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCat(row rowScanner) (cats.Cat, error) {
	var c cats.Cat
	var bd sql.NullTime
	var attrs []byte
	var lng, lat float64

	if err := row.Scan(
		&c.ID,
		&c.OwnerUserID,
		&c.Name,
		&c.Breed,
		&c.Weight,
		&bd,
		&attrs,
		&lng,
		&lat,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return cats.Cat{}, cats.ErrNotFound
		}
		return cats.Cat{}, err
	}

	if bd.Valid {
		t := bd.Time
		c.BirthDate = &t
	}

	c.Location = orb.Point{lng, lat}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
			return cats.Cat{}, err
		}
	}

	return c, nil
}

func marshalAttributes(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

// birth_date es DATE, lo pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
