package accounts

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// OpenSQLite applies the embedded migrations to the database at path and
// opens it with sensible defaults.
func OpenSQLite(path string) (*sql.DB, error) {
	if err := RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate accounts db: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return db, nil
}

// RunMigrations applies all up migrations to the sqlite file at path.
func RunMigrations(path string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// SQLRepo handles accounts stored in SQLite.
type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

func (r *SQLRepo) Get(ctx context.Context, id string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, billing_city, billing_country, latitude, longitude, created_at, updated_at
	FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *SQLRepo) Upsert(ctx context.Context, a Account) (Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, billing_city, billing_country, latitude, longitude, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 billing_city=excluded.billing_city,
	 billing_country=excluded.billing_country,
	 latitude=excluded.latitude,
	 longitude=excluded.longitude,
	 updated_at=CURRENT_TIMESTAMP;
	`, a.ID, a.Name, a.BillingCity, a.BillingCountry, nullFloat(a.Latitude), nullFloat(a.Longitude))
	if err != nil {
		return Account{}, err
	}
	return r.Get(ctx, a.ID)
}

func (r *SQLRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, billing_city, billing_country, latitude, longitude, created_at, updated_at
	FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (Account, error) {
	var (
		a        Account
		lat, lon sql.NullFloat64
		created  time.Time
		updated  time.Time
	)
	if err := s.Scan(&a.ID, &a.Name, &a.BillingCity, &a.BillingCountry, &lat, &lon, &created, &updated); err != nil {
		return Account{}, err
	}
	if lat.Valid {
		a.Latitude = &lat.Float64
	}
	if lon.Valid {
		a.Longitude = &lon.Float64
	}
	a.CreatedAt = created.UTC()
	a.UpdatedAt = updated.UTC()
	return a, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
