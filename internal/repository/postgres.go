package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sewa-attendance/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresPool opens a pgx connection pool for the given database URL
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	return pool, nil
}

// NewPostgresRepositories creates the repositories backed by one pool
func NewPostgresRepositories(pool *pgxpool.Pool) *Repositories {
	store := &PostgresStore{pool: pool}
	return &Repositories{
		Sewadars:   &PostgresSewadarRepository{db: pool},
		Counters:   &PostgresCounterRepository{db: pool},
		Attendance: &PostgresAttendanceRepository{db: pool},
		Cascader:   store,
		Close:      pool.Close,
	}
}

// PostgresSewadarRepository implements SewadarRepository
type PostgresSewadarRepository struct {
	db querier
}

func (r *PostgresSewadarRepository) List(ctx context.Context) ([]models.Sewadar, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM sewadars ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sewadars := []models.Sewadar{}
	for rows.Next() {
		var s models.Sewadar
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		sewadars = append(sewadars, s)
	}
	return sewadars, rows.Err()
}

func (r *PostgresSewadarRepository) Get(ctx context.Context, id string) (*models.Sewadar, error) {
	s := &models.Sewadar{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM sewadars WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresSewadarRepository) Create(ctx context.Context, sewadar models.Sewadar) error {
	_, err := r.db.Exec(ctx, `INSERT INTO sewadars (id, name) VALUES ($1, $2)`, sewadar.ID, sewadar.Name)
	return err
}

func (r *PostgresSewadarRepository) UpdateName(ctx context.Context, id, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE sewadars SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSewadarRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sewadars WHERE id = $1`, id)
	return err
}

// PostgresCounterRepository implements CounterRepository
type PostgresCounterRepository struct {
	db querier
}

func (r *PostgresCounterRepository) List(ctx context.Context) ([]models.Counter, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM counters ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := []models.Counter{}
	for rows.Next() {
		var c models.Counter
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}
	return counters, rows.Err()
}

func (r *PostgresCounterRepository) Create(ctx context.Context, counter models.Counter) error {
	_, err := r.db.Exec(ctx, `INSERT INTO counters (id, name) VALUES ($1, $2)`, counter.ID, counter.Name)
	return err
}

// PostgresAttendanceRepository implements AttendanceRepository
type PostgresAttendanceRepository struct {
	db querier
}

func (r *PostgresAttendanceRepository) ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	query := `
		SELECT id, sewadar_name, counter_name, "date", in_time, out_time, notes, "timestamp"
		FROM attendance_records
		WHERE "date" = $1
		ORDER BY "timestamp" DESC`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	for rows.Next() {
		var rec models.AttendanceRecord
		err := rows.Scan(
			&rec.ID,
			&rec.SewadarName,
			&rec.CounterName,
			&rec.Date,
			&rec.InTime,
			&rec.OutTime,
			&rec.Notes,
			&rec.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresAttendanceRepository) Upsert(ctx context.Context, record models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (id, sewadar_name, counter_name, "date", in_time, out_time, notes, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			sewadar_name = EXCLUDED.sewadar_name,
			counter_name = EXCLUDED.counter_name,
			"date" = EXCLUDED."date",
			in_time = EXCLUDED.in_time,
			out_time = EXCLUDED.out_time,
			notes = EXCLUDED.notes,
			"timestamp" = EXCLUDED."timestamp"`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.SewadarName,
		record.CounterName,
		record.Date,
		record.InTime,
		record.OutTime,
		record.Notes,
		record.Timestamp,
	)
	return err
}

func (r *PostgresAttendanceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	return err
}

func (r *PostgresAttendanceRepository) RenameSewadar(ctx context.Context, oldName, newName string) (int, error) {
	tag, err := r.db.Exec(ctx, `UPDATE attendance_records SET sewadar_name = $1 WHERE sewadar_name = $2`, newName, oldName)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresAttendanceRepository) DeleteBySewadar(ctx context.Context, name string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM attendance_records WHERE sewadar_name = $1`, name)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// PostgresStore runs the sewadar cascades inside one transaction
type PostgresStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresStore) RenameSewadarCascade(ctx context.Context, id, newName string) (string, error) {
	var oldName string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		sewadars := &PostgresSewadarRepository{db: tx}
		current, err := sewadars.Get(ctx, id)
		if err != nil {
			return err
		}
		oldName = current.Name

		if err := sewadars.UpdateName(ctx, id, newName); err != nil {
			return fmt.Errorf("error renaming sewadar: %w", err)
		}
		if _, err := (&PostgresAttendanceRepository{db: tx}).RenameSewadar(ctx, oldName, newName); err != nil {
			return fmt.Errorf("error renaming attendance history: %w", err)
		}
		return nil
	})
	return oldName, err
}

func (s *PostgresStore) DeleteSewadarCascade(ctx context.Context, id string) (string, error) {
	var name string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		sewadars := &PostgresSewadarRepository{db: tx}
		current, err := sewadars.Get(ctx, id)
		if err != nil {
			return err
		}
		name = current.Name

		if err := sewadars.Delete(ctx, id); err != nil {
			return fmt.Errorf("error deleting sewadar: %w", err)
		}
		if _, err := (&PostgresAttendanceRepository{db: tx}).DeleteBySewadar(ctx, name); err != nil {
			return fmt.Errorf("error deleting attendance history: %w", err)
		}
		return nil
	})
	return name, err
}
