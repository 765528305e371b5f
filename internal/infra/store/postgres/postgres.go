package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/davay42/sw-gallery/internal/domain"
)

// ---- Postgres-реализация BlobStore (pgxpool) + golang-migrate ----

type Store struct {
	logger *log.Logger
	pool   *pgxpool.Pool
}

func New(ctx context.Context, logger *log.Logger, dsn string) (*Store, error) {
	if err := runMigrations(dsn, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	logger.Println("initializing pgxpool...")
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	logger.Println("pgxpool initialized")

	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	s.logger.Println("closing pgxpool...")
	s.pool.Close()
	s.logger.Println("pgxpool closed")
}

// ---- Миграции через golang-migrate ----

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

func runMigrations(dsn string, logger *log.Logger) error {
	// Отдельный *sql.DB через pgx stdlib, только на время миграций.
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open pgx: %w", err)
	}
	defer sqldb.Close()

	driver, err := migratepg.WithInstance(sqldb, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}

	src, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer m.Close()

	logger.Println("applying migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Println("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Println("migrations applied successfully")
	return nil
}

// ---- Реализация BlobStore ----

func (s *Store) qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *Store) Get(ctx context.Context, filename string) (domain.StoredItem, error) {
	q := s.qb().Select("filename", "blob", "ts", "size", "type").
		From("images").
		Where(sq.Eq{"filename": filename})
	sqlStr, args, _ := q.ToSql()

	var item domain.StoredItem
	row := s.pool.QueryRow(ctx, sqlStr, args...)
	if err := row.Scan(&item.Filename, &item.Blob, &item.Timestamp, &item.Size, &item.Type); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoredItem{}, fmt.Errorf("%q: %w", filename, domain.ErrNotFound)
		}
		s.logger.Printf("Get %q scan error: %v", filename, err)
		return domain.StoredItem{}, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return item, nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.StoredItem, error) {
	// только метаданные, blob не читаем
	q := s.qb().Select("filename", "ts", "size", "type").From("images")
	sqlStr, args, _ := q.ToSql()

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		s.logger.Printf("GetAll query error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var items []domain.StoredItem
	for rows.Next() {
		var item domain.StoredItem
		if err := rows.Scan(&item.Filename, &item.Timestamp, &item.Size, &item.Type); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return items, nil
}

// Put — upsert: запись с тем же filename заменяется целиком.
func (s *Store) Put(ctx context.Context, item domain.StoredItem) error {
	q := s.qb().Insert("images").
		Columns("filename", "blob", "ts", "size", "type").
		Values(item.Filename, item.Blob, item.Timestamp, item.Size, item.Type).
		Suffix("ON CONFLICT (filename) DO UPDATE SET blob = EXCLUDED.blob, ts = EXCLUDED.ts, size = EXCLUDED.size, type = EXCLUDED.type")
	sqlStr, args, _ := q.ToSql()

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		s.logger.Printf("Put %q exec error: %v", item.Filename, err)
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.logger.Printf("Put %q ok (%d bytes)", item.Filename, item.Size)
	return nil
}

func (s *Store) Delete(ctx context.Context, filename string) error {
	q := s.qb().Delete("images").Where(sq.Eq{"filename": filename})
	sqlStr, args, _ := q.ToSql()

	ct, err := s.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		s.logger.Printf("Delete %q exec error: %v", filename, err)
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.logger.Printf("Delete %q: rows=%d", filename, ct.RowsAffected())
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
