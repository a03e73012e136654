package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/domain"
)

// PostgresService is the optional durable archive behind the Redis-backed
// history list. When no Postgres host is configured the app runs without it.
type PostgresService struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func NewPostgresService(cfg PostgresConfig, logger *zap.Logger) (*PostgresService, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &PostgresService{
		db:     db,
		logger: logger,
	}, nil
}

// EnsureSchema creates the archive table if it does not exist.
func (ps *PostgresService) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS translation_archive (
			id                    BIGSERIAL PRIMARY KEY,
			original_text         TEXT NOT NULL,
			translated_text       TEXT NOT NULL,
			scenario              TEXT NOT NULL,
			principles            TEXT[] NOT NULL DEFAULT '{}',
			psychological_context TEXT NOT NULL DEFAULT '',
			suggested_action      TEXT NOT NULL DEFAULT '',
			framework_reference   TEXT NOT NULL DEFAULT '',
			created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := ps.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure archive schema: %w", err)
	}
	return nil
}

// ArchiveTranslation appends one finished translation to the durable archive.
// Archive failures are logged by the caller and never block the request path.
func (ps *PostgresService) ArchiveTranslation(ctx context.Context, result *domain.TranslationResult, scenario domain.Scenario, createdAt time.Time) error {
	const query = `
		INSERT INTO translation_archive
			(original_text, translated_text, scenario, principles,
			 psychological_context, suggested_action, framework_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := ps.db.ExecContext(ctx, query,
		result.OriginalText,
		result.TranslatedText,
		string(scenario),
		pq.Array(result.Principles),
		result.PsychologicalContext,
		result.SuggestedAction,
		result.FrameworkReference,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive translation: %w", err)
	}
	return nil
}

// CountArchived reports how many translations the archive holds.
func (ps *PostgresService) CountArchived(ctx context.Context) (int64, error) {
	var count int64
	err := ps.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translation_archive`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count archive: %w", err)
	}
	return count, nil
}

func (ps *PostgresService) GetDB() *sql.DB {
	return ps.db
}

func (ps *PostgresService) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func (ps *PostgresService) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}
