package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"certificate-terminal/internal/domain"
)

const embeddedPort = 5433

// Store records submitted requests in the append-only audit table.
type Store interface {
	Insert(ctx context.Context, form domain.FormData) error
	Close() error
}

// GormStore persists audit rows through gorm, backed either by an
// external postgres or by an embedded instance living under the
// terminal's var dir (the appliance default).
type GormStore struct {
	db       *gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
}

// Options selects the backing database for Open.
type Options struct {
	// DatabaseURL points at an external postgres. Empty means embedded.
	DatabaseURL string
	// DataDir holds embedded database files, ignored for external.
	DataDir string
}

// Open connects the audit store and migrates the audit table.
func Open(opts Options) (*GormStore, error) {
	var embedded *embeddedpostgres.EmbeddedPostgres

	dsn := opts.DatabaseURL
	if dsn == "" {
		slog.Info("starting embedded audit database", "data_dir", opts.DataDir)
		embedded = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
			DataPath(filepath.Join(opts.DataDir, "pg")).
			RuntimePath(filepath.Join(opts.DataDir, "pg-runtime")).
			Port(embeddedPort).
			Database("audit").
			Username("audit").
			Password("audit"))
		if err := embedded.Start(); err != nil {
			return nil, fmt.Errorf("start embedded database: %w", err)
		}
		dsn = fmt.Sprintf("host=127.0.0.1 port=%d user=audit password=audit dbname=audit sslmode=disable", embeddedPort)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("connect audit database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("migrate audit table: %w", err)
	}

	return &GormStore{db: db, embedded: embedded}, nil
}

// Insert validates the form and appends one audit row. Validation
// failures come back as *ValidationError; anything else is a storage
// fault.
func (s *GormStore) Insert(ctx context.Context, form domain.FormData) error {
	entry, err := NewEntry(form)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Close releases the database and stops the embedded instance if one
// was started.
func (s *GormStore) Close() error {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if s.embedded != nil {
		return s.embedded.Stop()
	}
	return nil
}
