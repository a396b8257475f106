package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationBackfillUpdatedAt = "2026-09-12_backfill_work_updated_at"
	migrationNormalizeGenres   = "2026-09-20_normalize_null_genres"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillUpdatedAt, apply: backfillUpdatedAt},
		{name: migrationNormalizeGenres, apply: normalizeNullGenres},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillUpdatedAt repairs rows whose update stamp predates their creation stamp,
// which would otherwise sort them below older works.
func backfillUpdatedAt(db *gorm.DB) error {
	return db.Model(&works.StoredWork{}).
		Where("updated_at_ms < created_at_ms").
		Update("updated_at_ms", gorm.Expr("created_at_ms")).Error
}

func normalizeNullGenres(db *gorm.DB) error {
	return db.Model(&works.StoredWork{}).
		Where("genres IS NULL OR genres = '' OR genres = 'null'").
		Update("genres", gorm.Expr("'[]'")).Error
}
