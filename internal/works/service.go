package works

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrWorkNotFound indicates that no stored work matches the identifier.
	ErrWorkNotFound = errors.New("works: work not found")

	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError carries a stable code describing the failed store operation.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "works.service.new"
	opListWorks  = "works.list"
	opInsertWork = "works.insert"
	opUpdateWork = "works.update"
	opDeleteWork = "works.delete"

	fieldWorkID = "work_id"
	queryWorkID = fieldWorkID + " = ?"

	reasonMissingDatabase = "missing_database"
	reasonInvalidOrdering = "invalid_ordering"
	reasonInvalidRecord   = "invalid_record"
	reasonInvalidWorkID   = "invalid_work_id"
	reasonQueryFailed     = "query_failed"
	reasonIDFailed        = "id_generation_failed"
	reasonInsertFailed    = "insert_failed"
	reasonSaveFailed      = "save_failed"
	reasonDeleteFailed    = "delete_failed"
	reasonNotFound        = "not_found"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service persists catalog entries and implements the store contract consumed by the sync controller.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, reasonMissingDatabase, errMissingDatabase)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// List returns every stored work in the requested order.
func (s *Service) List(ctx context.Context, ordering Ordering) ([]Work, error) {
	if s.db == nil {
		s.logError(opListWorks, reasonMissingDatabase, errMissingDatabase)
		return nil, newServiceError(opListWorks, reasonMissingDatabase, errMissingDatabase)
	}
	if err := ordering.Validate(); err != nil {
		return nil, newServiceError(opListWorks, reasonInvalidOrdering, err)
	}

	var rows []StoredWork
	if err := s.db.WithContext(ctx).
		Order(ordering.clause()).
		Order(fieldWorkID + " ASC").
		Find(&rows).Error; err != nil {
		s.logError(opListWorks, reasonQueryFailed, err)
		return nil, newServiceError(opListWorks, reasonQueryFailed, err)
	}

	result := make([]Work, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toWork())
	}
	return result, nil
}

// Insert stores a new work and returns it with its assigned identifier.
// Zero timestamps are filled from the service clock.
func (s *Service) Insert(ctx context.Context, record Record) (Work, error) {
	if s.db == nil {
		s.logError(opInsertWork, reasonMissingDatabase, errMissingDatabase)
		return Work{}, newServiceError(opInsertWork, reasonMissingDatabase, errMissingDatabase)
	}
	if err := record.Validate(); err != nil {
		return Work{}, newServiceError(opInsertWork, reasonInvalidRecord, err)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opInsertWork, reasonIDFailed, err)
		return Work{}, newServiceError(opInsertWork, reasonIDFailed, err)
	}

	record = s.stamp(record)
	row := newStoredWork(id, record)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logError(opInsertWork, reasonInsertFailed, err, zap.String(fieldWorkID, id.String()))
		return Work{}, newServiceError(opInsertWork, reasonInsertFailed, err)
	}
	return row.toWork(), nil
}

// Update replaces every field of an existing work with the supplied record.
// A zero CreatedAt keeps the stored creation time; a zero UpdatedAt is stamped from the clock.
func (s *Service) Update(ctx context.Context, id ID, record Record) error {
	if s.db == nil {
		s.logError(opUpdateWork, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(opUpdateWork, reasonMissingDatabase, errMissingDatabase)
	}
	if _, err := NewID(id.String()); err != nil {
		return newServiceError(opUpdateWork, reasonInvalidWorkID, err)
	}
	if err := record.Validate(); err != nil {
		return newServiceError(opUpdateWork, reasonInvalidRecord, err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing StoredWork
		err := tx.Where(queryWorkID, id.String()).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newServiceError(opUpdateWork, reasonNotFound, ErrWorkNotFound)
		}
		if err != nil {
			s.logError(opUpdateWork, reasonQueryFailed, err, zap.String(fieldWorkID, id.String()))
			return newServiceError(opUpdateWork, reasonQueryFailed, err)
		}

		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.UnixMilli(existing.CreatedAtMillis).UTC()
		}
		record = s.stamp(record)

		row := newStoredWork(id, record)
		if err := tx.Save(&row).Error; err != nil {
			s.logError(opUpdateWork, reasonSaveFailed, err, zap.String(fieldWorkID, id.String()))
			return newServiceError(opUpdateWork, reasonSaveFailed, err)
		}
		return nil
	})
}

// Delete removes the work with the given identifier.
func (s *Service) Delete(ctx context.Context, id ID) error {
	if s.db == nil {
		s.logError(opDeleteWork, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(opDeleteWork, reasonMissingDatabase, errMissingDatabase)
	}
	if _, err := NewID(id.String()); err != nil {
		return newServiceError(opDeleteWork, reasonInvalidWorkID, err)
	}

	result := s.db.WithContext(ctx).Where(queryWorkID, id.String()).Delete(&StoredWork{})
	if result.Error != nil {
		s.logError(opDeleteWork, reasonDeleteFailed, result.Error, zap.String(fieldWorkID, id.String()))
		return newServiceError(opDeleteWork, reasonDeleteFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return newServiceError(opDeleteWork, reasonNotFound, ErrWorkNotFound)
	}
	return nil
}

func (s *Service) stamp(record Record) Record {
	now := s.clock().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	return record
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("works service error", attrs...)
}
