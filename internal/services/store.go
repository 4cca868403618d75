package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
)

// Directory is the store surface used by the HTTP API and the bot
type Directory interface {
	ListByDate(ctx context.Context, date string) []models.AttendanceRecord
	UpsertRecord(ctx context.Context, record models.AttendanceRecord)
	DeleteRecord(ctx context.Context, id string)
	ListSewadars(ctx context.Context) []models.Sewadar
	AddSewadar(ctx context.Context, name string) []models.Sewadar
	RenameSewadar(ctx context.Context, id, newName string) []models.Sewadar
	DeleteSewadar(ctx context.Context, id string) []models.Sewadar
	ListCounters(ctx context.Context) []models.Counter
	AddCounter(ctx context.Context, name string) []models.Counter
}

var _ Directory = (*RecordStore)(nil)

// RecordStore is the availability-first face of the Gateway: every error is
// logged and collapsed into an empty or refreshed result, so callers never
// branch on failure. Callers cannot tell "no data" from "store unreachable".
type RecordStore struct {
	gateway *Gateway
	logger  *zap.Logger
}

// NewRecordStore wraps a gateway
func NewRecordStore(gateway *Gateway, logger *zap.Logger) *RecordStore {
	return &RecordStore{gateway: gateway, logger: logger}
}

// Gateway returns the error-returning layer underneath the store
func (s *RecordStore) Gateway() *Gateway {
	return s.gateway
}

// ListByDate returns the records of one date, newest check-in first
func (s *RecordStore) ListByDate(ctx context.Context, date string) []models.AttendanceRecord {
	records, err := s.gateway.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("error fetching records", zap.String("date", date), zap.Error(err))
		return []models.AttendanceRecord{}
	}
	return records
}

// UpsertRecord inserts or fully replaces the record with the same id
func (s *RecordStore) UpsertRecord(ctx context.Context, record models.AttendanceRecord) {
	if err := s.gateway.UpsertRecord(ctx, record); err != nil {
		s.logger.Error("error saving record", zap.String("id", record.ID), zap.Error(err))
	}
}

// DeleteRecord removes a record; unknown ids are ignored
func (s *RecordStore) DeleteRecord(ctx context.Context, id string) {
	if err := s.gateway.DeleteRecord(ctx, id); err != nil {
		s.logger.Error("error deleting record", zap.String("id", id), zap.Error(err))
	}
}

// ListSewadars returns all sewadars ordered by name
func (s *RecordStore) ListSewadars(ctx context.Context) []models.Sewadar {
	list, err := s.gateway.ListSewadars(ctx)
	if err != nil {
		s.logger.Error("error fetching sewadars", zap.Error(err))
		return []models.Sewadar{}
	}
	return list
}

// AddSewadar adds a sewadar and returns the refreshed list
func (s *RecordStore) AddSewadar(ctx context.Context, name string) []models.Sewadar {
	if _, err := s.gateway.AddSewadar(ctx, name); err != nil {
		s.logFailure("error adding sewadar", err, zap.String("name", name))
	}
	return s.ListSewadars(ctx)
}

// RenameSewadar renames a sewadar and its history, then returns the refreshed list
func (s *RecordStore) RenameSewadar(ctx context.Context, id, newName string) []models.Sewadar {
	if err := s.gateway.RenameSewadar(ctx, id, newName); err != nil {
		s.logFailure("error renaming sewadar", err, zap.String("id", id), zap.String("name", newName))
	}
	return s.ListSewadars(ctx)
}

// DeleteSewadar deletes a sewadar and its history, then returns the refreshed list
func (s *RecordStore) DeleteSewadar(ctx context.Context, id string) []models.Sewadar {
	if err := s.gateway.DeleteSewadar(ctx, id); err != nil {
		s.logFailure("error deleting sewadar", err, zap.String("id", id))
	}
	return s.ListSewadars(ctx)
}

// ListCounters returns all counters in creation order
func (s *RecordStore) ListCounters(ctx context.Context) []models.Counter {
	list, err := s.gateway.ListCounters(ctx)
	if err != nil {
		s.logger.Error("error fetching counters", zap.Error(err))
		return []models.Counter{}
	}
	return list
}

// AddCounter adds a counter and returns the refreshed list
func (s *RecordStore) AddCounter(ctx context.Context, name string) []models.Counter {
	if _, err := s.gateway.AddCounter(ctx, name); err != nil {
		s.logFailure("error adding counter", err, zap.String("name", name))
	}
	return s.ListCounters(ctx)
}

// logFailure logs expected rejections as warnings and everything else as errors
func (s *RecordStore) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrDuplicateName) {
		s.logger.Warn(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}
