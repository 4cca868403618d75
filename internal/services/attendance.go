package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
)

var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrShiftComplete  = errors.New("shift is already marked out")
)

// AttendanceDesk defines the check-in workflows used by the HTTP API and the bot
type AttendanceDesk interface {
	CheckIn(ctx context.Context, req models.CheckInRequest) (models.AttendanceRecord, error)
	MarkOut(ctx context.Context, id string, req models.MarkOutRequest) (models.AttendanceRecord, error)
	MarkOutBySewadar(ctx context.Context, date, sewadarName, outTime string) (models.AttendanceRecord, error)
	DaySheet(ctx context.Context, date string) models.DaySheet
}

// BotNotifier defines the interface for bot notifications
type BotNotifier interface {
	SendNotification(message string)
}

// AttendanceService handles attendance business logic
type AttendanceService struct {
	store    *RecordStore
	notifier BotNotifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(store *RecordStore, notifier BotNotifier, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// CheckIn starts a shift. Unknown sewadar or counter names are added to the
// reference lists first; the record keeps the names as typed by the caller
// unless an existing entry matches ignoring case.
func (s *AttendanceService) CheckIn(ctx context.Context, req models.CheckInRequest) (models.AttendanceRecord, error) {
	sewadarName, ok := models.CleanName(req.SewadarName)
	if !ok {
		return models.AttendanceRecord{}, fmt.Errorf("sewadar %w", ErrInvalidName)
	}
	counterName, ok := models.CleanName(req.CounterName)
	if !ok {
		return models.AttendanceRecord{}, fmt.Errorf("counter %w", ErrInvalidName)
	}

	now := s.now()
	date := req.Date
	if date == "" {
		date = models.DateKey(now)
	}
	inTime := req.InTime
	if inTime == "" {
		inTime = now.Format("15:04")
	}
	if !models.ValidDate(date) || !models.ValidTime(inTime) {
		return models.AttendanceRecord{}, fmt.Errorf("%w: date %q in time %q", ErrInvalidRecord, date, inTime)
	}

	sewadarName = s.ensureSewadar(ctx, sewadarName)
	counterName = s.ensureCounter(ctx, counterName)

	record := models.AttendanceRecord{
		ID:          s.store.Gateway().NewID(),
		SewadarName: sewadarName,
		CounterName: counterName,
		Date:        date,
		InTime:      inTime,
		Notes:       strings.TrimSpace(req.Notes),
		Timestamp:   now.UnixMilli(),
	}
	if err := s.store.Gateway().UpsertRecord(ctx, record); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	s.logger.Info("sewadar checked in",
		zap.String("sewadar", record.SewadarName),
		zap.String("counter", record.CounterName),
		zap.String("date", record.Date),
		zap.String("in", record.InTime))
	s.sendNotification(fmt.Sprintf("✅ Check-in\n👤 %s\n📍 %s\n🕐 %s (%s)",
		record.SewadarName, record.CounterName, models.FormatDisplayTime(record.InTime), record.Date))

	return record, nil
}

// MarkOut finishes the active shift with the given id on req.Date
func (s *AttendanceService) MarkOut(ctx context.Context, id string, req models.MarkOutRequest) (models.AttendanceRecord, error) {
	records, err := s.store.Gateway().ListByDate(ctx, req.Date)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to load records: %w", err)
	}
	for _, r := range records {
		if r.ID == id {
			return s.finish(ctx, r, req.OutTime)
		}
	}
	return models.AttendanceRecord{}, ErrRecordNotFound
}

// MarkOutBySewadar finishes the most recent active shift of a sewadar on date
func (s *AttendanceService) MarkOutBySewadar(ctx context.Context, date, sewadarName, outTime string) (models.AttendanceRecord, error) {
	name, ok := models.CleanName(sewadarName)
	if !ok {
		return models.AttendanceRecord{}, fmt.Errorf("sewadar %w", ErrInvalidName)
	}
	if date == "" {
		date = models.DateKey(s.now())
	}

	records, err := s.store.Gateway().ListByDate(ctx, date)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to load records: %w", err)
	}
	// records are newest first
	for _, r := range records {
		if models.IsActive(r) && strings.EqualFold(r.SewadarName, name) {
			return s.finish(ctx, r, outTime)
		}
	}
	return models.AttendanceRecord{}, ErrRecordNotFound
}

// DaySheet returns one date's records and how many shifts are still active
func (s *AttendanceService) DaySheet(ctx context.Context, date string) models.DaySheet {
	if date == "" {
		date = models.DateKey(s.now())
	}
	records := s.store.ListByDate(ctx, date)
	return models.DaySheet{
		Date:    date,
		Active:  models.ActiveCount(records),
		Records: records,
	}
}

func (s *AttendanceService) finish(ctx context.Context, record models.AttendanceRecord, outTime string) (models.AttendanceRecord, error) {
	if !models.IsActive(record) {
		return models.AttendanceRecord{}, ErrShiftComplete
	}
	if outTime == "" {
		outTime = s.now().Format("15:04")
	}

	record.OutTime = models.StringPtr(outTime)
	if err := s.store.Gateway().UpsertRecord(ctx, record); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to mark out: %w", err)
	}

	duration := models.ComputeDuration(record.InTime, record.OutTime)
	s.logger.Info("sewadar marked out",
		zap.String("sewadar", record.SewadarName),
		zap.String("counter", record.CounterName),
		zap.String("out", outTime),
		zap.String("duration", duration))
	s.sendNotification(fmt.Sprintf("🏁 Duty finished\n👤 %s\n📍 %s\n🕐 %s - %s (%s)",
		record.SewadarName, record.CounterName,
		models.FormatDisplayTime(record.InTime), models.FormatDisplayTime(outTime), duration))

	return record, nil
}

// ensureSewadar returns the stored spelling of name, adding it when unknown
func (s *AttendanceService) ensureSewadar(ctx context.Context, name string) string {
	if existing, ok := models.FindSewadarByName(s.store.ListSewadars(ctx), name); ok {
		return existing.Name
	}
	if _, err := s.store.Gateway().AddSewadar(ctx, name); err != nil && !errors.Is(err, ErrDuplicateName) {
		s.logger.Warn("failed to add sewadar during check-in", zap.String("name", name), zap.Error(err))
	}
	return name
}

// ensureCounter returns the stored spelling of name, adding it when unknown
func (s *AttendanceService) ensureCounter(ctx context.Context, name string) string {
	if existing, ok := models.FindCounterByName(s.store.ListCounters(ctx), name); ok {
		return existing.Name
	}
	if _, err := s.store.Gateway().AddCounter(ctx, name); err != nil && !errors.Is(err, ErrDuplicateName) {
		s.logger.Warn("failed to add counter during check-in", zap.String("name", name), zap.Error(err))
	}
	return name
}

func (s *AttendanceService) sendNotification(message string) {
	if s.notifier != nil {
		s.notifier.SendNotification(message)
	}
}
