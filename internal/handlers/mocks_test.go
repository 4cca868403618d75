package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/services"
)

var errTest = errors.New("backend unreachable")

// mockDesk is a mock implementation of services.AttendanceDesk
type mockDesk struct {
	checkInCalled bool
	lastCheckIn   models.CheckInRequest
	lastMarkOutID string
	lastMarkOut   models.MarkOutRequest
	lastSheetDate string
	record        models.AttendanceRecord
	sheet         models.DaySheet
	returnError   error
}

func (m *mockDesk) CheckIn(_ context.Context, req models.CheckInRequest) (models.AttendanceRecord, error) {
	m.checkInCalled = true
	m.lastCheckIn = req
	return m.record, m.returnError
}

func (m *mockDesk) MarkOut(_ context.Context, id string, req models.MarkOutRequest) (models.AttendanceRecord, error) {
	m.lastMarkOutID = id
	m.lastMarkOut = req
	return m.record, m.returnError
}

func (m *mockDesk) MarkOutBySewadar(_ context.Context, _, _, _ string) (models.AttendanceRecord, error) {
	return m.record, m.returnError
}

func (m *mockDesk) DaySheet(_ context.Context, date string) models.DaySheet {
	m.lastSheetDate = date
	sheet := m.sheet
	sheet.Date = date
	return sheet
}

// mockDirectory is an in-memory services.Directory
type mockDirectory struct {
	sewadars []models.Sewadar
	counters []models.Counter
	upserted []models.AttendanceRecord
	deleted  []string
	renamed  map[string]string
}

func (m *mockDirectory) ListByDate(_ context.Context, _ string) []models.AttendanceRecord {
	return m.upserted
}

func (m *mockDirectory) UpsertRecord(_ context.Context, record models.AttendanceRecord) {
	m.upserted = append(m.upserted, record)
}

func (m *mockDirectory) DeleteRecord(_ context.Context, id string) {
	m.deleted = append(m.deleted, id)
}

func (m *mockDirectory) ListSewadars(_ context.Context) []models.Sewadar {
	return m.sewadars
}

func (m *mockDirectory) AddSewadar(_ context.Context, name string) []models.Sewadar {
	m.sewadars = append(m.sewadars, models.Sewadar{ID: name, Name: name})
	return m.sewadars
}

func (m *mockDirectory) RenameSewadar(_ context.Context, id, newName string) []models.Sewadar {
	if m.renamed == nil {
		m.renamed = make(map[string]string)
	}
	m.renamed[id] = newName
	return m.sewadars
}

func (m *mockDirectory) DeleteSewadar(_ context.Context, id string) []models.Sewadar {
	m.deleted = append(m.deleted, id)
	return m.sewadars
}

func (m *mockDirectory) ListCounters(_ context.Context) []models.Counter {
	return m.counters
}

func (m *mockDirectory) AddCounter(_ context.Context, name string) []models.Counter {
	m.counters = append(m.counters, models.Counter{ID: name, Name: name})
	return m.counters
}

type mockSummarizer struct {
	text string
}

func (m *mockSummarizer) Generate(_ context.Context, _ string, _ []models.AttendanceRecord) string {
	return m.text
}

// Ensure mocks implement the interfaces
var (
	_ services.AttendanceDesk = (*mockDesk)(nil)
	_ services.Directory      = (*mockDirectory)(nil)
	_ services.Summarizer     = (*mockSummarizer)(nil)
)

func newTestMux(desk *mockDesk, dir *mockDirectory, summarizer *mockSummarizer) *http.ServeMux {
	logger := zap.NewNop()
	mux := http.NewServeMux()
	NewAttendanceHandler(desk, dir, logger).Register(mux)
	NewTeamHandler(dir).Register(mux)
	NewReportHandler(desk, summarizer, logger).Register(mux)
	return mux
}
