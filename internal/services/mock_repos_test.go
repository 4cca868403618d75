package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/repository"
)

var errBackendDown = errors.New("backend unreachable")

// ── Mock SewadarRepository ──

type mockSewadarRepo struct {
	mu       sync.Mutex
	sewadars map[string]models.Sewadar
	err      error
}

func newMockSewadarRepo() *mockSewadarRepo {
	return &mockSewadarRepo{sewadars: make(map[string]models.Sewadar)}
}

func (m *mockSewadarRepo) List(_ context.Context) ([]models.Sewadar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	result := []models.Sewadar{}
	for _, s := range m.sewadars {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSewadarRepo) Get(_ context.Context, id string) (*models.Sewadar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sewadars[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *mockSewadarRepo) Create(_ context.Context, sewadar models.Sewadar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sewadars[sewadar.ID] = sewadar
	return nil
}

func (m *mockSewadarRepo) UpdateName(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	s, ok := m.sewadars[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Name = name
	m.sewadars[id] = s
	return nil
}

func (m *mockSewadarRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.sewadars, id)
	return nil
}

// ── Mock CounterRepository ──

type mockCounterRepo struct {
	mu       sync.Mutex
	counters map[string]models.Counter
	err      error
}

func newMockCounterRepo() *mockCounterRepo {
	return &mockCounterRepo{counters: make(map[string]models.Counter)}
}

func (m *mockCounterRepo) List(_ context.Context) ([]models.Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	result := []models.Counter{}
	for _, c := range m.counters {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCounterRepo) Create(_ context.Context, counter models.Counter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.counters[counter.ID] = counter
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	mu         sync.Mutex
	records    map[string]models.AttendanceRecord
	err        error
	cascadeErr error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]models.AttendanceRecord)}
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date string) ([]models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	result := []models.AttendanceRecord{}
	for _, r := range m.records {
		if r.Date == date {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp > result[j].Timestamp })
	return result, nil
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record models.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) RenameSewadar(_ context.Context, oldName, newName string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cascadeErr != nil {
		return 0, m.cascadeErr
	}
	n := 0
	for id, r := range m.records {
		if r.SewadarName == oldName {
			r.SewadarName = newName
			m.records[id] = r
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) DeleteBySewadar(_ context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cascadeErr != nil {
		return 0, m.cascadeErr
	}
	n := 0
	for id, r := range m.records {
		if r.SewadarName == name {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) all() []models.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.AttendanceRecord{}
	for _, r := range m.records {
		result = append(result, r)
	}
	return result
}

// ── Mock BotNotifier ──

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) SendNotification(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

// ── Test wiring ──

type testBackend struct {
	sewadars   *mockSewadarRepo
	counters   *mockCounterRepo
	attendance *mockAttendanceRepo
	gateway    *Gateway
	store      *RecordStore
}

func setupTestStore() *testBackend {
	b := &testBackend{
		sewadars:   newMockSewadarRepo(),
		counters:   newMockCounterRepo(),
		attendance: newMockAttendanceRepo(),
	}
	repos := &repository.Repositories{
		Sewadars:   b.sewadars,
		Counters:   b.counters,
		Attendance: b.attendance,
		Close:      func() {},
	}
	logger := zap.NewNop()
	b.gateway = NewGateway(repos, logger)

	seq := 0
	b.gateway.newID = func() string {
		seq++
		return fmt.Sprintf("id-%04d", seq)
	}
	b.store = NewRecordStore(b.gateway, logger)
	return b
}
