// Package services implements business logic for the application
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/repository"
)

var (
	ErrInvalidName       = errors.New("name must not be empty")
	ErrInvalidRecord     = errors.New("invalid attendance record")
	ErrDuplicateName     = errors.New("name already exists")
	ErrCascadeIncomplete = errors.New("cascade to attendance history did not complete")
)

// Gateway is the error-returning store layer. It validates input, assigns
// ids and runs the sewadar cascades; every backend error reaches the caller.
type Gateway struct {
	repos  *repository.Repositories
	newID  func() string
	logger *zap.Logger
}

// NewGateway creates a gateway over one backend
func NewGateway(repos *repository.Repositories, logger *zap.Logger) *Gateway {
	return &Gateway{repos: repos, newID: newRecordID, logger: logger}
}

// newRecordID returns a time-ordered id, so sorting by id follows creation order
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewID exposes the id generator to callers creating records
func (g *Gateway) NewID() string {
	return g.newID()
}

func (g *Gateway) ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	if !models.ValidDate(date) {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidRecord, date)
	}
	return g.repos.Attendance.ListByDate(ctx, date)
}

func (g *Gateway) UpsertRecord(ctx context.Context, record models.AttendanceRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	return g.repos.Attendance.Upsert(ctx, record)
}

func (g *Gateway) DeleteRecord(ctx context.Context, id string) error {
	return g.repos.Attendance.Delete(ctx, id)
}

func (g *Gateway) ListSewadars(ctx context.Context) ([]models.Sewadar, error) {
	return g.repos.Sewadars.List(ctx)
}

// AddSewadar creates a sewadar and returns it. An existing sewadar with the
// same trimmed name is returned together with ErrDuplicateName.
func (g *Gateway) AddSewadar(ctx context.Context, name string) (models.Sewadar, error) {
	name, ok := models.CleanName(name)
	if !ok {
		return models.Sewadar{}, ErrInvalidName
	}

	existing, err := g.repos.Sewadars.List(ctx)
	if err != nil {
		return models.Sewadar{}, err
	}
	for _, s := range existing {
		if s.Name == name {
			return s, ErrDuplicateName
		}
	}

	sewadar := models.Sewadar{ID: g.newID(), Name: name}
	if err := g.repos.Sewadars.Create(ctx, sewadar); err != nil {
		return models.Sewadar{}, err
	}
	return sewadar, nil
}

// RenameSewadar renames the sewadar and then rewrites the name on its
// attendance history. Without a transactional backend the two writes are
// separate; a failure in the second yields ErrCascadeIncomplete.
func (g *Gateway) RenameSewadar(ctx context.Context, id, newName string) error {
	newName, ok := models.CleanName(newName)
	if !ok {
		return ErrInvalidName
	}

	if g.repos.Cascader != nil {
		oldName, err := g.repos.Cascader.RenameSewadarCascade(ctx, id, newName)
		if err != nil {
			return err
		}
		g.logger.Info("sewadar renamed", zap.String("id", id), zap.String("from", oldName), zap.String("to", newName))
		return nil
	}

	current, err := g.repos.Sewadars.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := g.repos.Sewadars.UpdateName(ctx, id, newName); err != nil {
		return err
	}
	n, err := g.repos.Attendance.RenameSewadar(ctx, current.Name, newName)
	if err != nil {
		return fmt.Errorf("%w: renamed %d records of %q: %v", ErrCascadeIncomplete, n, current.Name, err)
	}

	g.logger.Info("sewadar renamed",
		zap.String("id", id), zap.String("from", current.Name), zap.String("to", newName), zap.Int("records", n))
	return nil
}

// DeleteSewadar deletes the sewadar and every attendance record carrying its name
func (g *Gateway) DeleteSewadar(ctx context.Context, id string) error {
	if g.repos.Cascader != nil {
		name, err := g.repos.Cascader.DeleteSewadarCascade(ctx, id)
		if err != nil {
			return err
		}
		g.logger.Info("sewadar deleted", zap.String("id", id), zap.String("name", name))
		return nil
	}

	current, err := g.repos.Sewadars.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := g.repos.Sewadars.Delete(ctx, id); err != nil {
		return err
	}
	n, err := g.repos.Attendance.DeleteBySewadar(ctx, current.Name)
	if err != nil {
		return fmt.Errorf("%w: deleted %d records of %q: %v", ErrCascadeIncomplete, n, current.Name, err)
	}

	g.logger.Info("sewadar deleted", zap.String("id", id), zap.String("name", current.Name), zap.Int("records", n))
	return nil
}

func (g *Gateway) ListCounters(ctx context.Context) ([]models.Counter, error) {
	return g.repos.Counters.List(ctx)
}

// AddCounter creates a counter, with the same duplicate rule as AddSewadar
func (g *Gateway) AddCounter(ctx context.Context, name string) (models.Counter, error) {
	name, ok := models.CleanName(name)
	if !ok {
		return models.Counter{}, ErrInvalidName
	}

	existing, err := g.repos.Counters.List(ctx)
	if err != nil {
		return models.Counter{}, err
	}
	for _, c := range existing {
		if c.Name == name {
			return c, ErrDuplicateName
		}
	}

	counter := models.Counter{ID: g.newID(), Name: name}
	if err := g.repos.Counters.Create(ctx, counter); err != nil {
		return models.Counter{}, err
	}
	return counter, nil
}

func validateRecord(r models.AttendanceRecord) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case r.SewadarName == "" || r.CounterName == "":
		return fmt.Errorf("%w: missing sewadar or counter name", ErrInvalidRecord)
	case !models.ValidDate(r.Date):
		return fmt.Errorf("%w: date %q", ErrInvalidRecord, r.Date)
	case !models.ValidTime(r.InTime):
		return fmt.Errorf("%w: in time %q", ErrInvalidRecord, r.InTime)
	case r.OutTime != nil && !models.ValidTime(*r.OutTime):
		return fmt.Errorf("%w: out time %q", ErrInvalidRecord, *r.OutTime)
	}
	return nil
}
