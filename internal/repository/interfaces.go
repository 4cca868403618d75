// Package repository defines repository interfaces for data access
package repository

import (
	"context"
	"errors"

	"sewa-attendance/internal/models"
)

// ErrNotFound is returned when a record id does not exist in the backend
var ErrNotFound = errors.New("record not found")

// SewadarRepository defines the interface for sewadar data access
type SewadarRepository interface {
	// List returns all sewadars ordered by name ascending
	List(ctx context.Context) ([]models.Sewadar, error)
	// Get returns the sewadar with the given id or ErrNotFound
	Get(ctx context.Context, id string) (*models.Sewadar, error)
	// Create inserts a new sewadar with a caller-assigned id
	Create(ctx context.Context, sewadar models.Sewadar) error
	// UpdateName changes the name of an existing sewadar
	UpdateName(ctx context.Context, id, name string) error
	// Delete removes a sewadar
	Delete(ctx context.Context, id string) error
}

// CounterRepository defines the interface for counter data access
type CounterRepository interface {
	// List returns all counters ordered by id ascending
	List(ctx context.Context) ([]models.Counter, error)
	// Create inserts a new counter with a caller-assigned id
	Create(ctx context.Context, counter models.Counter) error
}

// AttendanceRepository defines the interface for attendance data access
type AttendanceRepository interface {
	// ListByDate returns the records of one date, newest check-in first
	ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error)
	// Upsert inserts the record or replaces every field of an existing one
	Upsert(ctx context.Context, record models.AttendanceRecord) error
	// Delete removes a record; a missing id is not an error
	Delete(ctx context.Context, id string) error
	// RenameSewadar rewrites sewadar_name from oldName to newName on every record
	RenameSewadar(ctx context.Context, oldName, newName string) (int, error)
	// DeleteBySewadar removes every record whose sewadar_name equals name
	DeleteBySewadar(ctx context.Context, name string) (int, error)
}

// SewadarCascader is implemented by backends that can rename or delete a
// sewadar together with its attendance history in a single transaction.
type SewadarCascader interface {
	RenameSewadarCascade(ctx context.Context, id, newName string) (oldName string, err error)
	DeleteSewadarCascade(ctx context.Context, id string) (name string, err error)
}

// Repositories groups the three repositories of one backend
type Repositories struct {
	Sewadars   SewadarRepository
	Counters   CounterRepository
	Attendance AttendanceRepository
	// Cascader is nil when the backend cannot run cascades atomically
	Cascader SewadarCascader
	// Close releases backend resources
	Close func()
}
