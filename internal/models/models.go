// Package models contains data structures for the application
package models

// Sewadar represents a volunteer who can be checked into a counter
type Sewadar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Counter represents a service counter where duty is performed
type Counter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AttendanceRecord represents one duty shift on one date.
// SewadarName and CounterName are snapshots taken at check-in, not references.
// Date is YYYY-MM-DD, times are 24h HH:mm and OutTime is nil while the shift
// is active. Timestamp is the creation instant in unix millis.
type AttendanceRecord struct {
	ID          string  `json:"id"`
	SewadarName string  `json:"sewadarName" validate:"required,max=120"`
	CounterName string  `json:"counterName" validate:"required,max=120"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	InTime      string  `json:"inTime" validate:"required,hhmm"`
	OutTime     *string `json:"outTime" validate:"omitempty,hhmm"`
	Notes       string  `json:"notes,omitempty" validate:"omitempty,max=500"`
	Timestamp   int64   `json:"timestamp"`
}

// CheckInRequest represents a request to start a shift.
// Date and InTime default to today and the current time when empty.
type CheckInRequest struct {
	SewadarName string `json:"sewadarName" validate:"required,max=120"`
	CounterName string `json:"counterName" validate:"required,max=120"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	InTime      string `json:"inTime" validate:"omitempty,hhmm"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// MarkOutRequest represents a request to finish an active shift
type MarkOutRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	OutTime string `json:"outTime" validate:"omitempty,hhmm"`
}

// NameRequest is the payload for adding or renaming a sewadar or counter
type NameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// DaySheet is one date's records together with derived counts
type DaySheet struct {
	Date    string             `json:"date"`
	Active  int                `json:"active"`
	Records []AttendanceRecord `json:"records"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
