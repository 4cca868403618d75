// Package repository provides PocketBase REST API implementations
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
)

const (
	collectionSewadars   = "sewadars"
	collectionCounters   = "counters"
	collectionAttendance = "attendance_records"

	pocketBasePerPage = 500
)

// pocketBaseClient holds the connection details shared by the REST repositories
type pocketBaseClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
}

func newPocketBaseClient(baseURL, authToken string, logger *zap.Logger) *pocketBaseClient {
	return &pocketBaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// NewPocketBaseRepositories creates the REST repositories for one PocketBase server
func NewPocketBaseRepositories(baseURL, authToken string, logger *zap.Logger) *Repositories {
	client := newPocketBaseClient(baseURL, authToken, logger)
	return &Repositories{
		Sewadars:   &PocketBaseRESTSewadarRepository{client: client},
		Counters:   &PocketBaseRESTCounterRepository{client: client},
		Attendance: &PocketBaseRESTAttendanceRepository{client: client},
		Close:      func() {},
	}
}

func (c *pocketBaseClient) addAuthHeader(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", c.authToken)
	}
}

func (c *pocketBaseClient) recordsURL(collection string) string {
	return fmt.Sprintf("%s/api/collections/%s/records", c.baseURL, collection)
}

func (c *pocketBaseClient) recordURL(collection, id string) string {
	return c.recordsURL(collection) + "/" + url.PathEscape(id)
}

// do sends a request and returns the response body, mapping 404 to ErrNotFound
func (c *pocketBaseClient) do(ctx context.Context, method, apiURL string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addAuthHeader(req)

	c.logger.Debug("pocketbase request", zap.String("method", method), zap.String("url", apiURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pocketbase response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("pocketbase %s %s: %s - %s", method, apiURL, resp.Status, string(respBody))
	}
	return respBody, nil
}

// listAll walks every page of a collection listing, decoding each page's items with decode
func (c *pocketBaseClient) listAll(ctx context.Context, collection, filter, sort string, decode func(json.RawMessage) error) error {
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("perPage", strconv.Itoa(pocketBasePerPage))
		if filter != "" {
			query.Set("filter", filter)
		}
		if sort != "" {
			query.Set("sort", sort)
		}

		body, err := c.do(ctx, http.MethodGet, c.recordsURL(collection)+"?"+query.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", collection, err)
		}

		var result struct {
			Page       int             `json:"page"`
			TotalPages int             `json:"totalPages"`
			Items      json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to decode %s page %d: %w", collection, page, err)
		}
		if err := decode(result.Items); err != nil {
			return fmt.Errorf("failed to decode %s items: %w", collection, err)
		}

		if result.TotalPages <= page {
			return nil
		}
	}
}

// pbQuote quotes a string literal for a PocketBase filter expression
func pbQuote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// PocketBaseRESTSewadarRepository implements SewadarRepository
type PocketBaseRESTSewadarRepository struct {
	client *pocketBaseClient
}

func (r *PocketBaseRESTSewadarRepository) List(ctx context.Context) ([]models.Sewadar, error) {
	sewadars := []models.Sewadar{}
	err := r.client.listAll(ctx, collectionSewadars, "", "name", func(items json.RawMessage) error {
		var page []models.Sewadar
		if err := json.Unmarshal(items, &page); err != nil {
			return err
		}
		sewadars = append(sewadars, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sewadars, nil
}

func (r *PocketBaseRESTSewadarRepository) Get(ctx context.Context, id string) (*models.Sewadar, error) {
	body, err := r.client.do(ctx, http.MethodGet, r.client.recordURL(collectionSewadars, id), nil)
	if err != nil {
		return nil, err
	}
	var sewadar models.Sewadar
	if err := json.Unmarshal(body, &sewadar); err != nil {
		return nil, fmt.Errorf("failed to decode sewadar: %w", err)
	}
	return &sewadar, nil
}

func (r *PocketBaseRESTSewadarRepository) Create(ctx context.Context, sewadar models.Sewadar) error {
	data := map[string]interface{}{
		"id":   sewadar.ID,
		"name": sewadar.Name,
	}
	if _, err := r.client.do(ctx, http.MethodPost, r.client.recordsURL(collectionSewadars), data); err != nil {
		return fmt.Errorf("failed to create sewadar: %w", err)
	}
	return nil
}

func (r *PocketBaseRESTSewadarRepository) UpdateName(ctx context.Context, id, name string) error {
	data := map[string]interface{}{"name": name}
	_, err := r.client.do(ctx, http.MethodPatch, r.client.recordURL(collectionSewadars, id), data)
	return err
}

func (r *PocketBaseRESTSewadarRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.client.recordURL(collectionSewadars, id), nil)
	return err
}

// PocketBaseRESTCounterRepository implements CounterRepository
type PocketBaseRESTCounterRepository struct {
	client *pocketBaseClient
}

func (r *PocketBaseRESTCounterRepository) List(ctx context.Context) ([]models.Counter, error) {
	counters := []models.Counter{}
	err := r.client.listAll(ctx, collectionCounters, "", "id", func(items json.RawMessage) error {
		var page []models.Counter
		if err := json.Unmarshal(items, &page); err != nil {
			return err
		}
		counters = append(counters, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counters, nil
}

func (r *PocketBaseRESTCounterRepository) Create(ctx context.Context, counter models.Counter) error {
	data := map[string]interface{}{
		"id":   counter.ID,
		"name": counter.Name,
	}
	if _, err := r.client.do(ctx, http.MethodPost, r.client.recordsURL(collectionCounters), data); err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	return nil
}

// attendanceRow is the snake_case shape of attendance_records.
// PocketBase text fields cannot hold null, so an active shift has out_time "".
type attendanceRow struct {
	ID          string `json:"id"`
	SewadarName string `json:"sewadar_name"`
	CounterName string `json:"counter_name"`
	Date        string `json:"date"`
	InTime      string `json:"in_time"`
	OutTime     string `json:"out_time"`
	Notes       string `json:"notes"`
	Timestamp   int64  `json:"timestamp"`
}

func toAttendanceRow(r models.AttendanceRecord) attendanceRow {
	row := attendanceRow{
		ID:          r.ID,
		SewadarName: r.SewadarName,
		CounterName: r.CounterName,
		Date:        r.Date,
		InTime:      r.InTime,
		Notes:       r.Notes,
		Timestamp:   r.Timestamp,
	}
	if r.OutTime != nil {
		row.OutTime = *r.OutTime
	}
	return row
}

func (row attendanceRow) record() models.AttendanceRecord {
	r := models.AttendanceRecord{
		ID:          row.ID,
		SewadarName: row.SewadarName,
		CounterName: row.CounterName,
		Date:        row.Date,
		InTime:      row.InTime,
		Notes:       row.Notes,
		Timestamp:   row.Timestamp,
	}
	if row.OutTime != "" {
		r.OutTime = models.StringPtr(row.OutTime)
	}
	return r
}

// PocketBaseRESTAttendanceRepository implements AttendanceRepository
type PocketBaseRESTAttendanceRepository struct {
	client *pocketBaseClient
}

func (r *PocketBaseRESTAttendanceRepository) list(ctx context.Context, filter, sort string) ([]attendanceRow, error) {
	var rows []attendanceRow
	err := r.client.listAll(ctx, collectionAttendance, filter, sort, func(items json.RawMessage) error {
		var page []attendanceRow
		if err := json.Unmarshal(items, &page); err != nil {
			return err
		}
		rows = append(rows, page...)
		return nil
	})
	return rows, err
}

func (r *PocketBaseRESTAttendanceRepository) ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	rows, err := r.list(ctx, "date="+pbQuote(date), "-timestamp")
	if err != nil {
		return nil, err
	}

	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// Upsert looks the record up by id, then PATCHes it or POSTs a new one
func (r *PocketBaseRESTAttendanceRepository) Upsert(ctx context.Context, record models.AttendanceRecord) error {
	row := toAttendanceRow(record)

	_, err := r.client.do(ctx, http.MethodGet, r.client.recordURL(collectionAttendance, record.ID), nil)
	switch {
	case err == nil:
		_, err = r.client.do(ctx, http.MethodPatch, r.client.recordURL(collectionAttendance, record.ID), row)
	case err == ErrNotFound:
		_, err = r.client.do(ctx, http.MethodPost, r.client.recordsURL(collectionAttendance), row)
	}
	if err != nil {
		return fmt.Errorf("failed to save attendance %s: %w", record.ID, err)
	}
	return nil
}

func (r *PocketBaseRESTAttendanceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.client.recordURL(collectionAttendance, id), nil)
	if err == ErrNotFound {
		return nil
	}
	return err
}

// RenameSewadar PATCHes each matching record in turn; PocketBase has no bulk update
func (r *PocketBaseRESTAttendanceRepository) RenameSewadar(ctx context.Context, oldName, newName string) (int, error) {
	rows, err := r.list(ctx, "sewadar_name="+pbQuote(oldName), "")
	if err != nil {
		return 0, err
	}

	updated := 0
	data := map[string]interface{}{"sewadar_name": newName}
	for _, row := range rows {
		if _, err := r.client.do(ctx, http.MethodPatch, r.client.recordURL(collectionAttendance, row.ID), data); err != nil {
			return updated, fmt.Errorf("failed to rename sewadar on record %s: %w", row.ID, err)
		}
		updated++
	}
	return updated, nil
}

func (r *PocketBaseRESTAttendanceRepository) DeleteBySewadar(ctx context.Context, name string) (int, error) {
	rows, err := r.list(ctx, "sewadar_name="+pbQuote(name), "")
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, row := range rows {
		if err := r.Delete(ctx, row.ID); err != nil {
			return deleted, fmt.Errorf("failed to delete record %s: %w", row.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
