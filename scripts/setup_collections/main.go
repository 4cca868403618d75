// Command setup_collections creates the attendance collections on an
// external PocketBase server through its REST API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	pocketbaseURL = "http://127.0.0.1:8090"

	timePattern = `^([01]\d|2[0-3]):[0-5]\d$`
	datePattern = `^\d{4}-\d{2}-\d{2}$`
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type field = map[string]interface{}

func main() {
	fmt.Println("🚀 Sewa Attendance Collection Setup")
	fmt.Println("===================================")

	// Load .env file if exists
	godotenv.Load()

	url := getEnv("POCKETBASE_URL", pocketbaseURL)
	token := getEnv("POCKETBASE_TOKEN", "")

	fmt.Printf("Connecting to: %s\n", url)

	if err := checkHealth(url); err != nil {
		fmt.Printf("❌ Cannot connect to PocketBase: %v\n", err)
		fmt.Printf("\nCheck with: curl %s/api/health\n", url)
		os.Exit(1)
	}

	if token == "" {
		fmt.Println("❌ POCKETBASE_TOKEN not set")
		fmt.Println("\nTo get a superuser token:")
		fmt.Printf("  curl -X POST %s/api/collections/_superusers/auth-with-password \\\n", url)
		fmt.Println("    -H \"Content-Type: application/json\" \\")
		fmt.Println("    -d '{\"identity\":\"admin@example.com\",\"password\":\"password123\"}'")
		os.Exit(1)
	}

	if err := testAuth(url, token); err != nil {
		fmt.Printf("❌ Auth test failed: %v\n", err)
		os.Exit(1)
	}

	collections := []struct {
		name   string
		fields []field
		index  []string
	}{
		{
			name:   "sewadars",
			fields: []field{idField(), textField("name", true, 255, "")},
			index:  []string{"CREATE INDEX `idx_sewadars_name` ON `sewadars` (`name`)"},
		},
		{
			name:   "counters",
			fields: []field{idField(), textField("name", true, 255, "")},
		},
		{
			name: "attendance_records",
			fields: []field{
				idField(),
				textField("sewadar_name", true, 255, ""),
				textField("counter_name", true, 255, ""),
				textField("date", true, 0, datePattern),
				textField("in_time", true, 0, timePattern),
				textField("out_time", false, 0, timePattern),
				textField("notes", false, 500, ""),
				numberField("timestamp", true),
			},
			index: []string{
				"CREATE INDEX `idx_attendance_date` ON `attendance_records` (`date`, `timestamp`)",
				"CREATE INDEX `idx_attendance_sewadar` ON `attendance_records` (`sewadar_name`)",
			},
		},
	}

	for _, col := range collections {
		fmt.Printf("\n📦 Creating collection: %s\n", col.name)
		if err := createCollection(url, token, col.name, col.fields, col.index); err != nil {
			fmt.Printf("   ⚠️  %v\n", err)
		} else {
			fmt.Printf("   ✅ Done\n")
		}
	}

	fmt.Println("\n🎉 Setup complete!")
	fmt.Printf("\nAccess Admin UI: %s/_/\n", url)
}

func testAuth(baseURL, token string) error {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/api/collections", nil)
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	fmt.Println("✅ Authentication successful")
	return nil
}

func createCollection(baseURL, token, name string, fields []field, indexes []string) error {
	createData := map[string]interface{}{
		"name":    name,
		"type":    "base",
		"fields":  fields,
		"indexes": indexes,
	}

	body, status, err := send(http.MethodPost, baseURL+"/api/collections", token, createData)
	if err != nil {
		return err
	}

	if status == http.StatusBadRequest && (bytes.Contains(body, []byte("already exists")) || bytes.Contains(body, []byte("must be unique"))) {
		fmt.Printf("   Collection exists, checking fields...\n")
		return updateCollectionFields(baseURL, token, name, fields)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("create failed: HTTP %d - %s", status, string(body))
	}

	fmt.Printf("   Created with %d fields\n", len(fields))
	return nil
}

// updateCollectionFields appends the fields the existing collection lacks
func updateCollectionFields(baseURL, token, name string, fields []field) error {
	body, status, err := send(http.MethodGet, baseURL+"/api/collections/"+name, token, nil)
	if err != nil {
		return fmt.Errorf("failed to get collection: %v", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("get failed: HTTP %d - %s", status, string(body))
	}

	var existing struct {
		Fields []field `json:"fields"`
	}
	if err := json.Unmarshal(body, &existing); err != nil {
		return fmt.Errorf("failed to parse collection: %v", err)
	}

	have := make(map[string]bool)
	for _, f := range existing.Fields {
		if n, ok := f["name"].(string); ok {
			have[n] = true
		}
	}

	var missing []field
	for _, f := range fields {
		if n, _ := f["name"].(string); !have[n] {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		fmt.Printf("   All fields already exist\n")
		return nil
	}

	update := map[string]interface{}{"fields": append(existing.Fields, missing...)}
	body, status, err = send(http.MethodPatch, baseURL+"/api/collections/"+name, token, update)
	if err != nil {
		return fmt.Errorf("failed to update: %v", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("update failed: HTTP %d - %s", status, string(body))
	}

	fmt.Printf("   Added %d new fields\n", len(missing))
	return nil
}

func send(method, url, token string, payload interface{}) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}

// idField widens the system id so application generated UUIDs are accepted
func idField() field {
	return field{
		"name":                "id",
		"type":                "text",
		"system":              true,
		"primaryKey":          true,
		"required":            true,
		"min":                 1,
		"max":                 64,
		"pattern":             "^[a-z0-9-]+$",
		"autogeneratePattern": "[a-z0-9]{15}",
	}
}

func textField(name string, required bool, max int, pattern string) field {
	return field{
		"name":     name,
		"type":     "text",
		"required": required,
		"min":      0,
		"max":      max,
		"pattern":  pattern,
	}
}

func numberField(name string, required bool) field {
	return field{
		"name":     name,
		"type":     "number",
		"required": required,
		"onlyInt":  true,
	}
}

func checkHealth(baseURL string) error {
	resp, err := httpClient.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("✅ PocketBase is running: %s\n", string(body))
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
