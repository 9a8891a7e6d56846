// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// SeedRestaurant creates a restaurant open 08:00-23:00 UTC with one table per
// capacity, in order, so table IDs follow the slice.
func SeedRestaurant(t *testing.T, db *gorm.DB, name string, capacities ...int) (models.Restaurant, []models.Table) {
	t.Helper()

	r := models.Restaurant{
		Name:        name,
		Description: "Fixture restaurant",
		OpeningTime: "08:00",
		ClosingTime: "23:00",
		Timezone:    "UTC",
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}

	tables := make([]models.Table, 0, len(capacities))
	for i, c := range capacities {
		tb := models.Table{RestaurantID: r.ID, Name: fmt.Sprintf("T%d", i+1), Capacity: c}
		if err := db.Create(&tb).Error; err != nil {
			t.Fatalf("failed to seed table: %v", err)
		}
		tables = append(tables, tb)
	}
	return r, tables
}

// SeedUser creates a staff account with the given role and password.
func SeedUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := models.User{Name: "Test " + role, Email: email, Password: string(hashed), Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

// Envelope mirrors utils.JSONResponse with raw data for per-test decoding.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DoJSON sends body (JSON encoded when non-nil) through r and decodes the envelope.
func DoJSON(t *testing.T, r http.Handler, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env Envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

// Decode unmarshals an envelope's data into v.
func Decode(t *testing.T, env Envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to decode data %s: %v", string(env.Data), err)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}
