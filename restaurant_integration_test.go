package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/realtime"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/testutil"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

// TestEndToEndIntegration walks the main flow:
// 1. admin logs in
// 2. a restaurant is created through the guided form
// 3. staff screens subscribe to booking events
// 4. a guest books a named table, another lets the optimiser choose
// 5. the day's list shows both, a cancellation frees the table again
func TestEndToEndIntegration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, database.SeedAdmin(db, "admin@example.com", "admin-password"))

	cfg := &config.Config{CORSOrigins: []string{"*"}, RateLimit: 1000, RateInterval: time.Second}
	hub := realtime.NewHub()
	srv := httptest.NewServer(router.SetupRouter(db, cfg, hub))
	t.Cleanup(srv.Close)

	// 1. login
	var login struct {
		Token string `json:"token"`
	}
	code := call(t, srv, http.MethodPost, "/login", "", map[string]string{
		"email": "admin@example.com", "password": "admin-password",
	}, &login)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, login.Token)

	// 2. restaurant with four tables
	var restaurant struct {
		ID     uint `json:"id"`
		Tables []struct {
			ID       uint `json:"id"`
			Capacity int  `json:"capacity"`
		} `json:"tables"`
	}
	code = call(t, srv, http.MethodPost, "/restaurants", "", map[string]interface{}{
		"name":         "Integration Grill",
		"description":  "End to end",
		"opening_time": "17:00",
		"closing_time": "23:00",
		"tables": []map[string]interface{}{
			{"name": "Two", "capacity": 2},
			{"name": "Four", "capacity": 4, "count": 2},
			{"name": "Six", "capacity": 6},
		},
	}, &restaurant)
	require.Equal(t, http.StatusCreated, code)
	require.Len(t, restaurant.Tables, 4)

	// 3. websocket subscriber
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/bookings?token=" + login.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// 4. bookings
	bookingsPath := fmt.Sprintf("/restaurants/%d/bookings", restaurant.ID)
	var first struct {
		Reference string `json:"reference"`
		TableID   uint   `json:"table_id"`
	}
	code = call(t, srv, http.MethodPost, bookingsPath, "", map[string]interface{}{
		"party_size":     4,
		"start":          "2099-06-15T19:00",
		"length_minutes": 120,
		"table_id":       restaurant.Tables[1].ID,
	}, &first)
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event realtime.Message
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, realtime.EventBookingCreated, event.Event)

	var second struct {
		TableID uint `json:"table_id"`
	}
	code = call(t, srv, http.MethodPost, bookingsPath, "", map[string]interface{}{
		"party_size":     3,
		"start":          "2099-06-15T19:30",
		"length_minutes": 60,
		"optimise":       true,
	}, &second)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, restaurant.Tables[2].ID, second.TableID)

	// 5. day list, cancel, rebook
	var day []json.RawMessage
	code = call(t, srv, http.MethodGet, fmt.Sprintf("/admin/restaurants/%d/bookings?date=2099-06-15", restaurant.ID), login.Token, nil, &day)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, day, 2)

	code = call(t, srv, http.MethodPost, bookingsPath, "", map[string]interface{}{
		"party_size": 2, "start": "2099-06-15T20:00", "length_minutes": 60, "table_id": restaurant.Tables[1].ID,
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	code = call(t, srv, http.MethodPost, "/bookings/"+first.Reference+"/cancel", "", nil, nil)
	require.Equal(t, http.StatusOK, code)

	code = call(t, srv, http.MethodPost, bookingsPath, "", map[string]interface{}{
		"party_size": 2, "start": "2099-06-15T20:00", "length_minutes": 60, "table_id": restaurant.Tables[1].ID,
	}, nil)
	assert.Equal(t, http.StatusCreated, code)
}
