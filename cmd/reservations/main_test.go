package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meeting-rooms/internal/config"
)

const seedTOML = `
[[rooms]]
code = "A101"
name = "Focus Room"
capacity = 4

[[rooms]]
code = "B201"
name = "Board Room"
capacity = 12

[[users]]
id = "e101010"
name = "Park Jisoo"
email = "jisoo.park@example.com"
password = "correct horse"

[[users]]
id = "e202020"
name = "Choi Hana"
email = "hana.choi@example.com"
password_hash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3m2WcJ0Z1Ck5Y1ZkFQeG3dW"
`

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.toml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedTOML), 0o600))

	return config.Config{
		HTTPPort:       0,
		SQLitePath:     filepath.Join(dir, "reservations.db"),
		Location:       time.FixedZone("KST", 9*60*60),
		SeedFile:       seedPath,
		LogLevel:       slog.LevelInfo,
		BusyTimeout:    5 * time.Second,
		RequestTimeout: 5 * time.Second,
	}
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func (c apiClient) call(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, payload
}

type reservationView struct {
	ReservationID int64  `json:"reservation_id"`
	UserName      string `json:"user_name"`
	RoomCode      string `json:"room_code"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type errorView struct {
	ErrorCode string `json:"error_code"`
}

func booking(user, room, start, end string) map[string]string {
	return map[string]string{"user_id": user, "room_code": room, "start_time": start, "end_time": end}
}

func TestReservationAPIEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	storage, err := prepareStorage(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	server := httptest.NewServer(newHandler(storage, cfg, logger))
	t.Cleanup(server.Close)
	api := apiClient{t: t, server: server}

	assert.Contains(t, logs.String(), "migration system initialized")
	assert.Contains(t, logs.String(), "seed data applied")

	resp, body := api.call(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = api.call(http.MethodGet, "/meeting-rooms/room-category", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[
		{"room_code":"A101","room_name":"Focus Room","capacity":4},
		{"room_code":"B201","room_name":"Board Room","capacity":12}
	]`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	// Scenario 1: empty room accepts a booking.
	resp, body = api.call(http.MethodPost, "/meeting-rooms/reservations",
		booking("e101010", "A101", "2025-05-06 10:00", "2025-05-06 11:00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var first reservationView
	require.NoError(t, json.Unmarshal(body, &first))
	assert.Equal(t, reservationView{
		ReservationID: first.ReservationID,
		UserName:      "Park Jisoo",
		RoomCode:      "A101",
		StartTime:     "2025-05-06 10:00",
		EndTime:       "2025-05-06 11:00",
	}, first)

	// Scenario 2: overlapping booking is rejected.
	resp, body = api.call(http.MethodPost, "/meeting-rooms/reservations",
		booking("e202020", "A101", "2025-05-06 10:30", "2025-05-06 11:30"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict errorView
	require.NoError(t, json.Unmarshal(body, &conflict))
	assert.Equal(t, "BOOKING_CONFLICT", conflict.ErrorCode)

	// Scenario 3: touching booking is accepted.
	resp, body = api.call(http.MethodPost, "/meeting-rooms/reservations",
		booking("e202020", "A101", "2025-05-06 11:00", "2025-05-06 11:30"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var second reservationView
	require.NoError(t, json.Unmarshal(body, &second))

	// Scenario 4: daily listing returns both, ordered by start.
	resp, body = api.call(http.MethodGet, "/meeting-rooms/reservations/daily?roomCd=A101&date=20250506", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var daily []reservationView
	require.NoError(t, json.Unmarshal(body, &daily))
	require.Len(t, daily, 2)
	assert.Equal(t, first.ReservationID, daily[0].ReservationID)
	assert.Equal(t, second.ReservationID, daily[1].ReservationID)

	// Scenario 5: only the owner may move a booking.
	firstPath := "/meeting-rooms/reservations/" + strconv.FormatInt(first.ReservationID, 10)
	resp, _ = api.call(http.MethodPut, firstPath, booking("e202020", "A101", "2025-05-07 13:00", "2025-05-07 14:00"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = api.call(http.MethodPut, firstPath, booking("e101010", "A101", "2025-05-07 13:00", "2025-05-07 14:00"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var moved reservationView
	require.NoError(t, json.Unmarshal(body, &moved))
	assert.Equal(t, "2025-05-07 13:00", moved.StartTime)

	resp, body = api.call(http.MethodGet, "/meeting-rooms/reservations/monthly?roomCd=A101&date=2025-05", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var monthly []reservationView
	require.NoError(t, json.Unmarshal(body, &monthly))
	require.Len(t, monthly, 2)
	assert.Equal(t, second.ReservationID, monthly[0].ReservationID)

	// Scenario 6: a deleted booking can no longer be modified.
	resp, _ = api.call(http.MethodDelete, firstPath+"?userId=e202020", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.call(http.MethodDelete, firstPath+"?userId=e101010", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = api.call(http.MethodPut, firstPath, booking("e101010", "A101", "2025-05-07 13:00", "2025-05-07 14:00"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var missing errorView
	require.NoError(t, json.Unmarshal(body, &missing))
	assert.Equal(t, "RESERVATION_NOT_FOUND", missing.ErrorCode)

	resp, _ = api.call(http.MethodPost, "/meeting-rooms/reservations",
		booking("e101010", "A101", "2025-05-08 10:15", "2025-05-08 11:00"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = api.call(http.MethodPost, "/meeting-rooms/reservations",
		booking("e101010", "Z999", "2025-05-08 10:00", "2025-05-08 11:00"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPrepareStorageRejectsBrokenSeed(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.SeedFile, []byte("[[rooms]]\ncode = \"A101\"\ncapacity = 0\n"), 0o600))

	_, err := prepareStorage(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load seed data")
}
