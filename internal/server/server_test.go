package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/factors"
	"github.com/rshade/carbonbuddy/internal/tracker"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	table, eq, err := factors.LoadDefault()
	require.NoError(t, err)

	defaults := engine.Defaults{CommuteMode: "car_petrol", DietType: "meat_mixed_meal"}
	est, err := engine.NewEstimator(table, defaults)
	require.NoError(t, err)
	calc, err := engine.NewCalculator(table, defaults)
	require.NoError(t, err)

	store := tracker.NewMemStore(tracker.GlobalStats{
		TotalCO2SavedKg:    48520.3,
		TotalActionsLogged: 8942,
		TotalUsers:         847,
	})
	trk := tracker.New(store, est, calc, eq, defaults)

	return New(trk, zerolog.Nop()).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func onboardSarah(t *testing.T, handler http.Handler) {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/onboard-quick", map[string]any{
		"user_id":             "u1",
		"display_name":        "Sarah",
		"commute_mode":        "car",
		"commute_distance_km": 10,
		"food_vibe":           "flex",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestOnboardQuick(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/onboard-quick", map[string]any{
		"user_id":             "u1",
		"display_name":        "Sarah",
		"city":                "Pittsburgh",
		"country":             "USA",
		"commute_mode":        "car",
		"commute_distance_km": 10,
		"food_vibe":           "flex",
		"has_ac":              false,
		"has_heating":         true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Baseline struct {
			Annual    float64 `json:"annual"`
			Weekly    float64 `json:"weekly"`
			Breakdown struct {
				Transport int `json:"transport"`
				Food      int `json:"food"`
				Energy    int `json:"energy"`
				Other     int `json:"other"`
			} `json:"breakdown"`
		} `json:"baseline"`
		BiggestSource string `json:"biggest_source"`
		UserProfile   struct {
			CommuteMode        string `json:"commute_mode"`
			DietType           string `json:"diet_type"`
			HeatingType        string `json:"heating_type"`
			OnboardingComplete bool   `json:"onboarding_complete"`
		} `json:"user_profile"`
	}
	decodeBody(t, rec, &resp)

	assert.InDelta(t, 6164, resp.Baseline.Annual, 1e-9)
	assert.InDelta(t, 119, resp.Baseline.Weekly, 1e-9)
	assert.Equal(t, 100, resp.Baseline.Breakdown.Transport+resp.Baseline.Breakdown.Food+
		resp.Baseline.Breakdown.Energy+resp.Baseline.Breakdown.Other)
	assert.Equal(t, "food", resp.BiggestSource)
	assert.Equal(t, "car_petrol", resp.UserProfile.CommuteMode)
	assert.Equal(t, "meat_mixed_meal", resp.UserProfile.DietType)
	assert.Equal(t, "gas", resp.UserProfile.HeatingType)
	assert.True(t, resp.UserProfile.OnboardingComplete)
}

func TestOnboardQuickRemoteZeroesDistance(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/onboard-quick", map[string]any{
		"user_id":             "u1",
		"commute_mode":        "remote",
		"commute_distance_km": 25,
		"food_vibe":           "vegan",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserProfile struct {
			CommuteMode       string  `json:"commute_mode"`
			CommuteDistanceKm float64 `json:"commute_distance_km"`
		} `json:"user_profile"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "bike_walk", resp.UserProfile.CommuteMode)
	assert.Zero(t, resp.UserProfile.CommuteDistanceKm)
}

func TestOnboardQuickValidation(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("missing user_id", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/onboard-quick", map[string]any{
			"commute_mode": "car",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_id")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/onboard-quick", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLog(t *testing.T) {
	handler := newTestHandler(t)
	onboardSarah(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/log", map[string]any{
		"user_id": "u1",
		"actions": []map[string]any{
			{"category": "food", "type_key": "vegan_meal", "quantity": 1},
			{"category": "transport", "type_key": "bus", "quantity": 10},
			{"category": "food", "type_key": "unicorn_meal", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ActionsLogged []struct {
			TypeKey    string  `json:"type_key"`
			CO2SavedKg float64 `json:"co2_saved_kg"`
		} `json:"actions_logged"`
		TotalSavedKg float64  `json:"total_saved_kg"`
		Skipped      []string `json:"skipped"`
		Equivalency  string   `json:"equivalency"`
	}
	decodeBody(t, rec, &resp)

	require.Len(t, resp.ActionsLogged, 2)
	assert.InDelta(t, 1.8, resp.ActionsLogged[0].CO2SavedKg, 1e-9)
	assert.InDelta(t, 3.0, resp.TotalSavedKg, 1e-9)
	assert.Equal(t, []string{"unicorn_meal"}, resp.Skipped)
	assert.NotEmpty(t, resp.Equivalency)
}

func TestLogValidation(t *testing.T) {
	handler := newTestHandler(t)
	onboardSarah(t, handler)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
		wantText string
	}{
		{
			name:     "missing user_id",
			body:     map[string]any{"actions": []map[string]any{{"category": "food", "type_key": "vegan_meal", "quantity": 1}}},
			wantCode: http.StatusBadRequest,
			wantText: "user_id",
		},
		{
			name:     "empty actions",
			body:     map[string]any{"user_id": "u1", "actions": []map[string]any{}},
			wantCode: http.StatusBadRequest,
			wantText: "actions",
		},
		{
			name:     "unknown category",
			body:     map[string]any{"user_id": "u1", "actions": []map[string]any{{"category": "snacks", "type_key": "vegan_meal", "quantity": 1}}},
			wantCode: http.StatusBadRequest,
			wantText: "category",
		},
		{
			name:     "unknown user maps to 404",
			body:     map[string]any{"user_id": "ghost", "actions": []map[string]any{{"category": "food", "type_key": "vegan_meal", "quantity": 1}}},
			wantCode: http.StatusNotFound,
			wantText: "not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/log", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantText)
		})
	}
}

func TestDashboard(t *testing.T) {
	handler := newTestHandler(t)
	onboardSarah(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/log", map[string]any{
		"user_id": "u1",
		"actions": []map[string]any{{"category": "food", "type_key": "vegan_meal", "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/dashboard/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DisplayName     string  `json:"display_name"`
		TotalCO2SavedKg float64 `json:"total_co2_saved_kg"`
		ActionsCount    int     `json:"actions_count"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Sarah", resp.DisplayName)
	assert.InDelta(t, 1.8, resp.TotalCO2SavedKg, 1e-9)
	assert.Equal(t, 1, resp.ActionsCount)

	rec = doJSON(t, handler, http.MethodGet, "/api/dashboard/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGlobalStats(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/stats/global", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalCO2SavedKg float64 `json:"total_co2_saved_kg"`
		ActiveUsers     int64   `json:"active_users"`
	}
	decodeBody(t, rec, &resp)
	assert.InDelta(t, 48520.3, resp.TotalCO2SavedKg, 1e-9)
	assert.Equal(t, int64(847), resp.ActiveUsers)
}

func TestMethodRouting(t *testing.T) {
	handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/log", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
