package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/factors"
	"github.com/rshade/carbonbuddy/internal/logging"
	"github.com/rshade/carbonbuddy/internal/tracker"
)

// onboardQuickRequest is the survey-based onboarding payload. The
// commute and food answers use the survey vocabulary and are mapped to
// emission-factor type keys here, matching the product survey.
type onboardQuickRequest struct {
	UserID            string  `json:"user_id"`
	DisplayName       string  `json:"display_name"`
	City              string  `json:"city"`
	Country           string  `json:"country"`
	CommuteMode       string  `json:"commute_mode"`
	CommuteDistanceKm float64 `json:"commute_distance_km"`
	FoodVibe          string  `json:"food_vibe"`
	HasAC             bool    `json:"has_ac"`
	HasHeating        bool    `json:"has_heating"`
}

type onboardQuickResponse struct {
	Baseline struct {
		Annual    float64          `json:"annual"`
		Weekly    float64          `json:"weekly"`
		Breakdown engine.Breakdown `json:"breakdown"`
	} `json:"baseline"`
	BiggestSource string              `json:"biggest_source"`
	UserProfile   tracker.UserProfile `json:"user_profile"`
}

// surveyCommuteModes maps survey answers to type keys. Remote workers
// get a zero-distance walking commute.
var surveyCommuteModes = map[string]string{
	"car":     "car_petrol",
	"transit": "bus",
	"bike":    "bike_walk",
	"remote":  "bike_walk",
}

// surveyFoodVibes maps survey answers to type keys.
var surveyFoodVibes = map[string]string{
	"meat":   "beef_heavy_meal",
	"flex":   "meat_mixed_meal",
	"veggie": "vegetarian_meal",
	"vegan":  "vegan_meal",
}

func (s *Server) handleOnboardQuick(w http.ResponseWriter, r *http.Request) {
	var req onboardQuickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	input := tracker.OnboardingInput{
		DisplayName:       req.DisplayName,
		City:              req.City,
		Country:           req.Country,
		CommuteMode:       surveyCommuteModes[req.CommuteMode],
		CommuteDistanceKm: req.CommuteDistanceKm,
		DietType:          surveyFoodVibes[req.FoodVibe],
		MealsPerDay:       3,
		HasAC:             req.HasAC,
	}
	if req.CommuteMode == "remote" {
		input.CommuteDistanceKm = 0
	}
	if req.HasHeating {
		input.HeatingType = "gas"
	} else {
		input.HeatingType = "none"
	}

	result, err := s.tracker.CompleteOnboarding(r.Context(), req.UserID, input)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}

	var resp onboardQuickResponse
	resp.Baseline.Annual = result.AnnualKg
	resp.Baseline.Weekly = result.WeeklyKg
	resp.Baseline.Breakdown = result.Breakdown
	resp.BiggestSource = string(result.BiggestSource)
	resp.UserProfile = result.Profile
	writeJSON(w, http.StatusOK, resp)
}

// logRequest carries a batch of already-classified activities.
type logRequest struct {
	UserID  string `json:"user_id"`
	Actions []struct {
		Category string  `json:"category"`
		TypeKey  string  `json:"type_key"`
		Quantity float64 `json:"quantity"`
	} `json:"actions"`
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Actions) == 0 {
		writeError(w, http.StatusBadRequest, "actions must not be empty")
		return
	}

	activities := make([]engine.Activity, 0, len(req.Actions))
	for _, a := range req.Actions {
		category, err := factors.ParseCategory(a.Category)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		activities = append(activities, engine.Activity{
			Category: category,
			TypeKey:  a.TypeKey,
			Quantity: a.Quantity,
		})
	}

	result, err := s.tracker.AppendActivities(r.Context(), req.UserID, activities)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	snapshot, err := s.tracker.DashboardSnapshot(r.Context(), userID)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.tracker.GlobalSnapshot(r.Context())
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// writeTrackerError maps the error taxonomy to HTTP statuses:
// unknown user is not-found, incomplete onboarding is a failed
// precondition, everything else is internal.
func (s *Server) writeTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tracker.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "user not found; complete onboarding first")
	case errors.Is(err, tracker.ErrUserNotOnboarded):
		writeError(w, http.StatusBadRequest, "complete onboarding first")
	default:
		logging.FromContext(r.Context()).Error().Err(err).Msg("handler failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
