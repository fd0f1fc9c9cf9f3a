// Package tracker owns the user registry, the ordered activity log,
// and the global counters, and answers the cumulative, windowed, and
// projection queries over them.
package tracker

import (
	"time"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/factors"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrUnknownUser indicates a user ID that was never registered.
	ErrUnknownUser = constError("unknown user")

	// ErrUserNotOnboarded indicates a mutating operation attempted
	// before the user completed onboarding.
	ErrUserNotOnboarded = constError("user has not completed onboarding")
)

// UserProfile is a user's baseline profile. Profiles are created on
// first contact, mutated only through onboarding, and never deleted.
type UserProfile struct {
	UserID                     string  `json:"user_id"`
	DisplayName                string  `json:"display_name,omitempty"`
	City                       string  `json:"city,omitempty"`
	Country                    string  `json:"country,omitempty"`
	CommuteMode                string  `json:"commute_mode"`
	CommuteDistanceKm          float64 `json:"commute_distance_km"`
	DietType                   string  `json:"diet_type"`
	MealsPerDay                int     `json:"meals_per_day"`
	HasAC                      bool    `json:"has_ac"`
	HeatingType                string  `json:"heating_type,omitempty"`
	OnboardingComplete         bool    `json:"onboarding_complete"`
	EstimatedAnnualFootprintKg float64 `json:"estimated_annual_footprint_kg"`
}

// baselineProfile extracts the slice of the profile the engine needs.
func (p UserProfile) baselineProfile() engine.Profile {
	return engine.Profile{
		CommuteMode:       p.CommuteMode,
		CommuteDistanceKm: p.CommuteDistanceKm,
		DietType:          p.DietType,
		MealsPerDay:       p.MealsPerDay,
		HasAC:             p.HasAC,
	}
}

// OnboardingInput carries the profile fields collected by the external
// onboarding collaborator. Zero values leave the stored field
// unchanged (MealsPerDay 0 keeps the existing meal count).
type OnboardingInput struct {
	DisplayName       string  `json:"display_name,omitempty"`
	City              string  `json:"city,omitempty"`
	Country           string  `json:"country,omitempty"`
	CommuteMode       string  `json:"commute_mode,omitempty"`
	CommuteDistanceKm float64 `json:"commute_distance_km"`
	DietType          string  `json:"diet_type,omitempty"`
	MealsPerDay       int     `json:"meals_per_day,omitempty"`
	HasAC             bool    `json:"has_ac"`
	HeatingType       string  `json:"heating_type,omitempty"`
}

// ActivityRecord is one logged activity, immutable once appended.
type ActivityRecord struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	LoggedAt   time.Time        `json:"logged_at"`
	Category   factors.Category `json:"category"`
	TypeKey    string           `json:"type_key"`
	Quantity   float64          `json:"quantity"`
	CO2SavedKg float64          `json:"co2_saved_kg"`
}

// GlobalStats are the process-wide counters. All three totals are
// monotonically non-decreasing.
type GlobalStats struct {
	TotalCO2SavedKg    float64   `json:"total_co2_saved_kg"`
	TotalActionsLogged int64     `json:"total_actions_logged"`
	TotalUsers         int64     `json:"total_users"`
	LastUpdated        time.Time `json:"last_updated"`
}

// OnboardingResult is returned by CompleteOnboarding: the stored
// profile plus the baseline presentation figures the collaborator
// shows the user.
type OnboardingResult struct {
	Profile         UserProfile      `json:"user_profile"`
	AnnualKg        float64          `json:"annual_kg"`
	WeeklyKg        float64          `json:"weekly_kg"`
	Breakdown       engine.Breakdown `json:"breakdown"`
	BiggestSource   factors.Category `json:"biggest_source"`
	BiggestFraction float64          `json:"biggest_fraction"`
}

// ActivityResult is the per-activity output of a logged batch, with
// display rounding already applied to the savings amount.
type ActivityResult struct {
	TypeKey     string  `json:"type_key"`
	DisplayName string  `json:"display_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	CO2SavedKg  float64 `json:"co2_saved_kg"`
	Source      string  `json:"source"`
}

// BatchResult summarises one appended batch.
type BatchResult struct {
	Results      []ActivityResult `json:"actions_logged"`
	Records      []ActivityRecord `json:"-"`
	TotalSavedKg float64          `json:"total_saved_kg"`
	Skipped      []string         `json:"skipped,omitempty"`
	Equivalency  string           `json:"equivalency"`
	Global       GlobalStats      `json:"global_stats"`
}

// DashboardSnapshot is the per-user dashboard view with the display
// rounding policy applied.
type DashboardSnapshot struct {
	DisplayName                string      `json:"display_name"`
	TotalCO2SavedKg            float64     `json:"total_co2_saved_kg"`
	ActionsCount               int         `json:"actions_count"`
	EstimatedAnnualFootprintKg float64     `json:"estimated_annual_footprint_kg"`
	ProjectedAnnualFootprintKg float64     `json:"projected_annual_footprint_kg"`
	Global                     GlobalStats `json:"global"`
}

// GlobalSnapshot is the real-time collective view.
type GlobalSnapshot struct {
	TotalCO2SavedKg float64   `json:"total_co2_saved_kg"`
	LastMinuteKg    float64   `json:"last_minute_kg"`
	TodayKg         float64   `json:"today_kg"`
	ActiveUsers     int64     `json:"active_users"`
	Timestamp       time.Time `json:"timestamp"`
}
