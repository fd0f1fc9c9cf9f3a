package tracker

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/carbonbuddy/internal/engine"
	"github.com/rshade/carbonbuddy/internal/equivalency"
)

// annualDays scales a daily savings average to a yearly rate for the
// projection query.
const annualDays = 365

// Tracker coordinates the estimator, the calculator, and the state
// store. A single lock serializes mutations and gives reads a
// consistent snapshot: no caller can observe appended records whose
// counters have not landed, or vice versa.
type Tracker struct {
	mu sync.RWMutex

	store      Store
	estimator  *engine.Estimator
	calculator *engine.Calculator
	equiv      *equivalency.Table
	defaults   engine.Defaults

	now     func() time.Time
	entropy io.Reader
	log     zerolog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock injects the time source, for deterministic tests and for
// back-dated demo seeding.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the tracker's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) { t.log = logger }
}

// New creates a tracker over the given store and engine components.
func New(
	store Store,
	estimator *engine.Estimator,
	calculator *engine.Calculator,
	equiv *equivalency.Table,
	defaults engine.Defaults,
	opts ...Option,
) *Tracker {
	t := &Tracker{
		store:      store,
		estimator:  estimator,
		calculator: calculator,
		equiv:      equiv,
		defaults:   defaults,
		now:        time.Now,
		entropy:    ulid.Monotonic(crand.Reader, 0),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterOrGetUser returns the profile for userID, creating a default
// profile on first sight. Idempotent.
func (t *Tracker) RegisterOrGetUser(ctx context.Context, userID string) (UserProfile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	profile, err := t.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrUnknownUser) {
		return UserProfile{}, err
	}

	profile = t.defaultProfile(userID)
	if err := t.store.PutProfile(ctx, profile); err != nil {
		return UserProfile{}, fmt.Errorf("registering user %q: %w", userID, err)
	}

	t.log.Info().Str("user_id", userID).Msg("registered new user")
	return profile, nil
}

// CompleteOnboarding merges the collected fields into the user's
// profile, recomputes the estimated annual footprint, and marks the
// profile complete. The global user count increments only on the first
// completion for a user; re-onboarding overwrites the profile without
// recounting.
func (t *Tracker) CompleteOnboarding(ctx context.Context, userID string, input OnboardingInput) (OnboardingResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	profile, err := t.store.GetProfile(ctx, userID)
	if errors.Is(err, ErrUnknownUser) {
		profile = t.defaultProfile(userID)
		err = nil
	}
	if err != nil {
		return OnboardingResult{}, err
	}

	firstCompletion := !profile.OnboardingComplete
	mergeInput(&profile, input)

	baseline := profile.baselineProfile()
	profile.EstimatedAnnualFootprintKg = t.estimator.EstimateAnnualKg(baseline)
	profile.OnboardingComplete = true

	if err := t.store.PutProfile(ctx, profile); err != nil {
		return OnboardingResult{}, fmt.Errorf("storing profile %q: %w", userID, err)
	}

	if firstCompletion {
		stats, err := t.store.GlobalStats(ctx)
		if err != nil {
			return OnboardingResult{}, err
		}
		stats.TotalUsers++
		stats.LastUpdated = t.now()
		if err := t.store.SetGlobalStats(ctx, stats); err != nil {
			return OnboardingResult{}, fmt.Errorf("updating global stats: %w", err)
		}
	}

	source, fraction := t.estimator.BiggestSource(baseline)
	t.log.Info().
		Str("user_id", userID).
		Float64("annual_kg", profile.EstimatedAnnualFootprintKg).
		Str("biggest_source", string(source)).
		Bool("first_completion", firstCompletion).
		Msg("onboarding complete")

	return OnboardingResult{
		Profile:         profile,
		AnnualKg:        equivalency.Round0(profile.EstimatedAnnualFootprintKg),
		WeeklyKg:        equivalency.Round0(profile.EstimatedAnnualFootprintKg / 52),
		Breakdown:       t.estimator.Breakdown(baseline),
		BiggestSource:   source,
		BiggestFraction: fraction,
	}, nil
}

// AppendActivities computes savings for each classified activity and
// appends one immutable record per accepted item, updating the global
// counters in the same atomic step. Activities with unknown type keys
// or non-positive quantities are skipped individually; the rest of the
// batch proceeds. Requires a registered, onboarded user.
func (t *Tracker) AppendActivities(ctx context.Context, userID string, activities []engine.Activity) (BatchResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	profile, err := t.store.GetProfile(ctx, userID)
	if err != nil {
		return BatchResult{}, err
	}
	if !profile.OnboardingComplete {
		return BatchResult{}, fmt.Errorf("%w: %q", ErrUserNotOnboarded, userID)
	}

	now := t.now()
	baseline := profile.baselineProfile()

	var (
		results    []ActivityResult
		records    []ActivityRecord
		skipped    []string
		totalSaved float64
	)

	for _, activity := range activities {
		savings, err := t.calculator.ComputeSavings(activity, baseline)
		if err != nil {
			// One malformed activity never invalidates its siblings.
			t.log.Warn().
				Str("user_id", userID).
				Str("type_key", activity.TypeKey).
				Err(err).
				Msg("skipping activity")
			skipped = append(skipped, activity.TypeKey)
			continue
		}

		totalSaved += savings.SavedKg
		results = append(results, ActivityResult{
			TypeKey:     activity.TypeKey,
			DisplayName: savings.Factor.DisplayName,
			Quantity:    activity.Quantity,
			Unit:        savings.Factor.Unit,
			CO2SavedKg:  equivalency.Round2(savings.SavedKg),
			Source:      savings.Factor.Source,
		})
		records = append(records, ActivityRecord{
			ID:         ulid.MustNew(ulid.Timestamp(now), t.entropy).String(),
			UserID:     userID,
			LoggedAt:   now,
			Category:   savings.Factor.Category,
			TypeKey:    activity.TypeKey,
			Quantity:   activity.Quantity,
			CO2SavedKg: savings.SavedKg,
		})
	}

	stats, err := t.store.GlobalStats(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	if len(records) > 0 {
		stats.TotalCO2SavedKg += totalSaved
		stats.TotalActionsLogged += int64(len(records))
		stats.LastUpdated = now
		if err := t.store.AppendBatch(ctx, records, stats); err != nil {
			return BatchResult{}, fmt.Errorf("appending batch for %q: %w", userID, err)
		}

		t.log.Info().
			Str("user_id", userID).
			Int("actions", len(records)).
			Float64("saved_kg", totalSaved).
			Msg("batch appended")
	}

	return BatchResult{
		Results:      results,
		Records:      records,
		TotalSavedKg: equivalency.Round2(totalSaved),
		Skipped:      skipped,
		Equivalency:  t.equiv.Describe(totalSaved),
		Global:       stats,
	}, nil
}

// UserTotalSaved sums co2_saved_kg over the user's records.
func (t *Tracker) UserTotalSaved(ctx context.Context, userID string) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, err := t.store.GetProfile(ctx, userID); err != nil {
		return 0, err
	}
	records, err := t.store.RecordsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return sumSaved(records), nil
}

// UserProjectedAnnualFootprint projects the user's annual footprint
// forward from their current savings rate: the total saved divided by
// distinct calendar days with at least one record, scaled to a year
// and subtracted from the estimated footprint, floored at zero. With
// no active days the estimate is returned unchanged.
func (t *Tracker) UserProjectedAnnualFootprint(ctx context.Context, userID string) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	profile, err := t.store.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	records, err := t.store.RecordsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	return projectFootprint(profile.EstimatedAnnualFootprintKg, records), nil
}

// GlobalWindowSaved sums savings for records logged strictly after the
// cutoff. Callers supply the cutoff for "last minute" or "today".
func (t *Tracker) GlobalWindowSaved(ctx context.Context, since time.Time) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.SavedSince(ctx, since)
}

// DashboardSnapshot builds the per-user dashboard view with display
// rounding applied: cumulative total to one decimal, projected
// footprint to the nearest integer.
func (t *Tracker) DashboardSnapshot(ctx context.Context, userID string) (DashboardSnapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	profile, err := t.store.GetProfile(ctx, userID)
	if err != nil {
		return DashboardSnapshot{}, err
	}
	records, err := t.store.RecordsByUser(ctx, userID)
	if err != nil {
		return DashboardSnapshot{}, err
	}
	stats, err := t.store.GlobalStats(ctx)
	if err != nil {
		return DashboardSnapshot{}, err
	}

	return DashboardSnapshot{
		DisplayName:                profile.DisplayName,
		TotalCO2SavedKg:            equivalency.Round1(sumSaved(records)),
		ActionsCount:               len(records),
		EstimatedAnnualFootprintKg: profile.EstimatedAnnualFootprintKg,
		ProjectedAnnualFootprintKg: equivalency.Round0(projectFootprint(profile.EstimatedAnnualFootprintKg, records)),
		Global:                     stats,
	}, nil
}

// GlobalSnapshot builds the real-time collective view: cumulative
// total to one decimal, the last-minute window to two decimals, and
// today's window (since local midnight) to one decimal.
func (t *Tracker) GlobalSnapshot(ctx context.Context) (GlobalSnapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()

	stats, err := t.store.GlobalStats(ctx)
	if err != nil {
		return GlobalSnapshot{}, err
	}
	lastMinute, err := t.store.SavedSince(ctx, now.Add(-time.Minute))
	if err != nil {
		return GlobalSnapshot{}, err
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := t.store.SavedSince(ctx, midnight)
	if err != nil {
		return GlobalSnapshot{}, err
	}

	return GlobalSnapshot{
		TotalCO2SavedKg: equivalency.Round1(stats.TotalCO2SavedKg),
		LastMinuteKg:    equivalency.Round2(lastMinute),
		TodayKg:         equivalency.Round1(today),
		ActiveUsers:     stats.TotalUsers,
		Timestamp:       now,
	}, nil
}

// defaultProfile is the profile a user gets on first contact.
func (t *Tracker) defaultProfile(userID string) UserProfile {
	return UserProfile{
		UserID:      userID,
		CommuteMode: t.defaults.CommuteMode,
		DietType:    t.defaults.DietType,
		MealsPerDay: 3,
	}
}

// mergeInput applies non-zero onboarding fields onto the profile.
// Booleans and the commute distance always overwrite: "no AC" and
// "zero commute" are meaningful answers, not absent ones.
func mergeInput(profile *UserProfile, input OnboardingInput) {
	if input.DisplayName != "" {
		profile.DisplayName = input.DisplayName
	}
	if input.City != "" {
		profile.City = input.City
	}
	if input.Country != "" {
		profile.Country = input.Country
	}
	if input.CommuteMode != "" {
		profile.CommuteMode = input.CommuteMode
	}
	if input.DietType != "" {
		profile.DietType = input.DietType
	}
	if input.MealsPerDay > 0 {
		profile.MealsPerDay = input.MealsPerDay
	}
	if input.HeatingType != "" {
		profile.HeatingType = input.HeatingType
	}
	profile.CommuteDistanceKm = input.CommuteDistanceKm
	profile.HasAC = input.HasAC
}

func sumSaved(records []ActivityRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.CO2SavedKg
	}
	return sum
}

// projectFootprint implements the savings-rate projection over
// distinct calendar days.
func projectFootprint(estimatedKg float64, records []ActivityRecord) float64 {
	if len(records) == 0 {
		return estimatedKg
	}

	days := make(map[string]struct{}, len(records))
	for _, r := range records {
		days[r.LoggedAt.Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return estimatedKg
	}

	dailyAvg := sumSaved(records) / float64(len(days))
	projected := estimatedKg - dailyAvg*annualDays
	if projected < 0 {
		return 0
	}
	return projected
}
