// Package storage provides the durable, SQLite-backed implementation
// of the tracker's Store interface. The in-memory store in the tracker
// package remains the default; this one survives restarts.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rshade/carbonbuddy/internal/factors"
	"github.com/rshade/carbonbuddy/internal/tracker"
)

// timeLayout is a fixed-width UTC layout so timestamp strings compare
// lexicographically in SQL.
const timeLayout = "2006-01-02 15:04:05.000000000"

// SQLiteStore implements tracker.Store over a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ tracker.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if necessary) the database at dbPath,
// applies migrations, and seeds the global counters when the stats row
// does not exist yet.
func NewSQLiteStore(dbPath string, seed tracker.GlobalStats) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seedStats(seed); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) seedStats(seed tracker.GlobalStats) error {
	_, err := s.db.Exec(
		`INSERT INTO global_stats (id, total_co2_saved_kg, total_actions_logged, total_users, last_updated)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		seed.TotalCO2SavedKg, seed.TotalActionsLogged, seed.TotalUsers, formatTime(seed.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("seed global stats: %w", err)
	}
	return nil
}

// GetProfile implements tracker.Store.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (tracker.UserProfile, error) {
	var (
		p          tracker.UserProfile
		hasAC      int64
		onboarding int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, city, country, commute_mode, commute_distance_km,
		        diet_type, meals_per_day, has_ac, heating_type, onboarding_complete,
		        estimated_annual_footprint_kg
		 FROM user_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.DisplayName, &p.City, &p.Country, &p.CommuteMode,
			&p.CommuteDistanceKm, &p.DietType, &p.MealsPerDay, &hasAC,
			&p.HeatingType, &onboarding, &p.EstimatedAnnualFootprintKg)
	if errors.Is(err, sql.ErrNoRows) {
		return tracker.UserProfile{}, fmt.Errorf("%w: %q", tracker.ErrUnknownUser, userID)
	}
	if err != nil {
		return tracker.UserProfile{}, fmt.Errorf("get profile %q: %w", userID, err)
	}

	p.HasAC = hasAC != 0
	p.OnboardingComplete = onboarding != 0
	return p, nil
}

// PutProfile implements tracker.Store.
func (s *SQLiteStore) PutProfile(ctx context.Context, p tracker.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, display_name, city, country, commute_mode,
		        commute_distance_km, diet_type, meals_per_day, has_ac, heating_type,
		        onboarding_complete, estimated_annual_footprint_kg)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		        display_name = excluded.display_name,
		        city = excluded.city,
		        country = excluded.country,
		        commute_mode = excluded.commute_mode,
		        commute_distance_km = excluded.commute_distance_km,
		        diet_type = excluded.diet_type,
		        meals_per_day = excluded.meals_per_day,
		        has_ac = excluded.has_ac,
		        heating_type = excluded.heating_type,
		        onboarding_complete = excluded.onboarding_complete,
		        estimated_annual_footprint_kg = excluded.estimated_annual_footprint_kg`,
		p.UserID, p.DisplayName, p.City, p.Country, p.CommuteMode,
		p.CommuteDistanceKm, p.DietType, p.MealsPerDay, boolToInt(p.HasAC),
		p.HeatingType, boolToInt(p.OnboardingComplete), p.EstimatedAnnualFootprintKg)
	if err != nil {
		return fmt.Errorf("put profile %q: %w", p.UserID, err)
	}
	return nil
}

// RecordsByUser implements tracker.Store.
func (s *SQLiteStore) RecordsByUser(ctx context.Context, userID string) ([]tracker.ActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, logged_at, category, type_key, quantity, co2_saved_kg
		 FROM activity_records WHERE user_id = ? ORDER BY logged_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("records for %q: %w", userID, err)
	}
	defer rows.Close()

	var out []tracker.ActivityRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SavedSince implements tracker.Store.
func (s *SQLiteStore) SavedSince(ctx context.Context, since time.Time) (float64, error) {
	var sum sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(co2_saved_kg) FROM activity_records WHERE logged_at > ?`,
		formatTime(since)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("saved since: %w", err)
	}
	return sum.Float64, nil
}

// AppendBatch implements tracker.Store. Records and the counter update
// commit in a single transaction.
func (s *SQLiteStore) AppendBatch(ctx context.Context, records []tracker.ActivityRecord, stats tracker.GlobalStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activity_records (id, user_id, logged_at, category, type_key, quantity, co2_saved_kg)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.UserID, formatTime(r.LoggedAt), string(r.Category),
			r.TypeKey, r.Quantity, r.CO2SavedKg); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}

	if err := setStatsTx(ctx, tx, stats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// GlobalStats implements tracker.Store.
func (s *SQLiteStore) GlobalStats(ctx context.Context) (tracker.GlobalStats, error) {
	var (
		stats tracker.GlobalStats
		ts    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT total_co2_saved_kg, total_actions_logged, total_users, last_updated
		 FROM global_stats WHERE id = 1`).
		Scan(&stats.TotalCO2SavedKg, &stats.TotalActionsLogged, &stats.TotalUsers, &ts)
	if err != nil {
		return tracker.GlobalStats{}, fmt.Errorf("global stats: %w", err)
	}
	stats.LastUpdated, err = parseTime(ts)
	if err != nil {
		return tracker.GlobalStats{}, err
	}
	return stats, nil
}

// SetGlobalStats implements tracker.Store.
func (s *SQLiteStore) SetGlobalStats(ctx context.Context, stats tracker.GlobalStats) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE global_stats SET total_co2_saved_kg = ?, total_actions_logged = ?,
		        total_users = ?, last_updated = ? WHERE id = 1`,
		stats.TotalCO2SavedKg, stats.TotalActionsLogged, stats.TotalUsers,
		formatTime(stats.LastUpdated))
	if err != nil {
		return fmt.Errorf("set global stats: %w", err)
	}
	return nil
}

func setStatsTx(ctx context.Context, tx *sql.Tx, stats tracker.GlobalStats) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE global_stats SET total_co2_saved_kg = ?, total_actions_logged = ?,
		        total_users = ?, last_updated = ? WHERE id = 1`,
		stats.TotalCO2SavedKg, stats.TotalActionsLogged, stats.TotalUsers,
		formatTime(stats.LastUpdated))
	if err != nil {
		return fmt.Errorf("set global stats: %w", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (tracker.ActivityRecord, error) {
	var (
		r        tracker.ActivityRecord
		loggedAt string
		category string
	)
	if err := rows.Scan(&r.ID, &r.UserID, &loggedAt, &category, &r.TypeKey,
		&r.Quantity, &r.CO2SavedKg); err != nil {
		return tracker.ActivityRecord{}, fmt.Errorf("scan record: %w", err)
	}

	t, err := parseTime(loggedAt)
	if err != nil {
		return tracker.ActivityRecord{}, err
	}
	r.LoggedAt = t
	r.Category = factors.Category(category)
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
