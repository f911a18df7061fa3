package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
)

type timetableRow struct {
	UserID    int       `db:"user_id"`
	Date      string    `db:"date"`
	Timezone  string    `db:"timezone"`
	MethodID  int       `db:"method_id"`
	Times     []byte    `db:"times"`
	HijriDate string    `db:"hijri_date"`
	CreatedAt time.Time `db:"created_at"`
}

// GetTimetable looks up the cached timetable for one user and ISO date.
// Returns nil, sql.ErrNoRows on a cache miss.
func (s *pgStore) GetTimetable(userID int, date string) (*model.PrayerTimeTable, error) {
	var row timetableRow
	const q = `
	SELECT user_id, date, timezone, method_id, times, hijri_date, created_at
	  FROM prayer_timetables
	 WHERE user_id = $1 AND date = $2;`
	if err := s.db.Get(&row, q, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Str("date", date).Msg("GetTimetable failed")
		return nil, err
	}

	times := make(map[model.Prayer]string)
	if err := json.Unmarshal(row.Times, &times); err != nil {
		log.Error().Err(err).Str("date", date).Msg("cached timetable is corrupt")
		return nil, err
	}
	return &model.PrayerTimeTable{
		UserID:    row.UserID,
		Date:      row.Date,
		Timezone:  row.Timezone,
		MethodID:  row.MethodID,
		Times:     times,
		HijriDate: row.HijriDate,
		CreatedAt: row.CreatedAt,
	}, nil
}

// PutTimetable inserts or overwrites the timetable for (user, date). Tables
// are immutable per (location, method), so an overwrite only happens when the
// user changed settings and the day was refetched.
func (s *pgStore) PutTimetable(table *model.PrayerTimeTable) error {
	raw, err := json.Marshal(table.Times)
	if err != nil {
		return err
	}
	const q = `
	INSERT INTO prayer_timetables (user_id, date, timezone, method_id, times, hijri_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, now())
	ON CONFLICT (user_id, date) DO UPDATE
	   SET timezone = EXCLUDED.timezone,
	       method_id = EXCLUDED.method_id,
	       times = EXCLUDED.times,
	       hijri_date = EXCLUDED.hijri_date;`
	if _, err := s.db.Exec(q, table.UserID, table.Date, table.Timezone, table.MethodID, raw, table.HijriDate); err != nil {
		log.Error().Err(err).Str("date", table.Date).Msg("PutTimetable failed")
		return err
	}
	return nil
}

// DeleteTimetablesForUser drops every cached table for one user; called when
// a settings change (location, method) invalidates them wholesale.
func (s *pgStore) DeleteTimetablesForUser(userID int) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM prayer_timetables WHERE user_id = $1;`, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("DeleteTimetablesForUser failed")
		return 0, err
	}
	return res.RowsAffected()
}

// PruneTimetables removes every cached entry strictly older than today,
// across all users. Entries for today and future days are retained; pruning
// twice in a row is a no-op the second time.
func (s *pgStore) PruneTimetables(today string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM prayer_timetables WHERE date < $1;`, today)
	if err != nil {
		log.Error().Err(err).Str("today", today).Msg("PruneTimetables failed")
		return 0, err
	}
	return res.RowsAffected()
}
