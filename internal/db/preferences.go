package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
)

// GetAdhanPreference returns the stored sound for one prayer. An absent row
// yields the canonical default track, never silence: a fresh install must
// still call the adhan.
func (s *pgStore) GetAdhanPreference(userID int, prayer model.Prayer) (model.AdhanSound, error) {
	var sound model.AdhanSound
	err := s.db.Get(&sound, `
		SELECT sound FROM adhan_preferences
		WHERE user_id = $1 AND prayer = $2;
		`, userID, prayer)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultAdhanSound, nil
	}
	if err != nil {
		log.Error().Err(err).Str("prayer", string(prayer)).Msg("GetAdhanPreference failed")
		return "", err
	}
	return sound, nil
}

func (s *pgStore) SetAdhanPreference(userID int, prayer model.Prayer, sound model.AdhanSound) error {
	const q = `
	INSERT INTO adhan_preferences (user_id, prayer, sound, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (user_id, prayer) DO UPDATE
	   SET sound = EXCLUDED.sound, updated_at = now();`
	if _, err := s.db.Exec(q, userID, prayer, sound); err != nil {
		log.Error().Err(err).Str("prayer", string(prayer)).Msg("SetAdhanPreference failed")
		return err
	}
	return nil
}

// GetAdhanPreferences returns the sound for every notifiable prayer, with the
// default filled in where nothing is stored.
func (s *pgStore) GetAdhanPreferences(userID int) (map[model.Prayer]model.AdhanSound, error) {
	var rows []model.AdhanPreference
	err := s.db.Select(&rows, `
		SELECT user_id, prayer, sound, updated_at
		FROM adhan_preferences
		WHERE user_id = $1;
		`, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("GetAdhanPreferences failed")
		return nil, err
	}

	out := make(map[model.Prayer]model.AdhanSound, len(model.NotifiablePrayers))
	for _, p := range model.NotifiablePrayers {
		out[p] = model.DefaultAdhanSound
	}
	for _, r := range rows {
		out[r.Prayer] = r.Sound
	}
	return out, nil
}

// GetReminderPreference returns the stored lead time for one prayer; absent
// rows mean no reminder.
func (s *pgStore) GetReminderPreference(userID int, prayer model.Prayer) (model.ReminderOffset, error) {
	var offset model.ReminderOffset
	err := s.db.Get(&offset, `
		SELECT offset_minutes FROM reminder_preferences
		WHERE user_id = $1 AND prayer = $2;
		`, userID, prayer)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReminderNone, nil
	}
	if err != nil {
		log.Error().Err(err).Str("prayer", string(prayer)).Msg("GetReminderPreference failed")
		return model.ReminderNone, err
	}
	return offset, nil
}

func (s *pgStore) SetReminderPreference(userID int, prayer model.Prayer, offset model.ReminderOffset) error {
	const q = `
	INSERT INTO reminder_preferences (user_id, prayer, offset_minutes, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (user_id, prayer) DO UPDATE
	   SET offset_minutes = EXCLUDED.offset_minutes, updated_at = now();`
	if _, err := s.db.Exec(q, userID, prayer, offset); err != nil {
		log.Error().Err(err).Str("prayer", string(prayer)).Msg("SetReminderPreference failed")
		return err
	}
	return nil
}

func (s *pgStore) GetReminderPreferences(userID int) (map[model.Prayer]model.ReminderOffset, error) {
	var rows []model.ReminderPreference
	err := s.db.Select(&rows, `
		SELECT user_id, prayer, offset_minutes, updated_at
		FROM reminder_preferences
		WHERE user_id = $1;
		`, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("GetReminderPreferences failed")
		return nil, err
	}

	out := make(map[model.Prayer]model.ReminderOffset, len(model.NotifiablePrayers))
	for _, p := range model.NotifiablePrayers {
		out[p] = model.ReminderNone
	}
	for _, r := range rows {
		out[r.Prayer] = r.OffsetMinutes
	}
	return out, nil
}
