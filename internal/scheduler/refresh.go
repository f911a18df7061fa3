package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/prayer"
)

// ErrNoLocation is returned when a user asks for prayer times before setting
// coordinates.
var ErrNoLocation = errors.New("user has no location configured")

const isoDate = "2006-01-02"

// EnsureTimetable returns the timetable for (user, date), cache first. On a
// miss it fetches from the timing service and writes the cache through; a
// failed cache write is logged and the fetched table is still returned, the
// next miss simply refetches.
func (s *Scheduler) EnsureTimetable(ctx context.Context, user *model.User, date time.Time) (*model.PrayerTimeTable, error) {
	dateStr := date.Format(isoDate)

	table, err := s.store.GetTimetable(user.ID, dateStr)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if !user.HasLocation() {
		return nil, ErrNoLocation
	}

	resp, err := s.times.FetchTimings(ctx, date, *user.Latitude, *user.Longitude, user.MethodID)
	if err != nil {
		return nil, err
	}

	table = &model.PrayerTimeTable{
		UserID:    user.ID,
		Date:      dateStr,
		Timezone:  resp.Data.Meta.Timezone,
		MethodID:  user.MethodID,
		Times:     prayer.TableTimes(resp.Data.Timings),
		HijriDate: resp.Data.Date.Hijri.Format(),
	}
	if err := s.store.PutTimetable(table); err != nil {
		log.Error().Err(err).Str("date", dateStr).Msg("failed to cache timetable")
	}
	return table, nil
}

// NextPrayer resolves the upcoming prayer for a user. Tomorrow's table feeds
// the post-Isha rollover; when it cannot be fetched the resolver falls back to
// today's Fajr time shifted a day.
func (s *Scheduler) NextPrayer(ctx context.Context, user *model.User) (model.NextPrayerState, error) {
	now := s.now()

	today, err := s.EnsureTimetable(ctx, user, now)
	if err != nil {
		return model.NextPrayerState{}, err
	}

	tomorrow, err := s.EnsureTimetable(ctx, user, now.AddDate(0, 0, 1))
	if err != nil {
		log.Warn().Err(err).Msg("tomorrow's timetable unavailable, countdown may drift after Isha")
		tomorrow = nil
	}

	return prayer.Resolve(now, today, tomorrow)
}

// RescheduleUser rebuilds today's notifications for one user from the current
// timetable and preferences; called after any preference or settings change.
func (s *Scheduler) RescheduleUser(ctx context.Context, userID int) (Result, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load user: %w", err)
	}

	table, err := s.EnsureTimetable(ctx, user, s.now())
	if err != nil {
		return Result{}, err
	}

	adhanPrefs, err := s.store.GetAdhanPreferences(userID)
	if err != nil {
		return Result{}, err
	}
	reminderPrefs, err := s.store.GetReminderPreferences(userID)
	if err != nil {
		return Result{}, err
	}

	return s.ScheduleAll(user, table, adhanPrefs, reminderPrefs)
}

func (s *Scheduler) refreshLoop() {
	defer s.wg.Done()

	s.refreshAll()
	lastDay := s.now().Format(isoDate)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if today := s.now().Format(isoDate); today != lastDay {
				lastDay = today
				s.refreshAll()
			}
		}
	}
}

// refreshAll prunes stale cache entries, warms the rolling timetable window
// and reschedules today's notifications for every user. One user failing must
// not starve the rest.
func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := s.now()
	if pruned, err := s.store.PruneTimetables(now.Format(isoDate)); err == nil && pruned > 0 {
		log.Info().Int64("entries", pruned).Msg("pruned stale timetables")
	}

	users, err := s.store.ListUsers()
	if err != nil {
		log.Error().Err(err).Msg("refresh: failed to list users")
		return
	}

	for i := range users {
		user := &users[i]
		if !user.HasLocation() {
			continue
		}

		for d := 0; d < s.cacheWindow; d++ {
			if _, err := s.EnsureTimetable(ctx, user, now.AddDate(0, 0, d)); err != nil {
				log.Warn().Err(err).Int("user_id", user.ID).Int("day_offset", d).
					Msg("refresh: timetable fetch failed")
			}
		}

		if res, err := s.RescheduleUser(ctx, user.ID); err != nil {
			log.Error().Err(err).Int("user_id", user.ID).Msg("refresh: reschedule failed")
		} else if len(res.Failed) > 0 {
			log.Warn().Int("user_id", user.ID).Interface("failed", res.Failed).
				Msg("refresh: some prayers could not be scheduled")
		}
	}
}
