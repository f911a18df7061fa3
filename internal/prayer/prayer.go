package prayer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/timing"
)

// ErrEmptyTimetable is returned when a timetable holds no resolvable times.
var ErrEmptyTimetable = errors.New("timetable has no prayer times")

// TableTimes flattens a timing service payload into the timetable mapping.
func TableTimes(t timing.Timings) map[model.Prayer]string {
	return map[model.Prayer]string{
		model.Fajr:     t.Fajr,
		model.Sunrise:  t.Sunrise,
		model.Dhuhr:    t.Dhuhr,
		model.Asr:      t.Asr,
		model.Maghrib:  t.Maghrib,
		model.Isha:     t.Isha,
		model.Midnight: t.Midnight,
		model.Imsak:    t.Imsak,
	}
}

// At resolves the wall-clock instant of one prayer on the table’s date.
func At(table *model.PrayerTimeTable, p model.Prayer, loc *time.Location) (time.Time, error) {
	raw, ok := table.Times[p]
	if !ok || raw == "" {
		return time.Time{}, fmt.Errorf("no time for %s on %s", p, table.Date)
	}
	date, err := time.ParseInLocation("2006-01-02", table.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad table date %q: %w", table.Date, err)
	}
	return parseTimeStr(raw, date, loc)
}

// Location loads the table’s timezone, falling back to the given default when
// the zone is absent or unknown.
func Location(table *model.PrayerTimeTable, fallback *time.Location) *time.Location {
	if table.Timezone != "" {
		if loc, err := time.LoadLocation(table.Timezone); err == nil {
			return loc
		}
	}
	return fallback
}

// Resolve walks the fixed prayer ordering and returns the first prayer whose
// instant is strictly after now, with the remaining time until it. When every
// prayer of today has passed, it rolls over to tomorrow’s Fajr; if tomorrow’s
// table is not available it reuses today’s Fajr time a day later, which can be
// off by the minute or two the true Fajr drifts.
func Resolve(now time.Time, today, tomorrow *model.PrayerTimeTable) (model.NextPrayerState, error) {
	loc := Location(today, now.Location())

	for _, p := range model.TimetableOrder {
		at, err := At(today, p, loc)
		if err != nil {
			continue
		}
		if at.After(now) {
			return stateFor(p, at, now), nil
		}
	}

	// all of today passed: explicit rollover to tomorrow's Fajr
	if tomorrow != nil {
		if at, err := At(tomorrow, model.Fajr, Location(tomorrow, loc)); err == nil && at.After(now) {
			return stateFor(model.Fajr, at, now), nil
		}
	}
	at, err := At(today, model.Fajr, loc)
	if err != nil {
		return model.NextPrayerState{}, ErrEmptyTimetable
	}
	return stateFor(model.Fajr, at.AddDate(0, 0, 1), now), nil
}

func stateFor(p model.Prayer, at, now time.Time) model.NextPrayerState {
	remaining := at.Sub(now)
	return model.NextPrayerState{
		Prayer:    p,
		At:        at,
		Remaining: remaining,
		Countdown: FormatCountdown(remaining),
	}
}

// FormatCountdown renders a duration as zero-padded HH:MM:SS, clamped at
// zero so a caller racing the clock never shows a negative countdown.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// parseTimeStr parses “15:02” or “15:02 (BST)” onto the given date.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	var hour, min int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &min); err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc), nil
}
