package model

import "time"

// Prayer names one entry of the daily timetable, e.g. “Fajr”, “Dhuhr”, …
type Prayer string

const (
	Fajr     Prayer = "Fajr"
	Sunrise  Prayer = "Sunrise"
	Dhuhr    Prayer = "Dhuhr"
	Asr      Prayer = "Asr"
	Maghrib  Prayer = "Maghrib"
	Isha     Prayer = "Isha"
	Midnight Prayer = "Midnight"
	Imsak    Prayer = "Imsak"
)

// TimetableOrder is the fixed chronological ordering the resolver walks.
var TimetableOrder = []Prayer{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, Midnight}

// NotifiablePrayers are the five daily prayers that carry adhan notifications.
var NotifiablePrayers = []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}

// IsNotifiable reports whether p is one of the five daily prayers.
func (p Prayer) IsNotifiable() bool {
	for _, n := range NotifiablePrayers {
		if p == n {
			return true
		}
	}
	return false
}

// PrayerTimeTable holds one day’s prayer times for a single
// (user, date, location, method) combination. Times are “HH:mm” strings in the
// table’s timezone, exactly as the timing service returned them. Immutable
// once stored; keyed by ISO date.
type PrayerTimeTable struct {
	UserID    int
	Date      string // yyyy-mm-dd
	Timezone  string
	MethodID  int
	Times     map[Prayer]string
	HijriDate string // “10 Shaʿbān 1447 AH”, display only
	CreatedAt time.Time
}

// NextPrayerState is derived, never persisted: the upcoming prayer and the
// remaining time until it, recomputed on every request.
type NextPrayerState struct {
	Prayer    Prayer        `json:"prayer"`
	At        time.Time     `json:"at"`
	Remaining time.Duration `json:"-"`
	Countdown string        `json:"countdown"` // HH:MM:SS
}
