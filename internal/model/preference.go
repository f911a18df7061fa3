package model

import "time"

// AdhanSound selects what a device does when a prayer notification arrives.
type AdhanSound string

const (
	SoundNone    AdhanSound = "none"    // no notification at all
	SoundSilent  AdhanSound = "silent"  // visual notification, no audio
	SoundDefault AdhanSound = "default" // device’s own notification chime

	SoundMadina  AdhanSound = "adhan_madina"
	SoundMakkah  AdhanSound = "adhan_makkah"
	SoundNureyn  AdhanSound = "adhan_nureyn_mohammad"
	SoundMishary AdhanSound = "adhan_mishary"
)

// DefaultAdhanSound is used when a prayer has no stored preference. An unset
// preference must not mean a silent prayer.
const DefaultAdhanSound = SoundMadina

// AdhanSounds is the closed set of accepted values.
var AdhanSounds = []AdhanSound{
	SoundNone, SoundSilent, SoundDefault,
	SoundMadina, SoundMakkah, SoundNureyn, SoundMishary,
}

// Valid reports whether s is a member of the closed sound set.
func (s AdhanSound) Valid() bool {
	for _, v := range AdhanSounds {
		if s == v {
			return true
		}
	}
	return false
}

// IsCustomTrack reports whether s resolves to a bundled audio asset. For
// custom tracks the device chime is suppressed so the adhan is not doubled.
func (s AdhanSound) IsCustomTrack() bool {
	switch s {
	case SoundNone, SoundSilent, SoundDefault:
		return false
	}
	return s.Valid()
}

// ReminderOffset is a pre-prayer lead time in minutes. Zero means no reminder.
type ReminderOffset int

const ReminderNone ReminderOffset = 0

// ReminderOffsets is the closed set of accepted lead times.
var ReminderOffsets = []ReminderOffset{ReminderNone, 5, 10, 15, 30, 60}

// Valid reports whether o is a member of the closed offset set.
func (o ReminderOffset) Valid() bool {
	for _, v := range ReminderOffsets {
		if o == v {
			return true
		}
	}
	return false
}

// Duration returns the offset as a time.Duration.
func (o ReminderOffset) Duration() time.Duration {
	return time.Duration(o) * time.Minute
}

// AdhanPreference is a user’s stored sound choice for one prayer.
type AdhanPreference struct {
	UserID    int        `db:"user_id"`
	Prayer    Prayer     `db:"prayer"`
	Sound     AdhanSound `db:"sound"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// ReminderPreference is a user’s stored reminder lead time for one prayer.
type ReminderPreference struct {
	UserID        int            `db:"user_id"`
	Prayer        Prayer         `db:"prayer"`
	OffsetMinutes ReminderOffset `db:"offset_minutes"`
	UpdatedAt     time.Time      `db:"updated_at"`
}
