package model

import "time"

type NotificationKind string

const (
	KindMain     NotificationKind = "main"     // fires at the prayer instant
	KindReminder NotificationKind = "reminder" // fires offset minutes before it
)

type NotificationStatus string

const (
	StatusPending  NotificationStatus = "pending"
	StatusFired    NotificationStatus = "fired"
	StatusCanceled NotificationStatus = "canceled"
)

// ScheduledNotification associates a (prayer, kind) with the opaque handle
// issued at scheduling time, so a later pass can cancel or replace it. At most
// one pending record exists per (user, prayer, kind); rescheduling must cancel
// the user's previous records before issuing new ones.
type ScheduledNotification struct {
	Handle    string             `db:"handle"` // uuid
	UserID    int                `db:"user_id"`
	Prayer    Prayer             `db:"prayer"`
	Kind      NotificationKind   `db:"kind"`
	Day       string             `db:"day"` // timetable date the record belongs to
	FireAt    time.Time          `db:"fire_at"`
	Sound     AdhanSound         `db:"sound"`
	Silent    bool               `db:"silent"` // suppress device chime, a custom track plays instead
	Status    NotificationStatus `db:"status"`
	CreatedAt time.Time          `db:"created_at"`
}
