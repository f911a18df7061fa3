// exposes a Store interface that is passed to API and scheduler code
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/muezzin-labs/muezzin/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error
	UpdateUserSettings(id int, latitude, longitude *float64, city *string, methodID int, playAdhan bool) error
	ListUsers() ([]model.User, error)

	// paired playback devices
	CreateDevice(userID int, deviceID string, name *string) (model.Device, error)
	GetDeviceByDeviceID(deviceID string) (*model.Device, error)
	ListDevicesForUser(userID int) ([]model.Device, error)
	DeleteDevice(id, userID int) error

	// prayer timetable cache
	GetTimetable(userID int, date string) (*model.PrayerTimeTable, error)
	PutTimetable(table *model.PrayerTimeTable) error
	PruneTimetables(today string) (int64, error)
	DeleteTimetablesForUser(userID int) (int64, error)

	// per-prayer preferences
	GetAdhanPreference(userID int, prayer model.Prayer) (model.AdhanSound, error)
	SetAdhanPreference(userID int, prayer model.Prayer, sound model.AdhanSound) error
	GetAdhanPreferences(userID int) (map[model.Prayer]model.AdhanSound, error)
	GetReminderPreference(userID int, prayer model.Prayer) (model.ReminderOffset, error)
	SetReminderPreference(userID int, prayer model.Prayer, offset model.ReminderOffset) error
	GetReminderPreferences(userID int) (map[model.Prayer]model.ReminderOffset, error)

	// scheduled notification records
	CreateScheduledNotification(n *model.ScheduledNotification) error
	CancelAllNotifications(userID int) (int64, error)
	ListPendingNotifications(userID int) ([]model.ScheduledNotification, error)
	DueNotifications(now time.Time, limit int) ([]model.ScheduledNotification, error)
	MarkNotificationFired(handle string) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
