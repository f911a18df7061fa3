package model

import "time"

// Device is a paired playback endpoint (a speaker, a wall display, a phone
// running the player agent). Adhan commands are published to its MQTT topic.
type Device struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	DeviceID  string    `db:"device_id"` // stable identifier the agent registers with
	Name      *string   `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
