package model

import "time"

type User struct {
	ID             int       `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           *string   `db:"name"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// prayer settings; location and method parameterize the timing service
	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`
	City      *string  `db:"city"`
	MethodID  int      `db:"method_id"`
	PlayAdhan bool     `db:"play_adhan"` // global kill switch for adhan notifications
}

// HasLocation reports whether the user has set coordinates; prayer times
// cannot be fetched without them.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
