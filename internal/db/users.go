package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
)

const userColumns = `
	id, email, hashed_password, name,
	latitude, longitude, city, method_id, play_adhan,
	created_at, updated_at`

// CreateUser inserts a new user and returns the new ID. Location and method
// start unset; the client provides them before any prayer times are fetched.
func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	query := `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;
	`
	var newID int
	err := s.db.QueryRow(query, email, hashedPassword, name).Scan(&newID)
	if err != nil {
		log.Error().Msg("failed to create user")
		return 0, err
	}
	return newID, nil
}

// GetUserByEmail fetches a user by email. Returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Msg("failed to get user by email")
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user by ID. Returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile updates a user's email and name and bumps updated_at.
// Returns an error if no rows were affected (the user ID doesn’t exist).
func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	query := `
	UPDATE users
	SET email = $2,
	name = $3,
	updated_at = now()
	WHERE id = $1;
	`
	res, err := s.db.Exec(query, id, email, name)
	if err != nil {
		log.Error().Msg("failed to update user profile - exec")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		log.Error().Msg("failed to update user profile - rows affected")
		return err
	}
	if rows == 0 {
		log.Error().Msg("failed to update user profile - no such user")
		return errors.New("no such user")
	}
	return nil
}

// UpdateUserSettings replaces the user's prayer settings. A changed location
// or method invalidates cached timetables; the caller owns refetching them.
func (s *pgStore) UpdateUserSettings(id int, latitude, longitude *float64, city *string, methodID int, playAdhan bool) error {
	query := `
	UPDATE users
	SET latitude = $2,
	longitude = $3,
	city = $4,
	method_id = $5,
	play_adhan = $6,
	updated_at = now()
	WHERE id = $1;
	`
	res, err := s.db.Exec(query, id, latitude, longitude, city, methodID, playAdhan)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("UpdateUserSettings failed")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.New("no such user")
	}
	return nil
}

// ListUsers returns every registered user; the refresh loop walks this to
// reschedule the whole install base at each date change.
func (s *pgStore) ListUsers() ([]model.User, error) {
	var out []model.User
	if err := s.db.Select(&out, `SELECT `+userColumns+` FROM users ORDER BY id;`); err != nil {
		log.Error().Err(err).Msg("ListUsers failed")
		return nil, err
	}
	return out, nil
}
