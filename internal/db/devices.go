package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
)

func (s *pgStore) CreateDevice(userID int, deviceID string, name *string) (model.Device, error) {
	var d model.Device
	const q = `
	INSERT INTO devices (user_id, device_id, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, user_id, device_id, name, created_at, updated_at;`
	if err := s.db.Get(&d, q, userID, deviceID, name); err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("CreateDevice failed")
		return model.Device{}, err
	}
	return d, nil
}

// GetDeviceByDeviceID fetches a device by its agent-registered identifier.
// Returns nil, sql.ErrNoRows when the device is not paired.
func (s *pgStore) GetDeviceByDeviceID(deviceID string) (*model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `
		SELECT id, user_id, device_id, name, created_at, updated_at
		FROM devices
		WHERE device_id = $1;
		`, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Str("device_id", deviceID).Msg("GetDeviceByDeviceID failed")
		return nil, err
	}
	return &d, nil
}

func (s *pgStore) ListDevicesForUser(userID int) ([]model.Device, error) {
	var out []model.Device
	err := s.db.Select(&out, `
		SELECT id, user_id, device_id, name, created_at, updated_at
		FROM devices
		WHERE user_id = $1
		ORDER BY id;
		`, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListDevicesForUser failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeleteDevice(id, userID int) error {
	res, err := s.db.Exec(`DELETE FROM devices WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("DeleteDevice failed")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.New("no such device")
	}
	return nil
}
