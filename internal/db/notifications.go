package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
)

const notificationColumns = `
	handle, user_id, prayer, kind, day, fire_at, sound, silent, status, created_at`

func (s *pgStore) CreateScheduledNotification(n *model.ScheduledNotification) error {
	const q = `
	INSERT INTO scheduled_notifications
	  (handle, user_id, prayer, kind, day, fire_at, sound, silent, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now());`
	_, err := s.db.Exec(q, n.Handle, n.UserID, n.Prayer, n.Kind, n.Day, n.FireAt, n.Sound, n.Silent, n.Status)
	if err != nil {
		log.Error().Err(err).Str("prayer", string(n.Prayer)).Str("kind", string(n.Kind)).
			Msg("CreateScheduledNotification failed")
	}
	return err
}

// CancelAllNotifications marks every pending handle for the user canceled.
// Idempotent: a user with nothing pending affects no rows.
func (s *pgStore) CancelAllNotifications(userID int) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE scheduled_notifications
		   SET status = 'canceled'
		 WHERE user_id = $1 AND status = 'pending';
		`, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("CancelAllNotifications failed")
		return 0, err
	}
	return res.RowsAffected()
}

func (s *pgStore) ListPendingNotifications(userID int) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	err := s.db.Select(&out, `
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY fire_at;
		`, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("ListPendingNotifications failed")
		return nil, err
	}
	return out, nil
}

// DueNotifications returns pending records whose fire instant has arrived,
// oldest first, for the dispatch loop to deliver.
func (s *pgStore) DueNotifications(now time.Time, limit int) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	err := s.db.Select(&out, `
		SELECT `+notificationColumns+`
		FROM scheduled_notifications
		WHERE status = 'pending' AND fire_at <= $1
		ORDER BY fire_at
		LIMIT $2;
		`, now, limit)
	if err != nil {
		log.Error().Err(err).Msg("DueNotifications failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) MarkNotificationFired(handle string) error {
	_, err := s.db.Exec(`
		UPDATE scheduled_notifications
		   SET status = 'fired'
		 WHERE handle = $1;
		`, handle)
	if err != nil {
		log.Error().Err(err).Str("handle", handle).Msg("MarkNotificationFired failed")
	}
	return err
}
