package scheduler

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/notify"
)

const dispatchBatch = 100

func (s *Scheduler) dispatchLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.dispatchDue()
		}
	}
}

// dispatchDue delivers every pending record whose instant has arrived to the
// owner's paired devices and marks it fired. Delivery failure to one device
// never blocks the rest; the record is marked fired either way so the loop
// does not redeliver it every second.
func (s *Scheduler) dispatchDue() {
	due, err := s.store.DueNotifications(s.now(), dispatchBatch)
	if err != nil {
		log.Error().Err(err).Msg("failed to query due notifications")
		return
	}

	for _, n := range due {
		devices, err := s.store.ListDevicesForUser(n.UserID)
		if err != nil {
			log.Error().Err(err).Int("user_id", n.UserID).Msg("failed to list devices for delivery")
		}

		cmd := notify.AdhanCommand{
			Prayer:  n.Prayer,
			Kind:    n.Kind,
			Sound:   n.Sound,
			Silent:  n.Silent,
			FiredAt: n.FireAt,
		}
		for _, d := range devices {
			if err := s.notifier.PublishAdhan(d.DeviceID, cmd); err != nil {
				log.Error().Err(err).
					Str("device_id", d.DeviceID).
					Str("prayer", string(n.Prayer)).
					Msg("failed to deliver notification")
			}
		}

		if err := s.store.MarkNotificationFired(n.Handle); err != nil {
			log.Error().Err(err).Str("handle", n.Handle).Msg("failed to mark notification fired")
		}

		log.Info().
			Str("prayer", string(n.Prayer)).
			Str("kind", string(n.Kind)).
			Int("devices", len(devices)).
			Msg("notification dispatched")
	}
}
