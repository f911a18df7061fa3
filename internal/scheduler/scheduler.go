package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/notify"
	"github.com/muezzin-labs/muezzin/internal/prayer"
	"github.com/muezzin-labs/muezzin/internal/timing"
)

// Store is the slice of the database layer the scheduler needs; db.Store
// satisfies it, tests supply fakes.
type Store interface {
	GetUserByID(id int) (*model.User, error)
	ListUsers() ([]model.User, error)
	ListDevicesForUser(userID int) ([]model.Device, error)

	GetTimetable(userID int, date string) (*model.PrayerTimeTable, error)
	PutTimetable(table *model.PrayerTimeTable) error
	PruneTimetables(today string) (int64, error)

	GetAdhanPreferences(userID int) (map[model.Prayer]model.AdhanSound, error)
	GetReminderPreferences(userID int) (map[model.Prayer]model.ReminderOffset, error)

	CreateScheduledNotification(n *model.ScheduledNotification) error
	CancelAllNotifications(userID int) (int64, error)
	DueNotifications(now time.Time, limit int) ([]model.ScheduledNotification, error)
	MarkNotificationFired(handle string) error
}

// Notifier delivers a fired notification to one device.
type Notifier interface {
	PublishAdhan(deviceID string, cmd notify.AdhanCommand) error
}

// TimingClient fetches a day's prayer times from the remote service.
type TimingClient interface {
	FetchTimings(ctx context.Context, date time.Time, lat, lon float64, methodID int) (*timing.Response, error)
}

// Scheduler owns the full lifecycle of scheduled notification records:
// reconciling them against timetables and preferences, dispatching the due
// ones to devices, and refreshing the timetable cache across day boundaries.
type Scheduler struct {
	store    Store
	times    TimingClient
	notifier Notifier

	// cacheWindow is how many days of timetables are kept warm: today plus
	// cacheWindow-1 future days.
	cacheWindow int

	now      func() time.Time
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(store Store, times TimingClient, notifier Notifier) *Scheduler {
	return &Scheduler{
		store:       store,
		times:       times,
		notifier:    notifier,
		cacheWindow: 3,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Result reports a ScheduleAll pass. A prayer appearing in Failed had at
// least one record that could not be written; the rest of the pass still ran.
type Result struct {
	Scheduled int
	Failed    []model.Prayer
}

// ScheduleAll replaces the user's notifications with the given timetable's.
// Every pending handle is canceled first, then one main record is written per
// prayer with an audible preference (global flag permitting) and one reminder
// record per prayer with a lead time. A prayer whose instant already passed
// rolls to the next calendar day; a reminder instant in the past is skipped
// unless the prayer itself rolled.
func (s *Scheduler) ScheduleAll(
	user *model.User,
	table *model.PrayerTimeTable,
	adhanPrefs map[model.Prayer]model.AdhanSound,
	reminderPrefs map[model.Prayer]model.ReminderOffset,
) (Result, error) {
	now := s.now()
	var res Result

	// cancel-before-schedule, and every pending record, not just the new
	// day's: a record created yesterday evening rolls its instant past
	// midnight while keeping yesterday's day tag, and would otherwise fire
	// alongside the record written for the new day
	if _, err := s.store.CancelAllNotifications(user.ID); err != nil {
		return res, err
	}

	loc := prayer.Location(table, now.Location())

	for _, p := range model.NotifiablePrayers {
		at, err := prayer.At(table, p, loc)
		if err != nil {
			log.Warn().Err(err).Str("prayer", string(p)).Str("day", table.Date).
				Msg("prayer missing from timetable, skipping")
			res.Failed = append(res.Failed, p)
			continue
		}

		target := at
		rolled := false
		if !target.After(now) {
			target = target.AddDate(0, 0, 1)
			rolled = true
		}

		failed := false

		sound := adhanPrefs[p]
		if sound == "" {
			sound = model.DefaultAdhanSound
		}
		if user.PlayAdhan && sound != model.SoundNone {
			n := &model.ScheduledNotification{
				Handle: uuid.NewString(),
				UserID: user.ID,
				Prayer: p,
				Kind:   model.KindMain,
				Day:    table.Date,
				FireAt: target,
				Sound:  sound,
				// a custom track plays on the device, so the chime is
				// suppressed to avoid doubled audio
				Silent: sound.IsCustomTrack(),
				Status: model.StatusPending,
			}
			if err := s.store.CreateScheduledNotification(n); err != nil {
				log.Error().Err(err).Str("prayer", string(p)).Msg("failed to schedule main notification")
				failed = true
			} else {
				res.Scheduled++
			}
		}

		if offset := reminderPrefs[p]; offset != model.ReminderNone {
			remindAt := target.Add(-offset.Duration())
			if remindAt.After(now) || rolled {
				n := &model.ScheduledNotification{
					Handle: uuid.NewString(),
					UserID: user.ID,
					Prayer: p,
					Kind:   model.KindReminder,
					Day:    table.Date,
					FireAt: remindAt,
					Sound:  model.SoundDefault,
					Silent: false,
					Status: model.StatusPending,
				}
				if err := s.store.CreateScheduledNotification(n); err != nil {
					log.Error().Err(err).Str("prayer", string(p)).Msg("failed to schedule reminder")
					failed = true
				} else {
					res.Scheduled++
				}
			}
		}

		if failed {
			res.Failed = append(res.Failed, p)
		}
	}

	return res, nil
}

// CancelAll cancels every pending notification for the user; used when
// notifications are disabled globally or times are recalculated from scratch.
func (s *Scheduler) CancelAll(userID int) (int64, error) {
	return s.store.CancelAllNotifications(userID)
}

// Start launches the dispatch and refresh loops.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.dispatchLoop()
	go s.refreshLoop()
}

// Stop terminates both loops and waits for them to drain.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
