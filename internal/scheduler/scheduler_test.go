package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/notify"
	"github.com/muezzin-labs/muezzin/internal/timing"
)

type fakeStore struct {
	users         map[int]*model.User
	devices       map[int][]model.Device
	timetables    map[string]*model.PrayerTimeTable
	adhanPrefs    map[int]map[model.Prayer]model.AdhanSound
	reminderPrefs map[int]map[model.Prayer]model.ReminderOffset
	notifications []*model.ScheduledNotification

	failCreateFor model.Prayer // CreateScheduledNotification fails for this prayer
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[int]*model.User),
		devices:       make(map[int][]model.Device),
		timetables:    make(map[string]*model.PrayerTimeTable),
		adhanPrefs:    make(map[int]map[model.Prayer]model.AdhanSound),
		reminderPrefs: make(map[int]map[model.Prayer]model.ReminderOffset),
	}
}

func (f *fakeStore) GetUserByID(id int) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) ListUsers() ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) ListDevicesForUser(userID int) ([]model.Device, error) {
	return f.devices[userID], nil
}

func tableKey(userID int, date string) string { return fmt.Sprintf("%d/%s", userID, date) }

func (f *fakeStore) GetTimetable(userID int, date string) (*model.PrayerTimeTable, error) {
	t, ok := f.timetables[tableKey(userID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (f *fakeStore) PutTimetable(table *model.PrayerTimeTable) error {
	f.timetables[tableKey(table.UserID, table.Date)] = table
	return nil
}

func (f *fakeStore) PruneTimetables(today string) (int64, error) { return 0, nil }

func (f *fakeStore) GetAdhanPreferences(userID int) (map[model.Prayer]model.AdhanSound, error) {
	prefs := make(map[model.Prayer]model.AdhanSound)
	for _, p := range model.NotifiablePrayers {
		prefs[p] = model.DefaultAdhanSound
	}
	for p, s := range f.adhanPrefs[userID] {
		prefs[p] = s
	}
	return prefs, nil
}

func (f *fakeStore) GetReminderPreferences(userID int) (map[model.Prayer]model.ReminderOffset, error) {
	prefs := make(map[model.Prayer]model.ReminderOffset)
	for p, o := range f.reminderPrefs[userID] {
		prefs[p] = o
	}
	return prefs, nil
}

func (f *fakeStore) CreateScheduledNotification(n *model.ScheduledNotification) error {
	if f.failCreateFor != "" && n.Prayer == f.failCreateFor {
		return errors.New("insert failed")
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) CancelAllNotifications(userID int) (int64, error) {
	var n int64
	for _, rec := range f.notifications {
		if rec.UserID == userID && rec.Status == model.StatusPending {
			rec.Status = model.StatusCanceled
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DueNotifications(now time.Time, limit int) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	for _, rec := range f.notifications {
		if rec.Status == model.StatusPending && !rec.FireAt.After(now) {
			out = append(out, *rec)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationFired(handle string) error {
	for _, rec := range f.notifications {
		if rec.Handle == handle {
			rec.Status = model.StatusFired
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeStore) pending() []*model.ScheduledNotification {
	var out []*model.ScheduledNotification
	for _, rec := range f.notifications {
		if rec.Status == model.StatusPending {
			out = append(out, rec)
		}
	}
	return out
}

type fakeNotifier struct {
	published []string // "deviceID/prayer/kind"
	failFor   string   // deviceID that always fails
}

func (f *fakeNotifier) PublishAdhan(deviceID string, cmd notify.AdhanCommand) error {
	if deviceID == f.failFor {
		return errors.New("broker unreachable")
	}
	f.published = append(f.published, fmt.Sprintf("%s/%s/%s", deviceID, cmd.Prayer, cmd.Kind))
	return nil
}

type fakeTimingClient struct {
	resp  *timing.Response
	err   error
	calls int
}

func (f *fakeTimingClient) FetchTimings(ctx context.Context, date time.Time, lat, lon float64, methodID int) (*timing.Response, error) {
	f.calls++
	return f.resp, f.err
}

var testNow = time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

func testScheduler(store *fakeStore, notifier Notifier, times TimingClient) *Scheduler {
	s := New(store, times, notifier)
	s.now = func() time.Time { return testNow }
	return s
}

func testUser() *model.User {
	lat, lon := 51.5, -0.1
	return &model.User{ID: 1, Latitude: &lat, Longitude: &lon, MethodID: 3, PlayAdhan: true}
}

func scheduleTable() *model.PrayerTimeTable {
	return &model.PrayerTimeTable{
		UserID: 1,
		Date:   "2026-08-30",
		Times: map[model.Prayer]string{
			model.Fajr:    "05:10",
			model.Sunrise: "06:40",
			model.Dhuhr:   "12:05",
			model.Asr:     "15:30",
			model.Maghrib: "18:20",
			model.Isha:    "19:45",
		},
	}
}

func TestScheduleAllCreatesMainsForAudiblePrayers(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	res, err := s.ScheduleAll(user, scheduleTable(), adhan, map[model.Prayer]model.ReminderOffset{})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Scheduled)
	assert.Empty(t, res.Failed)

	pending := store.pending()
	require.Len(t, pending, 5)
	for _, rec := range pending {
		assert.Equal(t, model.KindMain, rec.Kind)
		assert.Equal(t, model.DefaultAdhanSound, rec.Sound)
		assert.True(t, rec.Silent, "custom tracks suppress the chime")
		assert.True(t, rec.FireAt.After(testNow), "past instants must roll forward")
	}
}

func TestScheduleAllIsIdempotent(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	reminders := map[model.Prayer]model.ReminderOffset{model.Isha: 15}

	for i := 0; i < 3; i++ {
		_, err := s.ScheduleAll(user, scheduleTable(), adhan, reminders)
		require.NoError(t, err)
	}

	// exactly one pending record per (prayer, kind)
	seen := make(map[string]int)
	for _, rec := range store.pending() {
		seen[string(rec.Prayer)+"/"+string(rec.Kind)]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "duplicate pending record for %s", key)
	}
	assert.Len(t, store.pending(), 6)
}

func TestScheduleAllSoundNoneSkipsMainKeepsReminder(t *testing.T) {
	store := newFakeStore()
	store.adhanPrefs[1] = map[model.Prayer]model.AdhanSound{model.Maghrib: model.SoundNone}
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	reminders := map[model.Prayer]model.ReminderOffset{model.Maghrib: 10}

	_, err := s.ScheduleAll(user, scheduleTable(), adhan, reminders)
	require.NoError(t, err)

	var maghribMain, maghribReminder int
	for _, rec := range store.pending() {
		if rec.Prayer != model.Maghrib {
			continue
		}
		switch rec.Kind {
		case model.KindMain:
			maghribMain++
		case model.KindReminder:
			maghribReminder++
		}
	}
	assert.Zero(t, maghribMain, "sound none disables the main notification")
	assert.Equal(t, 1, maghribReminder, "reminder is independent of the sound choice")
}

func TestScheduleAllReminderLeadTime(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	s.now = func() time.Time { return time.Date(2026, 8, 30, 19, 20, 0, 0, time.UTC) }
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	reminders := map[model.Prayer]model.ReminderOffset{model.Isha: 15}

	_, err := s.ScheduleAll(user, scheduleTable(), adhan, reminders)
	require.NoError(t, err)

	for _, rec := range store.pending() {
		if rec.Prayer == model.Isha && rec.Kind == model.KindReminder {
			want := time.Date(2026, 8, 30, 19, 30, 0, 0, time.UTC)
			assert.True(t, rec.FireAt.Equal(want), "reminder at %v, want %v", rec.FireAt, want)
			assert.Equal(t, model.SoundDefault, rec.Sound)
			return
		}
	}
	t.Fatal("Isha reminder not scheduled")
}

func TestScheduleAllSkipsElapsedReminder(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	// 15:25, Asr at 15:30: a 10 minute reminder would land in the past
	s.now = func() time.Time { return time.Date(2026, 8, 30, 15, 25, 0, 0, time.UTC) }
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	reminders := map[model.Prayer]model.ReminderOffset{model.Asr: 10}

	_, err := s.ScheduleAll(user, scheduleTable(), adhan, reminders)
	require.NoError(t, err)

	for _, rec := range store.pending() {
		if rec.Prayer == model.Asr && rec.Kind == model.KindReminder {
			t.Fatal("elapsed reminder should have been skipped")
		}
	}
}

func TestScheduleAllRollsPastPrayersForward(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	_, err := s.ScheduleAll(user, scheduleTable(), adhan, map[model.Prayer]model.ReminderOffset{})
	require.NoError(t, err)

	// now is 14:00, so Fajr and Dhuhr already passed today
	for _, rec := range store.pending() {
		if rec.Prayer == model.Fajr {
			want := time.Date(2026, 8, 31, 5, 10, 0, 0, time.UTC)
			assert.True(t, rec.FireAt.Equal(want), "Fajr at %v, want next day %v", rec.FireAt, want)
		}
	}
}

func TestScheduleAllAcrossMidnightKeepsOneMainPerPrayer(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()
	adhan, _ := store.GetAdhanPreferences(user.ID)

	// late evening: every prayer of the day has passed, so all mains roll
	// past midnight while keeping the old day tag
	s.now = func() time.Time { return time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC) }
	_, err := s.ScheduleAll(user, scheduleTable(), adhan, map[model.Prayer]model.ReminderOffset{})
	require.NoError(t, err)

	// just past midnight the refresh pass schedules the new day's table;
	// the rolled records must be replaced, not joined
	s.now = func() time.Time { return time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC) }
	newDay := scheduleTable()
	newDay.Date = "2026-08-31"
	_, err = s.ScheduleAll(user, newDay, adhan, map[model.Prayer]model.ReminderOffset{})
	require.NoError(t, err)

	perPrayer := make(map[model.Prayer]int)
	for _, rec := range store.pending() {
		if rec.Kind == model.KindMain {
			perPrayer[rec.Prayer]++
		}
	}
	require.Len(t, perPrayer, 5)
	for p, n := range perPrayer {
		assert.Equal(t, 1, n, "%s has %d pending mains", p, n)
	}
}

func TestScheduleAllGlobalToggleOff(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()
	user.PlayAdhan = false

	adhan, _ := store.GetAdhanPreferences(user.ID)
	res, err := s.ScheduleAll(user, scheduleTable(), adhan, map[model.Prayer]model.ReminderOffset{})
	require.NoError(t, err)
	assert.Zero(t, res.Scheduled)
	assert.Empty(t, store.pending())
}

func TestScheduleAllPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.failCreateFor = model.Dhuhr
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	user := testUser()

	adhan, _ := store.GetAdhanPreferences(user.ID)
	res, err := s.ScheduleAll(user, scheduleTable(), adhan, map[model.Prayer]model.ReminderOffset{})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scheduled, "remaining prayers still scheduled")
	assert.Equal(t, []model.Prayer{model.Dhuhr}, res.Failed)
}

func TestDispatchDueDeliversAndMarksFired(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	s := testScheduler(store, notifier, &fakeTimingClient{})

	store.devices[1] = []model.Device{{ID: 1, UserID: 1, DeviceID: "kitchen-pi"}}
	store.notifications = []*model.ScheduledNotification{
		{Handle: "h1", UserID: 1, Prayer: model.Asr, Kind: model.KindMain, Day: "2026-08-30",
			FireAt: testNow.Add(-time.Second), Sound: model.SoundMadina, Silent: true, Status: model.StatusPending},
		{Handle: "h2", UserID: 1, Prayer: model.Maghrib, Kind: model.KindMain, Day: "2026-08-30",
			FireAt: testNow.Add(time.Hour), Sound: model.SoundMadina, Status: model.StatusPending},
	}

	s.dispatchDue()

	assert.Equal(t, []string{"kitchen-pi/Asr/main"}, notifier.published)
	assert.Equal(t, model.StatusFired, store.notifications[0].Status)
	assert.Equal(t, model.StatusPending, store.notifications[1].Status, "future record untouched")
}

func TestDispatchDueMarksFiredOnPublishFailure(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{failFor: "kitchen-pi"}
	s := testScheduler(store, notifier, &fakeTimingClient{})

	store.devices[1] = []model.Device{{ID: 1, UserID: 1, DeviceID: "kitchen-pi"}}
	store.notifications = []*model.ScheduledNotification{
		{Handle: "h1", UserID: 1, Prayer: model.Isha, Kind: model.KindMain, Day: "2026-08-30",
			FireAt: testNow.Add(-time.Second), Sound: model.SoundMadina, Status: model.StatusPending},
	}

	s.dispatchDue()

	// marked fired regardless, so the loop does not redeliver every second
	assert.Equal(t, model.StatusFired, store.notifications[0].Status)
	assert.Empty(t, notifier.published)
}

func timingResponse() *timing.Response {
	return &timing.Response{
		Code: 200,
		Data: timing.Data{
			Timings: timing.Timings{
				Fajr: "05:10", Sunrise: "06:40", Dhuhr: "12:05",
				Asr: "15:30", Maghrib: "18:20", Isha: "19:45",
			},
			Meta: timing.Meta{Timezone: "UTC"},
		},
	}
}

func TestEnsureTimetableCacheFirst(t *testing.T) {
	store := newFakeStore()
	times := &fakeTimingClient{resp: timingResponse()}
	s := testScheduler(store, &fakeNotifier{}, times)
	user := testUser()

	table, err := s.EnsureTimetable(context.Background(), user, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, times.calls)
	assert.Equal(t, "05:10", table.Times[model.Fajr])

	// second call is served from the cache
	_, err = s.EnsureTimetable(context.Background(), user, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, times.calls)
}

func TestEnsureTimetableRequiresLocation(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{resp: timingResponse()})

	_, err := s.EnsureTimetable(context.Background(), &model.User{ID: 2}, testNow)
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestEnsureTimetableSurfacesFetchFailure(t *testing.T) {
	store := newFakeStore()
	times := &fakeTimingClient{err: timing.ErrRemoteTiming}
	s := testScheduler(store, &fakeNotifier{}, times)

	_, err := s.EnsureTimetable(context.Background(), testUser(), testNow)
	assert.ErrorIs(t, err, timing.ErrRemoteTiming)
}

func TestNextPrayerAfterIshaRollsToTomorrow(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{})
	s.now = func() time.Time { return time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC) }
	user := testUser()

	today := scheduleTable()
	tomorrow := scheduleTable()
	tomorrow.Date = "2026-08-31"
	tomorrow.Times[model.Fajr] = "05:12"
	require.NoError(t, store.PutTimetable(today))
	require.NoError(t, store.PutTimetable(tomorrow))

	state, err := s.NextPrayer(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, model.Fajr, state.Prayer)
	assert.True(t, state.At.Equal(time.Date(2026, 8, 31, 5, 12, 0, 0, time.UTC)))
}

func TestRescheduleUser(t *testing.T) {
	store := newFakeStore()
	s := testScheduler(store, &fakeNotifier{}, &fakeTimingClient{resp: timingResponse()})
	store.users[1] = testUser()

	res, err := s.RescheduleUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Scheduled)
	assert.Len(t, store.pending(), 5)
}
