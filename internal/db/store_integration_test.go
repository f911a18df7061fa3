package db_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/model"
)

// TestStoreIntegration exercises the Postgres store against a real database.
// Set TEST_DATABASE_URL to run it.
func TestStoreIntegration(t *testing.T) {
	if err := db.InitTestDB("../../migrations"); err != nil {
		t.Skipf("test database not available: %v", err)
	}
	store := db.TestStore

	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())

	t.Run("User Management", func(t *testing.T) {
		userID, err := store.CreateUser(email, "hashedpassword", nil)
		require.NoError(t, err)
		assert.Greater(t, userID, 0)

		user, err := store.GetUserByEmail(email)
		require.NoError(t, err)
		assert.Equal(t, email, user.Email)
		assert.True(t, user.PlayAdhan, "adhan playback defaults on")
		assert.False(t, user.HasLocation())

		lat, lon := 51.5, -0.1
		city := "London"
		require.NoError(t, store.UpdateUserSettings(userID, &lat, &lon, &city, 3, true))

		user, err = store.GetUserByID(userID)
		require.NoError(t, err)
		assert.True(t, user.HasLocation())
		assert.Equal(t, 3, user.MethodID)
	})

	t.Run("Timetable Cache", func(t *testing.T) {
		userID, err := store.CreateUser(fmt.Sprintf("tt-%s", email), "password", nil)
		require.NoError(t, err)

		table := &model.PrayerTimeTable{
			UserID:   userID,
			Date:     "2026-08-30",
			Timezone: "Europe/London",
			MethodID: 3,
			Times: map[model.Prayer]string{
				model.Fajr: "05:10", model.Dhuhr: "12:05", model.Asr: "15:30",
				model.Maghrib: "18:20", model.Isha: "19:45",
			},
			HijriDate: "17 Rabī' al-awwal 1448 AH",
		}
		require.NoError(t, store.PutTimetable(table))

		got, err := store.GetTimetable(userID, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "05:10", got.Times[model.Fajr])
		assert.Equal(t, "Europe/London", got.Timezone)
		assert.Equal(t, table.HijriDate, got.HijriDate)

		// upsert replaces the cached day
		table.Times[model.Fajr] = "05:11"
		require.NoError(t, store.PutTimetable(table))
		got, err = store.GetTimetable(userID, "2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "05:11", got.Times[model.Fajr])

		pruned, err := store.PruneTimetables("2026-09-01")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pruned, int64(1))
	})

	t.Run("Preferences", func(t *testing.T) {
		userID, err := store.CreateUser(fmt.Sprintf("pref-%s", email), "password", nil)
		require.NoError(t, err)

		// unset preference reads back as the default
		sound, err := store.GetAdhanPreference(userID, model.Fajr)
		require.NoError(t, err)
		assert.Equal(t, model.DefaultAdhanSound, sound)

		require.NoError(t, store.SetAdhanPreference(userID, model.Maghrib, model.SoundNone))
		prefs, err := store.GetAdhanPreferences(userID)
		require.NoError(t, err)
		assert.Equal(t, model.SoundNone, prefs[model.Maghrib])
		assert.Equal(t, model.DefaultAdhanSound, prefs[model.Fajr])

		require.NoError(t, store.SetReminderPreference(userID, model.Isha, 15))
		offsets, err := store.GetReminderPreferences(userID)
		require.NoError(t, err)
		assert.Equal(t, model.ReminderOffset(15), offsets[model.Isha])

		// zero clears
		require.NoError(t, store.SetReminderPreference(userID, model.Isha, model.ReminderNone))
		offsets, err = store.GetReminderPreferences(userID)
		require.NoError(t, err)
		assert.Equal(t, model.ReminderNone, offsets[model.Isha])
	})

	t.Run("Scheduled Notifications", func(t *testing.T) {
		userID, err := store.CreateUser(fmt.Sprintf("sched-%s", email), "password", nil)
		require.NoError(t, err)

		fireAt := time.Now().Add(-time.Minute).UTC()
		rec := &model.ScheduledNotification{
			Handle: uuid.NewString(),
			UserID: userID,
			Prayer: model.Asr,
			Kind:   model.KindMain,
			Day:    "2026-08-30",
			FireAt: fireAt,
			Sound:  model.SoundMadina,
			Silent: true,
			Status: model.StatusPending,
		}
		require.NoError(t, store.CreateScheduledNotification(rec))

		pending, err := store.ListPendingNotifications(userID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, rec.Handle, pending[0].Handle)

		due, err := store.DueNotifications(time.Now(), 10)
		require.NoError(t, err)
		var found bool
		for _, d := range due {
			if d.Handle == rec.Handle {
				found = true
			}
		}
		assert.True(t, found, "past-due record should be returned")

		require.NoError(t, store.MarkNotificationFired(rec.Handle))
		pending, err = store.ListPendingNotifications(userID)
		require.NoError(t, err)
		assert.Empty(t, pending)

		// cancel only touches pending records
		rec2 := *rec
		rec2.Handle = uuid.NewString()
		rec2.FireAt = time.Now().Add(time.Hour)
		rec2.Status = model.StatusPending
		require.NoError(t, store.CreateScheduledNotification(&rec2))

		canceled, err := store.CancelAllNotifications(userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), canceled)
	})

	t.Run("Devices", func(t *testing.T) {
		userID, err := store.CreateUser(fmt.Sprintf("dev-%s", email), "password", nil)
		require.NoError(t, err)

		devID := fmt.Sprintf("pi-%d", time.Now().UnixNano())
		name := "Kitchen"
		device, err := store.CreateDevice(userID, devID, &name)
		require.NoError(t, err)
		assert.Equal(t, devID, device.DeviceID)

		found, err := store.GetDeviceByDeviceID(devID)
		require.NoError(t, err)
		assert.Equal(t, userID, found.UserID)

		devices, err := store.ListDevicesForUser(userID)
		require.NoError(t, err)
		assert.Len(t, devices, 1)

		require.NoError(t, store.DeleteDevice(device.ID, userID))
		devices, err = store.ListDevicesForUser(userID)
		require.NoError(t, err)
		assert.Empty(t, devices)
	})
}
