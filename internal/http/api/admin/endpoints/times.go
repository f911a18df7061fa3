package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muezzin-labs/muezzin/internal/http/api"
	"github.com/muezzin-labs/muezzin/internal/http/api/admin/packets"
	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/prayer"
	"github.com/muezzin-labs/muezzin/internal/redis"
	"github.com/muezzin-labs/muezzin/internal/scheduler"
	"github.com/muezzin-labs/muezzin/internal/timing"
)

// next-prayer snapshots are cached briefly so a polling client does not hit
// the database every second; the countdown is recomputed per request.
const nextPrayerTTL = 30 * time.Second

type TimesController struct {
	sched *scheduler.Scheduler
}

func TimesModule(sched *scheduler.Scheduler) api.Module {
	ctl := &TimesController{sched: sched}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/prayertimes", ctl.getTimetable)
		c.GET("/prayertimes/next", ctl.getNextPrayer)
	})
}

// GET /api/admin/prayertimes?date=yyyy-mm-dd
func (t *TimesController) getTimetable(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var query packets.TimesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	date := time.Now()
	if query.Date != "" {
		parsed, err := time.Parse("2006-01-02", query.Date)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "date must be yyyy-mm-dd"}
		}
		date = parsed
	}

	table, err := t.sched.EnsureTimetable(ctx.Request.Context(), user, date)
	if err != nil {
		return nil, timetableError(err)
	}

	times := make(map[string]string, len(table.Times))
	for p, v := range table.Times {
		times[string(p)] = v
	}
	return packets.TimetableResponse{
		Date:      table.Date,
		HijriDate: table.HijriDate,
		Timezone:  table.Timezone,
		MethodID:  table.MethodID,
		Times:     times,
	}, nil
}

// GET /api/admin/prayertimes/next
func (t *TimesController) getNextPrayer(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	now := time.Now()

	if state, ok := cachedNextPrayer(ctx, user.ID, now); ok {
		return nextPrayerResponse(state), nil
	}

	state, err := t.sched.NextPrayer(ctx.Request.Context(), user)
	if err != nil {
		return nil, timetableError(err)
	}

	cacheNextPrayer(ctx, user.ID, state)
	return nextPrayerResponse(state), nil
}

type nextPrayerSnapshot struct {
	Prayer model.Prayer `json:"prayer"`
	At     time.Time    `json:"at"`
}

func nextPrayerKey(userID int) string {
	return fmt.Sprintf("next_prayer:%d", userID)
}

func cachedNextPrayer(ctx *gin.Context, userID int, now time.Time) (model.NextPrayerState, bool) {
	raw := redis.Get(ctx, nextPrayerKey(userID))
	if raw == "" {
		return model.NextPrayerState{}, false
	}

	var snap nextPrayerSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || !snap.At.After(now) {
		return model.NextPrayerState{}, false
	}

	remaining := snap.At.Sub(now)
	return model.NextPrayerState{
		Prayer:    snap.Prayer,
		At:        snap.At,
		Remaining: remaining,
		Countdown: prayer.FormatCountdown(remaining),
	}, true
}

func cacheNextPrayer(ctx *gin.Context, userID int, state model.NextPrayerState) {
	raw, err := json.Marshal(nextPrayerSnapshot{Prayer: state.Prayer, At: state.At})
	if err != nil {
		return
	}
	redis.Set(ctx, nextPrayerKey(userID), string(raw), nextPrayerTTL)
}

func nextPrayerResponse(state model.NextPrayerState) packets.NextPrayerResponse {
	return packets.NextPrayerResponse{
		Prayer:    string(state.Prayer),
		At:        state.At.Format(time.RFC3339),
		Countdown: state.Countdown,
	}
}

func timetableError(err error) *api.APIError {
	switch {
	case errors.Is(err, scheduler.ErrNoLocation):
		return &api.APIError{Code: http.StatusPreconditionFailed, Message: "location not configured"}
	case errors.Is(err, timing.ErrRemoteTiming):
		return &api.APIError{Code: http.StatusBadGateway, Message: "prayer times are unavailable right now"}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: "could not load prayer times"}
	}
}
