package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/http/api"
	"github.com/muezzin-labs/muezzin/internal/http/api/admin/packets"
	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/scheduler"
)

type SettingsController struct {
	store db.Store
	sched *scheduler.Scheduler
}

func SettingsModule(store db.Store, sched *scheduler.Scheduler) api.Module {
	ctl := &SettingsController{store: store, sched: sched}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/settings", ctl.getSettings)
		c.PUT("/settings", ctl.updateSettings)
	})
}

func (s *SettingsController) getSettings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return packets.SettingsResponse{
		Latitude:  user.Latitude,
		Longitude: user.Longitude,
		City:      user.City,
		MethodID:  user.MethodID,
		PlayAdhan: user.PlayAdhan,
	}, nil
}

// updateSettings replaces location/method/adhan settings. Cached timetables
// were computed for the old settings, so they are dropped and today's
// notifications rebuilt from a fresh fetch.
func (s *SettingsController) updateSettings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	err := s.store.UpdateUserSettings(
		user.ID, request.Latitude, request.Longitude, request.City, request.MethodID, *request.PlayAdhan,
	)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update settings"}
	}

	if _, err := s.store.DeleteTimetablesForUser(user.ID); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("failed to invalidate timetables")
	}

	if !*request.PlayAdhan {
		if _, err := s.sched.CancelAll(user.ID); err != nil {
			log.Error().Err(err).Int("user_id", user.ID).Msg("failed to cancel notifications")
		}
	} else if _, err := s.sched.RescheduleUser(ctx.Request.Context(), user.ID); err != nil {
		// settings are saved; scheduling catches up on the next refresh pass
		log.Error().Err(err).Int("user_id", user.ID).Msg("reschedule after settings change failed")
	}

	return packets.SettingsResponse{
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
		City:      request.City,
		MethodID:  request.MethodID,
		PlayAdhan: *request.PlayAdhan,
	}, nil
}
