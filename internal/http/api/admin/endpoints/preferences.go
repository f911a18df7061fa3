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

type PreferencesController struct {
	store db.Store
	sched *scheduler.Scheduler
}

func PreferencesModule(store db.Store, sched *scheduler.Scheduler) api.Module {
	ctl := &PreferencesController{store: store, sched: sched}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/preferences/adhan", ctl.listAdhanPreferences)
		c.GET("/preferences/adhan/:prayer", ctl.getAdhanPreference)
		c.PUT("/preferences/adhan/:prayer", ctl.setAdhanPreference)
		c.GET("/preferences/reminder", ctl.listReminderPreferences)
		c.GET("/preferences/reminder/:prayer", ctl.getReminderPreference)
		c.PUT("/preferences/reminder/:prayer", ctl.setReminderPreference)
	})
}

func notifiablePrayerParam(ctx *gin.Context) (model.Prayer, *api.APIError) {
	p := model.Prayer(ctx.Param("prayer"))
	if !p.IsNotifiable() {
		return "", &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer"}
	}
	return p, nil
}

// GET /api/admin/preferences/adhan
func (p *PreferencesController) listAdhanPreferences(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	prefs, err := p.store.GetAdhanPreferences(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load preferences"}
	}

	out := make([]packets.AdhanPreferenceResponse, 0, len(model.NotifiablePrayers))
	for _, pr := range model.NotifiablePrayers {
		out = append(out, packets.AdhanPreferenceResponse{Prayer: string(pr), Sound: string(prefs[pr])})
	}
	return out, nil
}

// GET /api/admin/preferences/adhan/:prayer
func (p *PreferencesController) getAdhanPreference(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	prayerName, apiErr := notifiablePrayerParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	sound, err := p.store.GetAdhanPreference(user.ID, prayerName)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load preference"}
	}
	return packets.AdhanPreferenceResponse{Prayer: string(prayerName), Sound: string(sound)}, nil
}

// PUT /api/admin/preferences/adhan/:prayer
func (p *PreferencesController) setAdhanPreference(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	prayerName, apiErr := notifiablePrayerParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.SetAdhanPreferenceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	sound := model.AdhanSound(request.Sound)
	if !sound.Valid() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown adhan sound"}
	}

	if err := p.store.SetAdhanPreference(user.ID, prayerName, sound); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save preference"}
	}

	p.reschedule(ctx, user.ID)

	return packets.AdhanPreferenceResponse{Prayer: string(prayerName), Sound: string(sound)}, nil
}

// GET /api/admin/preferences/reminder
func (p *PreferencesController) listReminderPreferences(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	prefs, err := p.store.GetReminderPreferences(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load preferences"}
	}

	out := make([]packets.ReminderPreferenceResponse, 0, len(model.NotifiablePrayers))
	for _, pr := range model.NotifiablePrayers {
		out = append(out, packets.ReminderPreferenceResponse{Prayer: string(pr), OffsetMinutes: int(prefs[pr])})
	}
	return out, nil
}

// GET /api/admin/preferences/reminder/:prayer
func (p *PreferencesController) getReminderPreference(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	prayerName, apiErr := notifiablePrayerParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	offset, err := p.store.GetReminderPreference(user.ID, prayerName)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load preference"}
	}
	return packets.ReminderPreferenceResponse{Prayer: string(prayerName), OffsetMinutes: int(offset)}, nil
}

// PUT /api/admin/preferences/reminder/:prayer
func (p *PreferencesController) setReminderPreference(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	prayerName, apiErr := notifiablePrayerParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.SetReminderPreferenceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	offset := model.ReminderOffset(request.OffsetMinutes)
	if !offset.Valid() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unsupported reminder offset"}
	}

	if err := p.store.SetReminderPreference(user.ID, prayerName, offset); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save preference"}
	}

	p.reschedule(ctx, user.ID)

	return packets.ReminderPreferenceResponse{Prayer: string(prayerName), OffsetMinutes: int(offset)}, nil
}

// A failed reschedule does not fail the request; the preference is saved and
// the next refresh pass rebuilds from it.
func (p *PreferencesController) reschedule(ctx *gin.Context, userID int) {
	if _, err := p.sched.RescheduleUser(ctx.Request.Context(), userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("reschedule after preference change failed")
	}
}
