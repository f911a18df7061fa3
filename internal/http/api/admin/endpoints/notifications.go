package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/http/api"
	"github.com/muezzin-labs/muezzin/internal/http/api/admin/packets"
	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/scheduler"
)

type NotificationsController struct {
	store db.Store
	sched *scheduler.Scheduler
}

func NotificationsModule(store db.Store, sched *scheduler.Scheduler) api.Module {
	ctl := &NotificationsController{store: store, sched: sched}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/notifications", ctl.listNotifications)
		c.POST("/notifications/reschedule", ctl.rescheduleNotifications)
		c.DELETE("/notifications", ctl.cancelNotifications)
	})
}

// GET /api/admin/notifications
func (n *NotificationsController) listNotifications(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pending, err := n.store.ListPendingNotifications(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list notifications"}
	}

	out := make([]packets.NotificationResponse, 0, len(pending))
	for _, rec := range pending {
		out = append(out, packets.NotificationResponse{
			Handle: rec.Handle,
			Prayer: string(rec.Prayer),
			Kind:   string(rec.Kind),
			Day:    rec.Day,
			FireAt: rec.FireAt.Format(time.RFC3339),
			Sound:  string(rec.Sound),
			Silent: rec.Silent,
			Status: string(rec.Status),
		})
	}
	return out, nil
}

// POST /api/admin/notifications/reschedule
func (n *NotificationsController) rescheduleNotifications(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	res, err := n.sched.RescheduleUser(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, timetableError(err)
	}

	failed := make([]string, 0, len(res.Failed))
	for _, p := range res.Failed {
		failed = append(failed, string(p))
	}
	return packets.ScheduleResultResponse{Scheduled: res.Scheduled, Failed: failed}, nil
}

// DELETE /api/admin/notifications
func (n *NotificationsController) cancelNotifications(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	canceled, err := n.sched.CancelAll(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not cancel notifications"}
	}
	return gin.H{"canceled": canceled}, nil
}
