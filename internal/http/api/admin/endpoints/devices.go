package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/http/api"
	"github.com/muezzin-labs/muezzin/internal/http/api/admin/packets"
	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/redis"
)

// PairingCodeKey is the Redis key a playback device registers itself under
// while waiting to be claimed.
func PairingCodeKey(code string) string {
	return "pairing_code:" + code
}

type DevicesController struct {
	store db.Store
}

func DevicesModule(store db.Store) api.Module {
	ctl := &DevicesController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/devices", ctl.listDevices)
		c.POST("/devices/claim", ctl.claimDevice)
		c.DELETE("/devices/:id", ctl.deleteDevice)
	})
}

// GET /api/admin/devices
func (d *DevicesController) listDevices(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	devices, err := d.store.ListDevicesForUser(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list devices"}
	}

	out := make([]packets.DeviceResponse, 0, len(devices))
	for _, dev := range devices {
		out = append(out, packets.DeviceResponse{
			ID:        dev.ID,
			DeviceID:  dev.DeviceID,
			Name:      dev.Name,
			CreatedAt: dev.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// POST /api/admin/devices/claim
// Exchanges a short-lived pairing code (registered by the device itself) for
// a durable device record owned by this user. The code is burned on success.
func (d *DevicesController) claimDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.ClaimDeviceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	deviceID := redis.Get(ctx, PairingCodeKey(request.Code))
	if deviceID == "" {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "pairing code expired or unknown"}
	}

	if existing, _ := d.store.GetDeviceByDeviceID(deviceID); existing != nil {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "device already paired"}
	}

	device, err := d.store.CreateDevice(user.ID, deviceID, request.Name)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not pair device"}
	}

	redis.Delete(ctx, PairingCodeKey(request.Code))
	log.Info().Str("device_id", deviceID).Int("user_id", user.ID).Msg("device paired")

	return packets.DeviceResponse{
		ID:        device.ID,
		DeviceID:  device.DeviceID,
		Name:      device.Name,
		CreatedAt: device.CreatedAt.Format(time.RFC3339),
	}, nil
}

// DELETE /api/admin/devices/:id
func (d *DevicesController) deleteDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid device id"}
	}

	if err := d.store.DeleteDevice(id, user.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "device not found"}
	}
	return gin.H{"deleted": id}, nil
}
