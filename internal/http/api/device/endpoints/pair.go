package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/http/api"
	admin "github.com/muezzin-labs/muezzin/internal/http/api/admin/endpoints"
	"github.com/muezzin-labs/muezzin/internal/http/api/device/packets"
	"github.com/muezzin-labs/muezzin/internal/redis"
)

// Pairing codes live this long; the device re-registers while its code is
// shown on screen.
const pairingCodeTTL = 5 * time.Minute

type PairingController struct {
	store db.Store
}

func PairingModule(store db.Store) api.Module {
	ctl := &PairingController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/pair/register", ctl.registerPairingCode)
		c.PUBLIC_GET("/pair/status/:device_id", ctl.pairStatus)
	})
}

// POST /api/device/pair/register
// A playback device announces itself with a code the user will type into the
// app. The code maps back to the device id until claimed or expired.
func (p *PairingController) registerPairingCode(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RegisterPairingCodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if existing, _ := p.store.GetDeviceByDeviceID(request.DeviceID); existing != nil {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "device already paired"}
	}

	redis.Set(ctx, admin.PairingCodeKey(request.PairingCode), request.DeviceID, pairingCodeTTL)
	log.Info().Str("device_id", request.DeviceID).Msg("pairing code registered")

	return gin.H{"expires_in_seconds": int(pairingCodeTTL.Seconds())}, nil
}

// GET /api/device/pair/status/:device_id
// Polled by the device while its code is displayed.
func (p *PairingController) pairStatus(ctx *gin.Context) (any, *api.APIError) {
	device, err := p.store.GetDeviceByDeviceID(ctx.Param("device_id"))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check pairing"}
	}
	return packets.PairStatusResponse{Paired: device != nil}, nil
}
