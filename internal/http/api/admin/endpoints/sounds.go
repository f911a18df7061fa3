package endpoints

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muezzin-labs/muezzin/internal/http/api"
	"github.com/muezzin-labs/muezzin/internal/http/api/admin/packets"
	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/storage"
)

const maxSoundUploadBytes = 20 << 20 // 20 MiB

type SoundsController struct {
	store storage.Storage
}

func SoundsModule(store storage.Storage) api.Module {
	ctl := &SoundsController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/sounds", ctl.uploadSound)
	})
}

// POST /api/admin/sounds
// Accepts a multipart "file" field with a custom adhan recording.
func (s *SoundsController) uploadSound(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing file field"}
	}
	if fileHeader.Size > maxSoundUploadBytes {
		return nil, &api.APIError{Code: http.StatusRequestEntityTooLarge, Message: "sound file too large"}
	}

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".mp3", ".wav", ".ogg", ".m4a":
	default:
		return nil, &api.APIError{Code: http.StatusUnsupportedMediaType, Message: "unsupported audio format"}
	}

	url, err := s.store.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store sound"}
	}

	return packets.SoundUploadResponse{URL: url}, nil
}
