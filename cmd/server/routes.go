package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/http/api"
	adminapi "github.com/muezzin-labs/muezzin/internal/http/api/admin/endpoints"
	deviceapi "github.com/muezzin-labs/muezzin/internal/http/api/device/endpoints"
	"github.com/muezzin-labs/muezzin/internal/scheduler"
	"github.com/muezzin-labs/muezzin/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, storageSystem storage.Storage, sched *scheduler.Scheduler) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		adminapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		adminapi.AuthSessionModule(env.SecretKey, store),
		adminapi.SettingsModule(store, sched),
		adminapi.TimesModule(sched),
		adminapi.PreferencesModule(store, sched),
		adminapi.NotificationsModule(store, sched),
		adminapi.DevicesModule(store),
		adminapi.SoundsModule(storageSystem),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/device",
	},
		deviceapi.PairingModule(store),
	)

	// uploaded recordings are served directly when Spaces is not configured
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
