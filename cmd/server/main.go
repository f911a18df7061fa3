package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/db"
	"github.com/muezzin-labs/muezzin/internal/notify"
	"github.com/muezzin-labs/muezzin/internal/redis"
	"github.com/muezzin-labs/muezzin/internal/scheduler"
	"github.com/muezzin-labs/muezzin/internal/timing"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on process environment")
	}
	env := LoadEnvironment()

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	notify.SetBrokerURL(env.BrokerURL)
	if err := notify.InitMQTT("muezzin-server"); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MQTT broker")
	}
	defer notify.CleanupMQTT()

	store := db.NewStore(db.DB)
	storageSystem := InitStorage(env)
	times := timing.NewClient()

	sched := scheduler.New(store, times, notify.MQTTNotifier{})
	sched.Start()
	defer sched.Stop()

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, env, store, storageSystem, sched)

	log.Info().Str("address", env.ServerAddress).Msg("server listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
