package main

import (
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/config"
	"github.com/muezzin-labs/muezzin/internal/notify"
	"github.com/muezzin-labs/muezzin/internal/playback"
)

// The player agent runs on a paired device: it subscribes to the device's
// adhan topic and plays the commanded track to completion.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	notify.SetBrokerURL(cfg.BrokerURL)
	client, err := notify.CreateMQTTClient("player-" + cfg.DeviceID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	player := playback.NewPlayer(cfg.SoundsDir)
	defer player.Stop()

	topic := notify.DeviceTopic(cfg.DeviceID)
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		player.HandleDelivery(msg.Payload())
	}
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Str("topic", topic).Msg("failed to subscribe")
	}

	log.Info().Str("device_id", cfg.DeviceID).Str("topic", topic).Msg("player agent running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("player agent shutting down")
}
