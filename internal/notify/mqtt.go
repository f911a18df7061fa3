package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
)

var (
	mqttClient  mqtt.Client
	clientMutex sync.RWMutex
	brokerURL   = "tcp://0.0.0.0:1883" // Default MQTT broker URL
)

// AdhanCommand is the payload published to a device when a scheduled
// notification fires. Sound/Silent tell the agent whether to play a custom
// track or leave the alert to the device chime.
type AdhanCommand struct {
	Prayer  model.Prayer           `json:"prayer"`
	Kind    model.NotificationKind `json:"kind"`
	Sound   model.AdhanSound       `json:"sound"`
	Silent  bool                   `json:"silent"`
	FiredAt time.Time              `json:"fired_at"`
}

// DeviceTopic is the per-device command topic; the player agent subscribes to
// it and the dispatch loop publishes to it.
func DeviceTopic(deviceID string) string {
	return fmt.Sprintf("device/%s/adhan", deviceID)
}

// SetBrokerURL allows configuration of the MQTT broker URL
func SetBrokerURL(url string) {
	brokerURL = url
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// CreateMQTTClient connects a new client to the configured broker.
func CreateMQTTClient(clientName string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientName)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}
	return client, nil
}

// InitMQTT connects the server's publishing client.
func InitMQTT(clientName string) error {
	client, err := CreateMQTTClient(clientName)
	if err != nil {
		return err
	}

	clientMutex.Lock()
	mqttClient = client
	clientMutex.Unlock()

	log.Info().Str("broker", brokerURL).Msg("MQTT client initialized")
	return nil
}

// PublishAdhan sends an adhan command to one device's topic with QoS 1.
func PublishAdhan(deviceID string, cmd AdhanCommand) error {
	clientMutex.RLock()
	client := mqttClient
	clientMutex.RUnlock()
	if client == nil {
		return fmt.Errorf("MQTT client not initialized")
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal adhan command: %w", err)
	}

	topic := DeviceTopic(deviceID)
	token := client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to device %s: %v", deviceID, token.Error())
	}

	log.Debug().Str("device_id", deviceID).Str("prayer", string(cmd.Prayer)).Msg("adhan command published")
	return nil
}

// CleanupMQTT disconnects the publishing client.
func CleanupMQTT() {
	clientMutex.Lock()
	defer clientMutex.Unlock()

	if mqttClient != nil {
		mqttClient.Disconnect(250)
		mqttClient = nil
		log.Info().Msg("MQTT client disconnected")
	}
}

// MQTTNotifier adapts the package-level publisher to the scheduler's
// Notifier interface.
type MQTTNotifier struct{}

func (MQTTNotifier) PublishAdhan(deviceID string, cmd AdhanCommand) error {
	return PublishAdhan(deviceID, cmd)
}
