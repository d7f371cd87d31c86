package connection

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTTConfig holds the broker parameters for an MQTT-controlled device.
type MQTTConfig struct {
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	TopicRoot string `json:"topic_root"`
}

// MQTT connects to a device whose controller speaks MQTT through a broker.
type MQTT struct {
	handshaker
	config MQTTConfig
	client mqtt.Client
	logger log.FieldLogger
}

func NewMQTT(config MQTTConfig, logger log.FieldLogger) *MQTT {
	return &MQTT{
		config: config,
		logger: logger.WithField("connection", "mqtt"),
	}
}

func (m *MQTT) Name() string { return "mqtt" }

func (m *MQTT) Connect() error {
	if m.client != nil {
		return fmt.Errorf("already connected to broker %s", m.config.Broker)
	}

	opts := mqtt.NewClientOptions()
	opts.SetClientID(m.config.ClientID)
	opts.AddBroker(m.config.Broker)
	opts.SetUsername(m.config.Username)
	opts.SetPassword(m.config.Password)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	m.client = client
	m.logger.Infof("Connected to MQTT broker %s", m.config.Broker)
	return nil
}

func (m *MQTT) Disconnect() error {
	if m.client == nil {
		return nil
	}
	m.client.Disconnect(100)
	m.client = nil
	m.logger.Info("Disconnected from MQTT broker")
	return nil
}

func (m *MQTT) Connected() bool {
	return m.client != nil && m.client.IsConnected()
}

// Client returns the connected MQTT client. Nil until Connect succeeds.
func (m *MQTT) Client() mqtt.Client {
	return m.client
}

// TopicRoot is the prefix the device's command and telemetry topics live
// under.
func (m *MQTT) TopicRoot() string {
	return m.config.TopicRoot
}
