package indikit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceProfile carries per-device defaults loaded before the device is
// built: transport parameters, polling period and any labels the site
// operator wants to override.
type DeviceProfile struct {
	Name       string   `yaml:"name"`
	SerialPort string   `yaml:"serial_port"`
	BaudRate   int      `yaml:"baud_rate"`
	TCPHost    string   `yaml:"tcp_host"`
	TCPPort    int      `yaml:"tcp_port"`
	MQTTBroker string   `yaml:"mqtt_broker"`
	MQTTTopic  string   `yaml:"mqtt_topic"`
	PollMS     int      `yaml:"poll_ms"`
	Filters    []string `yaml:"filters"`
}

// Profiles maps a driver key (dome, focuser, ...) to its profile.
type Profiles map[string]DeviceProfile

// LoadProfiles reads a YAML profile file. A missing file is not an error;
// every driver then runs with built-in defaults.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profiles{}, nil
		}
		return nil, fmt.Errorf("failed to read profile file %s: %v", path, err)
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %v", path, err)
	}
	return profiles, nil
}

// Get returns the profile for a driver key, or an empty profile.
func (p Profiles) Get(key string) DeviceProfile {
	return p[key]
}
