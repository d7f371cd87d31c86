package indikit

// DriverInterface tags which device categories a driver implements. A driver
// may carry several, e.g. a dust cap that is also an auxiliary device.
type DriverInterface uint16

const (
	GeneralInterface DriverInterface = 0
	DomeInterface    DriverInterface = 1 << iota
	FocuserInterface
	FilterInterface
	GPSInterface
	DustCapInterface
	LightBoxInterface
	AuxInterface
)

// DeviceInfo identifies a device instance to clients.
type DeviceInfo struct {
	Name      string
	UniqueID  string
	Version   string
	Interface DriverInterface
}

// ConnState tracks the connection handshake state machine.
type ConnState int

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnHandshaking
	ConnConnected
)

func (s ConnState) String() string {
	switch s {
	case ConnDisconnected:
		return "Disconnected"
	case ConnConnecting:
		return "Connecting"
	case ConnHandshaking:
		return "Handshaking"
	case ConnConnected:
		return "Connected"
	}
	return "Unknown"
}

// Device is the set of entry points the host event loop invokes. Every
// method executes non-reentrantly on the loop.
type Device interface {
	Name() string
	Info() DeviceInfo

	GetProperties()
	NewSwitch(device, name string, states map[string]bool) bool
	NewNumber(device, name string, values map[string]float64) bool
	NewText(device, name string, texts map[string]string) bool
	NewBLOB(device, name string) bool
	Snoop(device, name string, values map[string]any) bool

	Connect() error
	Disconnect() error
	Connected() bool
}

// ConfigStore persists selected property values between runs.
type ConfigStore interface {
	SaveProperty(device string, p Property) error
	LoadProperty(device string, p Property) error
}
