// Package connection provides the transport plugins a device registers
// during property initialization. A plugin opens the transport; the driver's
// registered handshake callback then verifies the device is really there
// before the connection is considered established.
package connection

// Plugin is a single connection method (serial, TCP, MQTT). Connect only
// opens the transport; callers run the handshake and tear the transport back
// down if it fails.
type Plugin interface {
	Name() string
	Connect() error
	Disconnect() error
	Connected() bool

	RegisterHandshake(func() bool)
	Handshake() bool
}

// handshaker is the common handshake registration shared by all plugins.
type handshaker struct {
	fn func() bool
}

func (h *handshaker) RegisterHandshake(fn func() bool) {
	h.fn = fn
}

// Handshake runs the registered callback. A plugin with no handshake
// registered verifies nothing and succeeds.
func (h *handshaker) Handshake() bool {
	if h.fn == nil {
		return true
	}
	return h.fn()
}
