package indikit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit/connection"
)

// Standard property names shared by every device.
const (
	PropConnection     = "CONNECTION"
	PropConnectionMode = "CONNECTION_MODE"
	PropDebug          = "DEBUG"
	PropSimulation     = "SIMULATION"
	PropPollingPeriod  = "POLLING_PERIOD"
	PropConfigProcess  = "CONFIG_PROCESS"
)

const defaultPollingPeriod = time.Second

// DefaultDevice carries the behavior every driver shares: the property
// registry, the connection handshake state machine, the auxiliary control
// properties, the polling timer and the command dispatcher. Concrete drivers
// embed it and add their own properties and capability callbacks.
type DefaultDevice struct {
	name    string
	uid     string
	version string
	iface   DriverInterface

	registry *Registry
	loop     *EventLoop
	logger   log.FieldLogger
	store    ConfigStore

	state       ConnState
	connections []connection.Plugin
	active      connection.Plugin
	simulation  bool
	debug       bool

	pollPeriod time.Duration
	timer      *time.Timer

	// Driver hooks. onConnectionChange is where connect-gated properties
	// are defined and deleted; onTimer is the driver's TimerHit body.
	onConnectionChange func(connected bool)
	onTimer            func()
	onSnoop            func(device, name string, values map[string]any) bool

	persisted []Property

	connectionSP *SwitchProperty
	connModeSP   *SwitchProperty
	debugSP      *SwitchProperty
	simulationSP *SwitchProperty
	configSP     *SwitchProperty
	pollNP       *NumberProperty
}

func NewDefaultDevice(name, version string, loop *EventLoop, logger log.FieldLogger) *DefaultDevice {
	return &DefaultDevice{
		name:       name,
		uid:        uuid.NewString(),
		version:    version,
		registry:   NewRegistry(name, logger),
		loop:       loop,
		logger:     logger,
		state:      ConnDisconnected,
		pollPeriod: defaultPollingPeriod,
	}
}

func (d *DefaultDevice) Name() string { return d.name }

func (d *DefaultDevice) Info() DeviceInfo {
	return DeviceInfo{
		Name:      d.name,
		UniqueID:  d.uid,
		Version:   d.version,
		Interface: d.iface,
	}
}

func (d *DefaultDevice) SetDriverInterface(iface DriverInterface) {
	d.iface = iface
}

func (d *DefaultDevice) Registry() *Registry        { return d.registry }
func (d *DefaultDevice) Loop() *EventLoop           { return d.loop }
func (d *DefaultDevice) Logger() log.FieldLogger    { return d.logger }
func (d *DefaultDevice) ConnectionState() ConnState { return d.state }

func (d *DefaultDevice) SetConfigStore(store ConfigStore) {
	d.store = store
}

// RegisterConnection adds a connection plugin. The first registered plugin
// is the active one until the client picks another via CONNECTION_MODE.
func (d *DefaultDevice) RegisterConnection(p connection.Plugin) {
	d.connections = append(d.connections, p)
	if d.active == nil {
		d.active = p
	}
}

// ActiveConnection returns the plugin Connect will use.
func (d *DefaultDevice) ActiveConnection() connection.Plugin {
	return d.active
}

// OnConnectionChange registers the hook run after every connect and
// disconnect. Drivers define their connect-gated properties when connected
// is true and delete the same set when it is false.
func (d *DefaultDevice) OnConnectionChange(fn func(connected bool)) {
	prev := d.onConnectionChange
	if prev == nil {
		d.onConnectionChange = fn
		return
	}
	// Category bases and drivers stack their hooks.
	d.onConnectionChange = func(connected bool) {
		prev(connected)
		fn(connected)
	}
}

// OnTimer registers the driver's TimerHit body. The hook owns re-arming:
// without a SetTimer call inside it, polling stops until reconnect.
func (d *DefaultDevice) OnTimer(fn func()) {
	d.onTimer = fn
}

// OnSnoop registers the handler for values snooped from other devices.
func (d *DefaultDevice) OnSnoop(fn func(device, name string, values map[string]any) bool) {
	d.onSnoop = fn
}

// InitProperties builds the auxiliary controls every device exposes. Drivers
// call it first, then add their own properties.
func (d *DefaultDevice) InitProperties() error {
	var err error

	d.connectionSP, err = NewSwitch(d.name, PropConnection).
		Label("Connection").
		Group(GroupMain).
		Rule(RuleOneOfMany).
		Member("CONNECT", "Connect", false).
		Member("DISCONNECT", "Disconnect", true).
		OnUpdate(d.connectionRequested).
		Build()
	if err != nil {
		return err
	}

	d.debugSP, err = NewSwitch(d.name, PropDebug).
		Label("Debug").
		Group(GroupOptions).
		Rule(RuleOneOfMany).
		Member("ENABLE", "Enable", false).
		Member("DISABLE", "Disable", true).
		OnUpdate(func(p *SwitchProperty) {
			d.debug = p.On("ENABLE")
			d.logger.Infof("Debug is %v", d.debug)
			p.SetState(StateOk)
		}).
		Build()
	if err != nil {
		return err
	}

	d.simulationSP, err = NewSwitch(d.name, PropSimulation).
		Label("Simulation").
		Group(GroupOptions).
		Rule(RuleOneOfMany).
		Member("ENABLE", "Enable", false).
		Member("DISABLE", "Disable", true).
		OnUpdate(func(p *SwitchProperty) {
			d.simulation = p.On("ENABLE")
			d.logger.Infof("Simulation is %v", d.simulation)
			p.SetState(StateOk)
		}).
		Build()
	if err != nil {
		return err
	}

	d.pollNP, err = NewNumber(d.name, PropPollingPeriod).
		Label("Polling").
		Group(GroupOptions).
		Member("PERIOD_MS", "Period (ms)", "%.0f", 10, 600000, 10,
			float64(d.pollPeriod/time.Millisecond)).
		OnUpdate(func(p *NumberProperty) {
			d.pollPeriod = time.Duration(p.Value("PERIOD_MS")) * time.Millisecond
			p.SetState(StateOk)
		}).
		Build()
	if err != nil {
		return err
	}

	d.configSP, err = NewSwitch(d.name, PropConfigProcess).
		Label("Configuration").
		Group(GroupOptions).
		Rule(RuleAtMostOne).
		Member("CONFIG_LOAD", "Load", false).
		Member("CONFIG_SAVE", "Save", false).
		OnUpdate(d.configRequested).
		Build()
	return err
}

// GetProperties publishes the always-visible properties. It corresponds to
// the framework's get-properties entry point and runs before any connection
// is attempted.
func (d *DefaultDevice) GetProperties() {
	for _, p := range d.auxProperties() {
		if _, ok := d.registry.Get(p.Name()); ok {
			continue
		}
		if err := d.registry.Define(p); err != nil {
			d.logger.Errorf("Failed to define %s: %v", p.Name(), err)
		}
	}

	if d.connModeSP == nil && len(d.connections) > 1 {
		b := NewSwitch(d.name, PropConnectionMode).
			Label("Connection Mode").
			Group(GroupOptions).
			Rule(RuleOneOfMany).
			OnUpdate(d.connectionModeRequested)
		for i, c := range d.connections {
			b.Member(c.Name(), c.Name(), i == 0)
		}
		sp, err := b.Build()
		if err != nil {
			d.logger.Errorf("Failed to build connection mode property: %v", err)
			return
		}
		d.connModeSP = sp
		if err := d.registry.Define(sp); err != nil {
			d.logger.Errorf("Failed to define %s: %v", sp.Name(), err)
		}
	}
}

func (d *DefaultDevice) auxProperties() []Property {
	return []Property{d.connectionSP, d.debugSP, d.simulationSP, d.pollNP, d.configSP}
}

func (d *DefaultDevice) connectionRequested(p *SwitchProperty) {
	var err error
	if p.On("CONNECT") {
		err = d.Connect()
	} else {
		err = d.Disconnect()
	}

	if err != nil {
		d.logger.Errorf("Connection request failed: %v", err)
		// Reflect the real state back to the client.
		p.Reset()
		if d.state == ConnConnected {
			p.Set("CONNECT", true)
		} else {
			p.Set("DISCONNECT", true)
		}
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (d *DefaultDevice) connectionModeRequested(p *SwitchProperty) {
	name := p.FindOnSwitch()
	for _, c := range d.connections {
		if c.Name() == name {
			d.active = c
			p.SetState(StateOk)
			return
		}
	}
	p.SetState(StateAlert)
}

func (d *DefaultDevice) configRequested(p *SwitchProperty) {
	var err error
	switch p.FindOnSwitch() {
	case "CONFIG_SAVE":
		err = d.SaveConfig()
	case "CONFIG_LOAD":
		err = d.LoadConfig()
	}

	p.Reset()
	if err != nil {
		d.logger.Errorf("Config request failed: %v", err)
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

// Simulation reports whether hardware I/O is bypassed.
func (d *DefaultDevice) Simulation() bool { return d.simulation }

// SetSimulation toggles simulation mode programmatically, mirroring the
// SIMULATION property.
func (d *DefaultDevice) SetSimulation(enabled bool) {
	d.simulation = enabled
	if d.simulationSP != nil {
		d.simulationSP.Reset()
		if enabled {
			d.simulationSP.Set("ENABLE", true)
		} else {
			d.simulationSP.Set("DISABLE", true)
		}
	}
}

// Connect walks the handshake state machine: open the active transport, run
// the registered handshake, publish connect-gated properties on success.
// Simulation mode skips transport and verification entirely.
func (d *DefaultDevice) Connect() error {
	if d.state != ConnDisconnected {
		return fmt.Errorf("device %s is already connected", d.name)
	}

	d.state = ConnConnecting

	if d.simulation {
		d.state = ConnConnected
		d.logger.Infof("Connected successfully to simulated %s", d.name)
		d.connected()
		return nil
	}

	if d.active == nil {
		d.state = ConnDisconnected
		return fmt.Errorf("device %s has no connection registered", d.name)
	}

	if err := d.active.Connect(); err != nil {
		d.state = ConnDisconnected
		return err
	}

	d.state = ConnHandshaking
	if !d.active.Handshake() {
		if err := d.active.Disconnect(); err != nil {
			d.logger.Errorf("Failed to close transport after handshake: %v", err)
		}
		d.state = ConnDisconnected
		return fmt.Errorf("handshake with %s failed", d.name)
	}

	d.state = ConnConnected
	d.logger.Infof("%s is connected", d.name)
	d.connected()
	return nil
}

func (d *DefaultDevice) connected() {
	d.syncConnectionProperty(true)
	if d.onConnectionChange != nil {
		d.onConnectionChange(true)
	}
	if d.onTimer != nil {
		d.SetTimer(d.pollPeriod)
	}
}

// Disconnect closes the transport, removes connect-gated properties and
// stops the polling timer.
func (d *DefaultDevice) Disconnect() error {
	if d.state != ConnConnected {
		return ErrNotConnected
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if !d.simulation && d.active != nil {
		if err := d.active.Disconnect(); err != nil {
			d.logger.Errorf("Error closing transport: %v", err)
		}
	}

	d.state = ConnDisconnected
	d.logger.Infof("%s is disconnected", d.name)

	d.syncConnectionProperty(false)
	if d.onConnectionChange != nil {
		d.onConnectionChange(false)
	}
	return nil
}

func (d *DefaultDevice) syncConnectionProperty(connected bool) {
	if d.connectionSP == nil {
		return
	}
	d.connectionSP.Reset()
	if connected {
		d.connectionSP.Set("CONNECT", true)
	} else {
		d.connectionSP.Set("DISCONNECT", true)
	}
}

func (d *DefaultDevice) Connected() bool {
	return d.state == ConnConnected
}

// PollingPeriod is the current timer interval, adjustable by clients via the
// POLLING_PERIOD property.
func (d *DefaultDevice) PollingPeriod() time.Duration {
	return d.pollPeriod
}

// SetPollingPeriod overrides the default timer interval, typically from a
// device profile before InitProperties builds the POLLING_PERIOD property.
func (d *DefaultDevice) SetPollingPeriod(period time.Duration) {
	if period <= 0 {
		return
	}
	d.pollPeriod = period
	if d.pollNP != nil {
		d.pollNP.SetValue("PERIOD_MS", float64(period/time.Millisecond))
	}
}

// SetTimer arms the polling timer once. The timer hook must call SetTimer
// again on every path or polling stops until reconnect.
func (d *DefaultDevice) SetTimer(period time.Duration) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.loop.After(period, d.timerFired)
}

func (d *DefaultDevice) timerFired() {
	if d.state != ConnConnected {
		return
	}
	if d.onTimer != nil {
		d.onTimer()
	}
}

// DefineProperty publishes a property. Defining the same name twice is a
// caller error.
func (d *DefaultDevice) DefineProperty(p Property) error {
	return d.registry.Define(p)
}

// DeleteProperty hides a property from clients without destroying it.
func (d *DefaultDevice) DeleteProperty(name string) error {
	return d.registry.Delete(name)
}

// Apply pushes a property's current value and state to clients.
func (d *DefaultDevice) Apply(p Property) {
	d.registry.Apply(p)
}

// PersistProperty marks a property for inclusion in SaveConfig/LoadConfig.
func (d *DefaultDevice) PersistProperty(p Property) {
	d.persisted = append(d.persisted, p)
}

func (d *DefaultDevice) SaveConfig() error {
	if d.store == nil {
		return fmt.Errorf("device %s has no config store", d.name)
	}
	for _, p := range d.persisted {
		if err := d.store.SaveProperty(d.name, p); err != nil {
			return fmt.Errorf("failed to save %s: %v", p.Name(), err)
		}
	}
	d.logger.Infof("Saved configuration for %s", d.name)
	return nil
}

func (d *DefaultDevice) LoadConfig() error {
	if d.store == nil {
		return fmt.Errorf("device %s has no config store", d.name)
	}
	for _, p := range d.persisted {
		if err := d.store.LoadProperty(d.name, p); err != nil {
			d.logger.Debugf("No saved values for %s: %v", p.Name(), err)
			continue
		}
		d.registry.Apply(p)
	}
	return nil
}

// SaveConfigProperty persists a single property immediately, for values
// important enough not to wait for an explicit save.
func (d *DefaultDevice) SaveConfigProperty(p Property) error {
	if d.store == nil {
		return nil
	}
	return d.store.SaveProperty(d.name, p)
}

// LoadConfigProperty restores a single property's saved values, if any.
func (d *DefaultDevice) LoadConfigProperty(p Property) error {
	if d.store == nil {
		return nil
	}
	return d.store.LoadProperty(d.name, p)
}

// NewSwitch handles an inbound switch update. The return value means the
// request was claimed by this device, not that the action succeeded; outcome
// travels in the property state.
func (d *DefaultDevice) NewSwitch(device, name string, states map[string]bool) bool {
	if device != d.name {
		return false
	}
	p, ok := d.registry.Get(name)
	if !ok {
		return false
	}
	sp, ok := p.(*SwitchProperty)
	if !ok || sp.Permission() == PermReadOnly {
		return false
	}

	sp.update(states)
	if sp.onUpdate != nil {
		sp.onUpdate(sp)
	}
	d.registry.Apply(sp)
	return true
}

// NewNumber handles an inbound number update.
func (d *DefaultDevice) NewNumber(device, name string, values map[string]float64) bool {
	if device != d.name {
		return false
	}
	p, ok := d.registry.Get(name)
	if !ok {
		return false
	}
	np, ok := p.(*NumberProperty)
	if !ok || np.Permission() == PermReadOnly {
		return false
	}

	np.update(values)
	if np.onUpdate != nil {
		np.onUpdate(np)
	}
	d.registry.Apply(np)
	return true
}

// NewText handles an inbound text update.
func (d *DefaultDevice) NewText(device, name string, texts map[string]string) bool {
	if device != d.name {
		return false
	}
	p, ok := d.registry.Get(name)
	if !ok {
		return false
	}
	tp, ok := p.(*TextProperty)
	if !ok || tp.Permission() == PermReadOnly {
		return false
	}

	tp.update(texts)
	if tp.onUpdate != nil {
		tp.onUpdate(tp)
	}
	d.registry.Apply(tp)
	return true
}

// NewBLOB is part of the entry-point surface; none of these devices define
// BLOB properties, so nothing is ever claimed.
func (d *DefaultDevice) NewBLOB(device, name string) bool {
	return false
}

// Snoop forwards a value observed on another device to the snoop hook.
func (d *DefaultDevice) Snoop(device, name string, values map[string]any) bool {
	if d.onSnoop == nil {
		return false
	}
	return d.onSnoop(device, name, values)
}
