package indikit

import (
	"context"
	"fmt"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saved map[string]map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]map[string]any)}
}

func (s *fakeStore) SaveProperty(device string, p Property) error {
	s.saved[device+"."+p.Name()] = p.Values()
	return nil
}

func (s *fakeStore) LoadProperty(device string, p Property) error {
	values, ok := s.saved[device+"."+p.Name()]
	if !ok {
		return fmt.Errorf("no saved values for %s.%s", device, p.Name())
	}
	return p.SetValues(values)
}

// fakePlugin is a transport that connects in memory.
type fakePlugin struct {
	name        string
	connectErr  error
	handshakeOK bool
	connected   bool
	handshakes  int
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) Connect() error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakePlugin) Disconnect() error {
	f.connected = false
	return nil
}

func (f *fakePlugin) Connected() bool { return f.connected }

func (f *fakePlugin) RegisterHandshake(func() bool) {}

func (f *fakePlugin) Handshake() bool {
	f.handshakes++
	return f.handshakeOK
}

func newTestDevice(t *testing.T) *DefaultDevice {
	t.Helper()
	d := NewDefaultDevice("Test Device", "1.0", NewEventLoop(log.StandardLogger()), log.StandardLogger())
	require.NoError(t, d.InitProperties())
	d.GetProperties()
	return d
}

func TestGetPropertiesDefinesAuxControls(t *testing.T) {
	d := newTestDevice(t)

	for _, name := range []string{
		PropConnection, PropDebug, PropSimulation, PropPollingPeriod, PropConfigProcess,
	} {
		_, ok := d.Registry().Get(name)
		assert.True(t, ok, "expected %s to be defined", name)
	}

	// Calling again must not redefine anything.
	before := len(d.Registry().Defined())
	d.GetProperties()
	assert.Equal(t, before, len(d.Registry().Defined()))
}

func TestConnectSimulationAlwaysSucceeds(t *testing.T) {
	d := newTestDevice(t)
	// No connection plugin registered at all.
	d.SetSimulation(true)

	require.NoError(t, d.Connect())
	assert.True(t, d.Connected())
	assert.Equal(t, ConnConnected, d.ConnectionState())
}

func TestConnectWithoutConnectionFails(t *testing.T) {
	d := newTestDevice(t)

	assert.Error(t, d.Connect())
	assert.Equal(t, ConnDisconnected, d.ConnectionState())
}

func TestConnectAlreadyConnectedFails(t *testing.T) {
	d := newTestDevice(t)
	d.SetSimulation(true)

	require.NoError(t, d.Connect())
	assert.Error(t, d.Connect())
}

func TestHandshakeFailureAbortsConnect(t *testing.T) {
	d := newTestDevice(t)
	plugin := &fakePlugin{name: "fake", handshakeOK: false}
	d.RegisterConnection(plugin)

	assert.Error(t, d.Connect())
	assert.Equal(t, ConnDisconnected, d.ConnectionState())
	assert.False(t, plugin.Connected(), "transport must be torn down after a failed handshake")
	assert.Equal(t, 1, plugin.handshakes)
}

func TestHandshakeSuccessConnects(t *testing.T) {
	d := newTestDevice(t)
	plugin := &fakePlugin{name: "fake", handshakeOK: true}
	d.RegisterConnection(plugin)

	require.NoError(t, d.Connect())
	assert.True(t, d.Connected())
	assert.True(t, plugin.Connected())
}

func TestDefineDeleteSymmetry(t *testing.T) {
	d := newTestDevice(t)
	d.SetSimulation(true)

	custom, err := NewSwitch(d.Name(), "CUSTOM").
		Member("ON", "On", false).
		Build()
	require.NoError(t, err)

	d.OnConnectionChange(func(connected bool) {
		if connected {
			require.NoError(t, d.DefineProperty(custom))
		} else {
			require.NoError(t, d.DeleteProperty(custom.Name()))
		}
	})

	rec := &recorder{}
	d.Registry().AttachClient(rec)

	require.NoError(t, d.Connect())
	_, visible := d.Registry().Get("CUSTOM")
	assert.True(t, visible)

	require.NoError(t, d.Disconnect())
	_, visible = d.Registry().Get("CUSTOM")
	assert.False(t, visible)

	// Everything defined on connect was deleted on disconnect.
	assert.Equal(t, rec.defined, rec.deleted)
}

func TestDispatchWrongDeviceUnclaimed(t *testing.T) {
	d := newTestDevice(t)

	claimed := d.NewSwitch("Other Device", PropConnection, map[string]bool{"CONNECT": true})
	assert.False(t, claimed)
	assert.False(t, d.Connected())
}

func TestDispatchUnknownPropertyUnclaimed(t *testing.T) {
	d := newTestDevice(t)

	states := make(map[string]PropState)
	for _, p := range d.Registry().Defined() {
		states[p.Name()] = p.State()
	}

	claimed := d.NewSwitch(d.Name(), "NO_SUCH_PROPERTY", map[string]bool{"ON": true})
	assert.False(t, claimed)

	// No existing property state changed.
	for _, p := range d.Registry().Defined() {
		assert.Equal(t, states[p.Name()], p.State())
	}
}

func TestSwitchDispatchNotifiesExactlyOnce(t *testing.T) {
	d := newTestDevice(t)

	p, err := NewSwitch(d.Name(), "ACTION").
		Rule(RuleAtMostOne).
		Member("GO", "Go", false).
		OnUpdate(func(sp *SwitchProperty) {
			sp.Reset()
			sp.SetState(StateIdle)
		}).
		Build()
	require.NoError(t, err)
	require.NoError(t, d.DefineProperty(p))

	rec := &recorder{}
	d.Registry().AttachClient(rec)

	claimed := d.NewSwitch(d.Name(), "ACTION", map[string]bool{"GO": true})
	assert.True(t, claimed)
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, []string{"ACTION"}, rec.updated)
}

func TestDispatchReadOnlyUnclaimed(t *testing.T) {
	d := newTestDevice(t)

	p, err := NewNumber(d.Name(), "READING").
		Permission(PermReadOnly).
		Member("VALUE", "Value", "%.2f", 0, 100, 1, 42).
		Build()
	require.NoError(t, err)
	require.NoError(t, d.DefineProperty(p))

	claimed := d.NewNumber(d.Name(), "READING", map[string]float64{"VALUE": 7})
	assert.False(t, claimed)
	assert.Equal(t, 42.0, p.Value("VALUE"))
}

func TestConnectionPropertyDispatch(t *testing.T) {
	d := newTestDevice(t)
	d.SetSimulation(true)

	claimed := d.NewSwitch(d.Name(), PropConnection, map[string]bool{"CONNECT": true})
	assert.True(t, claimed)
	assert.True(t, d.Connected())

	p, _ := d.Registry().Get(PropConnection)
	assert.Equal(t, StateOk, p.State())

	claimed = d.NewSwitch(d.Name(), PropConnection, map[string]bool{"DISCONNECT": true})
	assert.True(t, claimed)
	assert.False(t, d.Connected())
}

func TestConnectionPropertyFailureGoesAlert(t *testing.T) {
	d := newTestDevice(t)
	// No plugin and no simulation: connecting must fail.

	claimed := d.NewSwitch(d.Name(), PropConnection, map[string]bool{"CONNECT": true})
	assert.True(t, claimed, "the request is claimed even though the action failed")
	assert.False(t, d.Connected())

	p, _ := d.Registry().Get(PropConnection)
	sp := p.(*SwitchProperty)
	assert.Equal(t, StateAlert, sp.State())
	assert.True(t, sp.On("DISCONNECT"), "the switch must reflect the real state")
}

func TestConnectionModeSelection(t *testing.T) {
	d := NewDefaultDevice("Test Device", "1.0", NewEventLoop(log.StandardLogger()), log.StandardLogger())
	require.NoError(t, d.InitProperties())

	first := &fakePlugin{name: "serial", handshakeOK: true}
	second := &fakePlugin{name: "tcp", handshakeOK: true}
	d.RegisterConnection(first)
	d.RegisterConnection(second)
	d.GetProperties()

	_, ok := d.Registry().Get(PropConnectionMode)
	require.True(t, ok)
	assert.Equal(t, "serial", d.ActiveConnection().Name())

	claimed := d.NewSwitch(d.Name(), PropConnectionMode, map[string]bool{"tcp": true})
	assert.True(t, claimed)
	assert.Equal(t, "tcp", d.ActiveConnection().Name())
}

func TestPollingPeriodDispatch(t *testing.T) {
	d := newTestDevice(t)

	claimed := d.NewNumber(d.Name(), PropPollingPeriod, map[string]float64{"PERIOD_MS": 250})
	assert.True(t, claimed)
	assert.Equal(t, 250*time.Millisecond, d.PollingPeriod())
}

func TestSimulationDispatch(t *testing.T) {
	d := newTestDevice(t)

	claimed := d.NewSwitch(d.Name(), PropSimulation, map[string]bool{"ENABLE": true})
	assert.True(t, claimed)
	assert.True(t, d.Simulation())
}

func TestSetPollingPeriod(t *testing.T) {
	d := NewDefaultDevice("Test Device", "1.0", NewEventLoop(log.StandardLogger()), log.StandardLogger())
	d.SetPollingPeriod(250 * time.Millisecond)
	require.NoError(t, d.InitProperties())
	d.GetProperties()

	assert.Equal(t, 250*time.Millisecond, d.PollingPeriod())

	// The published property starts at the configured value.
	p, _ := d.Registry().Get(PropPollingPeriod)
	assert.Equal(t, 250.0, p.(*NumberProperty).Value("PERIOD_MS"))

	// After InitProperties the property tracks later changes too.
	d.SetPollingPeriod(time.Second)
	assert.Equal(t, 1000.0, p.(*NumberProperty).Value("PERIOD_MS"))

	// Zero and negative periods are ignored.
	d.SetPollingPeriod(0)
	assert.Equal(t, time.Second, d.PollingPeriod())
}

func TestConfigSaveAndLoad(t *testing.T) {
	d := newTestDevice(t)
	st := newFakeStore()
	d.SetConfigStore(st)

	p, err := NewText(d.Name(), "GREETING").
		Member("TEXT", "Text", "hello").
		Build()
	require.NoError(t, err)
	d.PersistProperty(p)

	require.NoError(t, d.SaveConfig())

	p.SetText("TEXT", "changed")
	require.NoError(t, d.LoadConfig())
	assert.Equal(t, "hello", p.Text("TEXT"))
}

func TestConfigProcessDispatch(t *testing.T) {
	d := newTestDevice(t)
	d.SetConfigStore(newFakeStore())

	claimed := d.NewSwitch(d.Name(), PropConfigProcess, map[string]bool{"CONFIG_SAVE": true})
	assert.True(t, claimed)

	p, _ := d.Registry().Get(PropConfigProcess)
	sp := p.(*SwitchProperty)
	assert.Equal(t, StateOk, sp.State())
	assert.Equal(t, "", sp.FindOnSwitch(), "the save button resets itself")
}

func TestNewBLOBNeverClaimed(t *testing.T) {
	d := newTestDevice(t)
	assert.False(t, d.NewBLOB(d.Name(), "ANY"))
}

func TestTimerRearmsUntilDisconnect(t *testing.T) {
	loop := NewEventLoop(log.StandardLogger())
	d := NewDefaultDevice("Test Device", "1.0", loop, log.StandardLogger())
	require.NoError(t, d.InitProperties())
	d.GetProperties()
	d.SetSimulation(true)
	require.True(t, d.NewNumber(d.Name(), PropPollingPeriod, map[string]float64{"PERIOD_MS": 10}))

	hits := 0
	d.OnTimer(func() {
		hits++
		d.SetTimer(d.PollingPeriod())
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.RunSync(func() {
		require.NoError(t, d.Connect())
	})

	assert.Eventually(t, func() bool {
		var n int
		loop.RunSync(func() { n = hits })
		return n >= 3
	}, time.Second, 10*time.Millisecond, "timer must keep re-arming while connected")

	var after int
	loop.RunSync(func() {
		require.NoError(t, d.Disconnect())
		after = hits
	})

	// Once disconnected the pending timer no longer fires the hook.
	time.Sleep(50 * time.Millisecond)
	var final int
	loop.RunSync(func() { final = hits })
	assert.Equal(t, after, final)
}
