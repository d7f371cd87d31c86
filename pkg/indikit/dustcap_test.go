package indikit

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDustCap(t *testing.T) (*DefaultDevice, *DustCap) {
	t.Helper()
	dev := NewDefaultDevice("Test Cap", "1.0", NewEventLoop(log.StandardLogger()), log.StandardLogger())
	c := NewDustCap(dev)
	require.NoError(t, dev.InitProperties())
	require.NoError(t, c.InitProperties())
	dev.GetProperties()
	dev.SetSimulation(true)
	return dev, c
}

func TestDustCapPropertyFollowsConnection(t *testing.T) {
	dev, _ := newTestDustCap(t)

	_, ok := dev.Registry().Get(PropCapPark)
	assert.False(t, ok)

	require.NoError(t, dev.Connect())
	_, ok = dev.Registry().Get(PropCapPark)
	assert.True(t, ok)

	require.NoError(t, dev.Disconnect())
	_, ok = dev.Registry().Get(PropCapPark)
	assert.False(t, ok)
}

func TestDustCapParkDispatch(t *testing.T) {
	dev, c := newTestDustCap(t)
	require.NoError(t, dev.Connect())

	parked := false
	c.ParkCap = func() PropState { parked = true; return StateOk }
	c.UnParkCap = func() PropState { parked = false; return StateOk }

	require.True(t, dev.NewSwitch(dev.Name(), PropCapPark, map[string]bool{"PARK": true}))
	assert.True(t, parked)
	assert.True(t, c.Parked())
	assert.Equal(t, StateOk, c.parkSP.State())

	require.True(t, dev.NewSwitch(dev.Name(), PropCapPark, map[string]bool{"UNPARK": true}))
	assert.False(t, parked)
	assert.False(t, c.Parked())
}

func TestDustCapBusyWhileMoving(t *testing.T) {
	dev, c := newTestDustCap(t)
	require.NoError(t, dev.Connect())

	c.ParkCap = func() PropState { return StateBusy }

	require.True(t, dev.NewSwitch(dev.Name(), PropCapPark, map[string]bool{"PARK": true}))
	assert.Equal(t, StateBusy, c.parkSP.State())
}

func TestDustCapWithoutCallbacksGoesAlert(t *testing.T) {
	dev, c := newTestDustCap(t)
	require.NoError(t, dev.Connect())

	require.True(t, dev.NewSwitch(dev.Name(), PropCapPark, map[string]bool{"PARK": true}))
	assert.Equal(t, StateAlert, c.parkSP.State())
}
