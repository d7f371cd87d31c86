package indikit

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLightBox(t *testing.T) (*DefaultDevice, *LightBox) {
	t.Helper()
	dev := NewDefaultDevice("Test Box", "1.0", NewEventLoop(log.StandardLogger()), log.StandardLogger())
	l := NewLightBox(dev)
	require.NoError(t, dev.InitProperties())
	require.NoError(t, l.InitProperties())
	dev.GetProperties()
	dev.SetSimulation(true)
	return dev, l
}

func TestLightBoxPropertiesFollowConnection(t *testing.T) {
	dev, _ := newTestLightBox(t)

	require.NoError(t, dev.Connect())
	for _, name := range []string{PropLightControl, PropLightIntensity} {
		_, ok := dev.Registry().Get(name)
		assert.True(t, ok, "expected %s", name)
	}

	require.NoError(t, dev.Disconnect())
	_, ok := dev.Registry().Get(PropLightControl)
	assert.False(t, ok)
}

func TestLightBoxSwitchDispatch(t *testing.T) {
	dev, l := newTestLightBox(t)
	require.NoError(t, dev.Connect())

	var gotEnabled bool
	l.EnableLightBox = func(enabled bool) bool { gotEnabled = enabled; return true }

	require.True(t, dev.NewSwitch(dev.Name(), PropLightControl, map[string]bool{"FLAT_LIGHT_ON": true}))
	assert.True(t, gotEnabled)
	assert.True(t, l.LightOn())
	assert.Equal(t, StateOk, l.lightSP.State())

	require.True(t, dev.NewSwitch(dev.Name(), PropLightControl, map[string]bool{"FLAT_LIGHT_OFF": true}))
	assert.False(t, gotEnabled)
	assert.False(t, l.LightOn())
}

func TestLightBoxBrightnessDispatch(t *testing.T) {
	dev, l := newTestLightBox(t)
	require.NoError(t, dev.Connect())

	var gotValue uint16
	l.SetLightBoxBrightness = func(value uint16) bool { gotValue = value; return true }

	require.True(t, dev.NewNumber(dev.Name(), PropLightIntensity,
		map[string]float64{"FLAT_LIGHT_INTENSITY_VALUE": 128}))
	assert.Equal(t, uint16(128), gotValue)
	assert.Equal(t, uint16(128), l.Brightness())
}

func TestLightBoxFailureGoesAlert(t *testing.T) {
	dev, l := newTestLightBox(t)
	require.NoError(t, dev.Connect())

	l.EnableLightBox = func(enabled bool) bool { return false }

	require.True(t, dev.NewSwitch(dev.Name(), PropLightControl, map[string]bool{"FLAT_LIGHT_ON": true}))
	assert.Equal(t, StateAlert, l.lightSP.State())
}

func TestLightBoxSnoopTelescope(t *testing.T) {
	dev, l := newTestLightBox(t)
	dev.OnSnoop(l.SnoopTelescope)

	consumed := dev.Snoop("Telescope Simulator", "TELESCOPE_PARK", map[string]any{"PARK": true})
	assert.True(t, consumed)

	consumed = dev.Snoop("Telescope Simulator", "EQUATORIAL_EOD_COORD", map[string]any{"RA": 1.0})
	assert.False(t, consumed)
}
