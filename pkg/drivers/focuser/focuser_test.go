package focuser

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indikit/pkg/indikit"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	logger := log.StandardLogger()
	d := New(indikit.NewEventLoop(logger), indikit.DeviceProfile{}, logger)
	require.NoError(t, d.InitProperties())
	d.GetProperties()
	d.SetSimulation(true)
	return d
}

func TestPropertiesForDeclaredCapabilities(t *testing.T) {
	d := newTestDriver(t)
	require.NoError(t, d.Connect())

	for _, name := range []string{
		indikit.PropFocusMotion, indikit.PropFocusAbsPosition,
		indikit.PropFocusRelPosition, indikit.PropFocusAbortMotion,
	} {
		_, ok := d.Registry().Get(name)
		assert.True(t, ok, "expected %s", name)
	}

	// Absolute positioning is available, so no timed fallback.
	_, ok := d.Registry().Get(indikit.PropFocusTimer)
	assert.False(t, ok)
}

func TestMovesSucceed(t *testing.T) {
	d := newTestDriver(t)
	require.NoError(t, d.Connect())

	require.True(t, d.NewNumber(d.Name(), indikit.PropFocusAbsPosition,
		map[string]float64{"FOCUS_ABSOLUTE_POSITION": 2500}))
	p, _ := d.Registry().Get(indikit.PropFocusAbsPosition)
	assert.Equal(t, indikit.StateOk, p.State())

	require.True(t, d.NewNumber(d.Name(), indikit.PropFocusRelPosition,
		map[string]float64{"FOCUS_RELATIVE_POSITION": 100}))
	p, _ = d.Registry().Get(indikit.PropFocusRelPosition)
	assert.Equal(t, indikit.StateOk, p.State())
}

func TestAbortSucceeds(t *testing.T) {
	d := newTestDriver(t)
	require.NoError(t, d.Connect())

	require.True(t, d.NewSwitch(d.Name(), indikit.PropFocusAbortMotion,
		map[string]bool{"ABORT": true}))
	p, _ := d.Registry().Get(indikit.PropFocusAbortMotion)
	assert.Equal(t, indikit.StateOk, p.State())
}
