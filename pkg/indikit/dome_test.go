package indikit

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDome(t *testing.T, caps DomeCapability) *Dome {
	t.Helper()
	d := NewDome("Test Dome", "1.0", caps, NewEventLoop(log.StandardLogger()), log.StandardLogger())
	require.NoError(t, d.InitProperties())
	d.GetProperties()
	d.SetSimulation(true)
	return d
}

func TestDomeCapabilityMaskSelectsProperties(t *testing.T) {
	d := newTestDome(t, DomeCanPark|DomeHasShutter)
	require.NoError(t, d.Connect())

	for _, name := range []string{PropDomeMotion, PropDomePark, PropDomeParkOption, PropDomeShutter} {
		_, ok := d.Registry().Get(name)
		assert.True(t, ok, "expected %s", name)
	}
	for _, name := range []string{
		PropDomeAbortMotion, PropDomeAbsPosition, PropDomeRelPosition,
		PropDomeSync, PropDomeSpeed, PropDomeBacklashToggle, PropDomeBacklashSteps,
	} {
		_, ok := d.Registry().Get(name)
		assert.False(t, ok, "did not expect %s", name)
	}
}

func TestDomePropertiesRemovedOnDisconnect(t *testing.T) {
	d := newTestDome(t, DomeCanAbort|DomeCanAbsMove)
	require.NoError(t, d.Connect())
	require.NoError(t, d.Disconnect())

	for _, name := range []string{PropDomeMotion, PropDomeAbortMotion, PropDomeAbsPosition} {
		_, ok := d.Registry().Get(name)
		assert.False(t, ok, "%s must be gone after disconnect", name)
	}
}

func TestDomeMotionDispatch(t *testing.T) {
	d := newTestDome(t, 0)
	require.NoError(t, d.Connect())

	var gotDir DomeDirection
	var gotOp DomeMotionCommand
	d.Move = func(dir DomeDirection, op DomeMotionCommand) PropState {
		gotDir, gotOp = dir, op
		return StateBusy
	}

	require.True(t, d.NewSwitch(d.Name(), PropDomeMotion, map[string]bool{"DOME_CCW": true}))
	assert.Equal(t, DomeCCW, gotDir)
	assert.Equal(t, DomeMotionStart, gotOp)
	assert.Equal(t, StateBusy, d.motionSP.State())

	// Releasing all switches requests a stop.
	require.True(t, d.NewSwitch(d.Name(), PropDomeMotion, map[string]bool{"DOME_CCW": false}))
	assert.Equal(t, DomeMotionStop, gotOp)
}

func TestDomeMotionWithoutCallbackGoesAlert(t *testing.T) {
	d := newTestDome(t, 0)
	require.NoError(t, d.Connect())

	require.True(t, d.NewSwitch(d.Name(), PropDomeMotion, map[string]bool{"DOME_CW": true}))
	assert.Equal(t, StateAlert, d.motionSP.State())
}

func TestDomeAbsMoveDispatch(t *testing.T) {
	d := newTestDome(t, DomeCanAbsMove)
	require.NoError(t, d.Connect())

	var gotAz float64
	d.MoveAbs = func(az float64) PropState {
		gotAz = az
		return StateBusy
	}

	require.True(t, d.NewNumber(d.Name(), PropDomeAbsPosition,
		map[string]float64{"DOME_ABSOLUTE_POSITION": 123.5}))
	assert.Equal(t, 123.5, gotAz)
	assert.Equal(t, StateBusy, d.absNP.State())
}

func TestDomeParkAndUnPark(t *testing.T) {
	d := newTestDome(t, DomeCanPark)
	require.NoError(t, d.Connect())

	parked := false
	d.Park = func() PropState { parked = true; return StateOk }
	d.UnPark = func() PropState { parked = false; return StateOk }

	require.True(t, d.NewSwitch(d.Name(), PropDomePark, map[string]bool{"PARK": true}))
	assert.True(t, parked)
	assert.Equal(t, StateOk, d.parkSP.State())

	require.True(t, d.NewSwitch(d.Name(), PropDomePark, map[string]bool{"UNPARK": true}))
	assert.False(t, parked)
}

func TestDomeAbortReleasesButton(t *testing.T) {
	d := newTestDome(t, DomeCanAbort)
	require.NoError(t, d.Connect())
	d.Abort = func() bool { return true }

	require.True(t, d.NewSwitch(d.Name(), PropDomeAbortMotion, map[string]bool{"ABORT": true}))
	assert.Equal(t, StateOk, d.abortSP.State())
	assert.Equal(t, "", d.abortSP.FindOnSwitch())
}

func TestDomeShutterDispatch(t *testing.T) {
	d := newTestDome(t, DomeHasShutter)
	require.NoError(t, d.Connect())

	var gotOp ShutterOperation
	d.ControlShutter = func(op ShutterOperation) PropState {
		gotOp = op
		return StateBusy
	}

	require.True(t, d.NewSwitch(d.Name(), PropDomeShutter, map[string]bool{"SHUTTER_OPEN": true}))
	assert.Equal(t, ShutterOpen, gotOp)

	require.True(t, d.NewSwitch(d.Name(), PropDomeShutter, map[string]bool{"SHUTTER_CLOSE": true}))
	assert.Equal(t, ShutterClose, gotOp)
}

func TestDomeSyncFailureGoesAlert(t *testing.T) {
	d := newTestDome(t, DomeCanSync)
	require.NoError(t, d.Connect())
	d.Sync = func(az float64) bool { return false }

	require.True(t, d.NewNumber(d.Name(), PropDomeSync, map[string]float64{"DOME_SYNC_VALUE": 90}))
	assert.Equal(t, StateAlert, d.syncNP.State())
}

func TestDomeBacklashDispatch(t *testing.T) {
	d := newTestDome(t, DomeHasBacklash)
	require.NoError(t, d.Connect())

	enabled := false
	var steps int
	d.SetBacklashEnabled = func(on bool) bool { enabled = on; return true }
	d.SetBacklash = func(n int) bool { steps = n; return true }

	require.True(t, d.NewSwitch(d.Name(), PropDomeBacklashToggle, map[string]bool{"INDI_ENABLED": true}))
	assert.True(t, enabled)

	require.True(t, d.NewNumber(d.Name(), PropDomeBacklashSteps, map[string]float64{"DOME_BACKLASH_VALUE": 42}))
	assert.Equal(t, 42, steps)
	assert.Equal(t, StateOk, d.backlashStepsNP.State())
}

func TestDomeParkOptionDispatch(t *testing.T) {
	d := newTestDome(t, DomeCanPark)
	require.NoError(t, d.Connect())

	current := false
	d.SetCurrentPark = func() bool { current = true; return true }

	require.True(t, d.NewSwitch(d.Name(), PropDomeParkOption, map[string]bool{"PARK_CURRENT": true}))
	assert.True(t, current)
	assert.Equal(t, StateOk, d.parkOptionSP.State())
	assert.Equal(t, "", d.parkOptionSP.FindOnSwitch())

	// Default park has no callback registered.
	require.True(t, d.NewSwitch(d.Name(), PropDomeParkOption, map[string]bool{"PARK_DEFAULT": true}))
	assert.Equal(t, StateAlert, d.parkOptionSP.State())
}
