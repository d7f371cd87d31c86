package indikit

import (
	log "github.com/sirupsen/logrus"
)

// FocuserCapability selects which standard focuser operations a concrete
// driver implements.
type FocuserCapability uint32

const (
	FocuserCanAbsMove FocuserCapability = 1 << iota
	FocuserCanRelMove
	FocuserCanAbort
	FocuserHasVariableSpeed
)

type FocusDirection int

const (
	FocusInward FocusDirection = iota
	FocusOutward
)

// Standard focuser property names.
const (
	PropFocusMotion      = "FOCUS_MOTION"
	PropFocusAbsPosition = "ABS_FOCUS_POSITION"
	PropFocusRelPosition = "REL_FOCUS_POSITION"
	PropFocusAbortMotion = "FOCUS_ABORT_MOTION"
	PropFocusSpeed       = "FOCUS_SPEED"
	PropFocusTimer       = "FOCUS_TIMER"
)

// Focuser declares the standard focuser properties for a capability mask and
// routes client updates to the registered callbacks.
type Focuser struct {
	*DefaultDevice
	caps FocuserCapability

	MoveAbs func(ticks uint32) PropState
	MoveRel func(dir FocusDirection, ticks uint32) PropState
	// MoveTimed is dispatched when the driver has no absolute move: motion
	// in a direction at a speed for a duration in milliseconds.
	MoveTimed func(dir FocusDirection, speed int, durationMS uint16) PropState
	Abort     func() bool
	SetSpeed  func(speed int) bool

	motionSP *SwitchProperty
	abortSP  *SwitchProperty
	absNP    *NumberProperty
	relNP    *NumberProperty
	timerNP  *NumberProperty
	speedNP  *NumberProperty
}

func NewFocuser(name, version string, caps FocuserCapability, loop *EventLoop, logger log.FieldLogger) *Focuser {
	f := &Focuser{
		DefaultDevice: NewDefaultDevice(name, version, loop, logger),
		caps:          caps,
	}
	f.SetDriverInterface(FocuserInterface)
	f.OnConnectionChange(f.updateFocuserProperties)
	return f
}

func (f *Focuser) Capabilities() FocuserCapability { return f.caps }

func (f *Focuser) InitProperties() error {
	if err := f.DefaultDevice.InitProperties(); err != nil {
		return err
	}

	var err error

	f.motionSP, err = NewSwitch(f.Name(), PropFocusMotion).
		Label("Direction").
		Rule(RuleOneOfMany).
		Member("FOCUS_INWARD", "Focus In", true).
		Member("FOCUS_OUTWARD", "Focus Out", false).
		OnUpdate(func(p *SwitchProperty) {
			// Direction is only consumed by the next move request.
			p.SetState(StateOk)
		}).
		Build()
	if err != nil {
		return err
	}

	if f.caps&FocuserCanAbsMove != 0 {
		f.absNP, err = NewNumber(f.Name(), PropFocusAbsPosition).
			Label("Absolute Position").
			Member("FOCUS_ABSOLUTE_POSITION", "Ticks", "%.0f", 0, 100000, 100, 0).
			OnUpdate(f.absMoveRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if f.caps&FocuserCanRelMove != 0 {
		f.relNP, err = NewNumber(f.Name(), PropFocusRelPosition).
			Label("Relative Position").
			Member("FOCUS_RELATIVE_POSITION", "Ticks", "%.0f", 0, 100000, 100, 0).
			OnUpdate(f.relMoveRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if f.caps&FocuserCanAbsMove == 0 {
		f.timerNP, err = NewNumber(f.Name(), PropFocusTimer).
			Label("Focus Timer").
			Member("FOCUS_TIMER_VALUE", "Duration (ms)", "%.0f", 0, 5000, 50, 0).
			OnUpdate(f.timedMoveRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if f.caps&FocuserHasVariableSpeed != 0 {
		f.speedNP, err = NewNumber(f.Name(), PropFocusSpeed).
			Label("Speed").
			Member("FOCUS_SPEED_VALUE", "Focus speed", "%.0f", 0, 255, 1, 255).
			OnUpdate(f.speedRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if f.caps&FocuserCanAbort != 0 {
		f.abortSP, err = NewSwitch(f.Name(), PropFocusAbortMotion).
			Label("Abort Motion").
			Rule(RuleAtMostOne).
			Member("ABORT", "Abort", false).
			OnUpdate(f.abortRequested).
			Build()
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *Focuser) focuserProperties() []Property {
	props := []Property{f.motionSP}
	if f.absNP != nil {
		props = append(props, f.absNP)
	}
	if f.relNP != nil {
		props = append(props, f.relNP)
	}
	if f.timerNP != nil {
		props = append(props, f.timerNP)
	}
	if f.speedNP != nil {
		props = append(props, f.speedNP)
	}
	if f.abortSP != nil {
		props = append(props, f.abortSP)
	}
	return props
}

func (f *Focuser) updateFocuserProperties(connected bool) {
	for _, p := range f.focuserProperties() {
		if connected {
			if err := f.DefineProperty(p); err != nil {
				f.Logger().Errorf("Failed to define %s: %v", p.Name(), err)
			}
		} else {
			if err := f.DeleteProperty(p.Name()); err != nil {
				f.Logger().Errorf("Failed to delete %s: %v", p.Name(), err)
			}
		}
	}
}

// Direction returns the currently selected focus direction.
func (f *Focuser) Direction() FocusDirection {
	if f.motionSP != nil && f.motionSP.On("FOCUS_OUTWARD") {
		return FocusOutward
	}
	return FocusInward
}

func (f *Focuser) absMoveRequested(p *NumberProperty) {
	if f.MoveAbs == nil {
		p.SetState(StateAlert)
		return
	}
	p.SetState(f.MoveAbs(uint32(p.Value("FOCUS_ABSOLUTE_POSITION"))))
}

func (f *Focuser) relMoveRequested(p *NumberProperty) {
	if f.MoveRel == nil {
		p.SetState(StateAlert)
		return
	}
	p.SetState(f.MoveRel(f.Direction(), uint32(p.Value("FOCUS_RELATIVE_POSITION"))))
}

// Speed is the currently selected motion speed, or 1 for fixed-speed
// focusers.
func (f *Focuser) Speed() int {
	if f.speedNP == nil {
		return 1
	}
	return int(f.speedNP.Value("FOCUS_SPEED_VALUE"))
}

func (f *Focuser) timedMoveRequested(p *NumberProperty) {
	if f.MoveTimed == nil {
		p.SetState(StateAlert)
		return
	}
	duration := uint16(p.Value("FOCUS_TIMER_VALUE"))
	p.SetState(f.MoveTimed(f.Direction(), f.Speed(), duration))
}

func (f *Focuser) speedRequested(p *NumberProperty) {
	speed := int(p.Value("FOCUS_SPEED_VALUE"))
	if f.SetSpeed == nil || !f.SetSpeed(speed) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (f *Focuser) abortRequested(p *SwitchProperty) {
	p.Reset()
	if f.Abort == nil || !f.Abort() {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}
