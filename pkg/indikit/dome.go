package indikit

import (
	log "github.com/sirupsen/logrus"
)

// DomeCapability selects which standard dome operations a concrete driver
// implements. Properties for unselected capabilities are never defined, so
// the corresponding operations are never dispatched.
type DomeCapability uint32

const (
	DomeCanAbort DomeCapability = 1 << iota
	DomeCanAbsMove
	DomeCanRelMove
	DomeCanPark
	DomeCanSync
	DomeHasShutter
	DomeHasVariableSpeed
	DomeHasBacklash
)

type DomeDirection int

const (
	DomeCW DomeDirection = iota
	DomeCCW
)

type DomeMotionCommand int

const (
	DomeMotionStart DomeMotionCommand = iota
	DomeMotionStop
)

type ShutterOperation int

const (
	ShutterOpen ShutterOperation = iota
	ShutterClose
)

// Standard dome property names.
const (
	PropDomeMotion         = "DOME_MOTION"
	PropDomeAbortMotion    = "DOME_ABORT_MOTION"
	PropDomeAbsPosition    = "ABS_DOME_POSITION"
	PropDomeRelPosition    = "REL_DOME_POSITION"
	PropDomePark           = "DOME_PARK"
	PropDomeParkOption     = "DOME_PARK_OPTION"
	PropDomeShutter        = "DOME_SHUTTER"
	PropDomeSpeed          = "DOME_SPEED"
	PropDomeSync           = "DOME_SYNC"
	PropDomeBacklashToggle = "DOME_BACKLASH_TOGGLE"
	PropDomeBacklashSteps  = "DOME_BACKLASH_STEPS"
)

// Dome declares the standard dome properties for a capability mask and
// routes client updates to the callbacks the concrete driver registers.
// A selected capability with no callback registered answers with Alert.
type Dome struct {
	*DefaultDevice
	caps DomeCapability

	Move               func(dir DomeDirection, op DomeMotionCommand) PropState
	MoveAbs            func(az float64) PropState
	MoveRel            func(azDiff float64) PropState
	Sync               func(az float64) bool
	Abort              func() bool
	Park               func() PropState
	UnPark             func() PropState
	SetSpeed           func(rpm float64) bool
	SetBacklash        func(steps int) bool
	SetBacklashEnabled func(enabled bool) bool
	ControlShutter     func(op ShutterOperation) PropState
	SetCurrentPark     func() bool
	SetDefaultPark     func() bool

	motionSP         *SwitchProperty
	abortSP          *SwitchProperty
	parkSP           *SwitchProperty
	parkOptionSP     *SwitchProperty
	shutterSP        *SwitchProperty
	backlashToggleSP *SwitchProperty
	absNP            *NumberProperty
	relNP            *NumberProperty
	speedNP          *NumberProperty
	syncNP           *NumberProperty
	backlashStepsNP  *NumberProperty
}

func NewDome(name, version string, caps DomeCapability, loop *EventLoop, logger log.FieldLogger) *Dome {
	d := &Dome{
		DefaultDevice: NewDefaultDevice(name, version, loop, logger),
		caps:          caps,
	}
	d.SetDriverInterface(DomeInterface)
	d.OnConnectionChange(d.updateDomeProperties)
	return d
}

func (d *Dome) Capabilities() DomeCapability { return d.caps }

// InitProperties builds the aux controls and the standard dome properties
// the capability mask selects.
func (d *Dome) InitProperties() error {
	if err := d.DefaultDevice.InitProperties(); err != nil {
		return err
	}

	var err error

	d.motionSP, err = NewSwitch(d.Name(), PropDomeMotion).
		Label("Motion").
		Rule(RuleAtMostOne).
		Member("DOME_CW", "Dome CW", false).
		Member("DOME_CCW", "Dome CCW", false).
		OnUpdate(d.motionRequested).
		Build()
	if err != nil {
		return err
	}

	if d.caps&DomeCanAbort != 0 {
		d.abortSP, err = NewSwitch(d.Name(), PropDomeAbortMotion).
			Label("Abort Motion").
			Rule(RuleAtMostOne).
			Member("ABORT", "Abort", false).
			OnUpdate(d.abortRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeCanAbsMove != 0 {
		d.absNP, err = NewNumber(d.Name(), PropDomeAbsPosition).
			Label("Absolute Position").
			Member("DOME_ABSOLUTE_POSITION", "Degrees", "%6.2f", 0, 360, 1, 0).
			OnUpdate(d.absMoveRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeCanRelMove != 0 {
		d.relNP, err = NewNumber(d.Name(), PropDomeRelPosition).
			Label("Relative Position").
			Member("DOME_RELATIVE_POSITION", "Degrees", "%6.2f", -180, 180, 1, 0).
			OnUpdate(d.relMoveRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeCanPark != 0 {
		d.parkSP, err = NewSwitch(d.Name(), PropDomePark).
			Label("Parking").
			Rule(RuleOneOfMany).
			Member("PARK", "Park", false).
			Member("UNPARK", "UnPark", true).
			OnUpdate(d.parkRequested).
			Build()
		if err != nil {
			return err
		}

		d.parkOptionSP, err = NewSwitch(d.Name(), PropDomeParkOption).
			Label("Park Options").
			Group(GroupOptions).
			Rule(RuleAtMostOne).
			Member("PARK_CURRENT", "Current", false).
			Member("PARK_DEFAULT", "Default", false).
			OnUpdate(d.parkOptionRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeCanSync != 0 {
		d.syncNP, err = NewNumber(d.Name(), PropDomeSync).
			Label("Sync").
			Member("DOME_SYNC_VALUE", "Az", "%6.2f", 0, 360, 1, 0).
			OnUpdate(d.syncRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeHasShutter != 0 {
		d.shutterSP, err = NewSwitch(d.Name(), PropDomeShutter).
			Label("Shutter").
			Rule(RuleOneOfMany).
			Member("SHUTTER_OPEN", "Open", false).
			Member("SHUTTER_CLOSE", "Close", true).
			OnUpdate(d.shutterRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeHasVariableSpeed != 0 {
		d.speedNP, err = NewNumber(d.Name(), PropDomeSpeed).
			Label("Speed").
			Member("DOME_SPEED_VALUE", "RPM", "%6.2f", 0, 10, 0.1, 1).
			OnUpdate(d.speedRequested).
			Build()
		if err != nil {
			return err
		}
	}

	if d.caps&DomeHasBacklash != 0 {
		d.backlashToggleSP, err = NewSwitch(d.Name(), PropDomeBacklashToggle).
			Label("Backlash").
			Group(GroupOptions).
			Rule(RuleOneOfMany).
			Member("INDI_ENABLED", "Enabled", false).
			Member("INDI_DISABLED", "Disabled", true).
			OnUpdate(d.backlashToggleRequested).
			Build()
		if err != nil {
			return err
		}

		d.backlashStepsNP, err = NumberBuilderForBacklash(d.Name()).
			OnUpdate(d.backlashStepsRequested).
			Build()
		if err != nil {
			return err
		}
	}

	return nil
}

// NumberBuilderForBacklash is split out so the steps property keeps the same
// shape wherever backlash appears.
func NumberBuilderForBacklash(device string) *NumberBuilder {
	return NewNumber(device, PropDomeBacklashSteps).
		Label("Backlash Steps").
		Group(GroupOptions).
		Member("DOME_BACKLASH_VALUE", "Steps", "%.0f", 0, 1000, 1, 0)
}

func (d *Dome) domeProperties() []Property {
	candidates := []Property{
		d.motionSP, d.abortSP, d.absNP, d.relNP, d.parkSP, d.parkOptionSP,
		d.syncNP, d.shutterSP, d.speedNP, d.backlashToggleSP, d.backlashStepsNP,
	}
	props := make([]Property, 0, len(candidates))
	for _, p := range candidates {
		switch v := p.(type) {
		case *SwitchProperty:
			if v != nil {
				props = append(props, v)
			}
		case *NumberProperty:
			if v != nil {
				props = append(props, v)
			}
		}
	}
	return props
}

// updateDomeProperties keeps publication symmetric: every dome property
// defined on connect is deleted on disconnect.
func (d *Dome) updateDomeProperties(connected bool) {
	for _, p := range d.domeProperties() {
		if connected {
			if err := d.DefineProperty(p); err != nil {
				d.Logger().Errorf("Failed to define %s: %v", p.Name(), err)
			}
		} else {
			if err := d.DeleteProperty(p.Name()); err != nil {
				d.Logger().Errorf("Failed to delete %s: %v", p.Name(), err)
			}
		}
	}
}

func (d *Dome) motionRequested(p *SwitchProperty) {
	if d.Move == nil {
		p.SetState(StateAlert)
		return
	}

	switch p.FindOnSwitch() {
	case "DOME_CW":
		p.SetState(d.Move(DomeCW, DomeMotionStart))
	case "DOME_CCW":
		p.SetState(d.Move(DomeCCW, DomeMotionStart))
	default:
		// All switches off stops the motion.
		p.SetState(d.Move(DomeCW, DomeMotionStop))
	}
}

func (d *Dome) abortRequested(p *SwitchProperty) {
	p.Reset()
	if d.Abort == nil || !d.Abort() {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (d *Dome) absMoveRequested(p *NumberProperty) {
	if d.MoveAbs == nil {
		p.SetState(StateAlert)
		return
	}
	p.SetState(d.MoveAbs(p.Value("DOME_ABSOLUTE_POSITION")))
}

func (d *Dome) relMoveRequested(p *NumberProperty) {
	if d.MoveRel == nil {
		p.SetState(StateAlert)
		return
	}
	p.SetState(d.MoveRel(p.Value("DOME_RELATIVE_POSITION")))
}

func (d *Dome) parkRequested(p *SwitchProperty) {
	if p.On("PARK") {
		if d.Park == nil {
			p.SetState(StateAlert)
			return
		}
		p.SetState(d.Park())
		return
	}
	if d.UnPark == nil {
		p.SetState(StateAlert)
		return
	}
	p.SetState(d.UnPark())
}

func (d *Dome) parkOptionRequested(p *SwitchProperty) {
	option := p.FindOnSwitch()
	p.Reset()

	var ok bool
	switch option {
	case "PARK_CURRENT":
		ok = d.SetCurrentPark != nil && d.SetCurrentPark()
	case "PARK_DEFAULT":
		ok = d.SetDefaultPark != nil && d.SetDefaultPark()
	}

	if !ok {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (d *Dome) syncRequested(p *NumberProperty) {
	if d.Sync == nil || !d.Sync(p.Value("DOME_SYNC_VALUE")) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (d *Dome) shutterRequested(p *SwitchProperty) {
	if d.ControlShutter == nil {
		p.SetState(StateAlert)
		return
	}

	op := ShutterClose
	if p.On("SHUTTER_OPEN") {
		op = ShutterOpen
	}
	p.SetState(d.ControlShutter(op))
}

func (d *Dome) speedRequested(p *NumberProperty) {
	if d.SetSpeed == nil || !d.SetSpeed(p.Value("DOME_SPEED_VALUE")) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (d *Dome) backlashToggleRequested(p *SwitchProperty) {
	enabled := p.On("INDI_ENABLED")
	if d.SetBacklashEnabled == nil || !d.SetBacklashEnabled(enabled) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (d *Dome) backlashStepsRequested(p *NumberProperty) {
	steps := int(p.Value("DOME_BACKLASH_VALUE"))
	if d.SetBacklash == nil || !d.SetBacklash(steps) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}
