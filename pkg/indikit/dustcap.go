package indikit

// Dust cap capability mix-in. Unlike dome and focuser there is no dedicated
// base device; a dust cap is a DefaultDevice that attaches this interface,
// so it composes freely with other capabilities on the same device.

// Standard dust cap property names.
const (
	PropCapPark = "CAP_PARK"
)

// DustCap wires the park/unpark property onto a device. The
// ParkCap and UnParkCap callbacks return the resulting state; Busy means the
// cap is still moving and a later push reports completion.
type DustCap struct {
	dev *DefaultDevice

	ParkCap   func() PropState
	UnParkCap func() PropState

	parkSP *SwitchProperty
}

// NewDustCap builds the mix-in for the given device. Call InitProperties
// after the device's own InitProperties, then Attach on connection changes.
func NewDustCap(dev *DefaultDevice) *DustCap {
	c := &DustCap{dev: dev}
	dev.OnConnectionChange(c.updateDustCapProperties)
	return c
}

func (c *DustCap) InitProperties() error {
	var err error
	c.parkSP, err = NewSwitch(c.dev.Name(), PropCapPark).
		Label("Dust Cover").
		Rule(RuleOneOfMany).
		Member("PARK", "Park", false).
		Member("UNPARK", "UnPark", true).
		OnUpdate(c.parkRequested).
		Build()
	return err
}

func (c *DustCap) updateDustCapProperties(connected bool) {
	if connected {
		if err := c.dev.DefineProperty(c.parkSP); err != nil {
			c.dev.Logger().Errorf("Failed to define %s: %v", c.parkSP.Name(), err)
		}
		return
	}
	if err := c.dev.DeleteProperty(c.parkSP.Name()); err != nil {
		c.dev.Logger().Errorf("Failed to delete %s: %v", c.parkSP.Name(), err)
	}
}

// Parked reports the position clients currently see.
func (c *DustCap) Parked() bool {
	return c.parkSP.On("PARK")
}

func (c *DustCap) parkRequested(p *SwitchProperty) {
	if p.On("PARK") {
		if c.ParkCap == nil {
			p.SetState(StateAlert)
			return
		}
		p.SetState(c.ParkCap())
		return
	}
	if c.UnParkCap == nil {
		p.SetState(StateAlert)
		return
	}
	p.SetState(c.UnParkCap())
}
