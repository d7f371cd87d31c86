package indikit

// Light box capability mix-in, composed onto a DefaultDevice the same way
// the dust cap is.

// Standard light box property names.
const (
	PropLightControl   = "FLAT_LIGHT_CONTROL"
	PropLightIntensity = "FLAT_LIGHT_INTENSITY"
)

// LightBox wires the light switch and brightness properties onto a device.
// Both callbacks report plain success; failure shows as Alert on the
// property.
type LightBox struct {
	dev *DefaultDevice

	EnableLightBox        func(enabled bool) bool
	SetLightBoxBrightness func(value uint16) bool

	lightSP     *SwitchProperty
	intensityNP *NumberProperty
}

func NewLightBox(dev *DefaultDevice) *LightBox {
	l := &LightBox{dev: dev}
	dev.OnConnectionChange(l.updateLightBoxProperties)
	return l
}

func (l *LightBox) InitProperties() error {
	var err error

	l.lightSP, err = NewSwitch(l.dev.Name(), PropLightControl).
		Label("Flat Light").
		Rule(RuleOneOfMany).
		Member("FLAT_LIGHT_ON", "On", false).
		Member("FLAT_LIGHT_OFF", "Off", true).
		OnUpdate(l.lightRequested).
		Build()
	if err != nil {
		return err
	}

	l.intensityNP, err = NewNumber(l.dev.Name(), PropLightIntensity).
		Label("Brightness").
		Member("FLAT_LIGHT_INTENSITY_VALUE", "Level", "%.0f", 0, 255, 1, 0).
		OnUpdate(l.intensityRequested).
		Build()
	if err != nil {
		return err
	}

	l.dev.PersistProperty(l.intensityNP)
	return nil
}

func (l *LightBox) updateLightBoxProperties(connected bool) {
	props := []Property{l.lightSP, l.intensityNP}
	for _, p := range props {
		if connected {
			if err := l.dev.DefineProperty(p); err != nil {
				l.dev.Logger().Errorf("Failed to define %s: %v", p.Name(), err)
			}
		} else {
			if err := l.dev.DeleteProperty(p.Name()); err != nil {
				l.dev.Logger().Errorf("Failed to delete %s: %v", p.Name(), err)
			}
		}
	}
}

// LightOn reports the switch position clients currently see.
func (l *LightBox) LightOn() bool {
	return l.lightSP.On("FLAT_LIGHT_ON")
}

// Brightness is the current intensity value.
func (l *LightBox) Brightness() uint16 {
	return uint16(l.intensityNP.Value("FLAT_LIGHT_INTENSITY_VALUE"))
}

// SnoopTelescope reacts to snooped telescope park state: some light boxes
// switch on automatically once the telescope parks. Returns true when the
// snooped value was consumed.
func (l *LightBox) SnoopTelescope(device, name string, values map[string]any) bool {
	if name != "TELESCOPE_PARK" {
		return false
	}

	parked, _ := values["PARK"].(bool)
	l.dev.Logger().Debugf("Snooped %s park state from %s: %v", name, device, parked)
	return true
}

func (l *LightBox) lightRequested(p *SwitchProperty) {
	enabled := p.On("FLAT_LIGHT_ON")
	if l.EnableLightBox == nil || !l.EnableLightBox(enabled) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}

func (l *LightBox) intensityRequested(p *NumberProperty) {
	value := uint16(p.Value("FLAT_LIGHT_INTENSITY_VALUE"))
	if l.SetLightBoxBrightness == nil || !l.SetLightBoxBrightness(value) {
		p.SetState(StateAlert)
		return
	}
	p.SetState(StateOk)
}
