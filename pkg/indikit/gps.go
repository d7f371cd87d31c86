package indikit

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Standard GPS property names.
const (
	PropGeographicCoord = "GEOGRAPHIC_COORD"
	PropTimeUTC         = "TIME_UTC"
	PropGPSRefresh      = "GPS_REFRESH"
)

// GPS declares the standard location and time properties and refreshes them
// through the UpdateGPS callback, either on client request or from the
// polling timer.
type GPS struct {
	*DefaultDevice

	// UpdateGPS fills the location and time properties from the receiver
	// and returns the resulting state. The base pushes the updated
	// properties to clients.
	UpdateGPS func() PropState

	locationNP *NumberProperty
	timeTP     *TextProperty
	refreshSP  *SwitchProperty
}

func NewGPS(name, version string, loop *EventLoop, logger log.FieldLogger) *GPS {
	g := &GPS{
		DefaultDevice: NewDefaultDevice(name, version, loop, logger),
	}
	g.SetDriverInterface(GPSInterface)
	g.OnConnectionChange(g.updateGPSProperties)
	return g
}

func (g *GPS) InitProperties() error {
	if err := g.DefaultDevice.InitProperties(); err != nil {
		return err
	}

	var err error

	g.locationNP, err = NewNumber(g.Name(), PropGeographicCoord).
		Label("Location").
		Group(GroupSite).
		Permission(PermReadOnly).
		Member("LAT", "Latitude (deg)", "%10.6f", -90, 90, 0, 0).
		Member("LONG", "Longitude (deg)", "%10.6f", 0, 360, 0, 0).
		Member("ELEV", "Elevation (m)", "%.0f", -200, 10000, 0, 0).
		Build()
	if err != nil {
		return err
	}

	g.timeTP, err = NewText(g.Name(), PropTimeUTC).
		Label("UTC").
		Group(GroupSite).
		Permission(PermReadOnly).
		Member("UTC", "UTC Time", "").
		Member("OFFSET", "UTC Offset", "").
		Build()
	if err != nil {
		return err
	}

	g.refreshSP, err = NewSwitch(g.Name(), PropGPSRefresh).
		Label("GPS").
		Rule(RuleAtMostOne).
		Member("REFRESH", "Refresh", false).
		OnUpdate(g.refreshRequested).
		Build()
	return err
}

func (g *GPS) gpsProperties() []Property {
	return []Property{g.locationNP, g.timeTP, g.refreshSP}
}

func (g *GPS) updateGPSProperties(connected bool) {
	for _, p := range g.gpsProperties() {
		if connected {
			if err := g.DefineProperty(p); err != nil {
				g.Logger().Errorf("Failed to define %s: %v", p.Name(), err)
			}
		} else {
			if err := g.DeleteProperty(p.Name()); err != nil {
				g.Logger().Errorf("Failed to delete %s: %v", p.Name(), err)
			}
		}
	}
	if connected {
		g.Refresh()
	}
}

// SetLocation stores a fix on the location property.
func (g *GPS) SetLocation(lat, long, elev float64) {
	g.locationNP.SetValue("LAT", lat)
	g.locationNP.SetValue("LONG", long)
	g.locationNP.SetValue("ELEV", elev)
}

// SetTime stores UTC time and offset on the time property.
func (g *GPS) SetTime(utc time.Time, offsetHours float64) {
	g.timeTP.SetText("UTC", utc.UTC().Format("2006-01-02T15:04:05"))
	g.timeTP.SetText("OFFSET", fmt.Sprintf("%4.2f", offsetHours))
}

// Refresh runs UpdateGPS and pushes both properties at the resulting state.
func (g *GPS) Refresh() {
	if g.UpdateGPS == nil {
		return
	}

	state := g.UpdateGPS()
	g.locationNP.SetState(state)
	g.timeTP.SetState(state)
	g.Apply(g.locationNP)
	g.Apply(g.timeTP)
}

func (g *GPS) refreshRequested(p *SwitchProperty) {
	p.Reset()
	if g.UpdateGPS == nil {
		p.SetState(StateAlert)
		return
	}
	g.Refresh()
	p.SetState(StateOk)
}
