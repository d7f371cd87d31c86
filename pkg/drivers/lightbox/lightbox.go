// Package lightbox is a template flat-field light box driver. The light and
// brightness stubs report failure, which clients see as an Alert on the
// property.
package lightbox

import (
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example Lightbox"
	driverVersion = "1.0"
)

type Driver struct {
	*indikit.DefaultDevice
	box *indikit.LightBox

	serial *connection.Serial
	logger log.FieldLogger
}

func New(loop *indikit.EventLoop, profile indikit.DeviceProfile, logger log.FieldLogger) *Driver {
	name := deviceName
	if profile.Name != "" {
		name = profile.Name
	}

	d := &Driver{
		DefaultDevice: indikit.NewDefaultDevice(name, driverVersion, loop, logger),
		logger:        logger,
	}
	d.SetDriverInterface(indikit.LightBoxInterface | indikit.AuxInterface)

	d.box = indikit.NewLightBox(d.DefaultDevice)
	d.box.EnableLightBox = d.enableLightBox
	d.box.SetLightBoxBrightness = d.setLightBoxBrightness
	d.OnSnoop(d.box.SnoopTelescope)

	d.serial = connection.NewSerial(logger)
	if profile.SerialPort != "" {
		d.serial.SetDefaultPort(profile.SerialPort)
	}
	if profile.BaudRate != 0 {
		d.serial.SetDefaultBaudRate(profile.BaudRate)
	}
	d.serial.RegisterHandshake(d.Handshake)
	d.RegisterConnection(d.serial)

	if profile.PollMS != 0 {
		d.SetPollingPeriod(time.Duration(profile.PollMS) * time.Millisecond)
	}

	d.OnTimer(d.timerHit)

	return d
}

func (d *Driver) InitProperties() error {
	if err := d.DefaultDevice.InitProperties(); err != nil {
		return err
	}
	return d.box.InitProperties()
}

// LightOn reports the light switch position clients currently see.
func (d *Driver) LightOn() bool {
	return d.box.LightOn()
}

func (d *Driver) Handshake() bool {
	d.logger.Debugf("Handshake with %s over %s", d.Name(), d.ActiveConnection().Name())
	return true
}

func (d *Driver) timerHit() {
	d.logger.Debug("Timer hit")
	d.SetTimer(d.PollingPeriod())
}

func (d *Driver) enableLightBox(enabled bool) bool {
	d.logger.Infof("EnableLightBox(%v)", enabled)
	return false
}

func (d *Driver) setLightBoxBrightness(value uint16) bool {
	d.logger.Infof("SetLightBoxBrightness(%d)", value)
	return false
}
