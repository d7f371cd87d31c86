// Package dustcap is a template dust cap driver. Park and unpark complete
// immediately.
package dustcap

import (
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example Dustcap"
	driverVersion = "1.0"
)

type Driver struct {
	*indikit.DefaultDevice
	cap *indikit.DustCap

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
	d.SetDriverInterface(indikit.DustCapInterface | indikit.AuxInterface)

	d.cap = indikit.NewDustCap(d.DefaultDevice)
	d.cap.ParkCap = d.parkCap
	d.cap.UnParkCap = d.unParkCap

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
	return d.cap.InitProperties()
}

// Parked reports the cap position clients currently see.
func (d *Driver) Parked() bool {
	return d.cap.Parked()
}

func (d *Driver) Handshake() bool {
	d.logger.Debugf("Handshake with %s over %s", d.Name(), d.ActiveConnection().Name())
	return true
}

func (d *Driver) timerHit() {
	d.logger.Debug("Timer hit")
	d.SetTimer(d.PollingPeriod())
}

func (d *Driver) parkCap() indikit.PropState {
	d.logger.Info("ParkCap()")
	return indikit.StateOk
}

func (d *Driver) unParkCap() indikit.PropState {
	d.logger.Info("UnParkCap()")
	return indikit.StateOk
}
