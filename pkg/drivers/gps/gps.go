// Package gps is a template GPS driver. Refreshes report the current system
// clock and a zero location; a real driver reads the receiver instead.
package gps

import (
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example GPS"
	driverVersion = "1.0"
)

type Driver struct {
	*indikit.GPS

	serial *connection.Serial
	logger log.FieldLogger

	// now is swappable for tests.
	now func() time.Time
}

func New(loop *indikit.EventLoop, profile indikit.DeviceProfile, logger log.FieldLogger) *Driver {
	name := deviceName
	if profile.Name != "" {
		name = profile.Name
	}

	d := &Driver{
		GPS:    indikit.NewGPS(name, driverVersion, loop, logger),
		logger: logger,
		now:    time.Now,
	}

	d.serial = connection.NewSerial(logger)
	if profile.SerialPort != "" {
		d.serial.SetDefaultPort(profile.SerialPort)
	}
	if profile.BaudRate != 0 {
		d.serial.SetDefaultBaudRate(profile.BaudRate)
	}
	d.serial.RegisterHandshake(d.Handshake)
	d.RegisterConnection(d.serial)

	d.UpdateGPS = d.updateGPS

	if profile.PollMS != 0 {
		d.SetPollingPeriod(time.Duration(profile.PollMS) * time.Millisecond)
	}

	d.OnTimer(d.timerHit)

	return d
}

func (d *Driver) Handshake() bool {
	d.logger.Debugf("Handshake with %s over %s", d.Name(), d.ActiveConnection().Name())
	return true
}

func (d *Driver) timerHit() {
	d.Refresh()
	d.SetTimer(d.PollingPeriod())
}

func (d *Driver) updateGPS() indikit.PropState {
	now := d.now()

	_, offsetSeconds := now.Zone()
	d.SetTime(now, float64(offsetSeconds)/3600.0)
	d.SetLocation(0.0, 0.0, 0.0)

	return indikit.StateOk
}
