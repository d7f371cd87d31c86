// Package focuser is a template focuser driver with absolute, relative and
// abort support. Move operations succeed immediately; a real driver replaces
// them with hardware commands.
package focuser

import (
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example Focuser"
	driverVersion = "1.0"
)

type Driver struct {
	*indikit.Focuser

	serial *connection.Serial
	tcp    *connection.TCP
	logger log.FieldLogger
}

func New(loop *indikit.EventLoop, profile indikit.DeviceProfile, logger log.FieldLogger) *Driver {
	name := deviceName
	if profile.Name != "" {
		name = profile.Name
	}

	caps := indikit.FocuserCanAbsMove |
		indikit.FocuserCanRelMove |
		indikit.FocuserCanAbort

	d := &Driver{
		Focuser: indikit.NewFocuser(name, driverVersion, caps, loop, logger),
		logger:  logger,
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

	d.tcp = connection.NewTCP(logger)
	if profile.TCPHost != "" {
		d.tcp.SetDefaultHost(profile.TCPHost)
	}
	if profile.TCPPort != 0 {
		d.tcp.SetDefaultPort(profile.TCPPort)
	}
	d.tcp.RegisterHandshake(d.Handshake)
	d.RegisterConnection(d.tcp)

	d.MoveAbs = d.moveAbs
	d.MoveRel = d.moveRel
	d.MoveTimed = d.moveTimed
	d.Abort = d.abort

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
	d.logger.Debug("Timer hit")
	d.SetTimer(d.PollingPeriod())
}

func (d *Driver) moveAbs(ticks uint32) indikit.PropState {
	d.logger.Infof("MoveAbsFocuser: %d", ticks)
	return indikit.StateOk
}

func (d *Driver) moveRel(dir indikit.FocusDirection, ticks uint32) indikit.PropState {
	d.logger.Infof("MoveRelFocuser: %d %d", dir, ticks)
	return indikit.StateOk
}

func (d *Driver) moveTimed(dir indikit.FocusDirection, speed int, durationMS uint16) indikit.PropState {
	d.logger.Infof("MoveFocuser: %d %d %d", dir, speed, durationMS)
	return indikit.StateOk
}

func (d *Driver) abort() bool {
	d.logger.Info("AbortFocuser")
	return true
}
