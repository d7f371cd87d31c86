// Package dome is a template dome driver: every capability of the dome base
// is declared and every operation is a logged stub for a real implementation
// to fill in.
package dome

import (
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example Dome"
	driverVersion = "1.0"
)

// Driver is the template dome. It supports serial, TCP and MQTT transports;
// which ones are offered depends on the profile.
type Driver struct {
	*indikit.Dome

	serial *connection.Serial
	tcp    *connection.TCP
	mqtt   *connection.MQTT
	logger log.FieldLogger
}

func New(loop *indikit.EventLoop, profile indikit.DeviceProfile, logger log.FieldLogger) *Driver {
	name := deviceName
	if profile.Name != "" {
		name = profile.Name
	}

	caps := indikit.DomeCanAbort |
		indikit.DomeCanAbsMove |
		indikit.DomeCanRelMove |
		indikit.DomeCanPark |
		indikit.DomeCanSync |
		indikit.DomeHasShutter |
		indikit.DomeHasVariableSpeed |
		indikit.DomeHasBacklash

	d := &Driver{
		Dome:   indikit.NewDome(name, driverVersion, caps, loop, logger),
		logger: logger,
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

	if profile.MQTTBroker != "" {
		d.mqtt = connection.NewMQTT(connection.MQTTConfig{
			Broker:    profile.MQTTBroker,
			ClientID:  "indikit-dome",
			TopicRoot: profile.MQTTTopic,
		}, logger)
		d.mqtt.RegisterHandshake(d.Handshake)
		d.RegisterConnection(d.mqtt)
	}

	d.Move = d.move
	d.MoveAbs = d.moveAbs
	d.MoveRel = d.moveRel
	d.Sync = d.sync
	d.Abort = d.abort
	d.Park = d.park
	d.UnPark = d.unPark
	d.SetSpeed = d.setSpeed
	d.SetBacklash = d.setBacklash
	d.SetBacklashEnabled = d.setBacklashEnabled
	d.ControlShutter = d.controlShutter
	d.SetCurrentPark = d.setCurrentPark
	d.SetDefaultPark = d.setDefaultPark

	if profile.PollMS != 0 {
		d.SetPollingPeriod(time.Duration(profile.PollMS) * time.Millisecond)
	}

	d.OnTimer(d.timerHit)

	return d
}

// Handshake runs once the transport is open. Nothing to verify on the
// template device.
func (d *Driver) Handshake() bool {
	d.logger.Debugf("Handshake with %s over %s", d.Name(), d.ActiveConnection().Name())
	return true
}

func (d *Driver) timerHit() {
	d.logger.Debug("Timer hit")

	// Without this call polling stops until reconnect.
	d.SetTimer(d.PollingPeriod())
}

func (d *Driver) move(dir indikit.DomeDirection, op indikit.DomeMotionCommand) indikit.PropState {
	d.logger.Infof("Move(%d, %d)", dir, op)
	return indikit.StateAlert
}

func (d *Driver) moveAbs(az float64) indikit.PropState {
	d.logger.Infof("MoveAbs(%f)", az)
	return indikit.StateAlert
}

func (d *Driver) moveRel(azDiff float64) indikit.PropState {
	d.logger.Infof("MoveRel(%f)", azDiff)
	return indikit.StateAlert
}

func (d *Driver) sync(az float64) bool {
	d.logger.Infof("Sync(%f)", az)
	return false
}

func (d *Driver) abort() bool {
	d.logger.Info("Abort()")
	return false
}

func (d *Driver) park() indikit.PropState {
	d.logger.Info("Park()")
	return indikit.StateAlert
}

func (d *Driver) unPark() indikit.PropState {
	d.logger.Info("UnPark()")
	return indikit.StateAlert
}

func (d *Driver) setSpeed(rpm float64) bool {
	d.logger.Infof("SetSpeed(%f)", rpm)
	return false
}

func (d *Driver) setBacklash(steps int) bool {
	d.logger.Infof("SetBacklash(%d)", steps)
	return false
}

func (d *Driver) setBacklashEnabled(enabled bool) bool {
	d.logger.Infof("SetBacklashEnabled(%v)", enabled)
	return false
}

func (d *Driver) controlShutter(op indikit.ShutterOperation) indikit.PropState {
	d.logger.Infof("ControlShutter(%d)", op)
	return indikit.StateAlert
}

func (d *Driver) setCurrentPark() bool {
	d.logger.Info("SetCurrentPark()")
	return false
}

func (d *Driver) setDefaultPark() bool {
	d.logger.Info("SetDefaultPark()")
	return false
}
