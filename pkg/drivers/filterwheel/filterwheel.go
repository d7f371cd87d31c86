// Package filterwheel is a template filter wheel driver. Filter changes
// complete synchronously; the handshake pushes the wheel's slot range.
package filterwheel

import (
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example FilterWheel"
	driverVersion = "1.0"

	slotCount = 8
)

type Driver struct {
	*indikit.FilterWheel

	serial *connection.Serial
	tcp    *connection.TCP
	logger log.FieldLogger

	currentFilter int
}

func New(loop *indikit.EventLoop, profile indikit.DeviceProfile, logger log.FieldLogger) *Driver {
	name := deviceName
	if profile.Name != "" {
		name = profile.Name
	}

	d := &Driver{
		FilterWheel:   indikit.NewFilterWheel(name, driverVersion, loop, logger),
		logger:        logger,
		currentFilter: 1,
	}
	d.SetFilterNames(profile.Filters)

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

	d.SelectFilter = d.selectFilter
	d.QueryFilter = d.queryFilter

	if profile.PollMS != 0 {
		d.SetPollingPeriod(time.Duration(profile.PollMS) * time.Millisecond)
	}

	d.OnTimer(d.timerHit)

	return d
}

// Handshake pushes the wheel's real slot range once the transport is open.
func (d *Driver) Handshake() bool {
	d.SetSlotRange(1, slotCount)
	return true
}

func (d *Driver) timerHit() {
	d.logger.Debug("Timer hit")
	d.SetTimer(d.PollingPeriod())
}

func (d *Driver) selectFilter(slot int) bool {
	d.currentFilter = slot
	d.SelectFilterDone(slot)
	return true
}

func (d *Driver) queryFilter() int {
	return d.currentFilter
}
