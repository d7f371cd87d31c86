// Package custom is the generic template driver: a plain device with a few
// demonstration properties and a synchronous serial command exchange.
package custom

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"indikit/pkg/indikit"
	"indikit/pkg/indikit/connection"
)

const (
	deviceName    = "Example Custom Driver"
	driverVersion = "1.0"

	// Responses from the device end with this byte.
	terminator = '#'
)

type Driver struct {
	*indikit.DefaultDevice

	serial *connection.Serial
	logger log.FieldLogger

	sayHelloSP  *indikit.SwitchProperty
	whatToSayTP *indikit.TextProperty
	sayCountNP  *indikit.NumberProperty
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

	d.serial = connection.NewSerial(logger)
	if profile.SerialPort != "" {
		d.serial.SetDefaultPort(profile.SerialPort)
	}
	if profile.BaudRate != 0 {
		d.serial.SetDefaultBaudRate(profile.BaudRate)
	}
	d.serial.RegisterHandshake(d.Handshake)
	d.RegisterConnection(d.serial)

	d.OnConnectionChange(d.updateCustomProperties)
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

	var err error

	d.sayHelloSP, err = indikit.NewSwitch(d.Name(), "SAY_HELLO").
		Label("Hello Commands").
		Rule(indikit.RuleAtMostOne).
		Timeout(60).
		Member("SAY_HELLO_DEFAULT", "Say Hello", false).
		Member("SAY_HELLO_CUSTOM", "Say Custom", false).
		OnUpdate(d.sayHelloRequested).
		Build()
	if err != nil {
		return err
	}

	d.whatToSayTP, err = indikit.NewText(d.Name(), "WHAT_TO_SAY").
		Label("Got something to say?").
		Timeout(60).
		Member("WHAT_TO_SAY", "What to say?", "Hello, custom world!").
		OnUpdate(d.whatToSayUpdated).
		Build()
	if err != nil {
		return err
	}

	d.sayCountNP, err = indikit.NewNumber(d.Name(), "SAY_COUNT").
		Label("Say Count").
		Permission(indikit.PermReadOnly).
		Member("SAY_COUNT_VALUE", "Count", "%.0f", 0, 0, 0, 0).
		Build()
	if err != nil {
		return err
	}

	d.PersistProperty(d.whatToSayTP)
	return nil
}

// GetProperties restores the saved text before publishing, so the value
// survives restarts without an explicit load.
func (d *Driver) GetProperties() {
	if err := d.LoadConfigProperty(d.whatToSayTP); err != nil {
		d.logger.Debugf("No saved text to restore: %v", err)
	}
	d.DefaultDevice.GetProperties()
}

func (d *Driver) updateCustomProperties(connected bool) {
	props := []indikit.Property{d.sayHelloSP, d.whatToSayTP, d.sayCountNP}
	for _, p := range props {
		if connected {
			if err := d.DefineProperty(p); err != nil {
				d.logger.Errorf("Failed to define %s: %v", p.Name(), err)
			}
		} else {
			if err := d.DeleteProperty(p.Name()); err != nil {
				d.logger.Errorf("Failed to delete %s: %v", p.Name(), err)
			}
		}
	}
}

func (d *Driver) sayHelloRequested(p *indikit.SwitchProperty) {
	switch p.FindOnSwitch() {
	case "SAY_HELLO_DEFAULT":
		d.logger.Info("Hello, world!")
	case "SAY_HELLO_CUSTOM":
		d.logger.Info(d.whatToSayTP.Text("WHAT_TO_SAY"))
	}

	// Count the click and tell clients about the new value.
	d.sayCountNP.SetValue("SAY_COUNT_VALUE", d.sayCountNP.Value("SAY_COUNT_VALUE")+1)
	d.Apply(d.sayCountNP)

	// Turn the buttons back off and go idle; the dispatcher pushes this
	// property once we return.
	p.Reset()
	p.SetState(indikit.StateIdle)
}

func (d *Driver) whatToSayUpdated(p *indikit.TextProperty) {
	p.SetState(indikit.StateIdle)

	// This value matters enough to save on every change instead of waiting
	// for an explicit save request.
	if err := d.SaveConfigProperty(p); err != nil {
		d.logger.Errorf("Failed to save text: %v", err)
	}
}

func (d *Driver) Handshake() bool {
	d.logger.Debugf("Handshake with %s over %s", d.Name(), d.ActiveConnection().Name())
	return true
}

func (d *Driver) timerHit() {
	d.logger.Debug("Timer hit")
	d.SetTimer(d.PollingPeriod())
}

// sendCommand writes a command and reads the terminated response. The
// exchange is synchronous and blocks the event loop until the terminator
// arrives; any timeout belongs to the transport layer.
func (d *Driver) sendCommand(cmd string) (string, bool) {
	d.logger.Debugf("CMD <%s>", cmd)

	if d.Simulation() {
		d.logger.Debug("RES <OK>")
		return "OK", true
	}

	port := d.serial.Port()
	if port == nil {
		d.logger.Error("Serial port is not open")
		return "", false
	}

	if _, err := port.Write([]byte(cmd)); err != nil {
		d.logger.Errorf("Serial write error: %v", err)
		return "", false
	}

	res, err := readSection(port, terminator)
	if err != nil {
		d.logger.Errorf("Serial read error: %v", err)
		return "", false
	}

	d.logger.Debugf("RES <%s>", res)
	return res, true
}

// readSection reads up to and excluding the terminator byte.
func readSection(r io.Reader, term byte) (string, error) {
	var res []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}
		if buf[0] == term {
			return string(res), nil
		}
		res = append(res, buf[0])
	}
}
