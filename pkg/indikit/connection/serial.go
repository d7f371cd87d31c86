package connection

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	DefaultSerialPort = "/dev/ttyACM0"
	DefaultBaudRate   = 57600
)

// Serial connects to a device over a serial port.
type Serial struct {
	handshaker
	port   string
	baud   int
	conn   serial.Port
	logger log.FieldLogger
}

func NewSerial(logger log.FieldLogger) *Serial {
	return &Serial{
		port:   DefaultSerialPort,
		baud:   DefaultBaudRate,
		logger: logger.WithField("connection", "serial"),
	}
}

func (s *Serial) Name() string { return "serial" }

func (s *Serial) SetDefaultPort(port string) {
	s.port = port
}

func (s *Serial) SetDefaultBaudRate(baud int) {
	s.baud = baud
}

func (s *Serial) Connect() error {
	if s.conn != nil {
		return fmt.Errorf("serial port %s is already open", s.port)
	}

	conn, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baud})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %v", s.port, err)
	}

	s.conn = conn
	s.logger.Infof("Opened serial port %s at %d baud", s.port, s.baud)
	return nil
}

func (s *Serial) Disconnect() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.logger.Infof("Closed serial port %s", s.port)
	return err
}

func (s *Serial) Connected() bool {
	return s.conn != nil
}

// Port returns the open transport. Nil until Connect succeeds.
func (s *Serial) Port() io.ReadWriteCloser {
	if s.conn == nil {
		return nil
	}
	return s.conn
}
