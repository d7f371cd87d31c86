package connection

import (
	"fmt"
	"net"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const tcpDialTimeout = 5 * time.Second

// TCP connects to a device over a network socket.
type TCP struct {
	handshaker
	host   string
	port   int
	conn   net.Conn
	logger log.FieldLogger
}

func NewTCP(logger log.FieldLogger) *TCP {
	return &TCP{
		host:   "localhost",
		port:   9999,
		logger: logger.WithField("connection", "tcp"),
	}
}

func (t *TCP) Name() string { return "tcp" }

func (t *TCP) SetDefaultHost(host string) {
	t.host = host
}

func (t *TCP) SetDefaultPort(port int) {
	t.port = port
}

func (t *TCP) Connect() error {
	if t.conn != nil {
		return fmt.Errorf("already connected to %s", t.addr())
	}

	conn, err := net.DialTimeout("tcp", t.addr(), tcpDialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", t.addr(), err)
	}

	t.conn = conn
	t.logger.Infof("Connected to %s", t.addr())
	return nil
}

func (t *TCP) Disconnect() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.logger.Infof("Disconnected from %s", t.addr())
	return err
}

func (t *TCP) Connected() bool {
	return t.conn != nil
}

// Conn returns the open socket. Nil until Connect succeeds.
func (t *TCP) Conn() net.Conn {
	return t.conn
}

func (t *TCP) addr() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}
