package indikit

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DiscoveryPort is where hosts listen for client probes.
	DiscoveryPort  = 32337
	discoveryToken = "indikitdiscovery1"
)

// DiscoveryResponder answers UDP probe datagrams with the host's control
// port, so clients on the local network can find running hosts.
type DiscoveryResponder struct {
	addr     string
	response string
	logger   log.FieldLogger
}

func NewDiscoveryResponder(addr string, port int, logger log.FieldLogger) *DiscoveryResponder {
	return &DiscoveryResponder{
		addr:     addr,
		response: fmt.Sprintf(`{"HostPort": %d}`, port),
		logger:   logger,
	}
}

func (d *DiscoveryResponder) Run(ctx context.Context) error {
	buf := make([]byte, 1024)

	listenAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(d.addr, fmt.Sprint(DiscoveryPort)))
	if err != nil {
		return fmt.Errorf("cannot resolve discovery address: %v", err)
	}

	sock, err := net.ListenUDP("udp", listenAddr)
	if err != nil {
		return fmt.Errorf("cannot bind discovery socket: %v", err)
	}
	defer sock.Close()

	d.logger.Debugf("Discovery responder started on %s", listenAddr.String())
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			// Read deadline so context cancellation is noticed.
			sock.SetReadDeadline(time.Now().Add(1 * time.Second))

			n, addr, err := sock.ReadFromUDP(buf)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				d.logger.Debugf("Error reading from socket: %v", err)
				continue
			}

			data := string(buf[:n])
			d.logger.Debugf("Received %s from %s", data, addr.String())

			if strings.Contains(data, discoveryToken) {
				// Reply from the listening socket so clients on a
				// connected socket see the expected source port.
				if _, err := sock.WriteToUDP([]byte(d.response), addr); err != nil {
					d.logger.Errorf("Error writing to socket: %v", err)
				}
			}
		}
	}
}
