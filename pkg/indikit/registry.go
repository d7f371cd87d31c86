package indikit

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Client receives property lifecycle notifications. The in-process client is
// the seam where a wire protocol would attach; tests attach here directly.
type Client interface {
	PropertyDefined(Property)
	PropertyUpdated(Property)
	PropertyDeleted(device, name string)
}

// Registry holds the defined properties of one device. All calls happen on
// the event loop, so there is no locking here.
type Registry struct {
	device  string
	order   []string
	props   map[string]Property
	clients []Client
	logger  log.FieldLogger
}

func NewRegistry(device string, logger log.FieldLogger) *Registry {
	return &Registry{
		device: device,
		props:  make(map[string]Property),
		logger: logger.WithField("component", "registry"),
	}
}

func (r *Registry) AttachClient(c Client) {
	r.clients = append(r.clients, c)
}

func (r *Registry) DetachClient(c Client) {
	for i := range r.clients {
		if r.clients[i] == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			return
		}
	}
}

// Define publishes a property to clients. Defining the same name twice is a
// caller error; the registry does not de-duplicate.
func (r *Registry) Define(p Property) error {
	if p.DeviceName() != r.device {
		return fmt.Errorf("property %s belongs to device %q, registry is for %q",
			p.Name(), p.DeviceName(), r.device)
	}
	if _, ok := r.props[p.Name()]; ok {
		return fmt.Errorf("%w: %s.%s", ErrAlreadyDefined, r.device, p.Name())
	}

	r.props[p.Name()] = p
	r.order = append(r.order, p.Name())
	r.logger.Debugf("Defined property %s.%s", r.device, p.Name())

	for _, c := range r.clients {
		c.PropertyDefined(p)
	}
	return nil
}

// Delete removes a property from client visibility. The descriptor itself is
// untouched and may be defined again, so connect/disconnect cycles reuse the
// same property values.
func (r *Registry) Delete(name string) error {
	if _, ok := r.props[name]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrPropertyNotFound, r.device, name)
	}

	delete(r.props, name)
	for i := range r.order {
		if r.order[i] == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debugf("Deleted property %s.%s", r.device, name)

	for _, c := range r.clients {
		c.PropertyDeleted(r.device, name)
	}
	return nil
}

func (r *Registry) Get(name string) (Property, bool) {
	p, ok := r.props[name]
	return p, ok
}

// Defined returns the currently visible properties in definition order.
func (r *Registry) Defined() []Property {
	out := make([]Property, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.props[name])
	}
	return out
}

// Apply pushes the current value and state of a property to all clients.
// Skipping this after a mutation leaves clients with stale values.
func (r *Registry) Apply(p Property) {
	for _, c := range r.clients {
		c.PropertyUpdated(p)
	}
}
