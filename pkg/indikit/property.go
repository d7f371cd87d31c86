package indikit

import (
	"fmt"
)

// PropState is the client-visible state of a property. Capability methods
// also return it to signal synchronous completion (Ok/Alert) or asynchronous
// initiation (Busy, with a later push on completion).
type PropState int

const (
	StateIdle PropState = iota
	StateOk
	StateBusy
	StateAlert
)

func (s PropState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOk:
		return "Ok"
	case StateBusy:
		return "Busy"
	case StateAlert:
		return "Alert"
	}
	return "Unknown"
}

// Permission controls whether clients may read and/or write a property.
type Permission int

const (
	PermReadOnly Permission = iota
	PermWriteOnly
	PermReadWrite
)

func (p Permission) String() string {
	switch p {
	case PermReadOnly:
		return "ro"
	case PermWriteOnly:
		return "wo"
	case PermReadWrite:
		return "rw"
	}
	return "unknown"
}

// SwitchRule constrains how many members of a switch property may be on.
type SwitchRule int

const (
	RuleOneOfMany SwitchRule = iota // exactly one on
	RuleAtMostOne                   // zero or one on
	RuleAnyOfMany                   // no constraint
)

// Standard property groups, matching the tabs a control panel shows.
const (
	GroupMain    = "Main Control"
	GroupOptions = "Options"
	GroupSite    = "Site"
)

// Property is the read side shared by all three property kinds. Concrete
// values live on SwitchProperty, NumberProperty and TextProperty.
type Property interface {
	DeviceName() string
	Name() string
	Label() string
	Group() string
	Permission() Permission
	State() PropState
	SetState(PropState)

	// Values and SetValues snapshot/restore member values for the config
	// persistence hooks. SetValues ignores unknown member names.
	Values() map[string]any
	SetValues(map[string]any) error
}

// meta holds the fields common to every property kind. It is only ever
// created by a builder, so a property visible to callers is always fully
// filled.
type meta struct {
	device  string
	name    string
	label   string
	group   string
	perm    Permission
	timeout int
	state   PropState
}

func (m *meta) DeviceName() string     { return m.device }
func (m *meta) Name() string           { return m.name }
func (m *meta) Label() string          { return m.label }
func (m *meta) Group() string          { return m.group }
func (m *meta) Permission() Permission { return m.perm }
func (m *meta) State() PropState       { return m.state }
func (m *meta) SetState(s PropState)   { m.state = s }

func (m *meta) validate(members int) error {
	if m.device == "" {
		return fmt.Errorf("property %q: device name is empty", m.name)
	}
	if m.name == "" {
		return fmt.Errorf("property on device %q has no name", m.device)
	}
	if members == 0 {
		return fmt.Errorf("property %s.%s has no members", m.device, m.name)
	}
	return nil
}

// SwitchMember is a single on/off value inside a switch property.
type SwitchMember struct {
	Name  string
	Label string
	On    bool
}

// SwitchProperty is an enum-style property of on/off members governed by a
// SwitchRule.
type SwitchProperty struct {
	meta
	rule     SwitchRule
	members  []SwitchMember
	onUpdate func(*SwitchProperty)
}

// Members returns the members in declaration order.
func (p *SwitchProperty) Members() []SwitchMember { return p.members }

func (p *SwitchProperty) Rule() SwitchRule { return p.rule }

// On reports whether the named member is currently on.
func (p *SwitchProperty) On(name string) bool {
	for i := range p.members {
		if p.members[i].Name == name {
			return p.members[i].On
		}
	}
	return false
}

// FindOnSwitch returns the name of the first member that is on, or "".
func (p *SwitchProperty) FindOnSwitch() string {
	for i := range p.members {
		if p.members[i].On {
			return p.members[i].Name
		}
	}
	return ""
}

// Reset turns every member off.
func (p *SwitchProperty) Reset() {
	for i := range p.members {
		p.members[i].On = false
	}
}

// Set switches the named member, honoring the property rule: under
// OneOfMany and AtMostOne, turning a member on turns the others off.
func (p *SwitchProperty) Set(name string, on bool) {
	for i := range p.members {
		if p.members[i].Name != name {
			continue
		}
		if on && p.rule != RuleAnyOfMany {
			p.Reset()
		}
		p.members[i].On = on
		return
	}
}

// update applies a batch of member changes from a client request.
func (p *SwitchProperty) update(states map[string]bool) {
	for name, on := range states {
		p.Set(name, on)
	}
}

func (p *SwitchProperty) Values() map[string]any {
	v := make(map[string]any, len(p.members))
	for i := range p.members {
		v[p.members[i].Name] = p.members[i].On
	}
	return v
}

func (p *SwitchProperty) SetValues(values map[string]any) error {
	for i := range p.members {
		raw, ok := values[p.members[i].Name]
		if !ok {
			continue
		}
		on, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("member %s.%s.%s: expected bool, got %T",
				p.device, p.name, p.members[i].Name, raw)
		}
		p.members[i].On = on
	}
	return nil
}

// NumberMember is a numeric value with display hints for the client.
type NumberMember struct {
	Name   string
	Label  string
	Format string
	Min    float64
	Max    float64
	Step   float64
	Value  float64
}

// NumberProperty groups one or more numeric members.
type NumberProperty struct {
	meta
	members  []NumberMember
	onUpdate func(*NumberProperty)
}

func (p *NumberProperty) Members() []NumberMember { return p.members }

func (p *NumberProperty) Value(name string) float64 {
	for i := range p.members {
		if p.members[i].Name == name {
			return p.members[i].Value
		}
	}
	return 0
}

func (p *NumberProperty) SetValue(name string, value float64) {
	for i := range p.members {
		if p.members[i].Name == name {
			p.members[i].Value = value
			return
		}
	}
}

// SetMinMax updates the rendering range of a member. Clients see the new
// range on the next apply; drivers typically push it during handshake once
// the real hardware limits are known.
func (p *NumberProperty) SetMinMax(name string, min, max float64) {
	for i := range p.members {
		if p.members[i].Name == name {
			p.members[i].Min = min
			p.members[i].Max = max
			return
		}
	}
}

func (p *NumberProperty) update(values map[string]float64) {
	for name, v := range values {
		p.SetValue(name, v)
	}
}

func (p *NumberProperty) Values() map[string]any {
	v := make(map[string]any, len(p.members))
	for i := range p.members {
		v[p.members[i].Name] = p.members[i].Value
	}
	return v
}

func (p *NumberProperty) SetValues(values map[string]any) error {
	for i := range p.members {
		raw, ok := values[p.members[i].Name]
		if !ok {
			continue
		}
		f, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("member %s.%s.%s: expected float64, got %T",
				p.device, p.name, p.members[i].Name, raw)
		}
		p.members[i].Value = f
	}
	return nil
}

// TextMember is a free-text value.
type TextMember struct {
	Name  string
	Label string
	Value string
}

// TextProperty groups one or more text members.
type TextProperty struct {
	meta
	members  []TextMember
	onUpdate func(*TextProperty)
}

func (p *TextProperty) Members() []TextMember { return p.members }

func (p *TextProperty) Text(name string) string {
	for i := range p.members {
		if p.members[i].Name == name {
			return p.members[i].Value
		}
	}
	return ""
}

func (p *TextProperty) SetText(name, value string) {
	for i := range p.members {
		if p.members[i].Name == name {
			p.members[i].Value = value
			return
		}
	}
}

func (p *TextProperty) update(texts map[string]string) {
	for name, v := range texts {
		p.SetText(name, v)
	}
}

func (p *TextProperty) Values() map[string]any {
	v := make(map[string]any, len(p.members))
	for i := range p.members {
		v[p.members[i].Name] = p.members[i].Value
	}
	return v
}

func (p *TextProperty) SetValues(values map[string]any) error {
	for i := range p.members {
		raw, ok := values[p.members[i].Name]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("member %s.%s.%s: expected string, got %T",
				p.device, p.name, p.members[i].Name, raw)
		}
		p.members[i].Value = s
	}
	return nil
}
