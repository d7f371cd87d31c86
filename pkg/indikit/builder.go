package indikit

// Builders are the only way to create properties. Members are collected
// first, the descriptor is produced last, so a property that reaches
// Registry.Define is always fully filled.

// SwitchBuilder accumulates the shape of a SwitchProperty.
type SwitchBuilder struct {
	prop SwitchProperty
}

func NewSwitch(device, name string) *SwitchBuilder {
	b := &SwitchBuilder{}
	b.prop.device = device
	b.prop.name = name
	b.prop.label = name
	b.prop.group = GroupMain
	b.prop.perm = PermReadWrite
	b.prop.rule = RuleOneOfMany
	b.prop.state = StateIdle
	return b
}

func (b *SwitchBuilder) Label(label string) *SwitchBuilder {
	b.prop.label = label
	return b
}

func (b *SwitchBuilder) Group(group string) *SwitchBuilder {
	b.prop.group = group
	return b
}

func (b *SwitchBuilder) Permission(perm Permission) *SwitchBuilder {
	b.prop.perm = perm
	return b
}

func (b *SwitchBuilder) Rule(rule SwitchRule) *SwitchBuilder {
	b.prop.rule = rule
	return b
}

func (b *SwitchBuilder) Timeout(seconds int) *SwitchBuilder {
	b.prop.timeout = seconds
	return b
}

func (b *SwitchBuilder) Member(name, label string, on bool) *SwitchBuilder {
	b.prop.members = append(b.prop.members, SwitchMember{Name: name, Label: label, On: on})
	return b
}

// OnUpdate registers the hook run after a client batch is applied. The
// dispatcher notifies clients of the target property exactly once after the
// hook returns, so the hook must not apply the property itself.
func (b *SwitchBuilder) OnUpdate(fn func(*SwitchProperty)) *SwitchBuilder {
	b.prop.onUpdate = fn
	return b
}

func (b *SwitchBuilder) Build() (*SwitchProperty, error) {
	if err := b.prop.validate(len(b.prop.members)); err != nil {
		return nil, err
	}
	p := b.prop
	return &p, nil
}

// NumberBuilder accumulates the shape of a NumberProperty.
type NumberBuilder struct {
	prop NumberProperty
}

func NewNumber(device, name string) *NumberBuilder {
	b := &NumberBuilder{}
	b.prop.device = device
	b.prop.name = name
	b.prop.label = name
	b.prop.group = GroupMain
	b.prop.perm = PermReadWrite
	b.prop.state = StateIdle
	return b
}

func (b *NumberBuilder) Label(label string) *NumberBuilder {
	b.prop.label = label
	return b
}

func (b *NumberBuilder) Group(group string) *NumberBuilder {
	b.prop.group = group
	return b
}

func (b *NumberBuilder) Permission(perm Permission) *NumberBuilder {
	b.prop.perm = perm
	return b
}

func (b *NumberBuilder) Timeout(seconds int) *NumberBuilder {
	b.prop.timeout = seconds
	return b
}

func (b *NumberBuilder) Member(name, label, format string, min, max, step, value float64) *NumberBuilder {
	b.prop.members = append(b.prop.members, NumberMember{
		Name:   name,
		Label:  label,
		Format: format,
		Min:    min,
		Max:    max,
		Step:   step,
		Value:  value,
	})
	return b
}

func (b *NumberBuilder) OnUpdate(fn func(*NumberProperty)) *NumberBuilder {
	b.prop.onUpdate = fn
	return b
}

func (b *NumberBuilder) Build() (*NumberProperty, error) {
	if err := b.prop.validate(len(b.prop.members)); err != nil {
		return nil, err
	}
	p := b.prop
	return &p, nil
}

// TextBuilder accumulates the shape of a TextProperty.
type TextBuilder struct {
	prop TextProperty
}

func NewText(device, name string) *TextBuilder {
	b := &TextBuilder{}
	b.prop.device = device
	b.prop.name = name
	b.prop.label = name
	b.prop.group = GroupMain
	b.prop.perm = PermReadWrite
	b.prop.state = StateIdle
	return b
}

func (b *TextBuilder) Label(label string) *TextBuilder {
	b.prop.label = label
	return b
}

func (b *TextBuilder) Group(group string) *TextBuilder {
	b.prop.group = group
	return b
}

func (b *TextBuilder) Permission(perm Permission) *TextBuilder {
	b.prop.perm = perm
	return b
}

func (b *TextBuilder) Timeout(seconds int) *TextBuilder {
	b.prop.timeout = seconds
	return b
}

func (b *TextBuilder) Member(name, label, value string) *TextBuilder {
	b.prop.members = append(b.prop.members, TextMember{Name: name, Label: label, Value: value})
	return b
}

func (b *TextBuilder) OnUpdate(fn func(*TextProperty)) *TextBuilder {
	b.prop.onUpdate = fn
	return b
}

func (b *TextBuilder) Build() (*TextProperty, error) {
	if err := b.prop.validate(len(b.prop.members)); err != nil {
		return nil, err
	}
	p := b.prop
	return &p, nil
}
