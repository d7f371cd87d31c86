package indikit

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Standard filter wheel property names.
const (
	PropFilterSlot = "FILTER_SLOT"
	PropFilterName = "FILTER_NAME"
)

// FilterWheel declares the standard slot and name properties and routes slot
// changes to the SelectFilter callback. Drivers report completion with
// SelectFilterDone, which pushes the reached slot to clients.
type FilterWheel struct {
	*DefaultDevice

	// SelectFilter starts moving the wheel to the given slot. Synchronous
	// drivers call SelectFilterDone before returning.
	SelectFilter func(slot int) bool
	// QueryFilter reads the current slot from the device during polling.
	QueryFilter func() int

	slotNP  *NumberProperty
	namesTP *TextProperty

	filterNames []string
}

func NewFilterWheel(name, version string, loop *EventLoop, logger log.FieldLogger) *FilterWheel {
	w := &FilterWheel{
		DefaultDevice: NewDefaultDevice(name, version, loop, logger),
		filterNames: []string{
			"Red", "Green", "Blue", "H_Alpha", "SII", "OIII", "LPR", "Luminance",
		},
	}
	w.SetDriverInterface(FilterInterface)
	w.OnConnectionChange(w.updateFilterProperties)
	return w
}

// SetFilterNames overrides the default filter labels before InitProperties.
func (w *FilterWheel) SetFilterNames(names []string) {
	if len(names) > 0 {
		w.filterNames = names
	}
}

func (w *FilterWheel) InitProperties() error {
	if err := w.DefaultDevice.InitProperties(); err != nil {
		return err
	}

	var err error

	w.slotNP, err = NewNumber(w.Name(), PropFilterSlot).
		Label("Filter Slot").
		Member("FILTER_SLOT_VALUE", "Slot", "%.0f", 1, float64(len(w.filterNames)), 1, 1).
		OnUpdate(w.slotRequested).
		Build()
	if err != nil {
		return err
	}

	names := NewText(w.Name(), PropFilterName).
		Label("Filter Names")
	for i, n := range w.filterNames {
		member := fmt.Sprintf("FILTER_SLOT_NAME_%d", i+1)
		names.Member(member, fmt.Sprintf("Filter %d", i+1), n)
	}
	w.namesTP, err = names.
		OnUpdate(func(p *TextProperty) {
			p.SetState(StateOk)
		}).
		Build()
	if err != nil {
		return err
	}

	w.PersistProperty(w.namesTP)
	return nil
}

func (w *FilterWheel) filterProperties() []Property {
	return []Property{w.slotNP, w.namesTP}
}

func (w *FilterWheel) updateFilterProperties(connected bool) {
	for _, p := range w.filterProperties() {
		if connected {
			if err := w.DefineProperty(p); err != nil {
				w.Logger().Errorf("Failed to define %s: %v", p.Name(), err)
			}
		} else {
			if err := w.DeleteProperty(p.Name()); err != nil {
				w.Logger().Errorf("Failed to delete %s: %v", p.Name(), err)
			}
		}
	}
}

// SetSlotRange narrows or widens the selectable slots. Drivers typically
// push this during handshake once the wheel reports its slot count.
func (w *FilterWheel) SetSlotRange(min, max int) {
	w.slotNP.SetMinMax("FILTER_SLOT_VALUE", float64(min), float64(max))
	if _, visible := w.Registry().Get(PropFilterSlot); visible {
		w.Apply(w.slotNP)
	}
}

// CurrentSlot is the slot clients currently see.
func (w *FilterWheel) CurrentSlot() int {
	return int(w.slotNP.Value("FILTER_SLOT_VALUE"))
}

// SelectFilterDone reports that the wheel reached a slot. The slot property
// goes Ok and clients are told.
func (w *FilterWheel) SelectFilterDone(slot int) {
	w.slotNP.SetValue("FILTER_SLOT_VALUE", float64(slot))
	w.slotNP.SetState(StateOk)
	w.Apply(w.slotNP)
}

func (w *FilterWheel) slotRequested(p *NumberProperty) {
	if w.SelectFilter == nil {
		p.SetState(StateAlert)
		return
	}

	target := int(p.Value("FILTER_SLOT_VALUE"))
	p.SetState(StateBusy)
	if !w.SelectFilter(target) {
		p.SetState(StateAlert)
	}
	// Synchronous drivers have already called SelectFilterDone here, which
	// moved the state to Ok; asynchronous ones leave it Busy.
}
