// Package events defines the message identifier space delivered to the sink
// task: the contiguous per-subsystem ranges, the user-event enumeration and the
// payloads carried by subsystem messages.
package events

import (
	"fmt"
	"strings"
)

// ID identifies a message delivered to the sink task.
type ID uint16

// Message ranges (base..top inclusive)
const (
	UserEventsBase ID = 0x6000
	UserEventsTop  ID = 0x60FF

	ConnectionBase ID = 0x5000
	ConnectionTop  ID = 0x50FF

	ProfileBase ID = 0x5100 // HFP 0x5100-0x517F, A2DP 0x5180-0x51FF
	ProfileTop  ID = 0x51FF

	CodecBase ID = 0x5200
	CodecTop  ID = 0x52FF

	PowerBase ID = 0x5300
	PowerTop  ID = 0x53FF

	PhonebookBase ID = 0x5400
	PhonebookTop  ID = 0x54FF

	MessagingBase ID = 0x5500
	MessagingTop  ID = 0x55FF

	AvrcpBase ID = 0x5600
	AvrcpTop  ID = 0x56FF

	AudioPluginBase ID = 0x5700
	AudioPluginTop  ID = 0x57FF

	UsbBase ID = 0x5800
	UsbTop  ID = 0x58FF

	GaiaBase ID = 0x5900
	GaiaTop  ID = 0x59FF

	DisplayBase ID = 0x5A00
	DisplayTop  ID = 0x5AFF

	BatteryReportBase ID = 0x5B00
	BatteryReportTop  ID = 0x5BFF

	SubwooferBase ID = 0x5C00
	SubwooferTop  ID = 0x5CFF

	FmBase ID = 0x5D00
	FmTop  ID = 0x5DFF
)

// Range is a contiguous, inclusive block of message identifiers owned by one subsystem.
type Range struct {
	Name string
	Base ID
	Top  ID
}

// Contains reports whether id falls inside the range.
func (r Range) Contains(id ID) bool {
	return id >= r.Base && id <= r.Top
}

// Overlaps reports whether the two ranges share at least one identifier.
func (r Range) Overlaps(o Range) bool {
	return r.Base <= o.Top && o.Base <= r.Top
}

func (r Range) String() string {
	return fmt.Sprintf("%s[0x%04X-0x%04X]", r.Name, uint16(r.Base), uint16(r.Top))
}

// Subsystem ranges
var (
	UserEventsRange    = Range{Name: "user", Base: UserEventsBase, Top: UserEventsTop}
	ConnectionRange    = Range{Name: "connection", Base: ConnectionBase, Top: ConnectionTop}
	ProfileRange       = Range{Name: "profile", Base: ProfileBase, Top: ProfileTop}
	CodecRange         = Range{Name: "codec", Base: CodecBase, Top: CodecTop}
	PowerRange         = Range{Name: "power", Base: PowerBase, Top: PowerTop}
	PhonebookRange     = Range{Name: "phonebook", Base: PhonebookBase, Top: PhonebookTop}
	MessagingRange     = Range{Name: "messaging", Base: MessagingBase, Top: MessagingTop}
	AvrcpRange         = Range{Name: "avrcp", Base: AvrcpBase, Top: AvrcpTop}
	AudioPluginRange   = Range{Name: "audio-plugin", Base: AudioPluginBase, Top: AudioPluginTop}
	UsbRange           = Range{Name: "usb", Base: UsbBase, Top: UsbTop}
	GaiaRange          = Range{Name: "gaia", Base: GaiaBase, Top: GaiaTop}
	DisplayRange       = Range{Name: "display", Base: DisplayBase, Top: DisplayTop}
	BatteryReportRange = Range{Name: "battery-report", Base: BatteryReportBase, Top: BatteryReportTop}
	SubwooferRange     = Range{Name: "subwoofer", Base: SubwooferBase, Top: SubwooferTop}
	FmRange            = Range{Name: "fm", Base: FmBase, Top: FmTop}
)

// Ranges returns the subsystem ranges in dispatch priority order.
func Ranges() []Range {
	return []Range{
		UserEventsRange, ConnectionRange, ProfileRange, CodecRange, PowerRange,
		PhonebookRange, MessagingRange, AvrcpRange, AudioPluginRange, UsbRange,
		GaiaRange, DisplayRange, BatteryReportRange, SubwooferRange, FmRange,
	}
}

// IsUserEvent reports whether id is a defined user event.
func IsUserEvent(id ID) bool {
	return id >= UserEventsBase && id < eventUserTop
}

// String returns the symbolic name of a user event or subsystem message,
// falling back to the hexadecimal identifier.
func (id ID) String() string {
	if IsUserEvent(id) {
		return userEventNames[id-UserEventsBase]
	}
	if name, ok := messageNames[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(id))
}

// AllUserEvents returns every defined user event in enumeration order.
func AllUserEvents() []ID {
	ids := make([]ID, 0, int(eventUserTop-UserEventsBase))
	for id := UserEventsBase; id < eventUserTop; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseUserEvent resolves a user event by name. The "Event" prefix and case
// are optional, so "poweron" and "EventPowerOn" both resolve.
func ParseUserEvent(name string) (ID, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	want = strings.TrimPrefix(want, "event")
	for i, n := range userEventNames {
		if strings.ToLower(strings.TrimPrefix(n, "Event")) == want {
			return UserEventsBase + ID(i), nil
		}
	}
	return EventInvalid, fmt.Errorf("unknown user event %q", name)
}

// bookkeepingExempt lists the system-generated events that must not reset the
// auto switch-off timer or cancel a missed-call indication.
var bookkeepingExempt = map[ID]struct{}{
	EventLowBattery:             {},
	EventTrickleCharge:          {},
	EventFastCharge:             {},
	EventOkBattery:              {},
	EventChargerConnected:       {},
	EventChargerDisconnected:    {},
	EventChargeError:            {},
	EventGasGauge0:              {},
	EventGasGauge1:              {},
	EventGasGauge2:              {},
	EventGasGauge3:              {},
	EventCheckForLowBatt:        {},
	EventLEDEventComplete:       {},
	EventAutoSwitchOff:          {},
	EventLimboTimeout:           {},
	EventMuteReminder:           {},
	EventRefreshEncryption:      {},
	EventMissedCall:             {},
	EventResetLEDTimeout:        {},
	EventCancelLedIndication:    {},
	EventELPatternTick:          {},
	EventAccelSample:            {},
	EventAvrcpFastForwardRepeat: {},
	EventAvrcpRewindRepeat:      {},
	EventPairingFail:            {},
	EventConnectableTimeout:     {},
	EventLinkLossReconnect:      {},
	EventError:                  {},
}

// IsBookkeepingExempt reports whether id belongs to the fixed set of
// system-generated events that skip phase-1 bookkeeping.
func IsBookkeepingExempt(id ID) bool {
	_, ok := bookkeepingExempt[id]
	return ok
}

// BookkeepingExempt returns the exemption set in enumeration order.
func BookkeepingExempt() []ID {
	out := make([]ID, 0, len(bookkeepingExempt))
	for _, id := range AllUserEvents() {
		if IsBookkeepingExempt(id) {
			out = append(out, id)
		}
	}
	return out
}
