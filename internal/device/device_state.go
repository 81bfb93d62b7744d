package device

import (
	"github.com/go-ble/ble"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/pkg/config"
)

// SessionFlags are the mutable booleans toggled by event handling. Each flag
// has one owner event pair that sets and clears it.
type SessionFlags struct {
	PowerOffIsEnabled         bool // EventEnablePowerOff / EventDisablePowerOff
	VoiceRecognitionActive    bool // EventInitiateVoiceDial / EventCancelVoiceDial
	ButtonsLocked             bool // EventButtonLockingOn / EventButtonLockingOff
	PagingInProgress          bool // EventStartPagingInConnState / EventStopPagingInConnState
	SSREnabled                bool // EventSSREnable / EventSSRDisable
	MicMuted                  bool // EventMuteOn / EventMuteOff
	PowerUpNoConnection       bool // EventPowerOn / EventSLCConnected
	LEDsEnabled               bool // EventLEDsOn / EventLEDsOff
	LEDTimedOut               bool // EventResetLEDTimeout / any non-exempt user event
	VolumeOrientationInverted bool // EventToggleVolume
	AudioPromptsEnabled       bool // EventAudioPromptsOn / EventAudioPromptsOff
	MultipointEnabled         bool // EventEnableMultipoint / EventDisableMultipoint
	AccelSampling             bool // EventAccelOn / EventAccelOff
	FMOn                      bool // EventFmOn / EventFmOff
	SubwooferStreaming        bool // EventSubwooferOpenMedia / EventSubwooferCloseMedia
	A2dpStreaming             bool // EventA2dpStreaming / EventA2dpSuspended
	ChargerConnected          bool // EventChargerConnected / EventChargerDisconnected
}

// LinkState is the HFP bookkeeping for one AG.
type LinkState struct {
	Addr      ble.Addr
	Connected bool
	Call      events.CallState
	Audio     bool
}

// DeviceState is the single session record mutated by the dispatch loop.
type DeviceState struct {
	Features config.Features
	Flags    SessionFlags
	Inquiry  InquirySession

	Links       [2]LinkState
	A2dp        ble.Addr
	AvrcpLinked bool

	Volume       int
	VolumeLevels int
	TTSLanguage  int
	TTSLanguages int

	Battery         events.BatteryLevel
	ThermalCritical bool

	MissedCallsLeft   int
	CallerID          string
	LinkLossAddr      ble.Addr
	LinkLossRetries   int
	FmFrequencyKHz    int
	SubwooferAttached bool

	state               State
	confirmationPending bool
	confirmationAddr    ble.Addr
}

// New builds the boot-time record from configuration.
func New(cfg *config.Config) *DeviceState {
	d := &DeviceState{
		Features:     cfg.Features,
		Volume:       cfg.Volume.Default,
		VolumeLevels: cfg.Volume.Levels,
		TTSLanguages: cfg.TTS.Languages,
		Battery:      events.BatteryOk,
		state:        Limbo,
	}
	d.Flags.PowerOffIsEnabled = cfg.Features.PowerOffEnabledAtBoot
	d.Flags.LEDsEnabled = cfg.Features.LEDsEnabledAtBoot
	d.Flags.AudioPromptsEnabled = cfg.Features.AudioPromptsEnabled
	d.Flags.MultipointEnabled = cfg.Features.Multipoint
	return d
}

// State returns the current lifecycle state.
func (d *DeviceState) State() State {
	return d.state
}

// SetState records a transition and returns the previous state. Only the
// state manager calls this.
func (d *DeviceState) SetState(s State) State {
	prev := d.state
	d.state = s
	return prev
}

// SetPendingConfirmation stores the peer awaiting a user confirmation and
// raises the paired flag with it.
func (d *DeviceState) SetPendingConfirmation(addr ble.Addr) {
	d.confirmationAddr = addr
	d.confirmationPending = addr != nil
}

// ClearPendingConfirmation releases the stored peer and drops the paired flag.
// It returns the released address, or ErrNoPendingConfirmation.
func (d *DeviceState) ClearPendingConfirmation() (ble.Addr, error) {
	addr := d.confirmationAddr
	d.confirmationAddr = nil
	d.confirmationPending = false
	if addr == nil {
		return nil, ErrNoPendingConfirmation
	}
	return addr, nil
}

// PendingConfirmation returns the peer awaiting confirmation, if any.
func (d *DeviceState) PendingConfirmation() (ble.Addr, bool) {
	return d.confirmationAddr, d.confirmationPending
}

// ConfirmationPending reports the paired flag.
func (d *DeviceState) ConfirmationPending() bool {
	return d.confirmationPending
}

// ProfilesConnected counts HFP links with an SLC.
func (d *DeviceState) ProfilesConnected() int {
	n := 0
	for _, l := range d.Links {
		if l.Connected {
			n++
		}
	}
	return n
}

// Link returns the bookkeeping for an AG link.
func (d *DeviceState) Link(l events.Link) (*LinkState, error) {
	if l < 0 || int(l) >= len(d.Links) {
		return nil, ErrUnknownLink
	}
	return &d.Links[l], nil
}

// LinkFor finds the link connected to addr.
func (d *DeviceState) LinkFor(addr ble.Addr) (events.Link, bool) {
	if addr == nil {
		return 0, false
	}
	for i, l := range d.Links {
		if l.Connected && l.Addr != nil && l.Addr.String() == addr.String() {
			return events.Link(i), true
		}
	}
	return 0, false
}

// FreeLink returns the first link without an SLC. The secondary link is only
// offered when multipoint is enabled.
func (d *DeviceState) FreeLink() (events.Link, bool) {
	if !d.Links[events.LinkPrimary].Connected {
		return events.LinkPrimary, true
	}
	if d.Flags.MultipointEnabled && !d.Links[events.LinkSecondary].Connected {
		return events.LinkSecondary, true
	}
	return 0, false
}

// CallLink returns the link carrying a call in any of the given states.
func (d *DeviceState) CallLink(states ...events.CallState) (events.Link, bool) {
	for i, l := range d.Links {
		if !l.Connected {
			continue
		}
		for _, s := range states {
			if l.Call == s {
				return events.Link(i), true
			}
		}
	}
	return 0, false
}

// BatteryCritical reports whether the battery or thermal condition forces
// power-off regardless of PowerOffIsEnabled.
func (d *DeviceState) BatteryCritical() bool {
	return d.Battery == events.BatteryCritical || d.ThermalCritical
}
