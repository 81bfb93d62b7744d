// Package stack declares the protocol libraries and plugins the sink core
// drives. They are black boxes: calls return at once and results come back
// later as messages on the sink queue.
package stack

import (
	"github.com/go-ble/ble"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/pkg/config"
)

// ScanMode is the page/inquiry scan configuration.
type ScanMode int

const (
	ScanOff ScanMode = iota
	ScanConnectable
	ScanConnectableDiscoverable
)

func (m ScanMode) String() string {
	switch m {
	case ScanConnectable:
		return "connectable"
	case ScanConnectableDiscoverable:
		return "connectable_discoverable"
	default:
		return "off"
	}
}

// ThreeWayOp is a three-way calling (CHLD) operation.
type ThreeWayOp int

const (
	ReleaseAllHeld ThreeWayOp = iota
	AcceptWaitingReleaseActive
	AcceptWaitingHoldActive
	AddHeldTo3Way
	Connect2Disconnect
)

// HoldOp is a response-and-hold (BTRH) operation.
type HoldOp int

const (
	HoldIncoming HoldOp = iota
	AcceptHeld
	RejectHeld
)

// ConnectionLib is the connection manager and security manager.
type ConnectionLib interface {
	SetScanMode(mode ScanMode) error
	PinCodeResponse(addr ble.Addr, pin string, accept bool) error
	UserConfirmationResponse(addr ble.Addr, accept bool) error
	AuthorizeResponse(addr ble.Addr, profile events.Profile, accept bool) error
	RefreshEncryptionKey(addr ble.Addr) error
	SetSniffSubrating(enable bool) error
	EnterDUTMode() error
	EnterTxContinuousTest() error
}

// PairedDevices is the persisted paired device list, most recent first.
type PairedDevices interface {
	Add(addr ble.Addr) error
	Count() int
	MostRecent() (ble.Addr, bool)
	Clear() error
}

// HFP is the hands-free profile library.
type HFP interface {
	Connect(addr ble.Addr) error
	Disconnect(link events.Link) error
	Answer(link events.Link) error
	Reject(link events.Link) error
	Hangup(link events.Link) error
	TransferAudio(link events.Link, toHeadset bool) error
	VoiceRecognition(link events.Link, enable bool) error
	DialLastNumber(link events.Link) error
	DialNumber(link events.Link, number string) error
	ThreeWay(link events.Link, op ThreeWayOp) error
	ResponseAndHold(link events.Link, op HoldOp) error
	SetSpeakerVolume(link events.Link, level int) error
}

// A2DP is the advanced audio distribution profile library.
type A2DP interface {
	Connect(addr ble.Addr) error
	Disconnect(addr ble.Addr) error
}

// AVRCP is the remote control profile library.
type AVRCP interface {
	Passthrough(op events.AvrcpOp, pressed bool) error
	Disconnect() error
}

// Audio is the audio plugin: routing, tones and the microphone.
type Audio interface {
	SetMicMute(mute bool) error
	SetVolume(level int) error
	PlayTone(name string) error
	SetLanguage(language int) error
}

// LEDs is the LED pattern hardware.
type LEDs interface {
	Play(pattern config.LEDPattern) error
	Stop() error
}

// Amplifier drives the audio amplifier enable line.
type Amplifier interface {
	SetAmp(enabled bool) error
}

// FM is the FM receiver plugin.
type FM interface {
	On() error
	Off() error
	Tune(up bool) error
	Store() error
	Erase() error
}

// Subwoofer is the wireless subwoofer (SWAT) library.
type Subwoofer interface {
	StartInquiry() error
	DeletePairing() error
	OpenMedia() error
	CloseMedia() error
	SetVolume(level int) error
	Disconnect() error
}

// Display is the display plugin.
type Display interface {
	Enable(on bool) error
	Show(text string) error
}

// Power is the power supply unit.
type Power interface {
	Shutdown() error
}

// Peripherals switches the fitted peripheral drivers off together.
type Peripherals interface {
	Shutdown() error
}

// Persister stores a named session record.
type Persister interface {
	Persist(key string, value any) error
}

// Stack bundles the collaborators handed to the core.
type Stack struct {
	Conn        ConnectionLib
	PDL         PairedDevices
	HFP         HFP
	A2DP        A2DP
	AVRCP       AVRCP
	Audio       Audio
	LEDs        LEDs
	Amp         Amplifier
	FM          FM
	Subwoofer   Subwoofer
	Display     Display
	Power       Power
	Peripherals Peripherals
	Persist     Persister
}
