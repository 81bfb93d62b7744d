package events

import (
	"fmt"

	"github.com/go-ble/ble"
)

// Connection library messages
const (
	ClInitCfm ID = ConnectionBase + iota
	ClSmPinCodeInd
	ClSmUserConfirmationReqInd
	ClSmAuthenticateCfm
	ClSmAuthorizeInd
	ClSmEncryptionChangeInd
	ClDmAclOpenedInd
	ClDmAclClosedInd
	ClDmInquireResult
)

// Profile library messages: HFP
const (
	HfpInitCfm ID = ProfileBase + iota
	HfpSlcConnectCfm
	HfpSlcDisconnectInd
	HfpCallStateInd
	HfpRingInd
	HfpAudioConnectCfm
	HfpAudioDisconnectInd
	HfpVoiceRecognitionInd
	HfpVoiceRecognitionEnableCfm
	HfpDialLastNumberCfm
	HfpDialNumberCfm
	HfpVolumeSyncSpeakerGainInd
	HfpCallerIDInd
)

// Profile library messages: A2DP
const (
	A2dpInitCfm ID = ProfileBase + 0x80 + iota
	A2dpSignallingConnectInd
	A2dpSignallingConnectCfm
	A2dpMediaOpenCfm
	A2dpMediaStartInd
	A2dpMediaSuspendInd
	A2dpMediaCloseInd
	A2dpSignallingDisconnectInd
)

// Codec messages
const (
	CodecInitCfm ID = CodecBase + iota
)

// Power messages
const (
	PowerInitCfm ID = PowerBase + iota
	PowerBatteryLevelInd
	PowerChargerStateInd
	PowerThermalInd
)

// Phonebook (PBAP client) messages
const (
	PbapcInitCfm ID = PhonebookBase + iota
	PbapcConnectCfm
	PbapcPullCompleteInd
)

// Messaging (MAP client) messages
const (
	MapcConnectCfm ID = MessagingBase + iota
	MapcEventReportInd
)

// AVRCP messages
const (
	AvrcpInitCfm ID = AvrcpBase + iota
	AvrcpConnectCfm
	AvrcpDisconnectInd
	AvrcpPassthroughCfm
	AvrcpPlayStatusInd
)

// Audio plugin upstream messages
const (
	AudioToneCompleteInd ID = AudioPluginBase + iota
	AudioDspStatusInd
)

// USB messages
const (
	UsbAttachedInd ID = UsbBase + iota
	UsbDetachedInd
	UsbAudioActiveInd
)

// GAIA vendor channel messages
const (
	GaiaInitCfm ID = GaiaBase + iota
	GaiaConnectInd
	GaiaDisconnectInd
	GaiaUserEventInd
)

// Display plugin messages
const (
	DisplayInitCfm ID = DisplayBase + iota
)

// Battery report messages
const (
	BatteryReportInd ID = BatteryReportBase + iota
)

// Subwoofer (SWAT) messages
const (
	SwatInitCfm ID = SubwooferBase + iota
	SwatSignallingConnectCfm
	SwatMediaOpenCfm
	SwatMediaCloseCfm
	SwatSignallingDisconnectInd
	SwatVolumeCfm
)

// FM receiver messages
const (
	FmInitCfm ID = FmBase + iota
	FmTuneCfm
	FmRdsInd
)

var messageNames = map[ID]string{
	ClInitCfm:                    "ClInitCfm",
	ClSmPinCodeInd:               "ClSmPinCodeInd",
	ClSmUserConfirmationReqInd:   "ClSmUserConfirmationReqInd",
	ClSmAuthenticateCfm:          "ClSmAuthenticateCfm",
	ClSmAuthorizeInd:             "ClSmAuthorizeInd",
	ClSmEncryptionChangeInd:      "ClSmEncryptionChangeInd",
	ClDmAclOpenedInd:             "ClDmAclOpenedInd",
	ClDmAclClosedInd:             "ClDmAclClosedInd",
	ClDmInquireResult:            "ClDmInquireResult",
	HfpInitCfm:                   "HfpInitCfm",
	HfpSlcConnectCfm:             "HfpSlcConnectCfm",
	HfpSlcDisconnectInd:          "HfpSlcDisconnectInd",
	HfpCallStateInd:              "HfpCallStateInd",
	HfpRingInd:                   "HfpRingInd",
	HfpAudioConnectCfm:           "HfpAudioConnectCfm",
	HfpAudioDisconnectInd:        "HfpAudioDisconnectInd",
	HfpVoiceRecognitionInd:       "HfpVoiceRecognitionInd",
	HfpVoiceRecognitionEnableCfm: "HfpVoiceRecognitionEnableCfm",
	HfpDialLastNumberCfm:         "HfpDialLastNumberCfm",
	HfpDialNumberCfm:             "HfpDialNumberCfm",
	HfpVolumeSyncSpeakerGainInd:  "HfpVolumeSyncSpeakerGainInd",
	HfpCallerIDInd:               "HfpCallerIDInd",
	A2dpInitCfm:                  "A2dpInitCfm",
	A2dpSignallingConnectInd:     "A2dpSignallingConnectInd",
	A2dpSignallingConnectCfm:     "A2dpSignallingConnectCfm",
	A2dpMediaOpenCfm:             "A2dpMediaOpenCfm",
	A2dpMediaStartInd:            "A2dpMediaStartInd",
	A2dpMediaSuspendInd:          "A2dpMediaSuspendInd",
	A2dpMediaCloseInd:            "A2dpMediaCloseInd",
	A2dpSignallingDisconnectInd:  "A2dpSignallingDisconnectInd",
	CodecInitCfm:                 "CodecInitCfm",
	PowerInitCfm:                 "PowerInitCfm",
	PowerBatteryLevelInd:         "PowerBatteryLevelInd",
	PowerChargerStateInd:         "PowerChargerStateInd",
	PowerThermalInd:              "PowerThermalInd",
	PbapcInitCfm:                 "PbapcInitCfm",
	PbapcConnectCfm:              "PbapcConnectCfm",
	PbapcPullCompleteInd:         "PbapcPullCompleteInd",
	MapcConnectCfm:               "MapcConnectCfm",
	MapcEventReportInd:           "MapcEventReportInd",
	AvrcpInitCfm:                 "AvrcpInitCfm",
	AvrcpConnectCfm:              "AvrcpConnectCfm",
	AvrcpDisconnectInd:           "AvrcpDisconnectInd",
	AvrcpPassthroughCfm:          "AvrcpPassthroughCfm",
	AvrcpPlayStatusInd:           "AvrcpPlayStatusInd",
	AudioToneCompleteInd:         "AudioToneCompleteInd",
	AudioDspStatusInd:            "AudioDspStatusInd",
	UsbAttachedInd:               "UsbAttachedInd",
	UsbDetachedInd:               "UsbDetachedInd",
	UsbAudioActiveInd:            "UsbAudioActiveInd",
	GaiaInitCfm:                  "GaiaInitCfm",
	GaiaConnectInd:               "GaiaConnectInd",
	GaiaDisconnectInd:            "GaiaDisconnectInd",
	GaiaUserEventInd:             "GaiaUserEventInd",
	DisplayInitCfm:               "DisplayInitCfm",
	BatteryReportInd:             "BatteryReportInd",
	SwatInitCfm:                  "SwatInitCfm",
	SwatSignallingConnectCfm:     "SwatSignallingConnectCfm",
	SwatMediaOpenCfm:             "SwatMediaOpenCfm",
	SwatMediaCloseCfm:            "SwatMediaCloseCfm",
	SwatSignallingDisconnectInd:  "SwatSignallingDisconnectInd",
	SwatVolumeCfm:                "SwatVolumeCfm",
	FmInitCfm:                    "FmInitCfm",
	FmTuneCfm:                    "FmTuneCfm",
	FmRdsInd:                     "FmRdsInd",
}

// Status is the outcome reported by a protocol library confirmation.
type Status int

const (
	StatusSuccess Status = iota
	StatusFail
	StatusTimeout
	StatusLinkLoss
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	case StatusTimeout:
		return "timeout"
	case StatusLinkLoss:
		return "link_loss"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Link selects the AG an HFP message refers to.
type Link int

const (
	LinkPrimary Link = iota
	LinkSecondary
)

func (l Link) String() string {
	if l == LinkSecondary {
		return "secondary"
	}
	return "primary"
}

// CallState is the HFP call state reported by the AG.
type CallState int

const (
	CallIdle CallState = iota
	CallIncoming
	CallOutgoing
	CallActive
	CallWaiting
	CallHeld
	CallMultiparty
	CallIncomingHeld
)

var callStateNames = [...]string{"idle", "incoming", "outgoing", "active", "waiting", "held", "multiparty", "incoming_held"}

func (c CallState) String() string {
	if c >= 0 && int(c) < len(callStateNames) {
		return callStateNames[c]
	}
	return "unknown"
}

// Profile names a protocol asking for authorization.
type Profile string

const (
	ProfileHFP  Profile = "hfp"
	ProfileA2DP Profile = "a2dp"
	ProfileAVRC Profile = "avrcp"
	ProfilePBAP Profile = "pbap"
	ProfileMAP  Profile = "map"
)

// BatteryLevel is the coarse level reported by the power library.
type BatteryLevel int

const (
	BatteryCritical BatteryLevel = iota
	BatteryLow
	BatteryGauge0
	BatteryGauge1
	BatteryGauge2
	BatteryGauge3
	BatteryOk
)

// ChargerState is reported when the charger changes state.
type ChargerState int

const (
	ChargerDisconnected ChargerState = iota
	ChargerTrickle
	ChargerFast
	ChargerComplete
	ChargerError
)

// AvrcpOp is an AVRCP pass-through operation.
type AvrcpOp int

const (
	AvrcpPlay AvrcpOp = iota
	AvrcpPause
	AvrcpStopOp
	AvrcpForward
	AvrcpBackward
	AvrcpFastForward
	AvrcpRewind
)

var avrcpOpNames = [...]string{"play", "pause", "stop", "forward", "backward", "fast-forward", "rewind"}

func (o AvrcpOp) String() string {
	if o < 0 || int(o) >= len(avrcpOpNames) {
		return fmt.Sprintf("AvrcpOp(%d)", int(o))
	}
	return avrcpOpNames[o]
}

// Payloads. Messages with no payload carry nil.

type InitCfm struct {
	Status Status
}

type PinCodeInd struct {
	Addr ble.Addr
}

type UserConfirmationReqInd struct {
	Addr    ble.Addr
	Numeric uint32
}

type AuthenticateCfm struct {
	Addr   ble.Addr
	Status Status
	Bonded bool
}

type AuthorizeInd struct {
	Addr    ble.Addr
	Profile Profile
}

type EncryptionChangeInd struct {
	Addr      ble.Addr
	Encrypted bool
}

type AclInd struct {
	Addr   ble.Addr
	Status Status
}

type InquireResult struct {
	Addr     ble.Addr
	RSSI     int
	Complete bool
}

type SlcConnectCfm struct {
	Addr   ble.Addr
	Link   Link
	Status Status
}

type SlcDisconnectInd struct {
	Addr   ble.Addr
	Link   Link
	Status Status
}

type CallStateInd struct {
	Link  Link
	State CallState
}

type RingInd struct {
	Link   Link
	InBand bool
}

type AudioConnectCfm struct {
	Link   Link
	Status Status
}

type LinkInd struct {
	Link Link
}

type VoiceRecognitionInd struct {
	Link   Link
	Enable bool
}

type LinkStatusCfm struct {
	Link   Link
	Status Status
}

type SpeakerGainInd struct {
	Link Link
	Gain int
}

type CallerIDInd struct {
	Link   Link
	Number string
}

type AddrInd struct {
	Addr ble.Addr
}

type AddrStatusCfm struct {
	Addr   ble.Addr
	Status Status
}

type BatteryLevelInd struct {
	Level BatteryLevel
}

type ChargerStateInd struct {
	State ChargerState
}

type ThermalInd struct {
	Critical bool
}

type PullCompleteInd struct {
	Entries int
}

type EventReportInd struct {
	Handle string
	Folder string
}

type PassthroughCfm struct {
	Op     AvrcpOp
	Status Status
}

type PlayStatusInd struct {
	Playing bool
}

type StatusInd struct {
	Status Status
}

type UsbAudioInd struct {
	Active bool
}

type UserEventInd struct {
	Event ID
}

type BatteryReport struct {
	Percent int
}

type VolumeCfm struct {
	Level int
}

type TuneCfm struct {
	FrequencyKHz int
}

type RdsInd struct {
	Text string
}
