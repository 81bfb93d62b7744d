package device

// State is the lifecycle state of the sink. Exactly one value holds at a time.
type State int

const (
	Limbo State = iota
	Connectable
	ConnDiscoverable
	Connected
	OutgoingCallEstablish
	IncomingCallEstablish
	ActiveCallSCO
	ActiveCallNoSCO
	TestMode
)

var stateNames = [...]string{
	Limbo:                 "limbo",
	Connectable:           "connectable",
	ConnDiscoverable:      "conn_discoverable",
	Connected:             "connected",
	OutgoingCallEstablish: "outgoing_call_establish",
	IncomingCallEstablish: "incoming_call_establish",
	ActiveCallSCO:         "active_call_sco",
	ActiveCallNoSCO:       "active_call_no_sco",
	TestMode:              "test_mode",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// InCall reports whether a call is being set up or is active.
func (s State) InCall() bool {
	switch s {
	case OutgoingCallEstablish, IncomingCallEstablish, ActiveCallSCO, ActiveCallNoSCO:
		return true
	}
	return false
}

// PoweredOn reports whether the device is out of limbo.
func (s State) PoweredOn() bool {
	return s != Limbo
}

// InquirySession describes why the device is discoverable.
type InquirySession int

const (
	InquiryIdle InquirySession = iota
	InquiryNormal
	InquirySubwoofer
)

func (i InquirySession) String() string {
	switch i {
	case InquiryNormal:
		return "normal"
	case InquirySubwoofer:
		return "subwoofer"
	default:
		return "idle"
	}
}
