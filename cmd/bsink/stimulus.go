package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-ble/ble"
	"github.com/srg/bsink/internal/events"
)

// stimulus is one inbound message produced from a line of input.
type stimulus struct {
	ID      events.ID
	Payload any
}

// stimulusHelp documents the non-event input lines.
const stimulusHelp = `  <UserEvent>                    any user event, e.g. PowerOn, volumeup
  ag-connect <addr>              AG completed a service level connection
  ag-disconnect <addr> [link]    AG disconnected (link: primary|secondary)
  ag-lost <addr> [link]          AG link lost
  call <state> [link]            AG call state (idle, incoming, outgoing, active, waiting, held, ...)
  sco [link]                     audio connection established
  sco-off [link]                 audio connection released
  confirm <addr> <numeric>       numeric comparison request from a peer
  battery <level>                critical|low|gauge0..gauge3|ok
  charger <state>                disconnected|trickle|fast|complete|error
  avrcp <up|down>                AVRCP control channel state
  a2dp <start|suspend>           A2DP media state`

var batteryLevels = map[string]events.BatteryLevel{
	"critical": events.BatteryCritical,
	"low":      events.BatteryLow,
	"gauge0":   events.BatteryGauge0,
	"gauge1":   events.BatteryGauge1,
	"gauge2":   events.BatteryGauge2,
	"gauge3":   events.BatteryGauge3,
	"ok":       events.BatteryOk,
}

var chargerStates = map[string]events.ChargerState{
	"disconnected": events.ChargerDisconnected,
	"trickle":      events.ChargerTrickle,
	"fast":         events.ChargerFast,
	"complete":     events.ChargerComplete,
	"error":        events.ChargerError,
}

// parseStimulus turns one input line into a message.
func parseStimulus(line string) (stimulus, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return stimulus{}, fmt.Errorf("%w: empty line", ErrUnknownStimulus)
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "ag-connect":
		addr, err := addrArg(args)
		if err != nil {
			return stimulus{}, err
		}
		return stimulus{events.HfpSlcConnectCfm, events.SlcConnectCfm{Addr: addr, Status: events.StatusSuccess}}, nil

	case "ag-disconnect", "ag-lost":
		addr, err := addrArg(args)
		if err != nil {
			return stimulus{}, err
		}
		link, err := linkArg(args[1:])
		if err != nil {
			return stimulus{}, err
		}
		status := events.StatusSuccess
		if strings.EqualFold(fields[0], "ag-lost") {
			status = events.StatusLinkLoss
		}
		return stimulus{events.HfpSlcDisconnectInd, events.SlcDisconnectInd{Addr: addr, Link: link, Status: status}}, nil

	case "call":
		if len(args) == 0 {
			return stimulus{}, fmt.Errorf("%w: call needs a state", ErrUnknownStimulus)
		}
		state, err := parseCallState(args[0])
		if err != nil {
			return stimulus{}, err
		}
		link, err := linkArg(args[1:])
		if err != nil {
			return stimulus{}, err
		}
		return stimulus{events.HfpCallStateInd, events.CallStateInd{Link: link, State: state}}, nil

	case "sco":
		link, err := linkArg(args)
		if err != nil {
			return stimulus{}, err
		}
		return stimulus{events.HfpAudioConnectCfm, events.AudioConnectCfm{Link: link, Status: events.StatusSuccess}}, nil

	case "sco-off":
		link, err := linkArg(args)
		if err != nil {
			return stimulus{}, err
		}
		return stimulus{events.HfpAudioDisconnectInd, events.LinkInd{Link: link}}, nil

	case "confirm":
		addr, err := addrArg(args)
		if err != nil {
			return stimulus{}, err
		}
		if len(args) < 2 {
			return stimulus{}, fmt.Errorf("%w: confirm needs a numeric value", ErrUnknownStimulus)
		}
		n, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return stimulus{}, fmt.Errorf("%w: bad numeric value %q", ErrUnknownStimulus, args[1])
		}
		return stimulus{events.ClSmUserConfirmationReqInd, events.UserConfirmationReqInd{Addr: addr, Numeric: uint32(n)}}, nil

	case "battery":
		level, ok := lookup(batteryLevels, args)
		if !ok {
			return stimulus{}, fmt.Errorf("%w: battery level must be one of critical, low, gauge0..gauge3, ok", ErrUnknownStimulus)
		}
		return stimulus{events.PowerBatteryLevelInd, events.BatteryLevelInd{Level: level}}, nil

	case "charger":
		state, ok := lookup(chargerStates, args)
		if !ok {
			return stimulus{}, fmt.Errorf("%w: charger state must be one of disconnected, trickle, fast, complete, error", ErrUnknownStimulus)
		}
		return stimulus{events.PowerChargerStateInd, events.ChargerStateInd{State: state}}, nil

	case "avrcp":
		switch strings.ToLower(strings.Join(args, " ")) {
		case "up":
			return stimulus{events.AvrcpConnectCfm, events.StatusInd{Status: events.StatusSuccess}}, nil
		case "down":
			return stimulus{events.AvrcpDisconnectInd, nil}, nil
		}
		return stimulus{}, fmt.Errorf("%w: avrcp takes up or down", ErrUnknownStimulus)

	case "a2dp":
		switch strings.ToLower(strings.Join(args, " ")) {
		case "start":
			return stimulus{events.A2dpMediaStartInd, nil}, nil
		case "suspend":
			return stimulus{events.A2dpMediaSuspendInd, nil}, nil
		}
		return stimulus{}, fmt.Errorf("%w: a2dp takes start or suspend", ErrUnknownStimulus)
	}

	if len(args) > 0 {
		return stimulus{}, fmt.Errorf("%w: %q", ErrUnknownStimulus, line)
	}
	id, err := events.ParseUserEvent(fields[0])
	if err != nil {
		return stimulus{}, fmt.Errorf("%w: %v", ErrUnknownStimulus, err)
	}
	return stimulus{ID: id}, nil
}

func addrArg(args []string) (ble.Addr, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing AG address", ErrUnknownStimulus)
	}
	if _, err := net.ParseMAC(args[0]); err != nil {
		return nil, fmt.Errorf("%w: bad address %q", ErrUnknownStimulus, args[0])
	}
	return ble.NewAddr(args[0]), nil
}

func linkArg(args []string) (events.Link, error) {
	if len(args) == 0 {
		return events.LinkPrimary, nil
	}
	switch strings.ToLower(args[0]) {
	case "primary":
		return events.LinkPrimary, nil
	case "secondary":
		return events.LinkSecondary, nil
	}
	return events.LinkPrimary, fmt.Errorf("%w: link must be primary or secondary, got %q", ErrUnknownStimulus, args[0])
}

func parseCallState(name string) (events.CallState, error) {
	for s := events.CallIdle; s <= events.CallIncomingHeld; s++ {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return events.CallIdle, fmt.Errorf("%w: unknown call state %q", ErrUnknownStimulus, name)
}

func lookup[V any](table map[string]V, args []string) (V, bool) {
	var zero V
	if len(args) != 1 {
		return zero, false
	}
	v, ok := table[strings.ToLower(args[0])]
	return v, ok
}
