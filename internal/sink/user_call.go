package sink

import (
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/stack"
)

// callStates are the AG call states a three-way operation applies to.
var callStates = []events.CallState{events.CallActive, events.CallWaiting, events.CallHeld, events.CallMultiparty}

func (a *App) registerCallActions() {
	a.on(events.EventInitiateVoiceDial, func(sched.Message) bool {
		link, ok := a.idleLink()
		if !ok || a.dev.Flags.VoiceRecognitionActive {
			return false
		}
		if a.warn(a.st.HFP.VoiceRecognition(link, true), "Failed to start voice dial") {
			return false
		}
		a.dev.Flags.VoiceRecognitionActive = true
		return true
	})
	a.on(events.EventCancelVoiceDial, func(sched.Message) bool {
		if !a.dev.Flags.VoiceRecognitionActive {
			return false
		}
		a.dev.Flags.VoiceRecognitionActive = false
		if link, ok := a.connectedLink(); ok {
			a.warn(a.st.HFP.VoiceRecognition(link, false), "Failed to cancel voice dial")
		}
		return true
	})
	a.on(events.EventLastNumberRedial, func(sched.Message) bool {
		link, ok := a.idleLink()
		if !ok {
			return false
		}
		return !a.warn(a.st.HFP.DialLastNumber(link), "Failed to redial")
	})
	a.on(events.EventDialStoredNumber, func(sched.Message) bool {
		number := a.cfg.Pairing.StoredDial
		link, ok := a.idleLink()
		if number == "" || !ok {
			return false
		}
		return !a.warn(a.st.HFP.DialNumber(link, number), "Failed to dial stored number")
	})

	a.on(events.EventAnswer, func(sched.Message) bool {
		link, ok := a.dev.CallLink(events.CallIncoming)
		if !ok {
			return false
		}
		return !a.warn(a.st.HFP.Answer(link), "Failed to answer call")
	})
	a.on(events.EventReject, func(sched.Message) bool {
		link, ok := a.dev.CallLink(events.CallIncoming)
		if !ok {
			return false
		}
		a.callRejected[link] = true
		return !a.warn(a.st.HFP.Reject(link), "Failed to reject call")
	})
	a.on(events.EventCancelEnd, func(sched.Message) bool {
		link, ok := a.dev.CallLink(events.CallOutgoing, events.CallActive, events.CallMultiparty)
		if !ok {
			return false
		}
		return !a.warn(a.st.HFP.Hangup(link), "Failed to end call")
	})
	a.on(events.EventTransferToggle, func(sched.Message) bool {
		link, ok := a.dev.CallLink(events.CallActive, events.CallMultiparty)
		if !ok {
			return false
		}
		toHeadset := !a.dev.Links[link].Audio
		return !a.warn(a.st.HFP.TransferAudio(link, toHeadset), "Failed to transfer audio")
	})

	a.on(events.EventThreeWayReleaseAllHeld, a.threeWay(stack.ReleaseAllHeld))
	a.on(events.EventThreeWayAcceptWaitingReleaseActive, a.threeWay(stack.AcceptWaitingReleaseActive))
	a.on(events.EventThreeWayAcceptWaitingHoldActive, a.threeWay(stack.AcceptWaitingHoldActive))
	a.on(events.EventThreeWayAddHeldTo3Way, a.threeWay(stack.AddHeldTo3Way))
	a.on(events.EventThreeWayConnect2Disconnect, a.threeWay(stack.Connect2Disconnect))

	a.on(events.EventPlaceIncomingCallOnHold, a.responseAndHold(stack.HoldIncoming, events.CallIncoming))
	a.on(events.EventAcceptHeldIncomingCall, a.responseAndHold(stack.AcceptHeld, events.CallIncomingHeld))
	a.on(events.EventRejectHeldIncomingCall, a.responseAndHold(stack.RejectHeld, events.CallIncomingHeld))

	a.on(events.EventToggleMute, func(sched.Message) bool {
		if a.dev.Flags.MicMuted {
			a.raise(events.EventMuteOff)
		} else {
			a.raise(events.EventMuteOn)
		}
		return false
	})
	a.on(events.EventMuteOn, func(sched.Message) bool {
		if a.dev.Flags.MicMuted || !a.dev.State().InCall() {
			return false
		}
		a.dev.Flags.MicMuted = true
		a.warn(a.st.Audio.SetMicMute(true), "Failed to mute microphone")
		if t := a.cfg.Timeouts.MuteReminder; a.dev.Features.MuteReminder && t > 0 {
			a.startTask(events.EventMuteReminder, sched.Every(t))
		}
		return true
	})
	a.on(events.EventMuteOff, func(sched.Message) bool {
		if !a.dev.Flags.MicMuted {
			return false
		}
		a.dev.Flags.MicMuted = false
		a.stopTask(events.EventMuteReminder)
		a.warn(a.st.Audio.SetMicMute(false), "Failed to unmute microphone")
		return true
	})
	a.on(events.EventMuteReminder, func(sched.Message) bool {
		if !a.dev.Flags.MicMuted {
			a.stopTask(events.EventMuteReminder)
			return false
		}
		return true
	})

	a.on(events.EventVolumeUp, func(sched.Message) bool { return a.stepVolume(1) })
	a.on(events.EventVolumeDown, func(sched.Message) bool { return a.stepVolume(-1) })
	a.on(events.EventToggleVolume, func(sched.Message) bool {
		inverted := !a.dev.Flags.VolumeOrientationInverted
		a.dev.Flags.VolumeOrientationInverted = inverted
		a.persist(persist.KeyButtonOrientation, inverted)
		return true
	})

	a.on(events.EventEndOfCall, always)
	a.on(events.EventCallAnswered, always)
	a.on(events.EventSCOLinkOpen, always)
	a.on(events.EventSCOLinkClose, always)
	a.on(events.EventMissedCall, func(sched.Message) bool {
		if a.dev.MissedCallsLeft <= 0 {
			a.stopTask(events.EventMissedCall)
			return false
		}
		a.dev.MissedCallsLeft--
		return true
	})
}

// connectedLink returns the first AG link with an SLC.
func (a *App) connectedLink() (events.Link, bool) {
	for i, l := range a.dev.Links {
		if l.Connected {
			return events.Link(i), true
		}
	}
	return 0, false
}

// idleLink returns a connected link while no call is in progress.
func (a *App) idleLink() (events.Link, bool) {
	if a.dev.State().InCall() {
		return 0, false
	}
	return a.connectedLink()
}

func (a *App) threeWay(op stack.ThreeWayOp) action {
	return func(sched.Message) bool {
		link, ok := a.dev.CallLink(callStates...)
		if !ok {
			return false
		}
		return !a.warn(a.st.HFP.ThreeWay(link, op), "Failed three-way call operation")
	}
}

func (a *App) responseAndHold(op stack.HoldOp, from events.CallState) action {
	return func(sched.Message) bool {
		link, ok := a.dev.CallLink(from)
		if !ok {
			return false
		}
		return !a.warn(a.st.HFP.ResponseAndHold(link, op), "Failed response and hold operation")
	}
}

// stepVolume moves the speaker volume one step, clamped to the configured
// levels. The AG is told while a call has audio on the headset.
func (a *App) stepVolume(delta int) bool {
	v := a.dev.Volume + delta
	if v < 0 || v >= a.dev.VolumeLevels {
		a.logger.WithField("volume", a.dev.Volume).Debug("Volume at limit")
		return false
	}
	a.dev.Volume = v
	if link, ok := a.dev.CallLink(events.CallActive, events.CallMultiparty); ok && a.dev.Links[link].Audio {
		a.warn(a.st.HFP.SetSpeakerVolume(link, v), "Failed to sync speaker volume")
	}
	a.warn(a.st.Audio.SetVolume(v), "Failed to set volume")
	return true
}
