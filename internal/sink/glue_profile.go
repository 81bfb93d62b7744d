package sink

import (
	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
)

func (a *App) handleProfile(msg sched.Message) {
	switch msg.ID {
	case events.HfpInitCfm:
		a.initCfm(msg, "hfp")
	case events.HfpSlcConnectCfm:
		a.slcConnectCfm(msg)
	case events.HfpSlcDisconnectInd:
		a.slcDisconnectInd(msg)
	case events.HfpCallStateInd:
		a.callStateInd(msg)

	case events.HfpRingInd:
		if ind, ok := payloadOf[events.RingInd](a, msg); ok {
			a.logger.WithField("link", ind.Link).WithField("in_band", ind.InBand).Debug("Ring")
		}

	case events.HfpAudioConnectCfm:
		cfm, ok := payloadOf[events.AudioConnectCfm](a, msg)
		if !ok {
			return
		}
		ls, err := a.dev.Link(cfm.Link)
		if a.warn(err, "Audio connect on unknown link") {
			return
		}
		if cfm.Status != events.StatusSuccess {
			a.logger.WithField("link", cfm.Link).WithField("status", cfm.Status).Warn("SCO connection failed")
			return
		}
		ls.Audio = true
		if a.dev.State() == device.ActiveCallNoSCO {
			a.refused(a.mgr.EnterActiveCall(true), "sco open")
		}
		a.raise(events.EventSCOLinkOpen)

	case events.HfpAudioDisconnectInd:
		ind, ok := payloadOf[events.LinkInd](a, msg)
		if !ok {
			return
		}
		ls, err := a.dev.Link(ind.Link)
		if a.warn(err, "Audio disconnect on unknown link") || !ls.Audio {
			return
		}
		ls.Audio = false
		if a.dev.State() == device.ActiveCallSCO {
			a.refused(a.mgr.EnterActiveCall(false), "sco close")
		}
		a.raise(events.EventSCOLinkClose)

	case events.HfpVoiceRecognitionInd:
		if ind, ok := payloadOf[events.VoiceRecognitionInd](a, msg); ok {
			a.dev.Flags.VoiceRecognitionActive = ind.Enable
		}

	case events.HfpVoiceRecognitionEnableCfm, events.HfpDialLastNumberCfm, events.HfpDialNumberCfm:
		cfm, ok := payloadOf[events.LinkStatusCfm](a, msg)
		if !ok || cfm.Status == events.StatusSuccess {
			return
		}
		a.logger.WithFields(logrus.Fields{
			"event":  msg.ID,
			"link":   cfm.Link,
			"status": cfm.Status,
		}).Warn("AG refused request")
		if msg.ID == events.HfpVoiceRecognitionEnableCfm {
			a.dev.Flags.VoiceRecognitionActive = false
		}
		a.raise(events.EventError)

	case events.HfpVolumeSyncSpeakerGainInd:
		ind, ok := payloadOf[events.SpeakerGainInd](a, msg)
		if !ok {
			return
		}
		gain := min(max(ind.Gain, 0), a.dev.VolumeLevels-1)
		if gain == a.dev.Volume {
			return
		}
		a.dev.Volume = gain
		a.warn(a.st.Audio.SetVolume(gain), "Failed to apply AG volume")

	case events.HfpCallerIDInd:
		ind, ok := payloadOf[events.CallerIDInd](a, msg)
		if !ok {
			return
		}
		a.dev.CallerID = ind.Number
		if a.dev.Features.DisplayFitted {
			a.warn(a.st.Display.Show(ind.Number), "Failed to show caller id")
		}

	case events.A2dpInitCfm:
		a.initCfm(msg, "a2dp")

	case events.A2dpSignallingConnectInd:
		if ind, ok := payloadOf[events.AddrInd](a, msg); ok {
			a.logger.WithField("addr", ind.Addr).Debug("A2DP signalling requested")
		}

	case events.A2dpSignallingConnectCfm:
		cfm, ok := payloadOf[events.AddrStatusCfm](a, msg)
		if !ok {
			return
		}
		if cfm.Status != events.StatusSuccess {
			a.logger.WithField("addr", cfm.Addr).WithField("status", cfm.Status).Warn("A2DP connection failed")
			return
		}
		a.dev.A2dp = cfm.Addr
		a.raise(events.EventA2dpConnected)

	case events.A2dpMediaOpenCfm:
		a.logger.Debug("A2DP media channel open")

	case events.A2dpMediaStartInd:
		if a.dev.Flags.A2dpStreaming {
			return
		}
		a.dev.Flags.A2dpStreaming = true
		a.followStreaming()
		a.raise(events.EventA2dpStreaming)

	case events.A2dpMediaSuspendInd, events.A2dpMediaCloseInd:
		if !a.dev.Flags.A2dpStreaming {
			return
		}
		a.dev.Flags.A2dpStreaming = false
		a.followStreaming()
		a.raise(events.EventA2dpSuspended)

	case events.A2dpSignallingDisconnectInd:
		if a.dev.A2dp == nil {
			return
		}
		a.dev.A2dp = nil
		if a.dev.Flags.A2dpStreaming {
			a.dev.Flags.A2dpStreaming = false
			a.followStreaming()
		}
		if a.dev.State().PoweredOn() {
			a.raise(events.EventA2dpDisconnected)
		}

	default:
		a.unhandled(msg)
	}
}

// slcConnectCfm binds a new SLC to a link and settles the state.
func (a *App) slcConnectCfm(msg sched.Message) {
	cfm, ok := payloadOf[events.SlcConnectCfm](a, msg)
	if !ok {
		return
	}
	a.dev.Flags.PagingInProgress = false
	if cfm.Status != events.StatusSuccess {
		a.logger.WithField("addr", cfm.Addr).WithField("status", cfm.Status).Info("SLC connection failed")
		return
	}

	link, linked := a.dev.LinkFor(cfm.Addr)
	if !linked {
		var free bool
		if link, free = a.dev.FreeLink(); !free {
			a.logger.WithField("addr", cfm.Addr).Warn("SLC connected with no free link")
			return
		}
	}
	a.dev.Links[link] = device.LinkState{Addr: cfm.Addr, Connected: true, Call: events.CallIdle}
	a.callRejected[link] = false
	a.warn(a.st.PDL.Add(cfm.Addr), "Failed to store paired device")

	if lost := a.dev.LinkLossAddr; lost != nil && lost.String() == cfm.Addr.String() {
		a.stopTask(events.EventLinkLossReconnect)
		a.dev.LinkLossAddr = nil
		a.dev.LinkLossRetries = 0
	}

	a.logger.WithField("addr", cfm.Addr).WithField("link", link).Info("SLC connected")
	afterPowerOn := a.dev.Flags.PowerUpNoConnection
	a.refused(a.mgr.EnterConnected(), "slc connected")
	if afterPowerOn {
		a.raise(events.EventSLCConnectedAfterPowerOn)
	} else {
		a.raise(events.EventSLCConnected)
	}
	a.ensureEncryptionRefresh()

	if a.dev.A2dp == nil {
		a.warn(a.st.A2DP.Connect(cfm.Addr), "Failed to connect A2DP")
	}
}

// slcDisconnectInd releases a link. A link-loss status starts the
// reconnection task towards the lost AG.
func (a *App) slcDisconnectInd(msg sched.Message) {
	ind, ok := payloadOf[events.SlcDisconnectInd](a, msg)
	if !ok {
		return
	}
	ls, err := a.dev.Link(ind.Link)
	if a.warn(err, "SLC disconnect on unknown link") || !ls.Connected {
		return
	}
	addr := ls.Addr
	*ls = device.LinkState{}
	a.callRejected[ind.Link] = false
	if a.dev.ProfilesConnected() == 0 {
		a.dev.Flags.VoiceRecognitionActive = false
	}
	a.clearCallState()

	a.logger.WithFields(logrus.Fields{
		"addr":   addr,
		"link":   ind.Link,
		"status": ind.Status,
	}).Info("SLC disconnected")

	poweredOn := a.dev.State().PoweredOn() && a.dev.State() != device.TestMode
	if ind.Status == events.StatusLinkLoss && poweredOn {
		a.raise(events.EventLinkLoss)
		if n, d := a.cfg.Timeouts.LinkLossRetries, a.cfg.Timeouts.LinkLossReconnect; n > 0 && d > 0 {
			a.dev.LinkLossAddr = addr
			a.dev.LinkLossRetries = 0
			a.startTask(events.EventLinkLossReconnect, sched.Times(d, n))
		}
	}
	a.refused(a.mgr.LinkDropped(), "slc disconnected")
	if poweredOn {
		a.raise(events.EventSLCDisconnected)
	}
}

// callStateInd follows the AG call state of one link.
func (a *App) callStateInd(msg sched.Message) {
	ind, ok := payloadOf[events.CallStateInd](a, msg)
	if !ok {
		return
	}
	ls, err := a.dev.Link(ind.Link)
	if a.warn(err, "Call state on unknown link") || !ls.Connected {
		return
	}
	prev := ls.Call
	if prev == ind.State {
		return
	}
	ls.Call = ind.State
	a.logger.WithFields(logrus.Fields{
		"link": ind.Link,
		"from": prev,
		"to":   ind.State,
	}).Debug("Call state")

	switch ind.State {
	case events.CallIncoming:
		a.callRejected[ind.Link] = false
		if a.refused(a.mgr.EnterIncomingCallEstablish(), "incoming call") {
			return
		}
		if a.dev.Features.AutoAnswer {
			a.warn(a.st.HFP.Answer(ind.Link), "Failed to auto-answer")
		}

	case events.CallOutgoing:
		a.refused(a.mgr.EnterOutgoingCallEstablish(), "outgoing call")

	case events.CallActive, events.CallWaiting, events.CallHeld, events.CallMultiparty, events.CallIncomingHeld:
		switch a.dev.State() {
		case device.ActiveCallSCO, device.ActiveCallNoSCO:
		default:
			a.refused(a.mgr.EnterActiveCall(ls.Audio), "call active")
		}
		if prev == events.CallIncoming || prev == events.CallOutgoing {
			a.raise(events.EventCallAnswered)
		}

	case events.CallIdle:
		a.callIdle(ind.Link, prev)
	}
}

// callIdle ends a call. An incoming call that went idle without the user
// rejecting it is a missed call: the re-indication task starts and no
// end-of-call event is raised, since its bookkeeping would cancel the task.
func (a *App) callIdle(link events.Link, prev events.CallState) {
	rejected := a.callRejected[link]
	a.callRejected[link] = false

	if a.clearCallState() {
		a.refused(a.mgr.CallEnded(), "call ended")
	}

	if prev == events.CallIncoming && !rejected {
		n, d := a.cfg.Timeouts.MissedCallRepeats, a.cfg.Timeouts.MissedCallInterval
		a.logger.WithField("link", link).Info("Missed call")
		if n > 0 && d > 0 {
			a.dev.MissedCallsLeft = n
			a.startTask(events.EventMissedCall, sched.Times(d, n))
		}
		return
	}
	a.raise(events.EventEndOfCall)
}

// clearCallState drops the per-call session state once no link carries a
// call and reports whether that is the case.
func (a *App) clearCallState() bool {
	if _, busy := a.dev.CallLink(events.CallIncoming, events.CallOutgoing, events.CallActive, events.CallWaiting,
		events.CallHeld, events.CallMultiparty, events.CallIncomingHeld); busy {
		return false
	}
	if a.dev.Flags.MicMuted {
		a.dev.Flags.MicMuted = false
		a.warn(a.st.Audio.SetMicMute(false), "Failed to unmute microphone")
	}
	a.stopTask(events.EventMuteReminder)
	a.dev.CallerID = ""
	return true
}

// followStreaming keeps subwoofer media in step with A2DP streaming.
func (a *App) followStreaming() {
	if !a.dev.Features.SubwooferFitted || !a.dev.SubwooferAttached {
		return
	}
	switch {
	case a.dev.Flags.A2dpStreaming && !a.dev.Flags.SubwooferStreaming:
		a.warn(a.st.Subwoofer.OpenMedia(), "Failed to open subwoofer media")
	case !a.dev.Flags.A2dpStreaming && a.dev.Flags.SubwooferStreaming:
		a.warn(a.st.Subwoofer.CloseMedia(), "Failed to close subwoofer media")
	}
}
