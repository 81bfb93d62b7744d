package sink

import (
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
)

func (a *App) registerMediaActions() {
	a.on(events.EventAvrcpPlayPause, func(sched.Message) bool {
		op := events.AvrcpPlay
		if a.dev.Flags.A2dpStreaming {
			op = events.AvrcpPause
		}
		return a.click(op)
	})
	a.on(events.EventAvrcpStop, func(sched.Message) bool { return a.click(events.AvrcpStopOp) })
	a.on(events.EventAvrcpSkipForward, func(sched.Message) bool { return a.click(events.AvrcpForward) })
	a.on(events.EventAvrcpSkipBackward, func(sched.Message) bool { return a.click(events.AvrcpBackward) })

	a.on(events.EventAvrcpFastForwardPress, a.seekPress(events.AvrcpFastForward, events.EventAvrcpFastForwardRepeat))
	a.on(events.EventAvrcpFastForwardRelease, a.seekRelease(events.AvrcpFastForward, events.EventAvrcpFastForwardRepeat))
	a.on(events.EventAvrcpFastForwardRepeat, a.seekRepeat(events.AvrcpFastForward, events.EventAvrcpFastForwardRepeat))
	a.on(events.EventAvrcpRewindPress, a.seekPress(events.AvrcpRewind, events.EventAvrcpRewindRepeat))
	a.on(events.EventAvrcpRewindRelease, a.seekRelease(events.AvrcpRewind, events.EventAvrcpRewindRepeat))
	a.on(events.EventAvrcpRewindRepeat, a.seekRepeat(events.AvrcpRewind, events.EventAvrcpRewindRepeat))

	a.on(events.EventFmOn, a.fm(func() bool {
		if a.dev.Flags.FMOn {
			return false
		}
		if a.warn(a.st.FM.On(), "Failed to start FM receiver") {
			return false
		}
		a.dev.Flags.FMOn = true
		return true
	}))
	a.on(events.EventFmOff, a.fm(func() bool {
		if !a.dev.Flags.FMOn {
			return false
		}
		a.dev.Flags.FMOn = false
		return !a.warn(a.st.FM.Off(), "Failed to stop FM receiver")
	}))
	a.on(events.EventFmTuneUp, a.fmTuned(func() error { return a.st.FM.Tune(true) }, "Failed to tune up"))
	a.on(events.EventFmTuneDown, a.fmTuned(func() error { return a.st.FM.Tune(false) }, "Failed to tune down"))
	a.on(events.EventFmStore, a.fmTuned(func() error { return a.st.FM.Store() }, "Failed to store station"))
	a.on(events.EventFmErase, a.fmTuned(func() error { return a.st.FM.Erase() }, "Failed to erase station"))

	a.on(events.EventSubwooferStartInquiry, a.subwoofer(func() bool {
		if a.dev.SubwooferAttached || a.dev.Inquiry != device.InquiryIdle || !a.dev.State().PoweredOn() {
			return false
		}
		if a.warn(a.st.Subwoofer.StartInquiry(), "Failed to start subwoofer inquiry") {
			return false
		}
		a.dev.Inquiry = device.InquirySubwoofer
		return true
	}))
	a.on(events.EventSubwooferDeletePairing, a.subwoofer(func() bool {
		return !a.warn(a.st.Subwoofer.DeletePairing(), "Failed to delete subwoofer pairing")
	}))
	a.on(events.EventSubwooferOpenMedia, a.subwoofer(func() bool {
		if !a.dev.SubwooferAttached || a.dev.Flags.SubwooferStreaming {
			return false
		}
		return !a.warn(a.st.Subwoofer.OpenMedia(), "Failed to open subwoofer media")
	}))
	a.on(events.EventSubwooferCloseMedia, a.subwoofer(func() bool {
		if !a.dev.Flags.SubwooferStreaming {
			return false
		}
		return !a.warn(a.st.Subwoofer.CloseMedia(), "Failed to close subwoofer media")
	}))
	a.on(events.EventSubwooferVolumeUp, a.subwoofer(func() bool { return a.stepSubVolume(1) }))
	a.on(events.EventSubwooferVolumeDown, a.subwoofer(func() bool { return a.stepSubVolume(-1) }))

	a.on(events.EventA2dpConnected, always)
	a.on(events.EventA2dpDisconnected, always)
	a.on(events.EventA2dpStreaming, always)
	a.on(events.EventA2dpSuspended, always)
	a.on(events.EventNewMessage, always)
}

// click sends a pass-through press and release.
func (a *App) click(op events.AvrcpOp) bool {
	if !a.dev.AvrcpLinked {
		return false
	}
	if a.warn(a.st.AVRCP.Passthrough(op, true), "Failed to send AVRCP press") {
		return false
	}
	a.warn(a.st.AVRCP.Passthrough(op, false), "Failed to send AVRCP release")
	return true
}

func (a *App) seekPress(op events.AvrcpOp, repeat events.ID) action {
	return func(sched.Message) bool {
		if !a.dev.AvrcpLinked {
			return false
		}
		a.stopTask(events.EventAvrcpFastForwardRepeat)
		a.stopTask(events.EventAvrcpRewindRepeat)
		if a.warn(a.st.AVRCP.Passthrough(op, true), "Failed to send AVRCP press") {
			return false
		}
		if d := a.cfg.Timeouts.AvrcpRepeat; d > 0 {
			a.startTask(repeat, sched.Every(d))
		}
		return true
	}
}

func (a *App) seekRelease(op events.AvrcpOp, repeat events.ID) action {
	return func(sched.Message) bool {
		if !a.TaskActive(repeat) {
			return false
		}
		a.stopTask(repeat)
		a.warn(a.st.AVRCP.Passthrough(op, false), "Failed to send AVRCP release")
		return true
	}
}

// seekRepeat re-sends the held button while the AG is still linked.
func (a *App) seekRepeat(op events.AvrcpOp, repeat events.ID) action {
	return func(sched.Message) bool {
		if !a.dev.AvrcpLinked {
			a.stopTask(repeat)
			return false
		}
		a.warn(a.st.AVRCP.Passthrough(op, true), "Failed to repeat AVRCP press")
		return false
	}
}

func (a *App) fm(act func() bool) action {
	return func(sched.Message) bool {
		if !a.dev.Features.FMFitted {
			return false
		}
		return act()
	}
}

func (a *App) fmTuned(call func() error, msg string) action {
	return a.fm(func() bool {
		if !a.dev.Flags.FMOn {
			return false
		}
		return !a.warn(call(), msg)
	})
}

func (a *App) subwoofer(act func() bool) action {
	return func(sched.Message) bool {
		if !a.dev.Features.SubwooferFitted {
			return false
		}
		return act()
	}
}

func (a *App) stepSubVolume(delta int) bool {
	v := a.subVolume + delta
	if !a.dev.SubwooferAttached || v < 0 || v >= a.dev.VolumeLevels {
		return false
	}
	a.subVolume = v
	return !a.warn(a.st.Subwoofer.SetVolume(v), "Failed to set subwoofer volume")
}
