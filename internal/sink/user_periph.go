package sink

import (
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/sched"
)

func (a *App) registerPeripheralActions() {
	a.on(events.EventLedsOnOffToggle, func(sched.Message) bool {
		if a.dev.Flags.LEDsEnabled {
			a.raise(events.EventLEDsOff)
		} else {
			a.raise(events.EventLEDsOn)
		}
		return false
	})
	a.on(events.EventLEDsOn, func(sched.Message) bool { return a.setLEDs(true) })
	a.on(events.EventLEDsOff, func(sched.Message) bool { return a.setLEDs(false) })
	a.on(events.EventLEDEventComplete, func(sched.Message) bool {
		a.warn(a.led.Complete(), "Failed to complete LED pattern")
		return false
	})
	a.on(events.EventResetLEDTimeout, func(sched.Message) bool {
		a.dev.Flags.LEDTimedOut = true
		a.warn(a.led.Cancel(), "Failed to stop LED pattern")
		return false
	})
	a.on(events.EventCancelLedIndication, func(sched.Message) bool {
		a.warn(a.led.Cancel(), "Failed to cancel LED pattern")
		return false
	})

	a.on(events.EventAudioPromptsOn, a.setFlag(&a.dev.Flags.AudioPromptsEnabled, true))
	a.on(events.EventAudioPromptsOff, a.setFlag(&a.dev.Flags.AudioPromptsEnabled, false))
	a.on(events.EventSelectTTSLanguageMode, func(sched.Message) bool {
		if a.dev.TTSLanguages <= 1 {
			return false
		}
		a.dev.TTSLanguage = (a.dev.TTSLanguage + 1) % a.dev.TTSLanguages
		a.persist(persist.KeyTTSLanguage, a.dev.TTSLanguage)
		a.warn(a.st.Audio.SetLanguage(a.dev.TTSLanguage), "Failed to select language")
		return true
	})

	a.on(events.EventELRampToggle, func(sched.Message) bool {
		el := a.periph.EL
		if el == nil || !a.dev.Features.ELRampFitted {
			return false
		}
		if el.Enabled() {
			a.stopTask(events.EventELPatternTick)
			a.warn(el.Disable(), "Failed to disable EL ramp")
			return true
		}
		a.warn(el.Enable(), "Failed to enable EL ramp")
		a.warn(el.On(), "Failed to light EL panel")
		a.restartELTick()
		return true
	})
	a.on(events.EventELPatternNext, func(sched.Message) bool {
		el := a.periph.EL
		if el == nil || !el.Enabled() {
			return false
		}
		p := el.NextPattern()
		a.logger.WithField("pattern", p).Debug("EL pattern selected")
		a.warn(el.On(), "Failed to light EL panel")
		a.restartELTick()
		return true
	})
	a.on(events.EventELPatternReset, func(sched.Message) bool {
		el := a.periph.EL
		if el == nil || !el.Enabled() {
			return false
		}
		el.ResetPattern()
		a.stopTask(events.EventELPatternTick)
		a.warn(el.On(), "Failed to light EL panel")
		return true
	})
	a.on(events.EventELPatternTick, func(sched.Message) bool {
		el := a.periph.EL
		if el == nil || !el.Enabled() {
			a.stopTask(events.EventELPatternTick)
			return false
		}
		a.warn(el.Toggle(), "Failed to toggle EL panel")
		return false
	})

	a.on(events.EventVibrateToggle, func(sched.Message) bool {
		v := a.periph.Vibration
		if v == nil || !a.dev.Features.VibrationFitted {
			return false
		}
		a.warn(v.Toggle(), "Failed to toggle vibration")
		return true
	})

	a.on(events.EventAccelOn, func(sched.Message) bool {
		acc := a.periph.Accel
		if acc == nil || a.dev.Flags.AccelSampling {
			return false
		}
		a.dev.Flags.AccelSampling = true
		a.warn(acc.Start(), "Failed to start accelerometer")
		if d := a.cfg.Timeouts.AccelSample; d > 0 {
			a.startTask(events.EventAccelSample, sched.Every(d))
		}
		return true
	})
	a.on(events.EventAccelOff, func(sched.Message) bool {
		acc := a.periph.Accel
		if acc == nil || !a.dev.Flags.AccelSampling {
			return false
		}
		a.dev.Flags.AccelSampling = false
		a.stopTask(events.EventAccelSample)
		a.warn(acc.Stop(), "Failed to stop accelerometer")
		return true
	})
	a.on(events.EventAccelSample, func(sched.Message) bool {
		acc := a.periph.Accel
		if acc == nil || !a.dev.Flags.AccelSampling {
			a.stopTask(events.EventAccelSample)
			return false
		}
		a.warn(acc.Sample(), "Failed to sample accelerometer")
		return false
	})
}

func (a *App) setLEDs(on bool) bool {
	if a.dev.Flags.LEDsEnabled == on {
		return false
	}
	if !on {
		a.warn(a.led.Cancel(), "Failed to stop LED pattern")
	}
	a.dev.Flags.LEDsEnabled = on
	a.persist(persist.KeyLEDEnabled, on)
	return true
}

// restartELTick follows the current EL pattern: blinking patterns toggle
// the panel every pattern*interval, steady light stops the tick.
func (a *App) restartELTick() {
	interval, blink := a.periph.EL.TickInterval(a.cfg.Timeouts.ELPatternInterval)
	if !blink {
		a.stopTask(events.EventELPatternTick)
		return
	}
	a.startTask(events.EventELPatternTick, sched.Every(interval))
}
