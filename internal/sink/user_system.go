package sink

import (
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
)

func (a *App) registerSystemActions() {
	a.on(events.EventInvalid, func(sched.Message) bool { return false })
	a.on(events.EventError, always)

	a.on(events.EventLowBattery, always)
	a.on(events.EventOkBattery, always)
	a.on(events.EventGasGauge0, always)
	a.on(events.EventGasGauge1, always)
	a.on(events.EventGasGauge2, always)
	a.on(events.EventGasGauge3, always)
	a.on(events.EventCheckForLowBatt, func(sched.Message) bool {
		switch a.dev.Battery {
		case events.BatteryCritical, events.BatteryLow:
			a.raise(events.EventLowBattery)
		}
		return false
	})

	a.on(events.EventChargerConnected, func(sched.Message) bool {
		if a.dev.Flags.ChargerConnected {
			return false
		}
		a.dev.Flags.ChargerConnected = true
		return true
	})
	a.on(events.EventChargerDisconnected, func(sched.Message) bool {
		if !a.dev.Flags.ChargerConnected {
			return false
		}
		a.dev.Flags.ChargerConnected = false
		if t := a.cfg.Timeouts.Limbo; a.dev.State() == device.Limbo && t > 0 {
			a.q.SendAfter(events.EventLimboTimeout, t, nil)
		}
		return true
	})
	a.on(events.EventTrickleCharge, always)
	a.on(events.EventFastCharge, always)
	a.on(events.EventChargeError, always)
}
