package sink

import (
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/policy"
	"github.com/srg/bsink/internal/sched"
)

func (a *App) registerPowerActions() {
	a.on(events.EventPowerOn, func(sched.Message) bool {
		if a.refused(a.mgr.PowerOn(), "power on") {
			return false
		}
		if a.dev.Features.DisplayFitted {
			a.warn(a.st.Display.Enable(true), "Failed to enable display")
		}
		a.ensureEncryptionRefresh()
		if a.dev.Features.AutoReconnectPowerOn {
			a.page()
		}
		return true
	})
	a.on(events.EventPowerOff, func(sched.Message) bool { return a.powerOff() })
	a.on(events.EventAutoSwitchOff, func(sched.Message) bool {
		switch a.dev.State() {
		case device.Connectable, device.ConnDiscoverable:
			a.logger.Info("Auto switch-off timer expired")
			return a.powerOff()
		}
		return false
	})
	a.on(events.EventLimboTimeout, func(sched.Message) bool {
		if a.dev.State() != device.Limbo {
			return false
		}
		if a.dev.Flags.ChargerConnected && !a.dev.Features.DisableLimboOnCharger {
			a.logger.Debug("Charger connected, staying in limbo")
			return false
		}
		a.logger.Info("Limbo timeout, shutting down")
		a.warn(a.st.Power.Shutdown(), "Failed to shut down")
		return false
	})

	a.on(events.EventEnterPairing, func(sched.Message) bool {
		return !a.refused(a.mgr.EnterConnDiscoverable(), "enter pairing")
	})
	a.on(events.EventPairingFail, func(sched.Message) bool {
		if a.dev.State() == device.ConnDiscoverable && !a.dev.Features.RemainDiscoverableAtAllTimes {
			a.refused(a.mgr.LeaveDiscoverable(), "leave pairing")
		}
		return true
	})
	a.on(events.EventPairingSuccessful, always)
	a.on(events.EventConnectableTimeout, func(sched.Message) bool {
		a.refused(a.mgr.DisableConnectable(), "disable connectable")
		return false
	})

	a.on(events.EventEnterTXContTestMode, func(sched.Message) bool { return a.enterTestMode(true) })
	a.on(events.EventEnterDUTState, func(sched.Message) bool { return a.enterTestMode(false) })

	a.on(events.EventResetPairedDeviceList, func(sched.Message) bool {
		return !a.warn(a.st.PDL.Clear(), "Failed to clear paired device list")
	})
	a.on(events.EventRestoreDefaults, func(sched.Message) bool {
		a.warn(a.st.PDL.Clear(), "Failed to clear paired device list")
		f := a.dev.Features
		a.dev.Flags.VolumeOrientationInverted = false
		a.dev.Flags.LEDsEnabled = f.LEDsEnabledAtBoot
		a.dev.Flags.MultipointEnabled = f.Multipoint
		a.dev.TTSLanguage = 0
		a.persist(persist.KeyButtonOrientation, false)
		a.persist(persist.KeyLEDEnabled, f.LEDsEnabledAtBoot)
		a.persist(persist.KeyTTSLanguage, 0)
		a.persist(persist.KeyMultipointEnabled, f.Multipoint)
		return true
	})

	a.on(events.EventEnablePowerOff, a.setFlag(&a.dev.Flags.PowerOffIsEnabled, true))
	a.on(events.EventDisablePowerOff, a.setFlag(&a.dev.Flags.PowerOffIsEnabled, false))
	a.on(events.EventButtonLockingOn, a.setFlag(&a.dev.Flags.ButtonsLocked, true))
	a.on(events.EventButtonLockingOff, a.setFlag(&a.dev.Flags.ButtonsLocked, false))
	a.on(events.EventButtonLockingToggle, func(sched.Message) bool {
		if a.dev.Flags.ButtonsLocked {
			a.raise(events.EventButtonLockingOff)
		} else {
			a.raise(events.EventButtonLockingOn)
		}
		return false
	})

	a.on(events.EventSSREnable, func(sched.Message) bool { return a.setSSR(true) })
	a.on(events.EventSSRDisable, func(sched.Message) bool { return a.setSSR(false) })

	a.on(events.EventEnableMultipoint, func(sched.Message) bool {
		if a.dev.Flags.MultipointEnabled {
			return false
		}
		a.dev.Flags.MultipointEnabled = true
		a.persist(persist.KeyMultipointEnabled, true)
		if a.dev.State() == device.Connected {
			a.refused(a.mgr.EnterConnected(), "rescan")
		}
		return true
	})
	a.on(events.EventDisableMultipoint, func(sched.Message) bool {
		if !a.dev.Flags.MultipointEnabled {
			return false
		}
		a.dev.Flags.MultipointEnabled = false
		a.persist(persist.KeyMultipointEnabled, false)
		if a.dev.Links[events.LinkSecondary].Connected {
			a.warn(a.st.HFP.Disconnect(events.LinkSecondary), "Failed to drop secondary AG")
		}
		return true
	})

	a.on(events.EventEstablishSLC, func(sched.Message) bool { return a.page() })
	a.on(events.EventStartPagingInConnState, func(sched.Message) bool {
		if a.dev.State() != device.Connected || a.dev.Flags.PagingInProgress {
			return false
		}
		return a.page()
	})
	a.on(events.EventStopPagingInConnState, a.setFlag(&a.dev.Flags.PagingInProgress, false))

	a.on(events.EventConfirmationAccept, func(sched.Message) bool { return a.answerConfirmation(true) })
	a.on(events.EventConfirmationReject, func(sched.Message) bool { return a.answerConfirmation(false) })
	a.on(events.EventConfirmationRequest, always)

	a.on(events.EventSLCConnected, a.slcUp)
	a.on(events.EventSLCConnectedAfterPowerOn, a.slcUp)
	a.on(events.EventSLCDisconnected, always)
	a.on(events.EventLinkLoss, always)
	a.on(events.EventLinkLossReconnect, func(sched.Message) bool {
		addr := a.dev.LinkLossAddr
		if addr == nil {
			a.stopTask(events.EventLinkLossReconnect)
			return false
		}
		if _, linked := a.dev.LinkFor(addr); linked || !policy.CanConnect(a.dev, addr) {
			a.stopTask(events.EventLinkLossReconnect)
			a.dev.LinkLossAddr = nil
			return false
		}
		a.dev.LinkLossRetries++
		a.logger.WithField("addr", addr).WithField("attempt", a.dev.LinkLossRetries).Info("Reconnecting lost AG")
		a.warn(a.st.HFP.Connect(addr), "Failed to reconnect lost AG")
		if a.dev.LinkLossRetries >= a.cfg.Timeouts.LinkLossRetries {
			a.dev.LinkLossAddr = nil
		}
		return false
	})

	a.on(events.EventRefreshEncryption, func(sched.Message) bool {
		a.ensureEncryptionRefresh()
		for _, l := range a.dev.Links {
			if !l.Connected {
				continue
			}
			a.warn(a.st.Conn.RefreshEncryptionKey(l.Addr), "Failed to refresh encryption key")
		}
		return false
	})
}

// setFlag builds an action driving one session flag. Setting a flag to the
// value it already has is not indicated.
func (a *App) setFlag(flag *bool, v bool) action {
	return func(sched.Message) bool {
		if *flag == v {
			return false
		}
		*flag = v
		return true
	}
}

func (a *App) powerOff() bool {
	if a.refused(a.mgr.PowerOff(), "power off") {
		return false
	}
	a.stopAllTasks()
	a.dev.Flags.AccelSampling = false
	a.dev.LinkLossAddr = nil
	a.dev.MissedCallsLeft = 0
	return true
}

func (a *App) enterTestMode(txContinuous bool) bool {
	if a.refused(a.mgr.EnterTestMode(txContinuous), "enter test mode") {
		return false
	}
	a.stopAllTasks()
	return true
}

// page connects to the most recently used AG when a link is free.
func (a *App) page() bool {
	if _, free := a.dev.FreeLink(); !free {
		return false
	}
	addr, ok := a.st.PDL.MostRecent()
	if !ok {
		return false
	}
	if _, linked := a.dev.LinkFor(addr); linked {
		return false
	}
	a.dev.Flags.PagingInProgress = true
	if a.warn(a.st.HFP.Connect(addr), "Failed to page AG") {
		a.dev.Flags.PagingInProgress = false
		return false
	}
	return true
}

func (a *App) setSSR(enable bool) bool {
	if a.dev.Flags.SSREnabled == enable {
		return false
	}
	a.dev.Flags.SSREnabled = enable
	a.warn(a.st.Conn.SetSniffSubrating(enable), "Failed to set sniff subrating")
	return true
}

func (a *App) answerConfirmation(accept bool) bool {
	addr, err := a.dev.ClearPendingConfirmation()
	if err != nil {
		a.logger.WithError(err).Debug("Confirmation answer without a request")
		return false
	}
	a.warn(a.st.Conn.UserConfirmationResponse(addr, accept), "Failed to answer confirmation")
	return true
}

func (a *App) slcUp(sched.Message) bool {
	a.dev.Flags.PowerUpNoConnection = false
	return true
}

func (a *App) ensureEncryptionRefresh() {
	interval := a.cfg.Timeouts.EncryptionRefresh
	if !a.dev.Features.EncryptionRefresh || interval <= 0 || !a.dev.State().PoweredOn() || a.TaskActive(events.EventRefreshEncryption) {
		return
	}
	a.startTask(events.EventRefreshEncryption, sched.Every(interval))
}
