package sink

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
)

// batteryEvents maps power library levels to the user events that indicate them.
var batteryEvents = map[events.BatteryLevel]events.ID{
	events.BatteryLow:    events.EventLowBattery,
	events.BatteryGauge0: events.EventGasGauge0,
	events.BatteryGauge1: events.EventGasGauge1,
	events.BatteryGauge2: events.EventGasGauge2,
	events.BatteryGauge3: events.EventGasGauge3,
	events.BatteryOk:     events.EventOkBattery,
}

func (a *App) handleCodec(msg sched.Message) {
	switch msg.ID {
	case events.CodecInitCfm:
		a.initCfm(msg, "codec")
	default:
		a.unhandled(msg)
	}
}

func (a *App) handlePower(msg sched.Message) {
	switch msg.ID {
	case events.PowerInitCfm:
		a.initCfm(msg, "power library")

	case events.PowerBatteryLevelInd:
		ind, ok := payloadOf[events.BatteryLevelInd](a, msg)
		if !ok {
			return
		}
		a.dev.Battery = ind.Level
		if ind.Level == events.BatteryCritical {
			a.logger.Warn("Battery critical, powering off")
			a.raise(events.EventPowerOff)
			return
		}
		if id, ok := batteryEvents[ind.Level]; ok {
			a.raise(id)
		}

	case events.PowerChargerStateInd:
		ind, ok := payloadOf[events.ChargerStateInd](a, msg)
		if !ok {
			return
		}
		if ind.State == events.ChargerDisconnected {
			a.raise(events.EventChargerDisconnected)
			return
		}
		if !a.dev.Flags.ChargerConnected {
			a.raise(events.EventChargerConnected)
		}
		switch ind.State {
		case events.ChargerTrickle:
			a.raise(events.EventTrickleCharge)
		case events.ChargerFast:
			a.raise(events.EventFastCharge)
		case events.ChargerComplete:
			a.raise(events.EventOkBattery)
		case events.ChargerError:
			a.raise(events.EventChargeError)
		}

	case events.PowerThermalInd:
		ind, ok := payloadOf[events.ThermalInd](a, msg)
		if !ok {
			return
		}
		a.dev.ThermalCritical = ind.Critical
		if ind.Critical {
			a.logger.Warn("Thermal shutdown")
			a.raise(events.EventPowerOff)
		}

	default:
		a.unhandled(msg)
	}
}

func (a *App) handlePhonebook(msg sched.Message) {
	switch msg.ID {
	case events.PbapcInitCfm, events.PbapcConnectCfm:
		if cfm, ok := payloadOf[events.InitCfm](a, msg); ok {
			a.logger.WithField("event", msg.ID).WithField("status", cfm.Status).Debug("Phonebook client")
		}
	case events.PbapcPullCompleteInd:
		if ind, ok := payloadOf[events.PullCompleteInd](a, msg); ok {
			a.logger.WithField("entries", ind.Entries).Debug("Phonebook pulled")
		}
	default:
		a.unhandled(msg)
	}
}

func (a *App) handleMessaging(msg sched.Message) {
	switch msg.ID {
	case events.MapcConnectCfm:
		if cfm, ok := payloadOf[events.InitCfm](a, msg); ok {
			a.logger.WithField("status", cfm.Status).Debug("Message access client connected")
		}
	case events.MapcEventReportInd:
		ind, ok := payloadOf[events.EventReportInd](a, msg)
		if !ok {
			return
		}
		a.logger.WithField("folder", ind.Folder).WithField("handle", ind.Handle).Info("New message")
		a.raise(events.EventNewMessage)
	default:
		a.unhandled(msg)
	}
}

func (a *App) handleAvrcp(msg sched.Message) {
	switch msg.ID {
	case events.AvrcpInitCfm:
		if cfm, ok := payloadOf[events.InitCfm](a, msg); ok && cfm.Status != events.StatusSuccess {
			a.logger.WithField("status", cfm.Status).Warn("AVRCP unavailable")
		}

	case events.AvrcpConnectCfm:
		cfm, ok := payloadOf[events.StatusInd](a, msg)
		if !ok {
			return
		}
		a.dev.AvrcpLinked = cfm.Status == events.StatusSuccess

	case events.AvrcpDisconnectInd:
		a.dev.AvrcpLinked = false
		a.stopTask(events.EventAvrcpFastForwardRepeat)
		a.stopTask(events.EventAvrcpRewindRepeat)

	case events.AvrcpPassthroughCfm:
		cfm, ok := payloadOf[events.PassthroughCfm](a, msg)
		if !ok || cfm.Status == events.StatusSuccess {
			return
		}
		a.logger.WithField("op", cfm.Op).WithField("status", cfm.Status).Warn("AVRCP pass-through failed")
		a.raise(events.EventError)

	case events.AvrcpPlayStatusInd:
		if ind, ok := payloadOf[events.PlayStatusInd](a, msg); ok {
			a.logger.WithField("playing", ind.Playing).Debug("Play status")
		}

	default:
		a.unhandled(msg)
	}
}

func (a *App) handleAudioPlugin(msg sched.Message) {
	switch msg.ID {
	case events.AudioToneCompleteInd:
		a.warn(a.tone.Complete(), "Failed to release amplifier")
	case events.AudioDspStatusInd:
		if ind, ok := payloadOf[events.StatusInd](a, msg); ok && ind.Status != events.StatusSuccess {
			a.logger.WithField("status", ind.Status).Warn("DSP reported a failure")
		}
	default:
		a.unhandled(msg)
	}
}

func (a *App) handleUsb(msg sched.Message) {
	switch msg.ID {
	case events.UsbAttachedInd:
		a.raise(events.EventChargerConnected)
	case events.UsbDetachedInd:
		a.raise(events.EventChargerDisconnected)
	case events.UsbAudioActiveInd:
		if ind, ok := payloadOf[events.UsbAudioInd](a, msg); ok {
			a.logger.WithField("active", ind.Active).Debug("USB audio")
		}
	default:
		a.unhandled(msg)
	}
}

// handleGaia injects user events requested over the vendor channel.
func (a *App) handleGaia(msg sched.Message) {
	switch msg.ID {
	case events.GaiaInitCfm:
		if cfm, ok := payloadOf[events.InitCfm](a, msg); ok && cfm.Status != events.StatusSuccess {
			a.logger.WithField("status", cfm.Status).Warn("GAIA unavailable")
		}
	case events.GaiaConnectInd, events.GaiaDisconnectInd:
		a.logger.WithField("event", msg.ID).Debug("GAIA link changed")
	case events.GaiaUserEventInd:
		ind, ok := payloadOf[events.UserEventInd](a, msg)
		if !ok {
			return
		}
		if !events.IsUserEvent(ind.Event) {
			a.logger.WithField("event", ind.Event).Warn("GAIA requested an unknown user event")
			return
		}
		a.raise(ind.Event)
	default:
		a.unhandled(msg)
	}
}

func (a *App) handleDisplay(msg sched.Message) {
	switch msg.ID {
	case events.DisplayInitCfm:
		if cfm, ok := payloadOf[events.InitCfm](a, msg); ok && cfm.Status != events.StatusSuccess {
			a.logger.WithField("status", cfm.Status).Warn("Display unavailable")
		}
	default:
		a.unhandled(msg)
	}
}

func (a *App) handleBatteryReport(msg sched.Message) {
	switch msg.ID {
	case events.BatteryReportInd:
		rep, ok := payloadOf[events.BatteryReport](a, msg)
		if !ok {
			return
		}
		a.logger.WithField("percent", rep.Percent).Debug("Battery report")
		if a.dev.Features.DisplayFitted {
			a.warn(a.st.Display.Show(fmt.Sprintf("BAT %d%%", rep.Percent)), "Failed to show battery level")
		}
	default:
		a.unhandled(msg)
	}
}

func (a *App) handleSubwoofer(msg sched.Message) {
	switch msg.ID {
	case events.SwatInitCfm:
		if cfm, ok := payloadOf[events.InitCfm](a, msg); ok && cfm.Status != events.StatusSuccess {
			a.logger.WithField("status", cfm.Status).Warn("Subwoofer library unavailable")
		}

	case events.SwatSignallingConnectCfm:
		cfm, ok := payloadOf[events.StatusInd](a, msg)
		if !ok {
			return
		}
		if a.dev.Inquiry == device.InquirySubwoofer {
			a.dev.Inquiry = device.InquiryIdle
		}
		if cfm.Status != events.StatusSuccess {
			a.logger.WithField("status", cfm.Status).Warn("Subwoofer connection failed")
			return
		}
		a.dev.SubwooferAttached = true
		a.warn(a.st.Subwoofer.SetVolume(a.subVolume), "Failed to set subwoofer volume")
		a.followStreaming()

	case events.SwatMediaOpenCfm, events.SwatMediaCloseCfm:
		cfm, ok := payloadOf[events.StatusInd](a, msg)
		if !ok || cfm.Status != events.StatusSuccess {
			return
		}
		a.dev.Flags.SubwooferStreaming = msg.ID == events.SwatMediaOpenCfm

	case events.SwatSignallingDisconnectInd:
		a.dev.SubwooferAttached = false
		a.dev.Flags.SubwooferStreaming = false

	case events.SwatVolumeCfm:
		if cfm, ok := payloadOf[events.VolumeCfm](a, msg); ok {
			a.subVolume = cfm.Level
		}

	default:
		a.unhandled(msg)
	}
}

func (a *App) handleFm(msg sched.Message) {
	switch msg.ID {
	case events.FmInitCfm:
		cfm, ok := payloadOf[events.InitCfm](a, msg)
		if !ok || cfm.Status == events.StatusSuccess {
			return
		}
		a.logger.WithField("status", cfm.Status).Warn("FM receiver failed to start")
		a.dev.Flags.FMOn = false
		a.raise(events.EventError)

	case events.FmTuneCfm:
		cfm, ok := payloadOf[events.TuneCfm](a, msg)
		if !ok {
			return
		}
		a.dev.FmFrequencyKHz = cfm.FrequencyKHz
		a.logger.WithFields(logrus.Fields{"khz": cfm.FrequencyKHz}).Debug("FM tuned")
		if a.dev.Features.DisplayFitted {
			text := fmt.Sprintf("FM %d.%d", cfm.FrequencyKHz/1000, cfm.FrequencyKHz%1000/100)
			a.warn(a.st.Display.Show(text), "Failed to show frequency")
		}

	case events.FmRdsInd:
		ind, ok := payloadOf[events.RdsInd](a, msg)
		if !ok {
			return
		}
		if a.dev.Features.DisplayFitted {
			a.warn(a.st.Display.Show(ind.Text), "Failed to show RDS text")
		}

	default:
		a.unhandled(msg)
	}
}
