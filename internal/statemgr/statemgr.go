// Package statemgr is the sole authority for lifecycle transitions of the
// sink. Every transition is a named operation; guards refuse illegal ones
// with a device.TransitionError and leave the state untouched.
package statemgr

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/policy"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/stack"
	"github.com/srg/bsink/pkg/config"
)

// Observer is told about every completed transition.
type Observer func(from, to device.State)

// Manager owns the lifecycle state of one DeviceState.
type Manager struct {
	dev      *device.DeviceState
	st       *stack.Stack
	q        sched.Scheduler
	timeouts config.Timeouts
	logger   *logrus.Logger
	observer Observer
}

// New creates a state manager.
func New(dev *device.DeviceState, st *stack.Stack, q sched.Scheduler, timeouts config.Timeouts, logger *logrus.Logger) *Manager {
	return &Manager{
		dev:      dev,
		st:       st,
		q:        q,
		timeouts: timeouts,
		logger:   logger,
	}
}

// SetObserver installs the transition observer.
func (m *Manager) SetObserver(o Observer) {
	m.observer = o
}

// State returns the current state.
func (m *Manager) State() device.State {
	return m.dev.State()
}

func (m *Manager) transition(to device.State) {
	from := m.dev.SetState(to)
	if from == to {
		return
	}
	m.logger.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Info("State transition")
	if m.observer != nil {
		m.observer(from, to)
	}
}

func (m *Manager) setScan(mode stack.ScanMode) error {
	if err := m.st.Conn.SetScanMode(mode); err != nil {
		m.logger.WithField("mode", mode).WithError(err).Warn("Failed to set scan mode")
		return err
	}
	return nil
}

// PowerOn leaves limbo. The device becomes discoverable when the paired
// device list calls for it, otherwise connectable, and the auto switch-off
// timer is armed.
func (m *Manager) PowerOn() error {
	from := m.dev.State()
	if from != device.Limbo {
		return device.Refuse(device.AlreadyInState, from, device.Connectable)
	}

	m.q.CancelAll(events.EventLimboTimeout)
	m.dev.Flags.PowerUpNoConnection = true
	m.armAutoSwitchOff()

	m.transition(device.Connectable)

	if policy.ShouldPairOnPowerOn(m.dev, m.st.PDL.Count()) {
		return m.EnterConnDiscoverable()
	}
	return m.EnterConnectable()
}

func (m *Manager) armAutoSwitchOff() {
	if m.timeouts.AutoSwitchOff > 0 {
		m.q.SendAfter(events.EventAutoSwitchOff, m.timeouts.AutoSwitchOff, nil)
	}
}

// PowerOff moves to limbo unless power-off is disabled and neither battery
// nor thermal state is critical. A refused power-off changes nothing.
// Test mode is left only by reboot, so it refuses power-off even when the
// battery is critical.
func (m *Manager) PowerOff() error {
	from := m.dev.State()
	switch from {
	case device.Limbo:
		return device.Refuse(device.AlreadyInState, from, device.Limbo)
	case device.TestMode:
		return device.Refuse(device.TestModeLocked, from, device.Limbo)
	}
	if !m.dev.Flags.PowerOffIsEnabled && !m.dev.BatteryCritical() {
		m.logger.WithField("state", from).Info("Power off disabled, request ignored")
		return device.Refuse(device.PowerOffDisabled, from, device.Limbo)
	}

	m.q.CancelAll(events.EventAutoSwitchOff)
	m.q.CancelAll(events.EventLinkLossReconnect)
	m.q.CancelAll(events.EventMissedCall)

	var errs []error
	for i, l := range m.dev.Links {
		if !l.Connected {
			continue
		}
		if err := m.st.HFP.Disconnect(events.Link(i)); err != nil {
			errs = append(errs, fmt.Errorf("hfp disconnect %s: %w", events.Link(i), err))
		}
	}
	if m.dev.A2dp != nil {
		if err := m.st.A2DP.Disconnect(m.dev.A2dp); err != nil {
			errs = append(errs, fmt.Errorf("a2dp disconnect: %w", err))
		}
	}
	if m.st.Peripherals != nil {
		if err := m.st.Peripherals.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("peripherals: %w", err))
		}
	}
	for _, err := range errs {
		m.logger.WithError(err).Error("Power off step failed")
	}

	return errors.Join(append(errs, m.EnterLimbo())...)
}

// EnterLimbo runs the limbo cascade and arms the limbo timeout. Every
// cleanup step runs even when an earlier one fails; failures are joined.
func (m *Manager) EnterLimbo() error {
	if from := m.dev.State(); from == device.TestMode {
		return device.Refuse(device.TestModeLocked, from, device.Limbo)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"cancel confirmation", m.cancelConfirmation},
		{"unmute microphone", m.unmute},
		{"disable display", m.disableDisplay},
		{"cancel encryption refresh", func() error {
			m.q.CancelAll(events.EventRefreshEncryption)
			return nil
		}},
		{"disconnect subwoofer", m.disconnectSubwoofer},
		{"stop fm", m.stopFM},
		{"disconnect avrcp", m.disconnectAvrcp},
		{"stop scanning", func() error { return m.setScan(stack.ScanOff) }},
	}

	var errs []error
	for _, s := range steps {
		if err := s.run(); err != nil {
			m.logger.WithField("step", s.name).WithError(err).Error("Limbo cascade step failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	m.dev.Flags.PagingInProgress = false
	m.dev.Flags.VoiceRecognitionActive = false
	m.dev.Inquiry = device.InquiryIdle
	m.transition(device.Limbo)

	if m.timeouts.Limbo > 0 {
		m.q.SendAfter(events.EventLimboTimeout, m.timeouts.Limbo, nil)
	}
	return errors.Join(errs...)
}

func (m *Manager) cancelConfirmation() error {
	addr, err := m.dev.ClearPendingConfirmation()
	if errors.Is(err, device.ErrNoPendingConfirmation) {
		return nil
	}
	return m.st.Conn.UserConfirmationResponse(addr, false)
}

func (m *Manager) unmute() error {
	m.q.CancelAll(events.EventMuteReminder)
	if !m.dev.Flags.MicMuted {
		return nil
	}
	m.dev.Flags.MicMuted = false
	return m.st.Audio.SetMicMute(false)
}

func (m *Manager) disableDisplay() error {
	if !m.dev.Features.DisplayFitted {
		return nil
	}
	return m.st.Display.Enable(false)
}

func (m *Manager) disconnectSubwoofer() error {
	if !m.dev.SubwooferAttached {
		return nil
	}
	m.dev.SubwooferAttached = false
	m.dev.Flags.SubwooferStreaming = false
	return m.st.Subwoofer.Disconnect()
}

func (m *Manager) stopFM() error {
	if !m.dev.Flags.FMOn {
		return nil
	}
	m.dev.Flags.FMOn = false
	return m.st.FM.Off()
}

func (m *Manager) disconnectAvrcp() error {
	if !m.dev.AvrcpLinked {
		return nil
	}
	m.dev.AvrcpLinked = false
	return m.st.AVRCP.Disconnect()
}

// EnterConnectable makes the device page-scannable. With profiles still
// connected it settles in Connected instead.
func (m *Manager) EnterConnectable() error {
	from := m.dev.State()
	if err := m.guardPoweredOn(from, device.Connectable); err != nil {
		return err
	}

	m.dev.Inquiry = device.InquiryIdle
	m.q.CancelAll(events.EventPairingFail)

	if m.dev.ProfilesConnected() > 0 {
		return m.EnterConnected()
	}

	err := m.setScan(stack.ScanConnectable)
	m.transition(device.Connectable)
	if m.timeouts.Connectable > 0 {
		m.q.SendAfter(events.EventConnectableTimeout, m.timeouts.Connectable, nil)
	}
	return err
}

// EnterConnDiscoverable enters pairing mode. Refused in limbo, in test mode,
// during a call, and when already discoverable.
func (m *Manager) EnterConnDiscoverable() error {
	from := m.dev.State()
	if err := m.guardPoweredOn(from, device.ConnDiscoverable); err != nil {
		return err
	}
	if from == device.ConnDiscoverable {
		return device.Refuse(device.AlreadyInState, from, device.ConnDiscoverable)
	}
	if from.InCall() {
		return device.Refuse(device.IllegalFrom, from, device.ConnDiscoverable)
	}

	m.dev.Inquiry = device.InquiryNormal
	err := m.setScan(stack.ScanConnectableDiscoverable)
	m.transition(device.ConnDiscoverable)

	if m.timeouts.PairingMode > 0 {
		m.q.SendAfter(events.EventPairingFail, m.timeouts.PairingMode, nil)
	}
	return err
}

// LeaveDiscoverable ends pairing mode, returning to connectable or connected.
func (m *Manager) LeaveDiscoverable() error {
	from := m.dev.State()
	if from != device.ConnDiscoverable {
		return device.Refuse(device.IllegalFrom, from, device.Connectable)
	}
	m.q.CancelAll(events.EventPairingFail)
	return m.EnterConnectable()
}

// EnterConnected records an SLC. Call states are kept; the scan mode stays
// connectable while a multipoint link is free.
func (m *Manager) EnterConnected() error {
	from := m.dev.State()
	if err := m.guardPoweredOn(from, device.Connected); err != nil {
		return err
	}

	m.q.CancelAll(events.EventPairingFail)
	m.q.CancelAll(events.EventConnectableTimeout)
	m.dev.Inquiry = device.InquiryIdle

	mode := stack.ScanOff
	if _, free := m.dev.FreeLink(); free {
		mode = stack.ScanConnectable
	}
	err := m.setScan(mode)

	if !from.InCall() {
		m.transition(device.Connected)
	}
	return err
}

// DisableConnectable stops page scanning after the connectable timeout.
// Refused while no profile is connected.
func (m *Manager) DisableConnectable() error {
	from := m.dev.State()
	if m.dev.ProfilesConnected() == 0 {
		return device.Refuse(device.NotConnected, from, from)
	}
	return m.setScan(stack.ScanOff)
}

// LinkDropped settles the state after an SLC went away.
func (m *Manager) LinkDropped() error {
	from := m.dev.State()
	if from == device.Limbo || from == device.TestMode {
		return nil
	}
	if m.dev.ProfilesConnected() > 0 {
		if _, ok := m.dev.CallLink(events.CallIncoming, events.CallOutgoing, events.CallActive, events.CallHeld,
			events.CallWaiting, events.CallMultiparty, events.CallIncomingHeld); ok {
			return nil
		}
		return m.EnterConnected()
	}
	return m.EnterConnectable()
}

// EnterOutgoingCallEstablish records an outgoing call being set up.
func (m *Manager) EnterOutgoingCallEstablish() error {
	return m.enterCall(device.OutgoingCallEstablish)
}

// EnterIncomingCallEstablish records a ringing call.
func (m *Manager) EnterIncomingCallEstablish() error {
	return m.enterCall(device.IncomingCallEstablish)
}

// EnterActiveCall records an active call with or without SCO audio.
func (m *Manager) EnterActiveCall(sco bool) error {
	if sco {
		return m.enterCall(device.ActiveCallSCO)
	}
	return m.enterCall(device.ActiveCallNoSCO)
}

func (m *Manager) enterCall(to device.State) error {
	from := m.dev.State()
	if err := m.guardPoweredOn(from, to); err != nil {
		return err
	}
	if m.dev.ProfilesConnected() == 0 {
		return device.Refuse(device.NotConnected, from, to)
	}
	if from == device.ConnDiscoverable {
		m.q.CancelAll(events.EventPairingFail)
		m.dev.Inquiry = device.InquiryIdle
	}
	m.transition(to)
	return nil
}

// CallEnded returns to Connected, or Connectable when the AG has gone.
func (m *Manager) CallEnded() error {
	from := m.dev.State()
	if !from.InCall() {
		return nil
	}
	if m.dev.ProfilesConnected() > 0 {
		m.transition(device.Connected)
		return nil
	}
	return m.EnterConnectable()
}

// EnterTestMode puts the radio in a test mode. It can only be left by reboot.
func (m *Manager) EnterTestMode(txContinuous bool) error {
	from := m.dev.State()
	if from == device.TestMode {
		return device.Refuse(device.AlreadyInState, from, device.TestMode)
	}

	m.q.CancelAll(events.EventAutoSwitchOff)
	m.q.CancelAll(events.EventLimboTimeout)
	m.transition(device.TestMode)

	if txContinuous {
		return m.st.Conn.EnterTxContinuousTest()
	}
	return m.st.Conn.EnterDUTMode()
}

func (m *Manager) guardPoweredOn(from, to device.State) error {
	switch from {
	case device.Limbo:
		return device.Refuse(device.InLimbo, from, to)
	case device.TestMode:
		return device.Refuse(device.TestModeLocked, from, to)
	}
	return nil
}
