//go:build test

package testutils

import (
	"time"

	"github.com/go-ble/ble"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/stretchr/testify/suite"
)

// SinkSuite runs each test against a freshly built sink on virtual time.
//
// Tests that need a different configuration edit the builder before the
// parent SetupTest runs:
//
//	func (s *MySuite) SetupTest() {
//	    s.Builder().WithConfig(func(c *config.Config) { c.Features.Multipoint = true })
//	    s.SinkSuite.SetupTest()
//	}
type SinkSuite struct {
	suite.Suite

	Sink    *SinkFixture
	builder *SinkBuilder
}

// Builder returns the builder used by the next SetupTest.
func (s *SinkSuite) Builder() *SinkBuilder {
	if s.builder == nil {
		s.builder = NewSinkBuilder().WithLogger(NewTestHelper(s.T()).Logger)
	}
	return s.builder
}

func (s *SinkSuite) SetupTest() {
	f, err := s.Builder().Build()
	s.Require().NoError(err, "sink MUST build")
	s.Sink = f
	s.builder = nil
}

// Event delivers a user event.
func (s *SinkSuite) Event(id events.ID) {
	s.Sink.Event(id)
}

// Message delivers a subsystem message.
func (s *SinkSuite) Message(id events.ID, payload any) {
	s.Sink.Message(id, payload)
}

// Advance moves virtual time forward.
func (s *SinkSuite) Advance(d time.Duration) {
	s.Sink.Advance(d)
}

// State returns the lifecycle state.
func (s *SinkSuite) State() device.State {
	return s.Sink.App.State()
}

// Dev returns the session record.
func (s *SinkSuite) Dev() *device.DeviceState {
	return s.Sink.App.Device()
}

// PowerOn powers the sink on and forgets the calls and indications it caused.
func (s *SinkSuite) PowerOn() {
	s.Event(events.EventPowerOn)
	s.Require().True(s.State().PoweredOn(), "sink MUST be powered on")
	s.Reset()
}

// ConnectAG completes an SLC with addr and forgets what it caused.
func (s *SinkSuite) ConnectAG(addr ble.Addr) events.Link {
	s.Message(events.HfpSlcConnectCfm, events.SlcConnectCfm{Addr: addr, Status: events.StatusSuccess})
	link, ok := s.Dev().LinkFor(addr)
	s.Require().True(ok, "AG %s MUST be on a link", addr)
	s.Reset()
	return link
}

// CallState delivers an AG call state change.
func (s *SinkSuite) CallState(link events.Link, state events.CallState) {
	s.Message(events.HfpCallStateInd, events.CallStateInd{Link: link, State: state})
}

// Indicated lists events rendered by kind since the last reset.
func (s *SinkSuite) Indicated(kind indicate.Kind) []events.ID {
	return s.Sink.Indicated(kind)
}

// Calls returns the collaborator calls since the last reset.
func (s *SinkSuite) Calls() []string {
	return s.Sink.Sim.Calls()
}

// Count returns how many calls named name were made since the last reset.
func (s *SinkSuite) Count(name string) int {
	return s.Sink.Sim.Count(name)
}

// Reset forgets recorded calls and indications.
func (s *SinkSuite) Reset() {
	s.Sink.Sim.Reset()
	s.Sink.ResetIndications()
}
