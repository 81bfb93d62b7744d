//go:build test

package sink_test

import (
	"errors"
	"testing"
	"time"

	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/testutils"
	"github.com/srg/bsink/pkg/config"
	"github.com/stretchr/testify/suite"
)

type AvrcpTestSuite struct {
	testutils.SinkSuite
}

func (suite *AvrcpTestSuite) SetupTest() {
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
	suite.Message(events.AvrcpConnectCfm, events.StatusInd{Status: events.StatusSuccess})
	suite.Require().True(suite.Dev().AvrcpLinked)
	suite.Reset()
}

func (suite *AvrcpTestSuite) TestSkipClicks() {
	suite.Event(events.EventAvrcpSkipForward)

	suite.Assert().Equal(2, suite.Count("avrcp.Passthrough"), "a click MUST press and release")
}

func (suite *AvrcpTestSuite) TestPlayPauseFollowsStreaming() {
	suite.Event(events.EventAvrcpPlayPause)
	suite.Message(events.A2dpMediaStartInd, nil)
	suite.Require().True(suite.Dev().Flags.A2dpStreaming)
	suite.Event(events.EventAvrcpPlayPause)

	calls := suite.Calls()
	suite.Assert().Contains(calls, "avrcp.Passthrough(play, true)")
	suite.Assert().Contains(calls, "avrcp.Passthrough(pause, true)")
}

func (suite *AvrcpTestSuite) TestFastForwardRepeats() {
	suite.Event(events.EventAvrcpFastForwardPress)
	suite.Assert().True(suite.Sink.App.TaskActive(events.EventAvrcpFastForwardRepeat))

	suite.Advance(3 * time.Second)
	suite.Assert().Equal(4, suite.Count("avrcp.Passthrough"), "a held button MUST be re-sent every period")

	suite.Event(events.EventAvrcpFastForwardRelease)
	suite.Assert().Equal(5, suite.Count("avrcp.Passthrough"))
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventAvrcpFastForwardRepeat))

	suite.Advance(3 * time.Second)
	suite.Assert().Equal(5, suite.Count("avrcp.Passthrough"))
}

func (suite *AvrcpTestSuite) TestRewindReplacesFastForward() {
	suite.Event(events.EventAvrcpFastForwardPress)
	suite.Event(events.EventAvrcpRewindPress)

	suite.Assert().False(suite.Sink.App.TaskActive(events.EventAvrcpFastForwardRepeat))
	suite.Assert().True(suite.Sink.App.TaskActive(events.EventAvrcpRewindRepeat))

	suite.Event(events.EventAvrcpFastForwardRelease)
	suite.Assert().Equal(2, suite.Count("avrcp.Passthrough"), "release of a button not held MUST be ignored")
}

func (suite *AvrcpTestSuite) TestDisconnectStopsRepeat() {
	suite.Event(events.EventAvrcpRewindPress)

	suite.Message(events.AvrcpDisconnectInd, nil)
	suite.Advance(5 * time.Second)

	suite.Assert().False(suite.Dev().AvrcpLinked)
	suite.Assert().Equal(1, suite.Count("avrcp.Passthrough"))
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventAvrcpRewindRepeat))

	suite.Event(events.EventAvrcpSkipBackward)
	suite.Assert().Equal(1, suite.Count("avrcp.Passthrough"), "no pass-through without a link")
}

func TestAvrcpTestSuite(t *testing.T) {
	suite.Run(t, new(AvrcpTestSuite))
}

type SubwooferTestSuite struct {
	testutils.SinkSuite
}

func (suite *SubwooferTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Features.SubwooferFitted = true
		c.Features.PairIfPDLEmpty = false
	})
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
}

func (suite *SubwooferTestSuite) attach() {
	suite.Event(events.EventSubwooferStartInquiry)
	suite.Message(events.SwatSignallingConnectCfm, events.StatusInd{Status: events.StatusSuccess})
	suite.Require().True(suite.Dev().SubwooferAttached)
}

func (suite *SubwooferTestSuite) TestInquiryAndAttach() {
	suite.Event(events.EventSubwooferStartInquiry)
	suite.Event(events.EventSubwooferStartInquiry)
	suite.Assert().Equal(1, suite.Count("swat.StartInquiry"), "one inquiry at a time")

	suite.Message(events.SwatSignallingConnectCfm, events.StatusInd{Status: events.StatusSuccess})

	suite.Assert().True(suite.Dev().SubwooferAttached)
	suite.Assert().Contains(suite.Calls(), "swat.SetVolume(10)")
}

func (suite *SubwooferTestSuite) TestMediaFollowsA2dp() {
	suite.attach()

	suite.Message(events.A2dpMediaStartInd, nil)
	suite.Assert().True(suite.Dev().Flags.SubwooferStreaming)
	suite.Assert().Equal(1, suite.Count("swat.OpenMedia"))

	suite.Message(events.A2dpMediaSuspendInd, nil)
	suite.Assert().False(suite.Dev().Flags.SubwooferStreaming)
	suite.Assert().Equal(1, suite.Count("swat.CloseMedia"))
}

func (suite *SubwooferTestSuite) TestVolumeSteps() {
	suite.attach()
	suite.Reset()

	suite.Event(events.EventSubwooferVolumeUp)
	suite.Event(events.EventSubwooferVolumeDown)
	suite.Event(events.EventSubwooferVolumeDown)

	suite.Assert().Equal([]string{"swat.SetVolume(11)", "swat.SetVolume(10)", "swat.SetVolume(9)"}, suite.Calls())
}

func (suite *SubwooferTestSuite) TestDetach() {
	suite.attach()
	suite.Message(events.A2dpMediaStartInd, nil)

	suite.Message(events.SwatSignallingDisconnectInd, nil)

	suite.Assert().False(suite.Dev().SubwooferAttached)
	suite.Assert().False(suite.Dev().Flags.SubwooferStreaming)

	suite.Event(events.EventSubwooferVolumeUp)
	suite.Assert().Equal(1, suite.Count("swat.SetVolume"), "a detached subwoofer MUST NOT be driven")
}

func TestSubwooferTestSuite(t *testing.T) {
	suite.Run(t, new(SubwooferTestSuite))
}

type FmTestSuite struct {
	testutils.SinkSuite
}

func (suite *FmTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Features.FMFitted = true
		c.Features.DisplayFitted = true
	})
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
}

func (suite *FmTestSuite) TestTuneShowsFrequency() {
	suite.Event(events.EventFmTuneUp)
	suite.Assert().Equal(0, suite.Count("fm.Tune"), "tuning MUST wait for the receiver")

	suite.Event(events.EventFmOn)
	suite.Require().True(suite.Dev().Flags.FMOn)

	suite.Event(events.EventFmTuneUp)

	suite.Assert().Equal(87600, suite.Dev().FmFrequencyKHz)
	suite.Assert().Contains(suite.Calls(), "display.Show(FM 87.6)")
}

func (suite *FmTestSuite) TestOff() {
	suite.Event(events.EventFmOn)
	suite.Event(events.EventFmOff)
	suite.Event(events.EventFmStore)

	suite.Assert().False(suite.Dev().Flags.FMOn)
	suite.Assert().Equal(1, suite.Count("fm.Off"))
	suite.Assert().Equal(0, suite.Count("fm.Store"))
}

func (suite *FmTestSuite) TestReceiverFailure() {
	suite.Event(events.EventFmOn)

	suite.Message(events.FmInitCfm, events.InitCfm{Status: events.StatusFail})

	suite.Assert().False(suite.Dev().Flags.FMOn)
	suite.Assert().Contains(suite.Sink.AT.Lines, "+BSINK: ERROR")
}

func (suite *FmTestSuite) TestOnFailureLeavesReceiverOff() {
	suite.Sink.Sim.FailOn("fm.On", errors.New("i2c timeout"))

	suite.Event(events.EventFmOn)

	suite.Assert().False(suite.Dev().Flags.FMOn, "a receiver that failed to start MUST NOT be marked on")
	suite.Assert().Empty(suite.Indicated(indicate.KindTone))

	suite.Sink.Sim.FailOn("fm.On", nil)
	suite.Event(events.EventFmOn)
	suite.Assert().True(suite.Dev().Flags.FMOn)
}

func TestFmTestSuite(t *testing.T) {
	suite.Run(t, new(FmTestSuite))
}

func (suite *LifecycleTestSuite) TestFeaturesNotFitted() {
	suite.PowerOn()

	suite.Event(events.EventFmOn)
	suite.Event(events.EventSubwooferStartInquiry)

	suite.Assert().Empty(suite.Calls())
}
