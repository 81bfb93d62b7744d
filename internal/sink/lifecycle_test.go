//go:build test

package sink_test

import (
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/testutils"
	"github.com/srg/bsink/pkg/config"
	"github.com/stretchr/testify/suite"
)

var ag = ble.NewAddr("00:1a:7d:da:71:13")

type LifecycleTestSuite struct {
	testutils.SinkSuite
}

func (suite *LifecycleTestSuite) TestPowerOnWithEmptyPDL() {
	suite.Event(events.EventPowerOn)

	suite.Assert().Equal(device.ConnDiscoverable, suite.State(), "empty PDL MUST enter pairing")
	suite.Assert().True(suite.Dev().Flags.PowerUpNoConnection)
	suite.Assert().True(suite.Sink.App.TaskActive(events.EventRefreshEncryption), "encryption refresh MUST start at power on")
	suite.Assert().Equal([]string{"+BSINK: POWER_ON"}, suite.Sink.AT.Lines)
	suite.Assert().Equal(0, suite.Count("hfp.Connect"), "nothing to page with an empty PDL")
}

func (suite *LifecycleTestSuite) TestPowerOnPagesMostRecentAG() {
	suite.Require().NoError(suite.Sink.Sim.PDL.Add(ag))

	suite.Event(events.EventPowerOn)

	suite.Assert().Equal(1, suite.Count("hfp.Connect"))
	link, ok := suite.Dev().LinkFor(ag)
	suite.Require().True(ok, "auto-responding AG MUST be connected")
	suite.Assert().Equal(events.LinkPrimary, link)
	suite.Assert().Equal(device.Connected, suite.State())
	suite.Assert().False(suite.Dev().Flags.PowerUpNoConnection)
	suite.Assert().NotNil(suite.Dev().A2dp, "A2DP MUST follow the SLC")
}

func (suite *LifecycleTestSuite) TestLimboGate() {
	before := suite.Sink.App.Metrics()

	suite.Event(events.EventVolumeUp)
	suite.Event(events.EventEnterPairing)

	after := suite.Sink.App.Metrics()
	suite.Assert().Equal(device.Limbo, suite.State())
	suite.Assert().Equal(10, suite.Dev().Volume, "volume MUST NOT change in limbo")
	suite.Assert().Equal(0, suite.Count("audio.SetVolume"))
	suite.Assert().Equal(before.Bookkeeping+2, after.Bookkeeping, "bookkeeping MUST run before the limbo gate")
	suite.Assert().Equal(before.Suppressed+2, after.Suppressed)
	suite.Assert().Empty(suite.Sink.Indications())

	suite.Event(events.EventResetPairedDeviceList)
	suite.Assert().Equal(1, suite.Count("pdl.Clear"), "PDL reset MUST pass the limbo gate")
}

func (suite *LifecycleTestSuite) TestBookkeepingSkipsExemptEvents() {
	suite.PowerOn()
	base := suite.Sink.App.Metrics().Bookkeeping

	suite.Event(events.EventChargerConnected)
	suite.Event(events.EventCheckForLowBatt)
	suite.Assert().Equal(base, suite.Sink.App.Metrics().Bookkeeping, "exempt events MUST skip bookkeeping")

	suite.Event(events.EventVolumeUp)
	suite.Assert().Equal(base+1, suite.Sink.App.Metrics().Bookkeeping)
}

func (suite *LifecycleTestSuite) TestBookkeepingRearmsAutoSwitchOff() {
	suite.PowerOn()
	suite.Event(events.EventPairingFail)
	suite.Require().Equal(device.Connectable, suite.State())

	suite.Advance(500 * time.Second)
	suite.Event(events.EventVolumeUp)
	suite.Advance(500 * time.Second)
	suite.Assert().Equal(device.Connectable, suite.State(), "a user event MUST push the switch-off back")

	suite.Advance(100 * time.Second)
	suite.Assert().Equal(device.Limbo, suite.State(), "an idle connectable sink MUST switch itself off")
}

func (suite *LifecycleTestSuite) TestPowerOffRefusedWhenDisabled() {
	suite.PowerOn()
	suite.Event(events.EventDisablePowerOff)

	suite.Event(events.EventPowerOff)
	suite.Assert().Equal(device.ConnDiscoverable, suite.State(), "disabled power off MUST be refused")
	suite.Assert().NotContains(suite.Indicated(indicate.KindLED), events.EventPowerOff)

	suite.Message(events.PowerBatteryLevelInd, events.BatteryLevelInd{Level: events.BatteryCritical})
	suite.Assert().Equal(device.Limbo, suite.State(), "critical battery MUST override the power off lock")
}

func (suite *LifecycleTestSuite) TestPowerOffStopsTasks() {
	suite.PowerOn()
	suite.Event(events.EventPowerOff)

	suite.Assert().Equal(device.Limbo, suite.State())
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventRefreshEncryption))
	suite.Assert().Contains(suite.Indicated(indicate.KindTone), events.EventPowerOff)
	suite.Assert().Equal(1, suite.Count("conn.SetScanMode"))
}

func (suite *LifecycleTestSuite) TestLimboTimeout() {
	suite.PowerOn()
	suite.Event(events.EventPowerOff)

	suite.Advance(4 * time.Second)
	suite.Assert().Equal(0, suite.Count("power.Shutdown"))

	suite.Advance(time.Second)
	suite.Assert().Equal(1, suite.Count("power.Shutdown"))
}

func (suite *LifecycleTestSuite) TestLimboTimeoutWithCharger() {
	suite.PowerOn()
	suite.Event(events.EventChargerConnected)
	suite.Event(events.EventPowerOff)

	suite.Advance(10 * time.Second)
	suite.Assert().Equal(0, suite.Count("power.Shutdown"), "charger MUST keep the sink in limbo")

	suite.Event(events.EventChargerDisconnected)
	suite.Advance(5 * time.Second)
	suite.Assert().Equal(1, suite.Count("power.Shutdown"), "unplugging MUST re-arm the limbo timeout")
}

func (suite *LifecycleTestSuite) TestTestModeIsTerminal() {
	suite.PowerOn()

	suite.Event(events.EventEnterDUTState)
	suite.Assert().Equal(device.TestMode, suite.State())
	suite.Assert().Equal(1, suite.Count("conn.EnterDUTMode"))

	suite.Event(events.EventEnterPairing)
	suite.Event(events.EventEnterTXContTestMode)
	suite.Assert().Equal(device.TestMode, suite.State())
	suite.Assert().Equal(0, suite.Count("conn.EnterTxContinuousTest"))

	suite.Reset()
	suite.Event(events.EventPowerOff)
	suite.Assert().Equal(device.TestMode, suite.State(), "power off MUST NOT leave test mode")
	suite.Assert().Empty(suite.Indicated(indicate.KindLED))
}

func (suite *LifecycleTestSuite) TestInitFailureHalts() {
	suite.Message(events.HfpInitCfm, events.InitCfm{Status: events.StatusSuccess})
	suite.Assert().Empty(suite.Sink.Halts)

	suite.Message(events.HfpInitCfm, events.InitCfm{Status: events.StatusFail})
	suite.Assert().Equal([]string{"hfp initialisation failed: fail"}, suite.Sink.Halts)
}

func (suite *LifecycleTestSuite) TestUnhandledIdentifier() {
	before := suite.Sink.App.Metrics().Unhandled

	suite.Message(0x7000, nil)
	suite.Message(events.UserEventsTop, nil)

	suite.Assert().Equal(before+2, suite.Sink.App.Metrics().Unhandled)
}

func TestLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}

type PagingTestSuite struct {
	testutils.SinkSuite
}

func (suite *PagingTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Features.PairIfPDLEmpty = false
		c.Features.AutoReconnectPowerOn = false
	})
	suite.SinkSuite.SetupTest()
}

func (suite *PagingTestSuite) TestPowerOnConnectable() {
	suite.Event(events.EventPowerOn)
	suite.Assert().Equal(device.Connectable, suite.State())
}

func (suite *PagingTestSuite) TestEstablishSLC() {
	suite.Require().NoError(suite.Sink.Sim.PDL.Add(ag))
	suite.PowerOn()

	suite.Event(events.EventEstablishSLC)
	suite.Assert().Equal(device.Connected, suite.State())
	suite.Assert().False(suite.Dev().Flags.PagingInProgress)
	suite.Assert().False(suite.Dev().Flags.PowerUpNoConnection, "first SLC MUST clear the power-up flag")
	suite.Assert().Empty(suite.Sink.AT.Lines, "first SLC after power on has no AT notification")

	suite.Message(events.HfpSlcDisconnectInd, events.SlcDisconnectInd{Addr: ag, Link: events.LinkPrimary, Status: events.StatusSuccess})
	suite.Assert().Equal(device.Connectable, suite.State())

	suite.Event(events.EventEstablishSLC)
	suite.Assert().Equal(device.Connected, suite.State())
	suite.Assert().Equal([]string{"+BSINK: DISCONNECTED", "+BSINK: CONNECTED"}, suite.Sink.AT.Lines)

	suite.Event(events.EventEstablishSLC)
	suite.Assert().Equal(2, suite.Count("hfp.Connect"), "a connected AG MUST NOT be paged again")
}

func (suite *PagingTestSuite) TestEnterPairingAndTimeout() {
	suite.PowerOn()

	suite.Event(events.EventEnterPairing)
	suite.Assert().Equal(device.ConnDiscoverable, suite.State())
	suite.Assert().Equal(device.InquiryNormal, suite.Dev().Inquiry)

	suite.Advance(120 * time.Second)
	suite.Assert().Equal(device.Connectable, suite.State(), "pairing MUST time out")
	suite.Assert().Contains(suite.Indicated(indicate.KindLED), events.EventPairingFail)
}

func TestPagingTestSuite(t *testing.T) {
	suite.Run(t, new(PagingTestSuite))
}
