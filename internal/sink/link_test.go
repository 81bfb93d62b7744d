//go:build test

package sink_test

import (
	"fmt"
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

var phone = ble.NewAddr("7c:d1:c3:00:12:34")

type LinkLossTestSuite struct {
	testutils.SinkSuite
}

func (suite *LinkLossTestSuite) SetupTest() {
	suite.Builder().WithAutoRespond(false)
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
	suite.ConnectAG(ag)
}

func (suite *LinkLossTestSuite) lose() {
	suite.Message(events.HfpSlcDisconnectInd, events.SlcDisconnectInd{Addr: ag, Link: events.LinkPrimary, Status: events.StatusLinkLoss})
}

func (suite *LinkLossTestSuite) TestReconnectRetries() {
	suite.lose()
	suite.Require().Equal(device.Connectable, suite.State())
	suite.Assert().Equal([]string{"+BSINK: LINK_LOSS", "+BSINK: DISCONNECTED"}, suite.Sink.AT.Lines)
	suite.Assert().True(suite.Sink.App.TaskActive(events.EventLinkLossReconnect))

	suite.Advance(9 * time.Second)
	suite.Assert().Equal(0, suite.Count("hfp.Connect"))

	suite.Advance(120 * time.Second)
	suite.Assert().Equal(6, suite.Count("hfp.Connect"), "reconnection MUST stop after the configured retries")
	suite.Assert().Equal(6, suite.Dev().LinkLossRetries)
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventLinkLossReconnect))
	suite.Assert().Nil(suite.Dev().LinkLossAddr, "an abandoned reconnection MUST forget the lost AG")
	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("hfp.Connect(%s)", ag))
}

func (suite *LinkLossTestSuite) TestReconnectSucceeds() {
	suite.lose()
	suite.Advance(20 * time.Second)
	suite.Require().Equal(2, suite.Count("hfp.Connect"))

	suite.Message(events.HfpSlcConnectCfm, events.SlcConnectCfm{Addr: ag, Status: events.StatusSuccess})

	suite.Assert().Equal(device.Connected, suite.State())
	suite.Assert().Nil(suite.Dev().LinkLossAddr)
	suite.Assert().Zero(suite.Dev().LinkLossRetries)
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventLinkLossReconnect))

	suite.Advance(60 * time.Second)
	suite.Assert().Equal(2, suite.Count("hfp.Connect"), "a restored link MUST stop reconnection")
}

func (suite *LinkLossTestSuite) TestLossDuringCallEndsCallState() {
	suite.CallState(events.LinkPrimary, events.CallActive)
	suite.Event(events.EventToggleMute)
	suite.Require().True(suite.Dev().Flags.MicMuted)
	suite.Require().True(suite.Sink.App.TaskActive(events.EventMuteReminder))

	suite.lose()
	suite.Reset()

	suite.Assert().Equal(device.Connectable, suite.State())
	suite.Assert().False(suite.Dev().Flags.MicMuted, "a dropped call MUST unmute the microphone")
	suite.Assert().Empty(suite.Dev().CallerID)
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventMuteReminder))

	suite.Advance(60 * time.Second)
	suite.Assert().NotContains(suite.Indicated(indicate.KindTone), events.EventMuteReminder)
}

func (suite *LinkLossTestSuite) TestOrderlyDisconnectDoesNotReconnect() {
	suite.Message(events.HfpSlcDisconnectInd, events.SlcDisconnectInd{Addr: ag, Link: events.LinkPrimary, Status: events.StatusSuccess})

	suite.Advance(60 * time.Second)

	suite.Assert().Equal(0, suite.Count("hfp.Connect"))
	suite.Assert().NotContains(suite.Indicated(indicate.KindLED), events.EventLinkLoss)
}

func (suite *LinkLossTestSuite) TestPowerOffStopsReconnect() {
	suite.lose()
	suite.Event(events.EventPowerOff)

	suite.Advance(60 * time.Second)

	suite.Assert().Equal(0, suite.Count("hfp.Connect"))
	suite.Assert().Nil(suite.Dev().LinkLossAddr)
}

func TestLinkLossTestSuite(t *testing.T) {
	suite.Run(t, new(LinkLossTestSuite))
}

type EncryptionTestSuite struct {
	testutils.SinkSuite
}

func (suite *EncryptionTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Timeouts.AutoSwitchOff = 0
	})
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
}

func (suite *EncryptionTestSuite) TestRefreshWithoutLinks() {
	suite.Advance(900 * time.Second)

	suite.Assert().Equal(0, suite.Count("conn.RefreshEncryptionKey"))
	suite.Assert().True(suite.Sink.App.TaskActive(events.EventRefreshEncryption), "refresh MUST keep running with no links")

	suite.ConnectAG(ag)
	suite.Advance(900 * time.Second)
	suite.Assert().Equal([]string{fmt.Sprintf("conn.RefreshEncryptionKey(%s)", ag)}, suite.Calls())
}

func (suite *EncryptionTestSuite) TestRefreshStopsInLimbo() {
	suite.Event(events.EventPowerOff)
	suite.Require().Equal(device.Limbo, suite.State())

	suite.Event(events.EventRefreshEncryption)
	suite.Advance(2000 * time.Second)

	suite.Assert().False(suite.Sink.App.TaskActive(events.EventRefreshEncryption), "refresh MUST NOT restart in limbo")
	suite.Assert().Equal(0, suite.Count("conn.RefreshEncryptionKey"))
}

func TestEncryptionTestSuite(t *testing.T) {
	suite.Run(t, new(EncryptionTestSuite))
}

type PairingTestSuite struct {
	testutils.SinkSuite
}

func (suite *PairingTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Features.ManInTheMiddle = true
	})
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
}

func (suite *PairingTestSuite) confirm() {
	suite.Message(events.ClSmUserConfirmationReqInd, events.UserConfirmationReqInd{Addr: phone, Numeric: 123456})
}

func (suite *PairingTestSuite) TestConfirmationAccepted() {
	suite.confirm()
	suite.Require().True(suite.Dev().ConfirmationPending())
	suite.Assert().Equal([]events.ID{events.EventConfirmationRequest}, suite.Indicated(indicate.KindTone))

	suite.Event(events.EventConfirmationAccept)

	suite.Assert().False(suite.Dev().ConfirmationPending())
	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.UserConfirmationResponse(%s, true)", phone))
	suite.Assert().Equal(1, suite.Sink.Sim.PDL.Count(), "bonded phone MUST be stored")
	suite.Assert().Contains(suite.Sink.AT.Lines, "+BSINK: PAIRED")
}

func (suite *PairingTestSuite) TestConfirmationRejected() {
	suite.confirm()

	suite.Event(events.EventConfirmationReject)

	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.UserConfirmationResponse(%s, false)", phone))
	suite.Assert().Equal(0, suite.Sink.Sim.PDL.Count())
}

func (suite *PairingTestSuite) TestNewRequestRejectsPending() {
	other := ble.NewAddr("22:22:22:22:22:22")
	suite.confirm()
	suite.Reset()

	suite.Message(events.ClSmUserConfirmationReqInd, events.UserConfirmationReqInd{Addr: other, Numeric: 654321})

	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.UserConfirmationResponse(%s, false)", phone),
		"a superseded peer MUST get a negative response")
	pending, ok := suite.Dev().PendingConfirmation()
	suite.Require().True(ok)
	suite.Assert().Equal(other.String(), pending.String())

	suite.Event(events.EventConfirmationAccept)
	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.UserConfirmationResponse(%s, true)", other))
	suite.Assert().Equal(2, suite.Count("conn.UserConfirmationResponse"), "each peer MUST be answered once")
}

func (suite *PairingTestSuite) TestAnswerWithoutRequest() {
	suite.Event(events.EventConfirmationAccept)

	suite.Assert().Equal(0, suite.Count("conn.UserConfirmationResponse"))
}

func (suite *PairingTestSuite) TestLimboCancelsConfirmation() {
	suite.confirm()

	suite.Event(events.EventPowerOff)

	suite.Assert().False(suite.Dev().ConfirmationPending())
	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.UserConfirmationResponse(%s, false)", phone))
}

func (suite *PairingTestSuite) TestRequestOutsidePairingRejected() {
	suite.Event(events.EventPairingFail)
	suite.Require().Equal(device.Connectable, suite.State())
	suite.Reset()

	suite.confirm()

	suite.Assert().False(suite.Dev().ConfirmationPending())
	suite.Assert().Equal([]string{fmt.Sprintf("conn.UserConfirmationResponse(%s, false)", phone)}, suite.Calls())
}

func (suite *PairingTestSuite) TestPinCode() {
	suite.Message(events.ClSmPinCodeInd, events.PinCodeInd{Addr: phone})

	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.PinCodeResponse(%s, 0000, true)", phone))
	suite.Assert().Contains(suite.Indicated(indicate.KindLED), events.EventPairingSuccessful)
}

func (suite *PairingTestSuite) TestAuthenticationFailure() {
	suite.Message(events.ClSmAuthenticateCfm, events.AuthenticateCfm{Addr: phone, Status: events.StatusFail})

	suite.Assert().Equal(device.Connectable, suite.State(), "failed pairing MUST leave discoverable mode")
	suite.Assert().Contains(suite.Indicated(indicate.KindLED), events.EventPairingFail)
}

func (suite *PairingTestSuite) TestAutoAcceptWithoutMITM() {
	suite.Dev().Features.ManInTheMiddle = false

	suite.confirm()

	suite.Assert().False(suite.Dev().ConfirmationPending())
	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.UserConfirmationResponse(%s, true)", phone))
	suite.Assert().NotContains(suite.Indicated(indicate.KindTone), events.EventConfirmationRequest)
}

func TestPairingTestSuite(t *testing.T) {
	suite.Run(t, new(PairingTestSuite))
}

type MultipointTestSuite struct {
	testutils.SinkSuite
}

func (suite *MultipointTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Features.Multipoint = true
	})
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
}

func (suite *MultipointTestSuite) TestTwoAGs() {
	first := suite.ConnectAG(ag)
	second := suite.ConnectAG(phone)

	suite.Assert().Equal(events.LinkPrimary, first)
	suite.Assert().Equal(events.LinkSecondary, second)
	suite.Assert().Equal(2, suite.Dev().ProfilesConnected())
}

func (suite *MultipointTestSuite) TestThirdAGRefused() {
	suite.ConnectAG(ag)
	suite.ConnectAG(phone)

	third := ble.NewAddr("11:22:33:44:55:66")
	suite.Message(events.ClSmAuthorizeInd, events.AuthorizeInd{Addr: third, Profile: events.ProfileHFP})

	suite.Assert().Contains(suite.Calls(), fmt.Sprintf("conn.AuthorizeResponse(%s, hfp, false)", third))
}

func (suite *MultipointTestSuite) TestDisableMultipointDropsSecondary() {
	suite.ConnectAG(ag)
	suite.ConnectAG(phone)

	suite.Event(events.EventDisableMultipoint)

	suite.Assert().False(suite.Dev().Flags.MultipointEnabled)
	suite.Assert().Equal(1, suite.Dev().ProfilesConnected())
	suite.Assert().Contains(suite.Calls(), "hfp.Disconnect(secondary)")
	_, ok := suite.Dev().LinkFor(ag)
	suite.Assert().True(ok, "primary AG MUST stay connected")
}

func TestMultipointTestSuite(t *testing.T) {
	suite.Run(t, new(MultipointTestSuite))
}
