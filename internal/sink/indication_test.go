//go:build test

package sink_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/testutils"
	"github.com/srg/bsink/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type IndicationTestSuite struct {
	testutils.SinkSuite
}

func (suite *IndicationTestSuite) kinds() []indicate.Kind {
	var out []indicate.Kind
	for _, r := range suite.Sink.Indications() {
		out = append(out, r.Kind)
	}
	return out
}

func (suite *IndicationTestSuite) TestOrderLEDToneAT() {
	suite.Event(events.EventPowerOn)

	suite.Assert().Equal([]indicate.Kind{indicate.KindLED, indicate.KindTone, indicate.KindAT}, suite.kinds())
	suite.Assert().Equal([]string{"leds.Play(blue, 600ms)", "amp.SetAmp(true)", "audio.PlayTone(power_on)"},
		filterCalls(suite.Calls(), "leds.Play", "amp.SetAmp", "audio.PlayTone"))
}

func (suite *IndicationTestSuite) TestAmplifierReleasedAfterTone() {
	suite.Event(events.EventPowerOn)
	suite.Require().True(suite.Sink.Sim.Amp.Enabled)

	suite.Advance(300 * time.Millisecond)
	suite.Assert().False(suite.Sink.Sim.Amp.Enabled, "amplifier MUST drop when the tone completes")
	suite.Assert().False(suite.Sink.App.Amplifier().Held())
}

func (suite *IndicationTestSuite) TestSharedAmplifierHeldByLED() {
	suite.PowerOn()
	suite.Advance(time.Second)
	suite.Reset()

	suite.Event(events.EventError)
	suite.Assert().Equal([]string{indicate.OwnerLED, indicate.OwnerTone}, suite.Sink.App.Amplifier().Owners())

	suite.Advance(300 * time.Millisecond)
	suite.Assert().True(suite.Sink.Sim.Amp.Enabled, "shared LED pattern MUST keep the amplifier up")

	suite.Advance(200 * time.Millisecond)
	suite.Assert().False(suite.Sink.Sim.Amp.Enabled)
	suite.Assert().Equal([]string{"amp.SetAmp(true)", "amp.SetAmp(false)"}, filterCalls(suite.Calls(), "amp.SetAmp"))
}

func (suite *IndicationTestSuite) TestLEDsDisabled() {
	suite.PowerOn()

	suite.Event(events.EventLedsOnOffToggle)
	suite.Require().False(suite.Dev().Flags.LEDsEnabled)
	enabled, ok := suite.Sink.Records.Bool(persist.KeyLEDEnabled)
	suite.Assert().True(ok)
	suite.Assert().False(enabled, "LED setting MUST be persisted")

	suite.Event(events.EventPairingSuccessful)
	suite.Assert().Empty(suite.Indicated(indicate.KindLED))
	suite.Assert().Equal(0, suite.Count("leds.Play"))
	suite.Assert().Equal([]events.ID{events.EventPairingSuccessful}, suite.Indicated(indicate.KindTone))

	suite.Event(events.EventLedsOnOffToggle)
	suite.Assert().True(suite.Dev().Flags.LEDsEnabled)
}

func (suite *IndicationTestSuite) TestAudioPromptsOff() {
	suite.PowerOn()

	suite.Event(events.EventAudioPromptsOff)
	suite.Event(events.EventVolumeUp)

	suite.Assert().Empty(suite.Indicated(indicate.KindTone))
	suite.Assert().Equal(0, suite.Count("audio.PlayTone"))
}

func (suite *IndicationTestSuite) TestATLineFailureDoesNotStopOthers() {
	suite.Sink.AT.Err = errors.New("pty closed")

	suite.Event(events.EventPowerOn)

	suite.Assert().Equal([]indicate.Kind{indicate.KindLED, indicate.KindTone}, suite.kinds())
}

func (suite *IndicationTestSuite) TestGaiaInjection() {
	suite.PowerOn()

	suite.Message(events.GaiaUserEventInd, events.UserEventInd{Event: events.EventVolumeUp})
	suite.Assert().Equal(11, suite.Dev().Volume)

	suite.Message(events.GaiaUserEventInd, events.UserEventInd{Event: events.UserEventsTop})
	suite.Assert().Equal(11, suite.Dev().Volume)
	suite.Assert().Equal(1, suite.Count("audio.SetVolume"))
}

func (suite *IndicationTestSuite) TestBatteryLevels() {
	suite.PowerOn()

	suite.Message(events.PowerBatteryLevelInd, events.BatteryLevelInd{Level: events.BatteryLow})
	suite.Message(events.PowerBatteryLevelInd, events.BatteryLevelInd{Level: events.BatteryGauge2})

	suite.Assert().Equal([]events.ID{events.EventLowBattery}, suite.Indicated(indicate.KindTone))
	suite.Assert().Equal(events.BatteryGauge2, suite.Dev().Battery)
}

func (suite *IndicationTestSuite) TestChargerStates() {
	suite.PowerOn()

	suite.Message(events.PowerChargerStateInd, events.ChargerStateInd{State: events.ChargerFast})
	suite.Assert().True(suite.Dev().Flags.ChargerConnected)

	suite.Message(events.PowerChargerStateInd, events.ChargerStateInd{State: events.ChargerComplete})
	suite.Message(events.PowerChargerStateInd, events.ChargerStateInd{State: events.ChargerDisconnected})
	suite.Assert().False(suite.Dev().Flags.ChargerConnected)

	suite.Message(events.UsbAttachedInd, nil)
	suite.Assert().True(suite.Dev().Flags.ChargerConnected, "USB attach MUST count as a charger")
}

func (suite *IndicationTestSuite) TestLEDTimeout() {
	suite.Dev().Flags.LEDTimedOut = true

	suite.Event(events.EventPowerOn)

	suite.Assert().False(suite.Dev().Flags.LEDTimedOut, "a user event MUST wake the LEDs")
	suite.Assert().Equal([]events.ID{events.EventPowerOn}, suite.Indicated(indicate.KindLED))
}

func TestIndicationTestSuite(t *testing.T) {
	suite.Run(t, new(IndicationTestSuite))
}

func TestLEDTimeoutArmed(t *testing.T) {
	f, err := testutils.NewSinkBuilder().WithConfig(func(c *config.Config) {
		c.Timeouts.LEDTimeout = 30 * time.Second
	}).Build()
	require.NoError(t, err)

	f.Event(events.EventPowerOn)
	f.Advance(29 * time.Second)
	assert.False(t, f.App.Device().Flags.LEDTimedOut)

	f.Advance(time.Second)
	assert.True(t, f.App.Device().Flags.LEDTimedOut, "idle LEDs MUST time out")

	f.Event(events.EventPairingSuccessful)
	assert.False(t, f.App.Device().Flags.LEDTimedOut)
	assert.Equal(t, []events.ID{events.EventPowerOn, events.EventPairingSuccessful}, f.Indicated(indicate.KindLED))
}

func TestPersistedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	store, err := persist.Open(path, quietLogger())
	require.NoError(t, err)

	f, err := testutils.NewSinkBuilder().WithRecords(store).Build()
	require.NoError(t, err)
	f.Event(events.EventPowerOn)
	f.Event(events.EventToggleVolume)
	f.Event(events.EventLEDsOff)

	reopened, err := persist.Open(path, quietLogger())
	require.NoError(t, err)
	g, err := testutils.NewSinkBuilder().WithRecords(reopened).Build()
	require.NoError(t, err)

	assert.True(t, g.App.Device().Flags.VolumeOrientationInverted, "orientation MUST survive a reboot")
	assert.False(t, g.App.Device().Flags.LEDsEnabled, "LED setting MUST survive a reboot")
}

func TestRestoreDefaults(t *testing.T) {
	f, err := testutils.NewSinkBuilder().Build()
	require.NoError(t, err)
	f.Event(events.EventPowerOn)
	f.Event(events.EventToggleVolume)
	f.Event(events.EventLEDsOff)

	f.Event(events.EventRestoreDefaults)

	dev := f.App.Device()
	assert.False(t, dev.Flags.VolumeOrientationInverted)
	assert.True(t, dev.Flags.LEDsEnabled)
	assert.Equal(t, map[string]any{
		persist.KeyButtonOrientation: false,
		persist.KeyLEDEnabled:        true,
		persist.KeyTTSLanguage:       0,
		persist.KeyMultipointEnabled: false,
	}, f.Records.Snapshot())
	assert.Equal(t, 1, f.Sim.Count("pdl.Clear"))
}

func filterCalls(calls []string, names ...string) []string {
	var out []string
	for _, c := range calls {
		for _, n := range names {
			if len(c) > len(n) && c[:len(n)] == n && c[len(n)] == '(' {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
