//go:build test

package sink_test

import (
	"testing"
	"time"

	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/periph"
	"github.com/srg/bsink/internal/persist"
	"github.com/srg/bsink/internal/testutils"
	"github.com/srg/bsink/pkg/config"
	"github.com/stretchr/testify/suite"
)

type PeripheralTestSuite struct {
	testutils.SinkSuite
}

func (suite *PeripheralTestSuite) SetupTest() {
	suite.Builder().WithConfig(func(c *config.Config) {
		c.Features.AccelFitted = true
		c.TTS.Languages = 3
	})
	suite.SinkSuite.SetupTest()
	suite.PowerOn()
}

func (suite *PeripheralTestSuite) el() *periph.MAX14521E {
	el := suite.Sink.Peripherals.EL
	suite.Require().NotNil(el)
	return el
}

func (suite *PeripheralTestSuite) TestELSteadyLight() {
	suite.Event(events.EventELRampToggle)

	suite.Assert().True(suite.el().Enabled())
	suite.Assert().True(suite.el().Lit())
	suite.Assert().Contains(suite.Calls(), "pin.Set(el, true)")
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventELPatternTick), "steady light MUST NOT blink")

	suite.Event(events.EventELRampToggle)
	suite.Assert().False(suite.el().Enabled())
	suite.Assert().False(suite.el().Lit())
}

func (suite *PeripheralTestSuite) TestELPatternBlinks() {
	suite.Event(events.EventELRampToggle)
	suite.Event(events.EventELPatternNext)
	suite.Require().Equal(periph.Pattern1, suite.el().Pattern())

	suite.Advance(250 * time.Millisecond)
	suite.Assert().False(suite.el().Lit())
	suite.Advance(250 * time.Millisecond)
	suite.Assert().True(suite.el().Lit())

	suite.Event(events.EventELPatternNext)
	suite.Require().Equal(periph.Pattern2, suite.el().Pattern())
	suite.Advance(250 * time.Millisecond)
	suite.Assert().True(suite.el().Lit(), "pattern 2 MUST toggle at twice the base interval")
	suite.Advance(250 * time.Millisecond)
	suite.Assert().False(suite.el().Lit())

	suite.Event(events.EventELPatternReset)
	suite.Assert().Equal(periph.Pattern0, suite.el().Pattern())
	suite.Assert().True(suite.el().Lit())
	suite.Advance(2 * time.Second)
	suite.Assert().True(suite.el().Lit())
	suite.Assert().False(suite.Sink.App.TaskActive(events.EventELPatternTick))
}

func (suite *PeripheralTestSuite) TestELPatternNeedsRamp() {
	suite.Event(events.EventELPatternNext)

	suite.Assert().Equal(periph.Pattern0, suite.el().Pattern())
	suite.Assert().Empty(suite.Calls())
}

func (suite *PeripheralTestSuite) TestVibrationToggle() {
	v := suite.Sink.Peripherals.Vibration
	suite.Require().NotNil(v)

	suite.Event(events.EventVibrateToggle)
	suite.Assert().True(v.Running())
	suite.Assert().Contains(suite.Calls(), "pin.Set(vibration, true)")

	suite.Event(events.EventVibrateToggle)
	suite.Assert().False(v.Running())
	suite.Assert().False(v.Enabled())
}

func (suite *PeripheralTestSuite) TestAccelSampling() {
	acc := suite.Sink.Peripherals.Accel
	suite.Require().NotNil(acc)

	suite.Event(events.EventAccelOn)
	suite.Event(events.EventAccelOn)
	suite.Advance(3 * time.Second)
	suite.Assert().Equal(3, acc.Samples())

	suite.Event(events.EventAccelOff)
	suite.Advance(3 * time.Second)
	suite.Assert().Equal(3, acc.Samples())
	suite.Assert().False(acc.Running())
}

func (suite *PeripheralTestSuite) TestPowerOffShutsPeripheralsDown() {
	suite.Event(events.EventELRampToggle)
	suite.Event(events.EventVibrateToggle)
	suite.Event(events.EventAccelOn)

	suite.Event(events.EventPowerOff)

	suite.Assert().False(suite.el().Enabled())
	suite.Assert().False(suite.Sink.Peripherals.Vibration.Enabled())
	suite.Assert().False(suite.Sink.Peripherals.Accel.Running())
	suite.Assert().False(suite.Dev().Flags.AccelSampling)
}

func (suite *PeripheralTestSuite) TestMissingSlaveDoesNotStopDispatch() {
	suite.Sink.Bus.Remove(periph.MAX14521EAddr)

	suite.Event(events.EventELRampToggle)
	suite.Event(events.EventVolumeUp)

	suite.Assert().Equal(11, suite.Dev().Volume)
}

func (suite *PeripheralTestSuite) TestTTSLanguageCycles() {
	for i := 0; i < 4; i++ {
		suite.Event(events.EventSelectTTSLanguageMode)
	}

	suite.Assert().Equal(1, suite.Dev().TTSLanguage, "language MUST wrap around")
	lang, ok := suite.Sink.Records.Int(persist.KeyTTSLanguage)
	suite.Assert().True(ok)
	suite.Assert().Equal(1, lang)
	suite.Assert().Equal(4, suite.Count("audio.SetLanguage"))
}

func TestPeripheralTestSuite(t *testing.T) {
	suite.Run(t, new(PeripheralTestSuite))
}

func (suite *LifecycleTestSuite) TestPeripheralsNotFitted() {
	suite.PowerOn()
	suite.Sink.App.Peripherals().EL = nil

	suite.Event(events.EventELRampToggle)
	suite.Event(events.EventAccelOn)

	suite.Assert().Empty(suite.Calls())
	suite.Assert().False(suite.Dev().Flags.AccelSampling)
}
