package indicate_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/indicate"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/stack/sim"
	"github.com/srg/bsink/pkg/config"
	"github.com/stretchr/testify/suite"
)

type fakeLine struct {
	lines []string
	err   error
}

func (l *fakeLine) WriteLine(s string) error {
	if l.err != nil {
		return l.err
	}
	l.lines = append(l.lines, s)
	return nil
}

type IndicateTestSuite struct {
	suite.Suite

	dev     *device.DeviceState
	q       *sched.Virtual
	sim     *sim.Sim
	amp     *indicate.AmpLine
	led     *indicate.LEDEngine
	tone    *indicate.ToneEngine
	at      *indicate.ATNotifier
	line    *fakeLine
	history *indicate.History
	fanout  *indicate.Fanout
}

func (suite *IndicateTestSuite) SetupTest() {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.DefaultConfig()
	suite.dev = device.New(cfg)
	suite.q = sched.NewVirtual(logger)
	suite.sim = sim.New(suite.q, sim.Options{ToneDuration: 300 * time.Millisecond}, logger)
	suite.amp = indicate.NewAmpLine(suite.sim.Amp, logger)
	suite.line = &fakeLine{}
	suite.history = indicate.NewHistory(16)

	var err error
	suite.led, err = indicate.NewLEDEngine(map[string]config.LEDPattern{
		"EventError":   {Color: "red", On: time.Second, Repeat: 1, SharedPIO: true},
		"EventPowerOn": {Color: "blue", On: 100 * time.Millisecond, Off: 100 * time.Millisecond, Repeat: 2},
	}, suite.sim.LEDs, suite.amp, suite.q, suite.dev, logger)
	suite.Require().NoError(err)

	suite.tone, err = indicate.NewToneEngine(map[string]string{
		"EventError":   "error",
		"EventPowerOn": "power_on",
	}, suite.sim.Audio, suite.amp, suite.dev, logger)
	suite.Require().NoError(err)

	suite.at, err = indicate.NewATNotifier(map[string]string{
		"EventError": "+BSINK: ERROR",
	}, suite.line, logger)
	suite.Require().NoError(err)

	suite.fanout = indicate.NewFanout(suite.led, suite.tone, suite.at, suite.history, suite.q.Now, logger)
	suite.q.SetHandler(func(msg sched.Message) {
		switch msg.ID {
		case events.EventLEDEventComplete:
			suite.Require().NoError(suite.led.Complete())
		case events.AudioToneCompleteInd:
			suite.Require().NoError(suite.tone.Complete())
		}
	})
}

func (suite *IndicateTestSuite) kinds(recs []indicate.Record) []indicate.Kind {
	var out []indicate.Kind
	for _, r := range recs {
		out = append(out, r.Kind)
	}
	return out
}

func (suite *IndicateTestSuite) TestOrderIsLEDToneAT() {
	recs := suite.fanout.Indicate(events.EventError)

	suite.Assert().Equal([]indicate.Kind{indicate.KindLED, indicate.KindTone, indicate.KindAT}, suite.kinds(recs))
	suite.Assert().Equal([]string{
		"amp.SetAmp(true)",
		"leds.Play(red, 1s)",
		"audio.PlayTone(error)",
	}, suite.sim.Calls(), "LED MUST claim the shared amplifier line before the tone")
	suite.Assert().Equal([]string{"+BSINK: ERROR"}, suite.line.lines)
}

func (suite *IndicateTestSuite) TestSharedAmplifierReleasedByLastOwner() {
	suite.fanout.Indicate(events.EventError)
	suite.sim.Reset()

	suite.q.Advance(300 * time.Millisecond)
	suite.Assert().Equal(0, suite.tone.Playing())
	suite.Assert().True(suite.amp.Held(), "LED pattern MUST still hold the line")
	suite.Assert().Equal([]string{indicate.OwnerLED}, suite.amp.Owners())
	suite.Assert().Empty(suite.sim.Calls())

	suite.q.Advance(time.Second)
	suite.Assert().False(suite.amp.Held())
	suite.Assert().Equal([]string{"amp.SetAmp(false)"}, suite.sim.Calls())
	suite.Assert().Equal(events.EventInvalid, suite.led.Playing())
}

func (suite *IndicateTestSuite) TestUnsharedPatternLeavesAmplifierToTone() {
	suite.fanout.Indicate(events.EventPowerOn)
	suite.Assert().Equal([]string{indicate.OwnerTone}, suite.amp.Owners())

	suite.q.Advance(300 * time.Millisecond)
	suite.Assert().False(suite.amp.Held())
	suite.Assert().Equal(1, suite.q.Pending(events.EventLEDEventComplete), "pattern lasts 400ms")
	suite.q.Advance(100 * time.Millisecond)
	suite.Assert().Equal(0, suite.q.Pending(events.EventLEDEventComplete))
}

func (suite *IndicateTestSuite) TestLEDCompleteIsRearmedNotDuplicated() {
	suite.fanout.Indicate(events.EventPowerOn)
	suite.fanout.Indicate(events.EventError)

	suite.Assert().Equal(1, suite.q.Pending(events.EventLEDEventComplete))
	suite.Assert().Equal(events.EventError, suite.led.Playing())
}

func (suite *IndicateTestSuite) TestLEDsDisabled() {
	suite.dev.Flags.LEDsEnabled = false
	recs := suite.fanout.Indicate(events.EventPowerOn)
	suite.Assert().Equal([]indicate.Kind{indicate.KindTone}, suite.kinds(recs))

	suite.dev.Flags.LEDsEnabled = true
	suite.dev.Flags.LEDTimedOut = true
	recs = suite.fanout.Indicate(events.EventPowerOn)
	suite.Assert().Equal([]indicate.Kind{indicate.KindTone}, suite.kinds(recs), "timed-out LEDs MUST stay dark")
	suite.Assert().Equal(0, suite.sim.Count("leds.Play"))
}

func (suite *IndicateTestSuite) TestAudioPromptsDisabled() {
	suite.dev.Flags.AudioPromptsEnabled = false
	recs := suite.fanout.Indicate(events.EventPowerOn)
	suite.Assert().Equal([]indicate.Kind{indicate.KindLED}, suite.kinds(recs))
	suite.Assert().False(suite.amp.Held())
}

func (suite *IndicateTestSuite) TestFailingSinkDoesNotStopLaterSinks() {
	suite.sim.FailOn("audio.PlayTone", errors.New("plugin busy"))
	recs := suite.fanout.Indicate(events.EventError)

	suite.Assert().Equal([]indicate.Kind{indicate.KindLED, indicate.KindAT}, suite.kinds(recs))
	suite.Assert().Equal([]string{indicate.OwnerLED}, suite.amp.Owners(), "failed tone MUST release its claim")

	suite.line.err = errors.New("link closed")
	recs = suite.fanout.Indicate(events.EventError)
	suite.Assert().Equal([]indicate.Kind{indicate.KindLED}, suite.kinds(recs))
}

func (suite *IndicateTestSuite) TestCancel() {
	suite.fanout.Indicate(events.EventError)
	suite.Require().NoError(suite.led.Cancel())

	suite.Assert().Equal(0, suite.q.Pending(events.EventLEDEventComplete))
	suite.Assert().Equal([]string{indicate.OwnerTone}, suite.amp.Owners())
	suite.Assert().Equal(1, suite.sim.Count("leds.Stop"))
}

func (suite *IndicateTestSuite) TestUnconfiguredEvent() {
	recs := suite.fanout.Indicate(events.EventVolumeUp)
	suite.Assert().Empty(recs)
	suite.Assert().Empty(suite.sim.Calls())
}

func (suite *IndicateTestSuite) TestHistoryRecordsRenderedIndications() {
	suite.fanout.Indicate(events.EventError)
	suite.fanout.Indicate(events.EventVolumeUp)

	recs := suite.history.Drain()
	suite.Require().Len(recs, 3)
	suite.Assert().Equal(indicate.KindLED, recs[0].Kind)
	suite.Assert().Equal("red", recs[0].Detail)
	suite.Assert().Equal(events.EventError, recs[2].Event)
	suite.Assert().Empty(suite.history.Drain(), "drain MUST consume records")
}

func TestIndicateTestSuite(t *testing.T) {
	suite.Run(t, new(IndicateTestSuite))
}

func TestHistory_Overflow(t *testing.T) {
	h := indicate.NewHistory(4)
	for i := 0; i < 10; i++ {
		h.Add(indicate.Record{Kind: indicate.KindAT, Event: events.UserEventsBase + events.ID(i)})
	}

	recs := h.Drain()
	if len(recs) == 0 || len(recs) > 4 {
		t.Fatalf("expected between 1 and 4 records, got %d", len(recs))
	}
	if last := recs[len(recs)-1].Event; last != events.UserEventsBase+9 {
		t.Fatalf("newest record MUST survive overflow, got %s", last)
	}
}

func TestNewLEDEngine_UnknownEvent(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	_, err := indicate.NewLEDEngine(map[string]config.LEDPattern{"EventNope": {}}, nil, nil, nil, nil, logger)
	if err == nil {
		t.Fatal("unknown event name MUST be rejected")
	}
}
