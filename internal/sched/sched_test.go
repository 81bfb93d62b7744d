package sched_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/groutine"
	"github.com/srg/bsink/internal/sched"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type recorder struct {
	v   *sched.Virtual
	got []events.ID
	at  []time.Duration
}

func newRecorder() *recorder {
	r := &recorder{v: sched.NewVirtual(quietLogger())}
	r.v.SetHandler(func(msg sched.Message) {
		r.got = append(r.got, msg.ID)
		r.at = append(r.at, r.v.Elapsed())
	})
	return r
}

func TestSendAfter_IdempotentRearm(t *testing.T) {
	r := newRecorder()

	r.v.SendAfter(events.EventAutoSwitchOff, 10*time.Second, nil)
	r.v.SendAfter(events.EventAutoSwitchOff, 20*time.Second, nil)

	assert.Equal(t, 1, r.v.Pending(events.EventAutoSwitchOff), "re-arm MUST leave exactly one instance")

	r.v.Advance(15 * time.Second)
	assert.Empty(t, r.got, "first schedule MUST have been cancelled")

	r.v.Advance(5 * time.Second)
	assert.Equal(t, []events.ID{events.EventAutoSwitchOff}, r.got)
	assert.Equal(t, []time.Duration{20 * time.Second}, r.at)
}

func TestCancelAll_RemovesQueued(t *testing.T) {
	r := newRecorder()

	r.v.Send(events.EventMissedCall, nil)
	r.v.Send(events.EventMissedCall, nil)
	r.v.SendAfter(events.EventMuteReminder, time.Second, nil)

	assert.Equal(t, 2, r.v.CancelAll(events.EventMissedCall))
	assert.Zero(t, r.v.Pending(events.EventMissedCall))
	assert.Zero(t, r.v.CancelAll(events.EventMissedCall), "second cancel MUST find nothing")

	r.v.Advance(2 * time.Second)
	assert.Equal(t, []events.ID{events.EventMuteReminder}, r.got)
}

func TestOrdering_DueThenArrival(t *testing.T) {
	r := newRecorder()

	r.v.SendAfter(events.EventLimboTimeout, 2*time.Second, nil)
	r.v.SendAfter(events.EventMuteReminder, time.Second, nil)
	r.v.Send(events.EventPowerOn, nil)
	r.v.Send(events.EventVolumeUp, nil)
	r.v.SendAfter(events.EventRefreshEncryption, time.Second, nil)

	r.v.Advance(3 * time.Second)

	assert.Equal(t, []events.ID{
		events.EventPowerOn,
		events.EventVolumeUp,
		events.EventMuteReminder,
		events.EventRefreshEncryption,
		events.EventLimboTimeout,
	}, r.got)
}

func TestRunUntilIdle_DeliversHandlerSends(t *testing.T) {
	v := sched.NewVirtual(quietLogger())
	var got []events.ID
	v.SetHandler(func(msg sched.Message) {
		got = append(got, msg.ID)
		if msg.ID == events.EventPowerOn {
			v.Send(events.EventLEDsOn, nil)
			v.SendAfter(events.EventAutoSwitchOff, time.Minute, nil)
		}
	})

	v.Send(events.EventPowerOn, nil)
	n := v.RunUntilIdle()

	assert.Equal(t, 2, n)
	assert.Equal(t, []events.ID{events.EventPowerOn, events.EventLEDsOn}, got)
	assert.Equal(t, 1, v.Pending(events.EventAutoSwitchOff))
	assert.Zero(t, v.Elapsed(), "idle run MUST NOT advance the clock")
}

func TestSelfRescheduling(t *testing.T) {
	v := sched.NewVirtual(quietLogger())
	count := 0
	v.SetHandler(func(msg sched.Message) {
		count++
		if count < 4 {
			v.SendAfter(msg.ID, 100*time.Millisecond, nil)
		}
	})

	v.SendAfter(events.EventMuteReminder, 100*time.Millisecond, nil)
	v.Advance(time.Second)

	assert.Equal(t, 4, count)
	assert.Zero(t, v.Pending(events.EventMuteReminder))
}

func TestPeriodic(t *testing.T) {
	t.Run("fixed period until stopped", func(t *testing.T) {
		r := newRecorder()
		task := r.v.StartPeriodic(events.EventAccelSample, sched.Every(100*time.Millisecond))

		r.v.Advance(350 * time.Millisecond)
		assert.Len(t, r.got, 3)
		assert.Equal(t, 1, r.v.Pending(events.EventAccelSample), "periodic task MUST keep one instance queued")

		task.Stop()
		assert.False(t, task.Active())
		assert.Zero(t, r.v.Pending(events.EventAccelSample))

		r.v.Advance(time.Second)
		assert.Len(t, r.got, 3)

		task.Stop()
	})

	t.Run("bounded repeats", func(t *testing.T) {
		r := newRecorder()
		task := r.v.StartPeriodic(events.EventMissedCall, sched.Times(time.Second, 3))

		r.v.Advance(10 * time.Second)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, r.at)
		assert.False(t, task.Active())
		assert.Zero(t, r.v.Pending(events.EventMissedCall))
	})

	t.Run("variable period sees handler state", func(t *testing.T) {
		v := sched.NewVirtual(quietLogger())
		step := 1
		var at []time.Duration
		v.SetHandler(func(msg sched.Message) {
			at = append(at, v.Elapsed())
			step++
		})
		v.StartPeriodic(events.EventELPatternTick, func() (time.Duration, bool) {
			return time.Duration(step) * 10 * time.Millisecond, step < 4
		})

		v.Advance(time.Second)
		// delays 10, 20, 30, 40ms: the last one is final
		assert.Equal(t, []time.Duration{
			10 * time.Millisecond,
			30 * time.Millisecond,
			60 * time.Millisecond,
			100 * time.Millisecond,
		}, at)
	})

	t.Run("cancel all stops the task", func(t *testing.T) {
		r := newRecorder()
		task := r.v.StartPeriodic(events.EventRefreshEncryption, sched.Every(time.Second))

		r.v.CancelAll(events.EventRefreshEncryption)
		assert.False(t, task.Active())

		r.v.Advance(5 * time.Second)
		assert.Empty(t, r.got)
	})

	t.Run("send after replaces the task", func(t *testing.T) {
		r := newRecorder()
		task := r.v.StartPeriodic(events.EventAvrcpFastForwardRepeat, sched.Every(time.Second))

		r.v.SendAfter(events.EventAvrcpFastForwardRepeat, 500*time.Millisecond, nil)
		assert.False(t, task.Active())
		assert.Equal(t, 1, r.v.Pending(events.EventAvrcpFastForwardRepeat))

		r.v.Advance(5 * time.Second)
		assert.Len(t, r.got, 1)
	})

	t.Run("restarting keeps a single instance", func(t *testing.T) {
		r := newRecorder()
		first := r.v.StartPeriodic(events.EventLinkLossReconnect, sched.Every(time.Second))
		second := r.v.StartPeriodic(events.EventLinkLossReconnect, sched.Every(time.Second))

		assert.False(t, first.Active())
		assert.True(t, second.Active())
		assert.Equal(t, 1, r.v.Pending(events.EventLinkLossReconnect))
		assert.Equal(t, events.EventLinkLossReconnect, second.ID())
	})

	t.Run("handler stopping its own task", func(t *testing.T) {
		v := sched.NewVirtual(quietLogger())
		var task *sched.Task
		count := 0
		v.SetHandler(func(msg sched.Message) {
			count++
			if count == 2 {
				task.Stop()
			}
		})
		task = v.StartPeriodic(events.EventAvrcpRewindRepeat, sched.Every(time.Second))

		v.Advance(10 * time.Second)
		assert.Equal(t, 2, count)
		assert.Zero(t, v.Pending(events.EventAvrcpRewindRepeat))
	})
}

func TestVirtual_NoHandler(t *testing.T) {
	v := sched.NewVirtual(quietLogger())
	v.Send(events.EventPowerOn, nil)

	assert.Equal(t, 1, v.RunUntilIdle())
	assert.Zero(t, v.Len())
}

func TestRealtime_Run(t *testing.T) {
	r := sched.NewRealtime(quietLogger())
	got := make(chan sched.Message, 4)
	onLoop := make(chan bool, 4)
	r.SetHandler(func(msg sched.Message) {
		onLoop <- r.OnDispatchGoroutine()
		got <- msg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	groutine.Go(ctx, "sink-dispatch", func(ctx context.Context) {
		done <- r.Run(ctx)
	})

	r.SendAfter(events.EventMuteReminder, 30*time.Millisecond, nil)
	r.Post(events.EventPowerOn, "payload")

	select {
	case msg := <-got:
		assert.Equal(t, events.EventPowerOn, msg.ID)
		assert.Equal(t, "payload", msg.Payload)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "posted message MUST be delivered")
	}
	assert.True(t, <-onLoop, "handler MUST run on the dispatch goroutine")

	select {
	case msg := <-got:
		assert.Equal(t, events.EventMuteReminder, msg.ID)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "deferred message MUST be delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "run MUST stop on cancel")
	}
}
