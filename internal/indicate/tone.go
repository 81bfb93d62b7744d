package indicate

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/stack"
)

// ToneEngine plays per-event tones and voice prompts. The amplifier line is
// held from the start of a tone until the audio plugin reports completion.
type ToneEngine struct {
	table  map[events.ID]string
	audio  stack.Audio
	amp    *AmpLine
	dev    *device.DeviceState
	logger *logrus.Logger

	playing int
}

// NewToneEngine resolves the tone table.
func NewToneEngine(table map[string]string, audio stack.Audio, amp *AmpLine, dev *device.DeviceState, logger *logrus.Logger) (*ToneEngine, error) {
	t, err := resolve(table)
	if err != nil {
		return nil, err
	}
	return &ToneEngine{table: t, audio: audio, amp: amp, dev: dev, logger: logger}, nil
}

// Indicate starts the tone for id.
func (e *ToneEngine) Indicate(id events.ID) (string, bool, error) {
	tone, ok := e.table[id]
	if !ok {
		return "", false, nil
	}
	if !e.dev.Flags.AudioPromptsEnabled {
		e.logger.WithField("event", id).Debug("Audio prompts disabled, tone skipped")
		return "", false, nil
	}

	if err := e.amp.Acquire(OwnerTone); err != nil {
		return "", false, fmt.Errorf("tone amplifier: %w", err)
	}
	if err := e.audio.PlayTone(tone); err != nil {
		if e.playing == 0 {
			_ = e.amp.Release(OwnerTone)
		}
		return "", false, fmt.Errorf("tone %s: %w", tone, err)
	}
	e.playing++
	return tone, true, nil
}

// Playing counts tones started and not yet completed.
func (e *ToneEngine) Playing() int {
	return e.playing
}

// Complete handles one tone completion. The line is released with the last
// outstanding tone.
func (e *ToneEngine) Complete() error {
	if e.playing == 0 {
		return nil
	}
	e.playing--
	if e.playing > 0 {
		return nil
	}
	return e.amp.Release(OwnerTone)
}
