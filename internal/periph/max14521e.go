package periph

import (
	"errors"
	"fmt"
	"time"
)

// MAX14521E slave address and registers
const (
	MAX14521EAddr uint8 = 0xF0

	elRegPower     uint8 = 0x01
	elRegFrequency uint8 = 0x02
	elRegShape     uint8 = 0x03
	elRegBoost     uint8 = 0x04
	elRegEL1       uint8 = 0x05
	elRegEL2       uint8 = 0x06

	elSettle = 500 * time.Microsecond

	elLevelOn  uint8 = 0xFF
	elLevelOff uint8 = 0x00
)

// Pattern is the EL blink pattern. Pattern0 is steady light; higher patterns
// blink with a toggle interval of pattern * base interval.
type Pattern int

const (
	Pattern0 Pattern = iota
	Pattern1
	Pattern2
	Pattern3
	Pattern4

	patternCount = 5
)

func (p Pattern) String() string {
	return fmt.Sprintf("PATTERN_%d", int(p))
}

// MAX14521E is the EL panel ramp driver.
type MAX14521E struct {
	w       *writer
	pin     Pin
	enabled bool
	lit     bool
	pattern Pattern
}

// NewMAX14521E creates a disabled EL driver at Pattern0.
func NewMAX14521E(opts Options) *MAX14521E {
	return &MAX14521E{
		w:   opts.writer("max14521e", MAX14521EAddr),
		pin: opts.Enable,
	}
}

// Enable powers the driver and programs the boost converter.
func (e *MAX14521E) Enable() error {
	pinErr := e.w.setPin(e.pin, true, elSettle)
	err := e.w.write(
		Reg{elRegPower, 0x01},
		Reg{elRegFrequency, 0x44},
		Reg{elRegShape, 0x07},
		Reg{elRegBoost, 0x1B},
	)
	e.enabled = true
	return errors.Join(pinErr, err)
}

// Disable darkens the panel and removes power.
func (e *MAX14521E) Disable() error {
	err := e.Off()
	pwrErr := e.w.write(Reg{elRegPower, 0x00})
	pinErr := e.w.setPin(e.pin, false, 0)
	e.enabled = false
	return errors.Join(err, pwrErr, pinErr)
}

// On lights the panel.
func (e *MAX14521E) On() error {
	err := e.w.write(Reg{elRegEL1, elLevelOn}, Reg{elRegEL2, elLevelOn})
	e.lit = true
	return err
}

// Off darkens the panel.
func (e *MAX14521E) Off() error {
	err := e.w.write(Reg{elRegEL1, elLevelOff}, Reg{elRegEL2, elLevelOff})
	e.lit = false
	return err
}

// Toggle flips the panel between lit and dark.
func (e *MAX14521E) Toggle() error {
	if e.lit {
		return e.Off()
	}
	return e.On()
}

// NextPattern advances the pattern, wrapping from Pattern4 to Pattern0.
func (e *MAX14521E) NextPattern() Pattern {
	e.pattern = (e.pattern + 1) % patternCount
	return e.pattern
}

// ResetPattern returns to steady light.
func (e *MAX14521E) ResetPattern() {
	e.pattern = Pattern0
}

// SetPattern selects a pattern directly.
func (e *MAX14521E) SetPattern(p Pattern) {
	if p < Pattern0 || p > Pattern4 {
		p = Pattern0
	}
	e.pattern = p
}

// TickInterval returns the toggle interval of the current pattern and
// whether the panel should blink at all.
func (e *MAX14521E) TickInterval(base time.Duration) (time.Duration, bool) {
	if !e.enabled || e.pattern == Pattern0 {
		return 0, false
	}
	return time.Duration(e.pattern) * base, true
}

// Pattern returns the current pattern.
func (e *MAX14521E) Pattern() Pattern { return e.pattern }

// Enabled reports whether the driver is powered.
func (e *MAX14521E) Enabled() bool { return e.enabled }

// Lit reports whether the panel is on.
func (e *MAX14521E) Lit() bool { return e.lit }
