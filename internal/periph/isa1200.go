package periph

import (
	"errors"
	"time"
)

// ISA1200 slave address and registers
const (
	ISA1200Addr uint8 = 0x90

	isaRegControl0 uint8 = 0x30
	isaRegControl1 uint8 = 0x31
	isaRegControl2 uint8 = 0x32
	isaRegControl3 uint8 = 0x33
	isaRegControl4 uint8 = 0x34
	isaRegDuty     uint8 = 0x35
	isaRegPeriod   uint8 = 0x36

	isaSettle = 200 * time.Microsecond

	// DefaultDuty is the PWM duty programmed at enable.
	DefaultDuty uint8 = 0x40
)

// ISA1200 is the haptic motor driver.
type ISA1200 struct {
	w       *writer
	pin     Pin
	enabled bool
	on      bool
	duty    uint8
}

// NewISA1200 creates a disabled vibration driver.
func NewISA1200(opts Options) *ISA1200 {
	return &ISA1200{
		w:    opts.writer("isa1200", ISA1200Addr),
		pin:  opts.Enable,
		duty: DefaultDuty,
	}
}

// Enable powers the driver and programs the PWM engine.
func (v *ISA1200) Enable() error {
	pinErr := v.w.setPin(v.pin, true, isaSettle)
	err := v.w.write(
		Reg{isaRegControl0, 0x11},
		Reg{isaRegControl1, 0xC0},
		Reg{isaRegControl2, 0x00},
		Reg{isaRegControl3, 0x13},
		Reg{isaRegControl4, 0x00},
		Reg{isaRegPeriod, 0x74},
		Reg{isaRegDuty, v.duty},
	)
	v.enabled = true
	return errors.Join(pinErr, err)
}

// Disable stops the motor and removes power.
func (v *ISA1200) Disable() error {
	err := v.w.write(Reg{isaRegControl0, 0x00})
	pinErr := v.w.setPin(v.pin, false, 0)
	v.enabled = false
	v.on = false
	return errors.Join(err, pinErr)
}

// On starts the motor.
func (v *ISA1200) On() error {
	err := v.w.write(Reg{isaRegControl0, 0x91})
	v.on = true
	return err
}

// Off stops the motor.
func (v *ISA1200) Off() error {
	err := v.w.write(Reg{isaRegControl0, 0x11})
	v.on = false
	return err
}

// Toggle enables and starts the motor when idle, otherwise stops and
// disables it.
func (v *ISA1200) Toggle() error {
	if v.on {
		return errors.Join(v.Off(), v.Disable())
	}
	var err error
	if !v.enabled {
		err = v.Enable()
	}
	return errors.Join(err, v.On())
}

// SetDuty reprograms the PWM duty cycle.
func (v *ISA1200) SetDuty(duty uint8) error {
	v.duty = duty
	if !v.enabled {
		return nil
	}
	return v.w.write(Reg{isaRegDuty, duty})
}

// Enabled reports whether the driver is powered.
func (v *ISA1200) Enabled() bool { return v.enabled }

// Running reports whether the motor is on.
func (v *ISA1200) Running() bool { return v.on }

// Duty returns the programmed duty cycle.
func (v *ISA1200) Duty() uint8 { return v.duty }
