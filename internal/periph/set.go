package periph

import (
	"errors"
)

// Accelerometer slave address and registers
const (
	AccelAddr uint8 = 0x30

	accelRegCtrl1 uint8 = 0x20
	accelRegCtrl3 uint8 = 0x22
)

// Accelerometer is the activity sensor. Only its write path is driven:
// sampling triggers a conversion and counts it.
type Accelerometer struct {
	w       *writer
	running bool
	samples int
}

// NewAccelerometer creates a stopped accelerometer.
func NewAccelerometer(opts Options) *Accelerometer {
	return &Accelerometer{w: opts.writer("accel", AccelAddr)}
}

// Start puts the sensor in low-power sampling mode.
func (a *Accelerometer) Start() error {
	a.running = true
	return a.w.write(Reg{accelRegCtrl1, 0x2F}, Reg{accelRegCtrl3, 0x40})
}

// Stop powers the sensor down.
func (a *Accelerometer) Stop() error {
	a.running = false
	return a.w.write(Reg{accelRegCtrl1, 0x00})
}

// Sample triggers one conversion.
func (a *Accelerometer) Sample() error {
	if !a.running {
		return nil
	}
	a.samples++
	return a.w.write(Reg{accelRegCtrl1, 0x2F})
}

// Running reports whether sampling is on.
func (a *Accelerometer) Running() bool { return a.running }

// Samples counts triggered conversions.
func (a *Accelerometer) Samples() int { return a.samples }

// Set holds the fitted peripherals. Missing ones are nil.
type Set struct {
	Vibration *ISA1200
	EL        *MAX14521E
	Accel     *Accelerometer
}

// Fitted selects which peripherals exist.
type Fitted struct {
	Vibration bool
	EL        bool
	Accel     bool
}

// NewSet builds drivers for the fitted peripherals sharing opts.Bus. Each
// driver gets its own enable pin.
func NewSet(fitted Fitted, opts Options, vibrationPin, elPin Pin) *Set {
	s := &Set{}
	if fitted.Vibration {
		o := opts
		o.Enable = vibrationPin
		s.Vibration = NewISA1200(o)
	}
	if fitted.EL {
		o := opts
		o.Enable = elPin
		s.EL = NewMAX14521E(o)
	}
	if fitted.Accel {
		s.Accel = NewAccelerometer(opts)
	}
	return s
}

// Shutdown switches every fitted peripheral off. All drivers are attempted.
func (s *Set) Shutdown() error {
	var errs []error
	if s.Vibration != nil && s.Vibration.Enabled() {
		errs = append(errs, s.Vibration.Disable())
	}
	if s.EL != nil && s.EL.Enabled() {
		s.EL.ResetPattern()
		errs = append(errs, s.EL.Disable())
	}
	if s.Accel != nil && s.Accel.Running() {
		errs = append(errs, s.Accel.Stop())
	}
	return errors.Join(errs...)
}
