// Package periph drives the peripherals hanging off the serial bus: the
// ISA1200 vibration motor driver and the MAX14521E EL panel driver. Bus
// failures are logged and returned, never retried; a missing peripheral must
// not stop the device.
package periph

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNack is returned when a slave does not acknowledge a write.
var ErrNack = errors.New("bus nack")

// Bus writes bytes to an 8-bit slave address and reports the acknowledge.
type Bus interface {
	Write(addr uint8, data []byte) error
}

// Pin is a power or enable line.
type Pin interface {
	Set(high bool) error
}

// Reg is one register write of a programming sequence.
type Reg struct {
	Addr  uint8
	Value uint8
}

// writer runs register sequences for one slave.
type writer struct {
	name   string
	bus    Bus
	slave  uint8
	delay  func(time.Duration)
	logger *logrus.Logger
}

// write programs regs in order. A failed write is logged and the sequence
// continues; the failures are returned joined.
func (w *writer) write(regs ...Reg) error {
	var errs []error
	for _, r := range regs {
		if err := w.bus.Write(w.slave, []byte{r.Addr, r.Value}); err != nil {
			w.logger.WithFields(logrus.Fields{
				"device": w.name,
				"slave":  fmt.Sprintf("0x%02X", w.slave),
				"reg":    fmt.Sprintf("0x%02X", r.Addr),
			}).WithError(err).Warn("Peripheral register write failed")
			errs = append(errs, fmt.Errorf("%s reg 0x%02X: %w", w.name, r.Addr, err))
		}
	}
	return errors.Join(errs...)
}

// setPin drives a line and waits the settle time.
func (w *writer) setPin(p Pin, high bool, settle time.Duration) error {
	if p == nil {
		return nil
	}
	if err := p.Set(high); err != nil {
		w.logger.WithField("device", w.name).WithError(err).Warn("Peripheral pin change failed")
		return fmt.Errorf("%s pin: %w", w.name, err)
	}
	if settle > 0 && w.delay != nil {
		w.delay(settle)
	}
	return nil
}

// Options configure a driver.
type Options struct {
	Bus    Bus
	Enable Pin
	// Delay performs the settle waits. Defaults to time.Sleep.
	Delay  func(time.Duration)
	Logger *logrus.Logger
}

func (o Options) writer(name string, slave uint8) *writer {
	delay := o.Delay
	if delay == nil {
		delay = time.Sleep
	}
	logger := o.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &writer{name: name, bus: o.Bus, slave: slave, delay: delay, logger: logger}
}
