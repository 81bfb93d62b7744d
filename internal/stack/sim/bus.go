package sim

import (
	"fmt"
	"sync"

	"github.com/srg/bsink/internal/periph"
)

// Bus simulates the peripheral serial bus. Slaves marked absent NACK.
type Bus struct {
	j      *Journal
	mu     sync.Mutex
	absent map[uint8]bool
	writes int
}

// NewBus creates a bus on which every slave acknowledges.
func NewBus(j *Journal) *Bus {
	return &Bus{j: j, absent: make(map[uint8]bool)}
}

// Remove makes the slave at addr stop acknowledging.
func (b *Bus) Remove(addr uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.absent[addr] = true
}

// Write records the transfer and NACKs for absent slaves.
func (b *Bus) Write(addr uint8, data []byte) error {
	b.mu.Lock()
	b.writes++
	absent := b.absent[addr]
	b.mu.Unlock()

	if err := b.j.record("bus.Write", fmt.Sprintf("0x%02X", addr), fmt.Sprintf("% X", data)); err != nil {
		return err
	}
	if absent {
		return periph.ErrNack
	}
	return nil
}

// Writes counts attempted transfers.
func (b *Bus) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Pin simulates an enable line.
type Pin struct {
	j    *Journal
	name string
	High bool
}

// NewPin creates a low pin.
func NewPin(j *Journal, name string) *Pin {
	return &Pin{j: j, name: name}
}

func (p *Pin) Set(high bool) error {
	if err := p.j.record("pin.Set", p.name, high); err != nil {
		return err
	}
	p.High = high
	return nil
}
