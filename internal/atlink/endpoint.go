package atlink

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creack/pty"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// ptyEndpoint is the master side of a pseudo-terminal pair. The slave stays
// open for the lifetime of the endpoint so the device node persists.
type ptyEndpoint struct {
	master *os.File
	slave  *os.File
}

// OpenPTY creates a raw-mode pseudo-terminal. Name returns the slave path a
// terminal program can attach to.
func OpenPTY() (Endpoint, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to create PTY (check permissions and available PTY devices): %w", err)
	}

	if _, err := term.MakeRaw(int(slave.Fd())); err != nil {
		cleanup := errors.Join(master.Close(), slave.Close())
		if cleanup != nil {
			return nil, fmt.Errorf("failed to set PTY %s to raw mode: %w (cleanup errors: %v)", slave.Name(), err, cleanup)
		}
		return nil, fmt.Errorf("failed to set PTY %s to raw mode: %w", slave.Name(), err)
	}
	return &ptyEndpoint{master: master, slave: slave}, nil
}

func (p *ptyEndpoint) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

func (p *ptyEndpoint) Name() string {
	return p.slave.Name()
}

func (p *ptyEndpoint) Close() error {
	return errors.Join(p.master.Close(), p.slave.Close())
}

// serialEndpoint writes to a serial port.
type serialEndpoint struct {
	port serial.Port
	name string
}

// DefaultBaudRate is used when OpenSerial is given zero.
const DefaultBaudRate = 115200

// OpenSerial opens a serial port at 8N1.
func OpenSerial(name string, baudRate int) (Endpoint, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &serialEndpoint{port: port, name: name}, nil
}

func (s *serialEndpoint) Write(b []byte) (int, error) {
	return s.port.Write(b)
}

func (s *serialEndpoint) Name() string {
	return s.name
}

func (s *serialEndpoint) Close() error {
	return s.port.Close()
}

// writerEndpoint adapts an io.Writer. Close closes the writer only if it is
// an io.Closer.
type writerEndpoint struct {
	w    io.Writer
	name string
}

// WriterEndpoint wraps w under the given name.
func WriterEndpoint(w io.Writer, name string) Endpoint {
	return &writerEndpoint{w: w, name: name}
}

func (w *writerEndpoint) Write(b []byte) (int, error) {
	return w.w.Write(b)
}

func (w *writerEndpoint) Name() string {
	return w.name
}

func (w *writerEndpoint) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
