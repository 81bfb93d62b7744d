// Package atlink carries unsolicited AT notifications out of the sink.
//
// A Link queues whole lines in a byte ring and a background goroutine drains
// the ring into an Endpoint (pseudo-terminal, serial port or plain writer).
// WriteLine never blocks the dispatch loop: when the ring cannot take a whole
// line the line is dropped and counted.
//
//	ep, err := atlink.OpenPTY()
//	if err != nil {
//	    return err
//	}
//	link := atlink.New(ep, atlink.Options{Logger: logger})
//	defer link.Close()
//	// ep.Name() -> "/dev/pts/X", attach a terminal there
//	link.WriteLine("+BSINK: POWER_ON")
package atlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smallnest/ringbuffer"
	"github.com/srg/bsink/internal/groutine"
)

// ErrBufferFull is returned when a line does not fit in the output ring.
var ErrBufferFull = errors.New("at link buffer full")

// Endpoint is where queued bytes end up.
type Endpoint interface {
	io.WriteCloser
	Name() string
}

// Options configures a Link. Zero values use the defaults.
type Options struct {
	Capacity     int            // output ring size in bytes
	Logger       *logrus.Logger // nil discards
	CloseTimeout time.Duration  // how long Close waits for the writer to flush
}

const (
	DefaultCapacity     = 4096
	DefaultCloseTimeout = time.Second
)

// Stats are runtime counters of a Link.
type Stats struct {
	Queued       int
	Capacity     int
	LinesQueued  uint64
	LinesDropped uint64
	BytesWritten uint64
}

// Link is a non-blocking line writer. WriteLine may be called from one
// goroutine at a time; Stats and Close from any.
type Link struct {
	ep     Endpoint
	buf    *ringbuffer.RingBuffer
	notify chan struct{}
	logger *logrus.Logger

	cancel       context.CancelFunc
	done         chan struct{}
	closeTimeout time.Duration
	closeOnce    sync.Once
	closed       uint32

	linesQueued  uint64
	linesDropped uint64
	bytesWritten uint64
}

var noopLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// New starts a Link draining into ep.
func New(ep Endpoint, opts Options) *Link {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = DefaultCloseTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Link{
		ep:           ep,
		buf:          ringbuffer.New(opts.Capacity),
		notify:       make(chan struct{}, 1),
		logger:       logger,
		cancel:       cancel,
		done:         make(chan struct{}),
		closeTimeout: opts.CloseTimeout,
	}

	groutine.Go(ctx, "at-link-writer", func(ctx context.Context) {
		l.writeLoop(ctx)
	})
	return l
}

// Name returns the endpoint name.
func (l *Link) Name() string {
	return l.ep.Name()
}

// WriteLine queues line framed as an unsolicited result code.
func (l *Link) WriteLine(line string) error {
	if atomic.LoadUint32(&l.closed) == 1 {
		return io.ErrClosedPipe
	}
	frame := []byte("\r\n" + line + "\r\n")

	if l.buf.Capacity()-l.buf.Length() < len(frame) {
		atomic.AddUint64(&l.linesDropped, 1)
		l.logger.WithFields(logrus.Fields{
			"endpoint": l.ep.Name(),
			"bytes":    len(frame),
		}).Warn("AT link buffer full, line dropped")
		return ErrBufferFull
	}

	n, err := l.buf.Write(frame)
	if err != nil && !errors.Is(err, ringbuffer.ErrIsFull) {
		return fmt.Errorf("at link queue: %w", err)
	}
	if n < len(frame) {
		atomic.AddUint64(&l.linesDropped, 1)
		return ErrBufferFull
	}

	atomic.AddUint64(&l.linesQueued, 1)

	select {
	case l.notify <- struct{}{}:
	default:
	}
	return nil
}

func (l *Link) writeLoop(ctx context.Context) {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("AT link writer panicked (recovered): %v", r)
		}
	}()

	chunk := make([]byte, 512)
	for {
		select {
		case <-ctx.Done():
			_ = l.flush(chunk)
			return
		case <-l.notify:
		}
		if err := l.flush(chunk); err != nil {
			l.logger.WithField("endpoint", l.ep.Name()).WithError(err).Warn("AT link writer stopped")
			return
		}
	}
}

// flush drains the ring into the endpoint.
func (l *Link) flush(chunk []byte) error {
	for {
		n, err := l.buf.TryRead(chunk)
		if err != nil && !errors.Is(err, ringbuffer.ErrIsEmpty) {
			return err
		}
		if n == 0 {
			return nil
		}

		written, err := l.ep.Write(chunk[:n])
		atomic.AddUint64(&l.bytesWritten, uint64(written))
		if err != nil {
			return fmt.Errorf("write %s: %w", l.ep.Name(), err)
		}
	}
}

// Stats returns instantaneous counters.
func (l *Link) Stats() Stats {
	return Stats{
		Queued:       l.buf.Length(),
		Capacity:     l.buf.Capacity(),
		LinesQueued:  atomic.LoadUint64(&l.linesQueued),
		LinesDropped: atomic.LoadUint64(&l.linesDropped),
		BytesWritten: atomic.LoadUint64(&l.bytesWritten),
	}
}

// Close flushes what is queued, stops the writer and closes the endpoint.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		atomic.StoreUint32(&l.closed, 1)
		l.cancel()

		select {
		case <-l.done:
		case <-time.After(l.closeTimeout):
			l.logger.WithField("endpoint", l.ep.Name()).Warnf("AT link writer did not finish within %v", l.closeTimeout)
		}

		if cerr := l.ep.Close(); cerr != nil {
			err = fmt.Errorf("close %s: %w", l.ep.Name(), cerr)
		}
	})
	return err
}
