package pins

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/ledmanager/ledserial"
	"periph.io/x/conn/v3/gpio"
)

// ErrQueueFull is returned by Serial.Write when the controller link is
// backed up. The write is dropped.
var ErrQueueFull = errors.New("serial: write queue full")

// ErrClosed is returned by Serial after Close.
var ErrClosed = errors.New("serial: driver closed")

const serialQueueSize = 64

// Serial drives the pins of a microcontroller speaking the ledserial
// protocol. Writes are queued and sent by Run, so a timer callback never
// waits on the UART.
type Serial struct {
	port   io.ReadWriteCloser
	logger *slog.Logger
	queue  chan ledserial.IncomingPacket

	dropped atomic.Uint64
	acked   atomic.Uint64

	closeOnce sync.Once
	closed    chan struct{}
}

var _ Driver = (*Serial)(nil)

// OpenSerial opens the serial device and wraps it in a Serial driver.
func OpenSerial(device string, baud int, logger *slog.Logger) (*Serial, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}
	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}
	return NewSerial(port, logger), nil
}

// NewSerial wraps an already open link. The initialize packet is queued
// immediately; nothing is sent until Run is called.
func NewSerial(port io.ReadWriteCloser, logger *slog.Logger) *Serial {
	s := &Serial{
		port:   port,
		logger: logger,
		queue:  make(chan ledserial.IncomingPacket, serialQueueSize),
		closed: make(chan struct{}),
	}
	s.queue <- ledserial.InitializePacket{Version: ledserial.Version}
	return s
}

// ConfigureOutput implements Driver. Unlike Write, it waits for room in the
// queue.
func (s *Serial) ConfigureOutput(p Pin) error {
	select {
	case s.queue <- ledserial.ConfigurePacket{Pin: uint8(p)}:
		return nil
	case <-s.closed:
		return ErrClosed
	}
}

// Write implements Driver.
func (s *Serial) Write(p Pin, l gpio.Level) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}

	select {
	case s.queue <- ledserial.WritePacket{Pin: uint8(p), High: bool(l)}:
		return nil
	default:
		s.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped returns the number of writes dropped because the queue was full.
func (s *Serial) Dropped() uint64 {
	return s.dropped.Load()
}

// Acked returns the number of packets the controller acknowledged.
func (s *Serial) Acked() uint64 {
	return s.acked.Load()
}

// Run sends queued packets and handles packets from the controller until ctx
// is canceled or the link fails.
func (s *Serial) Run(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	flushed := make(chan struct{})

	errg.Go(func() error {
		select {
		case <-ctx.Done():
		case <-s.closed:
		}
		<-flushed
		s.logger.Debug("closing serial port")
		if err := s.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		defer close(flushed)
		return s.writePackets(ctx)
	})
	errg.Go(func() error {
		return s.readPackets(ctx)
	})
	return errg.Wait()
}

// Close closes the link. Pending writes are discarded.
func (s *Serial) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.port.Close()
	})
	return err
}

func (s *Serial) writePackets(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		case <-s.closed:
			return nil
		case p := <-s.queue:
			if err := ledserial.WriteIncomingPacket(s.port, p); err != nil {
				return errors.Wrapf(err, "failed to write %s packet", p.Type())
			}
		}
	}
}

// flush sends whatever is still queued, so that writes made just before
// shutdown reach the controller.
func (s *Serial) flush() {
	for {
		select {
		case p := <-s.queue:
			if err := ledserial.WriteIncomingPacket(s.port, p); err != nil {
				s.logger.Debug("dropping queued packets", "error", err)
				return
			}
		default:
			return
		}
	}
}

func (s *Serial) readPackets(ctx context.Context) error {
	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(s.port)
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
			}
			// A short read indicates a timeout. This is expected.
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			s.acked.Add(1)
			s.logger.Debug(
				"controller acked packet",
				"acked_for", p.IncomingPacketType)

		case ledserial.ErrorPacket:
			s.logger.Warn(
				"received error packet from controller",
				"message", p.Message)

		case ledserial.PanicPacket:
			s.logger.Error("controller unrecoverably panicked")
			return errors.New("controller panicked")

		case ledserial.LogPacket:
			s.logger.Info(
				"received log packet from controller",
				"message", p.Message)
		}
	}

	return ctx.Err()
}
