package main

import (
	"fmt"
	"machine"

	"libdb.so/ledmanager/ledserial"
)

// Device stores the current state of the device.
type Device struct {
	serial SerialReadWriter
	ready  bool

	// outputs holds the pins configured by the host, indexed by GPIO number.
	outputs    [256]bool
	configured []machine.Pin
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer) *Device {
	return &Device{
		serial: WrapSerial(serial),
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	p, err := ledserial.ReadIncomingPacket(d.serial)
	if err == nil {
		flashMainLED(0, 0, 32)
	}
	return p, err
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.Version != ledserial.Version {
			return fmt.Errorf("unsupported protocol version %d, want %d", p.Version, ledserial.Version)
		}
		d.clearPins()
		d.configured = d.configured[:0]
		d.outputs = [256]bool{}
		d.ready = true
		d.log("initialized")

	case ledserial.ClearPacket:
		d.clearPins()

	case ledserial.ConfigurePacket:
		if !d.ready {
			return fmt.Errorf("configure before initialize")
		}
		pin := machine.Pin(p.Pin)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		if !d.outputs[p.Pin] {
			d.outputs[p.Pin] = true
			d.configured = append(d.configured, pin)
		}

	case ledserial.WritePacket:
		if !d.outputs[p.Pin] {
			return fmt.Errorf("write to unconfigured pin %d", p.Pin)
		}
		machine.Pin(p.Pin).Set(p.High)

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}

func (d *Device) clearPins() {
	for _, pin := range d.configured {
		pin.Low()
	}
}
