// Package kiosk runs the bin-side listener: a hardware trigger fires a
// webcam snapshot, the material heuristic picks bottle or paper, and a
// reward token is minted through the server API.
package kiosk

import (
	"bufio"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// Trigger yields once each time the bin sensor fires.
type Trigger interface {
	// Next blocks until the trigger value is read, or returns an error
	// when the underlying source is closed or fails.
	Next() error
	Close() error
}

// SerialTrigger reads line-oriented sensor output from a serial port and
// fires on lines equal to the configured value.
type SerialTrigger struct {
	port  serial.Port
	r     *bufio.Reader
	value string
}

// OpenSerialTrigger opens the port at the given baud rate.
func OpenSerialTrigger(portName string, baud int, value string) (*SerialTrigger, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return &SerialTrigger{
		port:  port,
		r:     bufio.NewReader(port),
		value: value,
	}, nil
}

// Next reads lines until one matches the trigger value. A read error is
// returned but does not poison the trigger: the port stays open and the
// next call reads from it again, so the caller can retry after a pause.
func (t *SerialTrigger) Next() error {
	for {
		line, err := t.r.ReadString('\n')
		if strings.TrimSpace(line) == t.value {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close releases the serial port, unblocking a pending Next.
func (t *SerialTrigger) Close() error {
	return t.port.Close()
}
