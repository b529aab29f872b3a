package serterm

import "go.bug.st/serial"

// ListPorts returns the device paths of the serial ports present on the
// system, in enumeration order.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
