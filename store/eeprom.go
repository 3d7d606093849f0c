package store

import (
	"tinygo.org/x/drivers/at24cx"
)

// AT24C32Size is the capacity of the AT24C32 found on most DS3231 RTC boards
const AT24C32Size = 4096

// EEPROM is Storage on an AT24Cxx I2C EEPROM. The at24cx driver handles paging;
// this only adds the capacity it doesn't know about
type EEPROM struct {
	dev  *at24cx.Device
	size int64
}

var _ Storage = &EEPROM{}

// NewEEPROM wraps a configured device with the chip's capacity in bytes
func NewEEPROM(dev *at24cx.Device, size int64) *EEPROM {
	return &EEPROM{dev: dev, size: size}
}

func (e *EEPROM) Size() int64 {
	return e.size
}

func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > e.size {
		return 0, errOutOfBounds
	}
	return e.dev.ReadAt(p, off)
}

func (e *EEPROM) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > e.size {
		return 0, errOutOfBounds
	}
	return e.dev.WriteAt(p, off)
}
