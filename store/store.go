// Package store persists learned IR codes in byte-addressable non-volatile
// memory. Slot i occupies Width bytes at offset i*Width, little-endian
package store

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"

	"github.com/calvinmclean/irbutton"
)

// Width is the number of bytes used per slot
const Width = 4

var (
	// ErrCapacity is returned when the slot table doesn't fit in the storage
	ErrCapacity = errors.New("slot table exceeds storage capacity")
	// ErrSlot is returned for a slot index outside of the table
	ErrSlot = errors.New("slot out of range")
	// ErrVerify is returned when a saved code doesn't read back identically
	ErrVerify = errors.New("stored code did not verify")
)

// Storage is byte-addressable non-volatile memory with a fixed capacity
type Storage interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}

// SlotError adds the slot index to a store failure
type SlotError struct {
	Slot int
	Err  error
}

func (e *SlotError) Error() string {
	return "slot " + strconv.Itoa(e.Slot) + ": " + e.Err.Error()
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// detailError annotates a sentinel error without hiding it from errors.Is
type detailError struct {
	err    error
	detail string
}

func (e *detailError) Error() string {
	return e.err.Error() + ": " + e.detail
}

func (e *detailError) Unwrap() error {
	return e.err
}

// Store reads and writes learned codes
type Store struct {
	storage Storage
	slots   int
}

// New creates a Store for the number of slots. It fails with ErrCapacity if the
// required byte range does not fit in storage
func New(storage Storage, slots int) (*Store, error) {
	if slots <= 0 {
		return nil, errors.New("slot count must be positive")
	}

	required := int64(slots) * Width
	if required > storage.Size() {
		return nil, &detailError{
			err:    ErrCapacity,
			detail: "need " + strconv.FormatInt(required, 10) + " bytes, have " + strconv.FormatInt(storage.Size(), 10),
		}
	}

	return &Store{storage: storage, slots: slots}, nil
}

// Slots returns the number of slots in the table
func (s *Store) Slots() int {
	return s.slots
}

// Load reads the code for slot. A slot that has never been written, or was
// cleared, returns irbutton.CodeNone
func (s *Store) Load(slot int) (irbutton.Code, error) {
	if err := s.checkSlot(slot); err != nil {
		return irbutton.CodeNone, err
	}

	code, err := s.read(slot)
	if err != nil {
		return irbutton.CodeNone, err
	}

	if !code.Valid() {
		return irbutton.CodeNone, nil
	}
	return code, nil
}

// Save writes the code for slot, then reads it back to confirm
func (s *Store) Save(slot int, code irbutton.Code) error {
	if err := s.checkSlot(slot); err != nil {
		return err
	}

	if err := s.write(slot, code); err != nil {
		return err
	}

	stored, err := s.read(slot)
	if err != nil {
		return err
	}
	if stored != code {
		return &SlotError{Slot: slot, Err: &detailError{err: ErrVerify, detail: "wrote " + code.String() + ", read " + stored.String()}}
	}

	return nil
}

// Clear resets slot to the erased pattern
func (s *Store) Clear(slot int) error {
	return s.Save(slot, irbutton.CodeErased)
}

// LoadAll reads every slot, used to seed the in-memory table at boot
func (s *Store) LoadAll() ([]irbutton.Code, error) {
	codes := make([]irbutton.Code, s.slots)
	for i := range codes {
		code, err := s.Load(i)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

func (s *Store) checkSlot(slot int) error {
	if slot < 0 || slot >= s.slots {
		return &SlotError{Slot: slot, Err: ErrSlot}
	}
	return nil
}

func (s *Store) read(slot int) (irbutton.Code, error) {
	var buf [Width]byte
	_, err := s.storage.ReadAt(buf[:], int64(slot)*Width)
	if err != nil {
		return irbutton.CodeNone, &SlotError{Slot: slot, Err: errors.New("error reading storage: " + err.Error())}
	}
	return irbutton.Code(binary.LittleEndian.Uint32(buf[:])), nil
}

func (s *Store) write(slot int, code irbutton.Code) error {
	var buf [Width]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(code))
	_, err := s.storage.WriteAt(buf[:], int64(slot)*Width)
	if err != nil {
		return &SlotError{Slot: slot, Err: errors.New("error writing storage: " + err.Error())}
	}
	return nil
}
