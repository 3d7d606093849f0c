package store

import (
	"bytes"
	"errors"
	"os"
)

// File is Storage kept in a fixed-size file. It lets the simulator keep
// learned codes across runs the way EEPROM keeps them across power cycles
type File struct {
	f    *os.File
	size int64
}

var _ Storage = &File{}

// OpenFile opens or creates the file at path. A new file is filled with the
// erased pattern. An existing file must be exactly size bytes
func OpenFile(path string, size int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	switch info.Size() {
	case 0:
		_, err = f.WriteAt(bytes.Repeat([]byte{0xFF}, int(size)), 0)
		if err != nil {
			f.Close()
			return nil, err
		}
	case size:
	default:
		f.Close()
		return nil, errors.New("storage file " + path + " has unexpected size")
	}

	return &File{f: f, size: size}, nil
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > f.size {
		return 0, errOutOfBounds
	}
	return f.f.ReadAt(p, off)
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > f.size {
		return 0, errOutOfBounds
	}
	n, err := f.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	return n, f.f.Sync()
}

// Close closes the underlying file
func (f *File) Close() error {
	return f.f.Close()
}
