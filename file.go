package dbus

import (
	"context"
	"errors"
	"os"
	"reflect"

	"github.com/ondbus/dbus/fragments"
)

// File is a file to be sent or received over the bus.
type File struct {
	*os.File
}

var (
	errFileNil  = errors.New("dbus: cannot marshal File with nil File.File")
	errFileNoFD = errors.New("dbus: cannot unmarshal File, no file descriptor available at that index")
)

func (f *File) IsDBusStruct() bool { return false }

var fdSignature = mkSignature(reflect.TypeFor[*os.File]())

func (f *File) SignatureDBus() Signature { return fdSignature }

func (f *File) MarshalDBus(ctx context.Context, e *fragments.Encoder) error {
	if f.File == nil {
		return errFileNil
	}
	idx, err := contextPutFile(ctx, f.File)
	if err != nil {
		return err
	}
	e.Uint32(idx)
	return nil
}

func (f *File) UnmarshalDBus(ctx context.Context, d *fragments.Decoder) error {
	idx, err := d.Uint32()
	if err != nil {
		return err
	}
	file := contextFile(ctx, idx)
	if file == nil {
		return errFileNoFD
	}
	f.File = file
	return nil
}
