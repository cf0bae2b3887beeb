// Package fragments implements the byte-level mechanics of the DBus
// wire format: alignment and padding, byte order, and the primitive
// reads/writes that the basic and container types are built out of.
//
// Nothing in this package understands DBus signatures, types, or
// messages as a whole - an [Encoder] or [Decoder] just tracks a
// cursor position and applies the padding rules for whatever the
// caller tells it to read or write next. Getting a whole message
// right is the job of the codec built on top, in
// [github.com/ondbus/dbus]; that package registers the
// [Encoder.Mapper]/[Decoder.Mapper] functions this one calls out to
// for any type it doesn't handle directly.
//
// Implement [Marshaler]/[Unmarshaler]-like hooks against this package
// directly only when adding wire support for a type the codec doesn't
// already know how to handle.
package fragments
