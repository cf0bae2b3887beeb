// Package dbus is a client and object-server library for the DBus
// message bus protocol.
//
// A [Conn] represents an authenticated connection to a bus daemon (or
// to a peer-to-peer DBus socket). Use [Dial], [SessionBus] or
// [SystemBus] to obtain one. From there, [Conn.Peer] and
// [Interface.Call] invoke methods on remote objects, [Conn.Handle]
// registers Go functions as method handlers on objects of your own,
// and [Conn.Watch] subscribes to signals
// and property changes emitted by other peers on the bus.
//
// # Wire encoding
//
// Values crossing the wire are converted to and from Go using
// reflection, following rules similar to encoding/json. If a value
// implements [Marshaler] or [Unmarshaler], that implementation is
// used; otherwise the following type-dependent encodings apply:
//
// uint{8,16,32,64}, int{16,32,64}, float64, bool and string values
// map directly to the corresponding DBus basic type.
//
// Array and slice values map to DBus arrays. A nil slice marshals the
// same as an empty one; unmarshaling into a slice resets its length
// to zero before appending decoded elements.
//
// Struct values map to DBus structs, one wire field per exported Go
// field in declaration order. Embedded struct fields behave as if
// their own exported fields were promoted into the outer struct,
// following normal Go visibility rules.
//
// Map values map to DBus dictionaries (an array of key/value pairs).
// The key's underlying type must be one of uint{8,16,32,64},
// int{16,32,64}, float64, bool, or string.
//
// Several DBus interfaces extend a struct with optional fields using
// a map[K]any "vardict", so that new fields can be added without
// breaking wire compatibility with older peers. This library
// recognizes the idiom directly:
//
//	type Vardict struct {
//	    // The vardict map itself.
//	    M map[uint8]any `dbus:"vardict"`
//
//	    // Associated fields may appear anywhere in the struct,
//	    // before or after the vardict field.
//	    Foo string `dbus:"key=1"`
//	    Bar uint32 `dbus:"key=2"`
//	}
//
// A vardict field encodes like an ordinary map, except that
// associated fields with a nonzero value contribute an extra
// key/value pair; tag an associated field `dbus:"key=X,encodeZero"`
// to also encode it when zero. On decode, an incoming key matching an
// associated field's tag populates that field directly instead of the
// map.
//
// Pointers marshal as the pointed-to value and unmarshal into a freshly
// allocated zero value as needed; a nil pointer marshals as the zero
// value of its pointee type.
//
// [Signature], [ObjectPath], and [File] marshal and unmarshal as the
// matching DBus wire types.
//
// An 'any' value marshals as a DBus variant; unmarshaling a variant
// produces a value of the type carried by the variant's own embedded
// signature, with struct-typed variants decoding into an anonymous
// struct whose fields are named Field0, Field1, etc. in wire order.
//
// int8, int, uint, uintptr, complex64, complex128, non-empty interface,
// channel and function values, along with cyclic or self-referential types,
// have no DBus representation; attempting to marshal or unmarshal one
// returns a [TypeError].
package dbus
