package dbus

import (
	"fmt"
	"reflect"
	"sync"
)

// signalTypes maps an interface+signal name to the Go type used to
// decode its body. Standard signals emitted by the bus itself
// (NameOwnerChanged and friends, defined in bus.go) are registered by
// init.go; callers extend the table with [RegisterSignalType] for
// their own signals.
//
// signalNames is the inverse of signalTypes, used by Conn.EmitSignal
// to recover the interface and member name for an outgoing signal
// value.
var (
	signalsMu   sync.Mutex
	signalTypes = map[interfaceMember]reflect.Type{}
	signalNames = map[reflect.Type]interfaceMember{}
)

// RegisterSignalType associates a Go type with a signal emitted by
// interfaceName.signalName, so that [Watcher] deliveries decode the
// signal's body into that type instead of a generic struct, and so
// that [Conn.EmitSignal] can be called with a bare value of type T.
//
// RegisterSignalType panics if T cannot be represented in the DBus
// wire format, or if a type is already registered for the same
// interface and signal name.
func RegisterSignalType[T any](interfaceName, signalName string) {
	t := reflect.TypeFor[T]()
	if _, err := SignatureFor[T](); err != nil {
		panic(fmt.Errorf("cannot use %s as dbus type for signal %s.%s: %w", t, interfaceName, signalName, err))
	}
	k := interfaceMember{interfaceName, signalName}

	signalsMu.Lock()
	defer signalsMu.Unlock()
	if prev, ok := signalTypes[k]; ok {
		panic(fmt.Errorf("duplicate signal type registration for %s, existing registration %s", k, prev))
	}
	signalTypes[k] = t
	signalNames[t] = k
}

// typeForSignal returns the Go type to decode a signal's body into,
// preferring a type registered via [RegisterSignalType] and falling
// back to the type synthesized from the signal's own wire signature.
func typeForSignal(interfaceName, signalName string, sig Signature) reflect.Type {
	k := interfaceMember{interfaceName, signalName}

	signalsMu.Lock()
	ret := signalTypes[k]
	signalsMu.Unlock()

	if ret != nil {
		return ret
	}
	if !sig.IsZero() {
		return sig.asStruct().Type()
	}
	return nil
}

// signalNameFor returns the interface and member name that t was
// registered under with [RegisterSignalType].
func signalNameFor(t reflect.Type) (interfaceMember, bool) {
	signalsMu.Lock()
	defer signalsMu.Unlock()
	k, ok := signalNames[t]
	return k, ok
}

// propTypes maps an interface+property name to the Go type used to
// decode PropertiesChanged notifications for that property.
var (
	propsMu   sync.Mutex
	propTypes = map[interfaceMember]reflect.Type{}
	propNames = map[reflect.Type]interfaceMember{}
)

// RegisterPropertyChangeType associates a Go type with the value of
// propertyName on interfaceName, so that PropertiesChanged
// notifications for that property are delivered through a [Watcher],
// with the property's new value decoded into that type. Changes to
// properties with no registered type are not delivered.
//
// RegisterPropertyChangeType panics if T cannot be represented in the
// DBus wire format, or if a type is already registered for the same
// interface and property name.
func RegisterPropertyChangeType[T any](interfaceName, propertyName string) {
	t := reflect.TypeFor[T]()
	if _, err := SignatureFor[T](); err != nil {
		panic(fmt.Errorf("cannot use %s as dbus type for property %s.%s: %w", t, interfaceName, propertyName, err))
	}
	k := interfaceMember{interfaceName, propertyName}

	propsMu.Lock()
	defer propsMu.Unlock()
	if prev, ok := propTypes[k]; ok {
		panic(fmt.Errorf("duplicate property type registration for %s, existing registration %s", k, prev))
	}
	propTypes[k] = t
	propNames[t] = k
}

// propTypeFor returns the Go type registered for interfaceName's
// propertyName property, or nil if none was registered.
func propTypeFor(interfaceName, propertyName string) reflect.Type {
	propsMu.Lock()
	defer propsMu.Unlock()
	return propTypes[interfaceMember{interfaceName, propertyName}]
}

// propNameFor returns the interface and property name that t was
// registered under with [RegisterPropertyChangeType].
func propNameFor(t reflect.Type) (interfaceMember, bool) {
	propsMu.Lock()
	defer propsMu.Unlock()
	k, ok := propNames[t]
	return k, ok
}
