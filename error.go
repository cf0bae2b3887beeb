package dbus

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeError is the error returned when a Go type cannot be carried
// over the DBus wire format, either because marshaling or
// unmarshaling found no mapping for it.
type TypeError struct {
	// Type is the Go type name that triggered the error, or empty if
	// the failure wasn't tied to a specific type (e.g. nil was
	// inspected).
	Type string
	// Reason explains what's wrong with Type.
	Reason error
}

func (e TypeError) Error() string {
	var b strings.Builder
	b.WriteString("dbus: cannot represent ")
	if e.Type == "" {
		b.WriteString("value")
	} else {
		b.WriteString(e.Type)
	}
	if e.Reason != nil {
		b.WriteString(": ")
		b.WriteString(e.Reason.Error())
	}
	return b.String()
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

// typeErr builds a TypeError describing why t can't be marshaled or
// unmarshaled. t may be nil when the caller has no concrete type to
// blame, such as when reflect.Value.IsValid is false.
func typeErr(t reflect.Type, reason string, args ...any) error {
	err := TypeError{Reason: fmt.Errorf(reason, args...)}
	if t != nil {
		err.Type = t.String()
	}
	return err
}

// CallError reports that a DBus method call returned org.freedesktop.DBus.Error
// instead of a normal reply.
type CallError struct {
	// Name is the DBus error name the peer reported, such as
	// "org.freedesktop.DBus.Error.UnknownMethod".
	Name string
	// Detail holds whatever human-readable text accompanied the
	// error, if any.
	Detail string
}

func (e CallError) Error() string {
	if e.Detail == "" {
		return "dbus: remote returned " + e.Name
	}
	return fmt.Sprintf("dbus: remote returned %s (%s)", e.Name, e.Detail)
}
