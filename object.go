package dbus

import (
	"cmp"
	"context"
	"encoding/xml"
	"fmt"
)

// Object is a handle to an object exported by a [Peer].
type Object struct {
	p    Peer
	path ObjectPath
}

func (o Object) Conn() *Conn      { return o.p.Conn() }
func (o Object) Peer() Peer       { return o.p }
func (o Object) Path() ObjectPath { return o.path }

func (o Object) String() string {
	return fmt.Sprintf("%s:%s", o.p, o.path)
}

// Compare compares two objects, with the same convention as [cmp.Compare].
func (o Object) Compare(other Object) int {
	if ret := o.p.Compare(other.p); ret != 0 {
		return ret
	}
	return cmp.Compare(o.path, other.path)
}

func (o Object) Interface(name string) Interface {
	return Interface{
		o:    o,
		name: name,
	}
}

// Call is a convenience for Interface(ifaceBus).Call, for invoking
// methods implemented directly by the message bus daemon on org.freedesktop.DBus.
func (o Object) Call(ctx context.Context, method string, body, response any, opts ...CallOption) error {
	return o.Interface(ifaceBus).Call(ctx, method, body, response, opts...)
}

// GetProperty is a convenience for Interface(ifaceBus).GetProperty,
// for reading properties exposed directly by the message bus daemon.
func (o Object) GetProperty(ctx context.Context, name string, val any, opts ...CallOption) error {
	return o.Interface(ifaceBus).GetProperty(ctx, name, val, opts...)
}

// IntrospectXML returns the raw introspection XML document for the
// object, as provided by the peer.
func (o Object) IntrospectXML(ctx context.Context) (string, error) {
	var resp string
	if err := o.Interface("org.freedesktop.DBus.Introspectable").Call(ctx, "Introspect", nil, &resp); err != nil {
		return "", err
	}
	return resp, nil
}

// Introspect introspects the object and parses the result into a
// structured [ObjectDescription].
func (o Object) Introspect(ctx context.Context) (*ObjectDescription, error) {
	raw, err := o.IntrospectXML(ctx)
	if err != nil {
		return nil, err
	}
	var desc ObjectDescription
	if err := xml.Unmarshal([]byte(raw), &desc); err != nil {
		return nil, fmt.Errorf("parsing introspection data for %s: %w", o, err)
	}
	return &desc, nil
}

// Child returns the Object at the given path relative to o.
func (o Object) Child(relativePath string) Object {
	base := string(o.path)
	if base == "/" {
		base = ""
	}
	return Object{p: o.p, path: ObjectPath(base + "/" + relativePath)}
}

func (o Object) Interfaces(ctx context.Context) ([]Interface, error) {
	names, err := GetProperty[[]string](ctx, o.Interface("org.freedesktop.DBus"), "Interfaces")
	if err != nil {
		return nil, err
	}
	ret := make([]Interface, 0, len(names))
	for _, n := range names {
		ret = append(ret, o.Interface(n))
	}
	return ret, nil
}
