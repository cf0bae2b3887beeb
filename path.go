package dbus

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ondbus/dbus/fragments"
)

// ObjectPath is the name of an object exported on a DBus connection,
// such as "/org/freedesktop/DBus" or "/".
type ObjectPath string

// Clean returns p with any trailing slash removed, except for the
// root path "/" itself.
func (p ObjectPath) Clean() ObjectPath {
	if p == "/" || !strings.HasSuffix(string(p), "/") {
		return p
	}
	return p[:len(p)-1]
}

// Validate reports whether p obeys the DBus object path grammar: it
// must start with "/", each "/"-delimited segment must be non-empty
// and contain only [A-Za-z0-9_], and only the root path may end in
// "/".
func (p ObjectPath) Validate() error {
	s := string(p)
	if s == "" || s[0] != '/' {
		return fmt.Errorf("object path %q must start with /", s)
	}
	if s == "/" {
		return nil
	}
	if strings.HasSuffix(s, "/") {
		return fmt.Errorf("object path %q must not end with /", s)
	}
	for _, seg := range strings.Split(s[1:], "/") {
		if seg == "" {
			return fmt.Errorf("object path %q contains an empty segment", s)
		}
		for _, r := range seg {
			if !isPathSegmentRune(r) {
				return fmt.Errorf("object path %q contains invalid character %q", s, r)
			}
		}
	}
	return nil
}

func isPathSegmentRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}

// IsChildOf reports whether p is nested strictly underneath parent in
// the object path tree.
func (p ObjectPath) IsChildOf(parent ObjectPath) bool {
	p, parent = p.Clean(), parent.Clean()
	if p == parent {
		return false
	}
	prefix := string(parent)
	if prefix != "/" {
		prefix += "/"
	}
	return strings.HasPrefix(string(p), prefix)
}

func (ObjectPath) IsDBusStruct() bool { return false }

var objectPathSignature = mkSignature(reflect.TypeFor[ObjectPath]())

func (ObjectPath) SignatureDBus() Signature { return objectPathSignature }

func (p ObjectPath) MarshalDBus(ctx context.Context, e *fragments.Encoder) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.String(string(p.Clean()))
	return nil
}

func (p *ObjectPath) UnmarshalDBus(ctx context.Context, d *fragments.Decoder) error {
	s, err := d.String()
	if err != nil {
		return err
	}
	path := ObjectPath(s)
	if err := path.Validate(); err != nil {
		return fmt.Errorf("decoding object path: %w", err)
	}
	*p = path
	return nil
}
