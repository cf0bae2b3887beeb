package dbus

import (
	"cmp"
	"context"
	"os"
	"strings"
)

// Peer is a handle to a DBus peer, identified by a unique connection
// ID or a well-known bus name.
//
// The returned value is a purely local handle. It does not indicate
// that the peer exists, or that it is currently reachable.
type Peer struct {
	c    *Conn
	name string
}

// Name returns the peer's bus name.
func (p Peer) Name() string { return p.name }

func (p Peer) String() string { return p.name }

// Compare compares two peers, with the same convention as [cmp.Compare].
func (p Peer) Compare(other Peer) int {
	return cmp.Compare(p.name, other.name)
}

// Ping checks that the peer is alive and responding to DBus traffic.
func (p Peer) Ping(ctx context.Context) error {
	return p.Object("/").Interface("org.freedesktop.DBus.Peer").Call(ctx, "Ping", nil, nil)
}

func (p Peer) Conn() *Conn { return p.c }

func (p Peer) Object(path ObjectPath) Object {
	return Object{
		p:    p,
		path: path,
	}
}

// IsUniqueName reports whether p identifies a connection directly by
// its bus-assigned unique name (e.g. ":1.42"), rather than by a
// well-known name that may migrate between connections over time.
func (p Peer) IsUniqueName() bool {
	return strings.HasPrefix(p.name, ":")
}

// Owner returns the unique-name Peer that currently owns the
// well-known bus name p.
func (p Peer) Owner(ctx context.Context) (Peer, error) {
	var owner string
	if err := p.c.bus.Call(ctx, "GetNameOwner", p.name, &owner); err != nil {
		return Peer{}, err
	}
	return p.c.Peer(owner), nil
}

// Credentials describes a peer's identity, as reported by the bus
// daemon.
//
// Fields are nil or empty when the bus did not report the
// corresponding credential.
type Credentials struct {
	PID           *uint32
	UID           *uint32
	GIDs          []uint32
	PIDFD         *os.File
	SecurityLabel []byte
	// Unknown holds any additional credential values reported by the
	// bus that this package doesn't know how to interpret.
	Unknown map[string]any
}

// Identity returns the operating system identity of the process that
// owns p, as reported by the bus daemon.
func (p Peer) Identity(ctx context.Context) (Credentials, error) {
	var raw map[string]Variant
	if err := p.c.bus.Call(ctx, "GetConnectionCredentials", p.name, &raw); err != nil {
		return Credentials{}, err
	}

	var ret Credentials
	ret.Unknown = map[string]any{}
	for k, v := range raw {
		switch k {
		case "UnixUserID":
			if uid, ok := v.Value.(uint32); ok {
				ret.UID = &uid
				continue
			}
		case "ProcessID":
			if pid, ok := v.Value.(uint32); ok {
				ret.PID = &pid
				continue
			}
		case "UnixGroupIDs":
			if gids, ok := v.Value.([]uint32); ok {
				ret.GIDs = gids
				continue
			}
		case "LinuxSecurityLabel":
			if label, ok := v.Value.([]byte); ok {
				ret.SecurityLabel = label
				continue
			}
		case "ProcessFD":
			if f, ok := v.Value.(*os.File); ok {
				ret.PIDFD = f
				continue
			}
		}
		ret.Unknown[k] = v.Value
	}

	return ret, nil
}
