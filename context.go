package dbus

import (
	"context"
	"errors"
	"os"
)

// senderContextKey is the context key that carries the sender of a
// DBus message.
type senderContextKey struct{}

// withContextSender augments ctx with DBus sender information.
func withContextSender(ctx context.Context, iface Interface) context.Context {
	return context.WithValue(ctx, senderContextKey{}, iface)
}

// ContextSender extracts the current DBus sender information from
// ctx, and reports whether any sender information was present.
//
// Sender information is available in [Marshaler] and [Unmarshaler]
// calls.
func ContextSender(ctx context.Context) (Interface, bool) {
	v := ctx.Value(senderContextKey{})
	if v == nil {
		return Interface{}, false
	}
	if ret, ok := v.(Interface); ok {
		return ret, true
	}
	return Interface{}, false
}

// destinationContextKey is the context key that carries the
// destination bus name of the message currently being processed.
type destinationContextKey struct{}

// withContextDestination augments ctx with a message's destination
// bus name.
func withContextDestination(ctx context.Context, destination string) context.Context {
	return context.WithValue(ctx, destinationContextKey{}, destination)
}

// ContextDestination extracts the destination bus name of the message
// currently being processed, and reports whether a destination was
// present.
func ContextDestination(ctx context.Context) (string, bool) {
	v := ctx.Value(destinationContextKey{})
	if v == nil {
		return "", false
	}
	ret, ok := v.(string)
	return ret, ok
}

// emitterContextKey is the context key that carries the object and
// interface that emitted the signal or property change currently
// being processed.
type emitterContextKey struct{}

// withContextEmitter augments ctx with the Interface that emitted the
// notification currently being processed.
func withContextEmitter(ctx context.Context, emitter Interface) context.Context {
	return context.WithValue(ctx, emitterContextKey{}, emitter)
}

// ContextEmitter extracts the Interface that emitted the notification
// currently being processed, and reports whether emitter information
// was present.
//
// Emitter information is available to [Watcher] notification
// handlers, by way of the signal or property change's [Marshaler] and
// [Unmarshaler] calls.
func ContextEmitter(ctx context.Context) (Interface, bool) {
	v := ctx.Value(emitterContextKey{})
	if v == nil {
		return Interface{}, false
	}
	ret, ok := v.(Interface)
	return ret, ok
}

// callFlagsContextKey is the context key that carries the flags byte
// for the outgoing method call currently being encoded.
type callFlagsContextKey struct{}

// withContextCallFlags augments ctx with the flags byte to use for an
// outgoing method call.
func withContextCallFlags(ctx context.Context, flags byte) context.Context {
	return context.WithValue(ctx, callFlagsContextKey{}, flags)
}

// contextCallFlags returns the flags byte to use for the outgoing
// method call being encoded with ctx, or 0 if none was set.
func contextCallFlags(ctx context.Context) byte {
	v := ctx.Value(callFlagsContextKey{})
	if v == nil {
		return 0
	}
	ret, _ := v.(byte)
	return ret
}

// withContextHeader augments ctx with the sender, destination, call
// flags and emitter information carried by a message's header, for
// the benefit of Marshaler/Unmarshaler implementations and handler
// functions invoked while processing that message.
func withContextHeader(ctx context.Context, c *Conn, hdr *header) context.Context {
	ctx = withContextCallFlags(ctx, hdr.Flags)
	if hdr.Destination != "" {
		ctx = withContextDestination(ctx, hdr.Destination)
	}
	if hdr.Sender != "" {
		emitter := c.Peer(hdr.Sender).Object(hdr.Path).Interface(hdr.Interface)
		ctx = withContextSender(ctx, emitter)
		ctx = withContextEmitter(ctx, emitter)
	}
	return ctx
}

// filesContextKey is the context key that carries file descriptors
// received with a DBus message.
type filesContextKey struct{}

// withContextFiles augments ctx with message files.
func withContextFiles(ctx context.Context, files []*os.File) context.Context {
	return context.WithValue(ctx, filesContextKey{}, files)
}

// contextFile returns the idx-th message file in ctx.
//
// [File] is the only consumer of this API, being the only way to
// interact with DBus file descriptors.
func contextFile(ctx context.Context, idx uint32) *os.File {
	v := ctx.Value(filesContextKey{})
	if v == nil {
		return nil
	}
	fs, ok := v.([]*os.File)
	if !ok {
		return nil
	}
	if idx < 0 || int(idx) >= len(fs) {
		return nil
	}

	return fs[int(idx)]
}

// writeFilesContextKey is the context key that carries file
// descriptors to be sent with a DBus message.
type writeFilesContextKey struct{}

// withContextPutFiles augments ctx with an output slice for files to be
// sent with a message.
func withContextPutFiles(ctx context.Context, files *[]*os.File) context.Context {
	return context.WithValue(ctx, writeFilesContextKey{}, files)
}

// contextPutFile adds file to the context's outgoing files buffer.
//
// [File] is the only consumer of this API, being the only way to
// interact with DBus file descriptors.
func contextPutFile(ctx context.Context, file *os.File) (idx uint32, err error) {
	v := ctx.Value(writeFilesContextKey{})
	if v == nil {
		return 0, errors.New("cannot send file descriptor: invalid context")
	}
	fsp, ok := v.(*[]*os.File)
	if !ok || fsp == nil {
		return 0, errors.New("cannot send file descriptor: invalid context")
	}

	*fsp = append(*fsp, file)
	return uint32(len(*fsp) - 1), nil
}
