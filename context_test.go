package dbus

import (
	"context"
	"os"
	"reflect"
	"slices"
	"testing"
)

func TestContextEmitter(t *testing.T) {
	var conn *Conn
	want := conn.Peer("foo").Object("/bar").Interface("qux")
	ctx := withContextEmitter(context.Background(), want)

	got, ok := ContextEmitter(ctx)
	if !ok {
		t.Fatal("emitter not found in context")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wrong emitter, got %#v want %#v", got, want)
	}

	got, ok = ContextEmitter(context.Background())
	if ok {
		t.Fatalf("got emitter %#v from context with no emitter", got)
	}
}

func TestContextSender(t *testing.T) {
	var conn *Conn
	want := conn.Peer("foo").Object("/bar").Interface("qux")
	ctx := withContextSender(context.Background(), want)

	got, ok := ContextSender(ctx)
	if !ok {
		t.Fatal("sender not found in context")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wrong sender, got %#v want %#v", got, want)
	}

	_, ok = ContextSender(context.Background())
	if ok {
		t.Fatalf("got sender from context with no sender")
	}
}

func TestContextDestination(t *testing.T) {
	want := "foo"
	ctx := withContextDestination(context.Background(), want)

	got, ok := ContextDestination(ctx)
	if !ok {
		t.Fatal("destination not found in context")
	}
	if got != want {
		t.Fatalf("wrong destination, got %q want %q", got, want)
	}

	_, ok = ContextDestination(context.Background())
	if ok {
		t.Fatalf("got destination from context with no destination")
	}
}

func TestContextCallFlags(t *testing.T) {
	if got := contextCallFlags(context.Background()); got != 0 {
		t.Fatalf("contextCallFlags of empty context = %d, want 0", got)
	}

	ctx := applyCallOptions(context.Background(), []CallOption{NoAutoStart(), AllowInteractiveAuthorization()})
	if got, want := contextCallFlags(ctx), byte(0x2|0x4); got != want {
		t.Fatalf("contextCallFlags = %#x, want %#x", got, want)
	}
}

func TestContextHeader(t *testing.T) {
	var conn *Conn
	hdr := &header{
		Path:        "/bar",
		Interface:   "qux",
		Sender:      "foo",
		Destination: "dest",
		Flags:       0x4,
	}
	ctx := withContextHeader(context.Background(), conn, hdr)

	if got, ok := ContextDestination(ctx); !ok || got != "dest" {
		t.Fatalf("ContextDestination = %q, %v, want %q, true", got, ok, "dest")
	}
	if got := contextCallFlags(ctx); got != 0x4 {
		t.Fatalf("contextCallFlags = %#x, want 0x4", got)
	}
	wantSender := conn.Peer("foo").Object("/bar").Interface("qux")
	if got, ok := ContextSender(ctx); !ok || !reflect.DeepEqual(got, wantSender) {
		t.Fatalf("ContextSender = %#v, %v, want %#v, true", got, ok, wantSender)
	}
	wantEmitter := conn.Peer("foo").Object("/bar").Interface("qux")
	if got, ok := ContextEmitter(ctx); !ok || !reflect.DeepEqual(got, wantEmitter) {
		t.Fatalf("ContextEmitter = %#v, %v, want %#v, true", got, ok, wantEmitter)
	}
}

func TestContextFile(t *testing.T) {
	var fs []*os.File
	for range 2 {
		f, err := os.CreateTemp(t.TempDir(), "contextfile")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		fs = append(fs, f)
	}
	// Keep a separate copy of the file array for checking output.
	want := slices.Clone(fs)

	ctx := withContextFiles(context.Background(), fs)

	for i := range 2 {
		got := contextFile(ctx, uint32(i))
		if got == nil {
			t.Fatal("file not found in context")
		}
		if got != want[i] {
			t.Fatalf("wrong file received, got %p, want file %d from %v", got, i, want)
		}
	}

	got := contextFile(ctx, 2)
	if got != nil {
		t.Fatalf("got unexpected file %p for out-of-range index into %v", got, want)
	}
}

func TestContextPutFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "contextputfile")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := contextPutFile(context.Background(), f); err == nil {
		t.Fatal("contextPutFile succeeded with no output buffer in context")
	}

	var files []*os.File
	ctx := withContextPutFiles(context.Background(), &files)
	idx, err := contextPutFile(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Fatalf("contextPutFile index = %d, want 0", idx)
	}
	if len(files) != 1 || files[0] != f {
		t.Fatalf("unexpected output files %v", files)
	}
}
