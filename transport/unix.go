package transport

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/mds/queue"
	"golang.org/x/sys/unix"
)

// Transport is a raw DBus connection.
type Transport interface {
	io.ReadWriteCloser

	// GetFiles returns n received files that were attached to
	// previously read bytes as ancillary data.
	GetFiles(n int) ([]*os.File, error)
	// WriteWithFiles is like Transport.Write, but additionally sends
	// the given files as ancillary data.
	WriteWithFiles(bs []byte, fds []*os.File) (int, error)
}

var errNoPendingFile = errors.New("transport: requested file descriptor not available")

// DialUnix connects to the bus at the given path.
func DialUnix(ctx context.Context, path string) (Transport, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Net: "unix", Name: path})
	if err != nil {
		return nil, err
	}

	ret := &unixTransport{
		conn: conn,
		fds:  queue.New[*os.File](),
	}
	ret.buf = bufio.NewReader(funcReader(ret.readToBuf))

	if err := ret.withHandshakeDeadline(ctx, ret.auth); err != nil {
		ret.Close()
		return nil, err
	}
	return ret, nil
}

// unixTransport is a Transport that runs over a Unix domain socket.
type unixTransport struct {
	conn *net.UnixConn
	oob  [512]byte
	buf  *bufio.Reader
	fds  *queue.Queue[*os.File]
}

// withHandshakeDeadline runs step with conn's deadline set from ctx
// (or cleared, if ctx carries none), and always restores an unbounded
// deadline afterward so the transport's steady-state reads and writes
// aren't bound by whatever deadline Dial was called with.
func (u *unixTransport) withHandshakeDeadline(ctx context.Context, step func() error) error {
	deadline, _ := ctx.Deadline() // zero Time clears any deadline
	if err := u.conn.SetDeadline(deadline); err != nil {
		return err
	}
	if err := step(); err != nil {
		return err
	}
	return u.conn.SetDeadline(time.Time{})
}

func (u *unixTransport) Read(bs []byte) (int, error) {
	return u.buf.Read(bs)
}

func (u *unixTransport) Write(bs []byte) (int, error) {
	return u.conn.Write(bs)
}

func (u *unixTransport) Close() error {
	u.fds.Each(func(f *os.File) bool {
		f.Close()
		return true
	})
	u.fds.Clear()
	u.buf.Discard(u.buf.Buffered())
	return u.conn.Close()
}

func (u *unixTransport) WriteWithFiles(bs []byte, fs []*os.File) (int, error) {
	if len(fs) == 0 {
		return u.Write(bs)
	}

	fds := make([]int, len(fs))
	for i, f := range fs {
		fds[i] = int(f.Fd())
	}
	scm := unix.UnixRights(fds...)
	n, oobn, err := u.conn.WriteMsgUnix(bs, scm, nil)
	if err != nil {
		u.Close()
		return n, err
	}
	if oobn != len(scm) {
		u.Close()
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (u *unixTransport) GetFiles(n int) ([]*os.File, error) {
	ret := make([]*os.File, 0, n)
	for range n {
		f, ok := u.fds.Pop()
		if !ok {
			for _, f := range ret {
				f.Close()
			}
			return nil, errNoPendingFile
		}
		ret = append(ret, f)
	}
	return ret, nil
}

// saslLine is one line this transport expects back from the bus
// during the EXTERNAL auth handshake.
type saslLine struct {
	// accepts reports whether line (including its trailing CRLF, as
	// returned by bufio.ReadString) satisfies this step.
	accepts func(line string) bool
	failMsg string
}

func (u *unixTransport) auth() error {
	// In theory, we're supposed to speak SASL now and carefully
	// negotiate an authentication with the bus. However, in practice,
	// when you talk to busses over a unix socket, the bus
	// authenticates you with the peer credentials that it can pull
	// from the socket without the client's help.
	//
	// So the handshake boils down to a preamble we blast out in one
	// write, then two expected response lines. If either doesn't
	// match, we hang up; there's no point trying to negotiate further.
	uidHex := hex.EncodeToString([]byte(strconv.Itoa(os.Getuid())))
	preamble := "\x00AUTH EXTERNAL " + uidHex + "\r\nNEGOTIATE_UNIX_FD\r\nBEGIN\r\n"
	if _, err := io.WriteString(u.conn, preamble); err != nil {
		return err
	}

	steps := []saslLine{
		{
			accepts: func(line string) bool { return strings.HasPrefix(line, "OK ") },
			failMsg: "AUTH EXTERNAL failed, server said %q",
		},
		{
			accepts: func(line string) bool { return line == "AGREE_UNIX_FD\r\n" },
			failMsg: "NEGOTIATE_UNIX_FD failed, server said %q",
		},
	}
	for _, step := range steps {
		line, err := u.buf.ReadString('\n')
		if err != nil {
			return err
		}
		if !step.accepts(line) {
			return fmt.Errorf(step.failMsg, strings.TrimSpace(line))
		}
	}
	return nil
}

func (u *unixTransport) readToBuf(bs []byte) (int, error) {
	n, oobn, flags, _, err := u.conn.ReadMsgUnix(bs, u.oob[:])
	if flags&unix.MSG_CTRUNC != 0 {
		u.Close()
		return 0, errors.New("transport: control message truncated")
	}
	if oobn > 0 {
		if oobErr := u.parseFDs(u.oob[:oobn]); oobErr != nil {
			u.Close()
			return 0, oobErr
		}
	}
	if err != nil {
		u.Close()
		return 0, err
	}
	return n, nil
}

// parseFDs extracts every file descriptor carried in an SCM_RIGHTS
// ancillary message and queues it for a later GetFiles. It keeps
// parsing past individual errors, accumulating them, so that a
// malformed entry among several rights doesn't leak the file
// descriptors that came with it.
func (u *unixTransport) parseFDs(oob []byte) error {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return err
	}

	var errs []error
	for _, scm := range scms {
		if scm.Header.Level != unix.SOL_SOCKET || scm.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		fds, err := unix.ParseUnixRights(&scm)
		if err != nil {
			errs = append(errs, fmt.Errorf("parsing unix rights: %w", err))
			continue
		}
		for _, fd := range fds {
			f := os.NewFile(uintptr(fd), "")
			if f == nil {
				errs = append(errs, fmt.Errorf("invalid file descriptor %d received on dbus socket", fd))
				continue
			}
			u.fds.Add(f)
		}
	}
	return errors.Join(errs...)
}

type funcReader func([]byte) (int, error)

func (f funcReader) Read(bs []byte) (int, error) {
	return f(bs)
}
