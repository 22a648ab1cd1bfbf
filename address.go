package varlink

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/activation"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// AddressKind tags the variants of Address (spec.md §3).
type AddressKind int

const (
	// AddressTCP is "tcp:HOST:PORT".
	AddressTCP AddressKind = iota + 1
	// AddressUnix is "unix:/path/to/socket".
	AddressUnix
	// AddressAbstractUnix is "unix:@name".
	AddressAbstractUnix
	// AddressExec is "exec:/path/to/program" (client-only).
	AddressExec
)

// Address is the parsed, tagged form of a Varlink address string (spec.md
// §3).
type Address struct {
	Kind AddressKind

	// HostPort is set for AddressTCP ("host:port").
	HostPort string
	// Path is set for AddressUnix.
	Path string
	// Name is set for AddressAbstractUnix.
	Name string
	// Executable is set for AddressExec.
	Executable string
}

// ParseAddress parses a Varlink address of the form "scheme:rest" (spec.md
// §6).
func ParseAddress(address string) (*Address, error) {
	scheme, rest, ok := strings.Cut(address, ":")
	if !ok {
		return nil, pkgerrors.Errorf("varlink: invalid address %q: missing scheme", address)
	}

	switch scheme {
	case "tcp":
		return &Address{Kind: AddressTCP, HostPort: rest}, nil
	case "unix":
		// Trailing ";mode=0600"-style tokens are ignored by the core
		// (spec.md §6).
		rest = strings.SplitN(rest, ";", 2)[0]
		if strings.HasPrefix(rest, "@") {
			return &Address{Kind: AddressAbstractUnix, Name: rest[1:]}, nil
		}
		return &Address{Kind: AddressUnix, Path: rest}, nil
	case "exec":
		return &Address{Kind: AddressExec, Executable: rest}, nil
	default:
		return nil, pkgerrors.Errorf("varlink: invalid address %q: unknown scheme %q", address, scheme)
	}
}

func (a *Address) String() string {
	switch a.Kind {
	case AddressTCP:
		return "tcp:" + a.HostPort
	case AddressUnix:
		return "unix:" + a.Path
	case AddressAbstractUnix:
		return "unix:@" + a.Name
	case AddressExec:
		return "exec:" + a.Executable
	default:
		return ""
	}
}

// Listen binds a listener for address (C7, spec.md §4.4). If the
// environment indicates an inherited socket-activation fd
// (LISTEN_FDS=1, LISTEN_PID=<this pid>), that fd is used instead of
// binding a new socket, via github.com/coreos/go-systemd's activation
// package.
func Listen(address string) (net.Listener, error) {
	if socketActivationEnv() {
		lns, err := activation.Listeners()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "varlink: socket activation")
		}
		if len(lns) != 1 || lns[0] == nil {
			return nil, pkgerrors.Errorf("varlink: socket activation: expected 1 listener, got %d", len(lns))
		}
		return lns[0], nil
	}

	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	switch addr.Kind {
	case AddressTCP:
		return net.Listen("tcp", addr.HostPort)
	case AddressUnix:
		return net.Listen("unix", addr.Path)
	case AddressAbstractUnix:
		return listenAbstractUnix(addr.Name)
	default:
		return nil, pkgerrors.Errorf("varlink: %q cannot be listened on", addr.String())
	}
}

// listenAbstractUnix binds a Linux abstract-namespace Unix socket. The
// stdlib net package has no way to express the leading NUL that marks an
// abstract address, so the socket is created with raw syscalls via
// golang.org/x/sys/unix and wrapped back into a net.Listener.
func listenAbstractUnix(name string) (net.Listener, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "varlink: socket")
	}
	sa := &unix.SockaddrUnix{Name: "\x00" + name}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, pkgerrors.Wrap(err, "varlink: bind")
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, pkgerrors.Wrap(err, "varlink: listen")
	}

	f := os.NewFile(uintptr(fd), "unix-abstract:"+name)
	defer f.Close()
	return net.FileListener(f)
}

// dialAbstractUnix connects to a Linux abstract-namespace Unix socket,
// the dialing counterpart of listenAbstractUnix. Used by Dial
// (C8, spec.md §4.5); not exported since every other address kind dials
// through the stdlib net package directly.
func dialAbstractUnix(name string) (net.Conn, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "varlink: socket")
	}
	sa := &unix.SockaddrUnix{Name: "\x00" + name}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, pkgerrors.Wrap(err, "varlink: connect")
	}

	f := os.NewFile(uintptr(fd), "unix-abstract:"+name)
	defer f.Close()
	return net.FileConn(f)
}

// socketActivationEnv reports whether the process environment indicates a
// pre-bound listening socket inherited as fd 3 (spec.md §3 "exec" address
// lifecycle, §6 "Socket activation environment").
func socketActivationEnv() bool {
	return os.Getenv("LISTEN_FDS") == "1" && os.Getenv("LISTEN_PID") == fmt.Sprint(os.Getpid())
}
