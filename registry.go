package varlink

import (
	"errors"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ErrMethodNotFound is returned by a generated Interface's Call method when
// the request names a method the interface does not implement. Dispatcher
// translates it into an org.varlink.service.MethodNotFound reply (spec.md
// §4.2 step 4); it is never surfaced to a caller of Dispatch itself.
var ErrMethodNotFound = errors.New("varlink: method not found")

// ErrDuplicateInterface is returned by Dispatcher.Register when an
// interface with the same name is already registered.
var ErrDuplicateInterface = errors.New("varlink: duplicate interface")

// Interface is the capability set a registered Varlink interface handler
// must implement (spec.md §9 "plugin-like extension without dynamic
// dispatch tricks").
type Interface interface {
	// Name returns the fully-qualified reverse-DNS interface name.
	Name() string
	// Description returns the raw IDL source of the interface, served
	// verbatim by org.varlink.service.GetInterfaceDescription.
	Description() string
	// HasMethod reports whether the interface declares the given method,
	// independent of whether Call would currently succeed. Dispatch uses
	// it to decide MethodNotFound (step 4) before it checks upgrade
	// capability (step 5): a method that exists but can't be upgraded is
	// MethodNotImplemented, not MethodNotFound.
	HasMethod(method string) bool
	// Call dispatches a single method call. Implementations generated by
	// varlinkgen switch on req.Method and return ErrMethodNotFound for any
	// method they don't recognize.
	Call(call *Call, req *Request) error
}

// Upgrader is implemented by interfaces that support connection upgrades
// (spec.md §4.3 "Upgrade call"). After Call has sent its reply, the server
// loop hands the raw, unframed connection to CallUpgraded and stops reading
// Varlink frames on that connection.
type Upgrader interface {
	CallUpgraded(req *Request, rw io.ReadWriter) error
}

// DispatcherOptions configures the values returned by
// org.varlink.service.GetInfo.
type DispatcherOptions struct {
	Vendor  string
	Product string
	Version string
	URL     string
}

// Dispatcher routes incoming requests to registered interfaces (C3/C4) and
// implements the Handler contract expected by Server. It auto-registers the
// built-in org.varlink.service interface (C5).
type Dispatcher struct {
	options    DispatcherOptions
	interfaces map[string]Interface
	// names preserves registration order for GetInfo's interface list.
	names []string
}

// NewDispatcher creates a Dispatcher with the built-in org.varlink.service
// interface already registered.
func NewDispatcher(options DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		options:    options,
		interfaces: make(map[string]Interface),
	}
	if err := d.Register(newOrgVarlinkService(d)); err != nil {
		// newOrgVarlinkService always registers under a name no caller
		// can have already claimed on a fresh Dispatcher.
		panic(err)
	}
	return d
}

// Register adds iface to the registry. ErrDuplicateInterface is returned if
// an interface with the same name is already registered.
func (d *Dispatcher) Register(iface Interface) error {
	name := iface.Name()
	if _, ok := d.interfaces[name]; ok {
		return pkgerrors.Wrapf(ErrDuplicateInterface, "interface %q", name)
	}
	d.interfaces[name] = iface
	d.names = append(d.names, name)
	return nil
}

// InterfaceNames returns the registered interface names in registration
// order.
func (d *Dispatcher) InterfaceNames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func splitMethod(method string) (iface, name string, ok bool) {
	i := strings.LastIndexByte(method, '.')
	if i < 0 {
		return "", "", false
	}
	return method[:i], method[i+1:], true
}

// Dispatch implements spec.md §4.2's seven-step dispatch algorithm. On
// success, if req.Upgrade was set and the target interface implements
// Upgrader, the Upgrader is returned so the caller (the connection loop)
// can hand off the raw stream once this function returns. Errors returned
// here are transport/internal failures that should terminate the
// connection; protocol-level failures (unknown interface/method, bad
// parameters, declared IDL errors) are written as reply frames and never
// returned as an error.
func (d *Dispatcher) Dispatch(call *Call, req *Request) (Upgrader, error) {
	ifaceName, methodName, ok := splitMethod(req.Method)
	if !ok {
		return nil, call.ReplyError("org.varlink.service.InvalidParameter", map[string]string{"parameter": "method"})
	}

	iface, ok := d.interfaces[ifaceName]
	if !ok {
		return nil, call.ReplyError("org.varlink.service.InterfaceNotFound", map[string]string{"interface": ifaceName})
	}

	if !iface.HasMethod(methodName) {
		return nil, call.ReplyError("org.varlink.service.MethodNotFound", map[string]string{"method": methodName})
	}

	var upgrader Upgrader
	if req.Upgrade {
		upgrader, ok = iface.(Upgrader)
		if !ok {
			return nil, call.ReplyError("org.varlink.service.MethodNotImplemented", map[string]string{"method": methodName})
		}
	}

	err := iface.Call(call, req)
	switch {
	case errors.Is(err, ErrMethodNotFound):
		return nil, call.ReplyError("org.varlink.service.MethodNotFound", map[string]string{"method": methodName})
	case err != nil:
		var serr *ServerError
		if errors.As(err, &serr) {
			if req.Oneway {
				return nil, nil
			}
			return nil, call.ReplyError(serr.Name, serr.Parameters)
		}
		return nil, err
	}

	if !req.Oneway && !call.done {
		// Dispatch step 7: synthesize an empty reply if the handler didn't
		// send one itself.
		if err := call.Reply(struct{}{}); err != nil {
			return nil, err
		}
	}

	return upgrader, nil
}
