package varlink

import "github.com/pkg/errors"

// ServerError is an error to be sent to a Varlink client as a named,
// parameterized error reply (spec.md §3 "Reply", §7 "Handler-declared").
type ServerError struct {
	Name       string
	Parameters interface{}
}

// Error implements the error interface.
func (err *ServerError) Error() string {
	return "varlink: server call failed: " + err.Name
}

// Call represents an in-progress Varlink method call (C2, spec.md §3
// "Call context").
//
// Handlers receive a *Call and a *Request. For requests with More set,
// handlers may call ReplyContinue any number of times before ending the
// call with exactly one Reply. For all other requests, handlers call
// Reply exactly once (or not at all, see Dispatcher.Dispatch step 7).
type Call struct {
	conn *conn
	req  *Request
	done bool
}

// Request returns the request this call is answering.
func (call *Call) Request() *Request { return call.req }

// WantsMore reports whether the client requested streaming replies.
func (call *Call) WantsMore() bool { return call.req.More }

func (call *Call) write(r *reply) error {
	if r.Continues {
		if !call.req.More {
			return errors.New("varlink: ReplyContinue called for a request without More set")
		}
	} else {
		if call.done {
			return errors.New("varlink: Call.Reply called twice")
		}
		call.done = true
	}
	if call.req.Oneway {
		return nil
	}
	return call.conn.writeMessage(r)
}

// ReplyContinue sends a non-final reply.
//
// This can only be used if Request.More is true; the invariant in spec.md
// §3 ("after the handler returns, the last reply written MUST have
// continues unset") is enforced by Reply, not by this method.
func (call *Call) ReplyContinue(parameters interface{}) error {
	return call.write(&reply{Parameters: parameters, Continues: true})
}

// Reply sends the final reply and closes the call. No more replies may be
// sent afterwards.
func (call *Call) Reply(parameters interface{}) error {
	return call.write(&reply{Parameters: parameters})
}

// ReplyError sends a named error reply and closes the call.
func (call *Call) ReplyError(name string, parameters interface{}) error {
	return call.write(&reply{Error: name, Parameters: parameters})
}
