package varlink

import "encoding/json"

// Request is a request coming from a Varlink client (spec.md §3).
type Request struct {
	Method     string          `json:"method"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	More       bool            `json:"more,omitempty"`
	Oneway     bool            `json:"oneway,omitempty"`
	Upgrade    bool            `json:"upgrade,omitempty"`
}

// parameters returns the request's parameters, treating an absent field the
// same as an empty object (spec.md §8 boundary behavior).
func (req *Request) parameters() json.RawMessage {
	if len(req.Parameters) == 0 {
		return json.RawMessage("{}")
	}
	return req.Parameters
}

// reply is a reply frame as sent over the wire (spec.md §3).
type reply struct {
	Parameters interface{} `json:"parameters,omitempty"`
	Continues  bool        `json:"continues,omitempty"`
	Error      string      `json:"error,omitempty"`
}
