package certification

import (
	"encoding/json"
	"time"

	"github.com/varlinkd/go-varlink"
)

// idlDescription is served back by org.varlink.service.GetInterfaceDescription.
// No .varlink source for this interface survived into original_source (only
// its generated bindings did), so this is reconstructed from the method
// and type shapes server.go and client.go actually implement.
const idlDescription = `interface org.varlink.certification

type MyType (
  object: object,
  enum: (one, two, three),
  struct: (first: int, second: string),
  array: []string,
  dictionary: [string]string,
  stringset: [string](),
  nullable: ?string,
  nullable_array_struct: ?[](first: int, second: string)
)

method Start() -> (client_id: string)
method Test01(client_id: string) -> (bool: bool)
method Test02(client_id: string, bool: bool) -> (int: int)
method Test03(client_id: string, int: int) -> (float: float)
method Test04(client_id: string, float: float) -> (string: string)
method Test05(client_id: string, string: string) -> (bool: bool, int: int, float: float, string: string)
method Test06(client_id: string, bool: bool, int: int, float: float, string: string) -> (struct: (bool: bool, int: int, float: float, string: string))
method Test07(client_id: string, struct: (bool: bool, int: int, float: float, string: string)) -> (map: [string]string)
method Test08(client_id: string, map: [string]string) -> (set: [string]())
method Test09(client_id: string, set: [string]()) -> (mytype: MyType)
method Test10(client_id: string, mytype: MyType) -> (string: string)
method Test11(client_id: string, last_more_replies: []string) -> ()
method End(client_id: string) -> (all_ok: bool)

error ClientIdError ()
error CertificationError (wants: object, got: object)
`

// clientIDErrorName is the wire name of the error returned when a client
// calls the tests out of order or with an id that has expired or was
// never issued (spec.md §7 "Handler-declared").
const clientIDErrorName = interfaceName + ".ClientIdError"

// Server implements org.varlink.certification (C10), the conformance walk
// original_source/varlink-certification/src/main.rs's CertInterface runs a
// client through. DefaultMaxLifetime governs how long an id stays valid
// after it is issued.
type Server struct {
	ids *ClientIDs
}

// DefaultMaxLifetime matches the Rust reference server's 12-hour window.
const DefaultMaxLifetime = 12 * time.Hour

// NewServer creates a certification Server with a fresh client id table.
func NewServer() *Server {
	return &Server{ids: NewClientIDs(DefaultMaxLifetime)}
}

func (s *Server) Name() string        { return interfaceName }
func (s *Server) Description() string { return idlDescription }

func (s *Server) HasMethod(method string) bool {
	switch method {
	case "Start", "Test01", "Test02", "Test03", "Test04", "Test05",
		"Test06", "Test07", "Test08", "Test09", "Test10", "Test11", "End":
		return true
	default:
		return false
	}
}

func clientIDError() error {
	return &varlink.ServerError{Name: clientIDErrorName}
}

func decodeParams(req *varlink.Request, v interface{}) error {
	params := req.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	return json.Unmarshal(params, v)
}

func (s *Server) Call(call *varlink.Call, req *varlink.Request) error {
	switch req.Method {
	case interfaceName + ".Start":
		return call.Reply(StartOut{ClientId: s.ids.New()})

	case interfaceName + ".Test01":
		var in Test01In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test01", "Test02") {
			return clientIDError()
		}
		return call.Reply(Test01Out{Bool: true})

	case interfaceName + ".Test02":
		var in Test02In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test02", "Test03") {
			return clientIDError()
		}
		return call.Reply(Test02Out{Int: 1})

	case interfaceName + ".Test03":
		var in Test03In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test03", "Test04") {
			return clientIDError()
		}
		return call.Reply(Test03Out{Float: 1.0})

	case interfaceName + ".Test04":
		var in Test04In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test04", "Test05") {
			return clientIDError()
		}
		return call.Reply(Test04Out{String: "ping"})

	case interfaceName + ".Test05":
		var in Test05In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test05", "Test06") {
			return clientIDError()
		}
		return call.Reply(Test05Out{Bool: false, Int: 2, Float: 3.14159265358979, String: "a lot of string"})

	case interfaceName + ".Test06":
		var in Test06In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test06", "Test07") {
			return clientIDError()
		}
		return call.Reply(Test06Out{Struct: Test06Struct{
			Bool: false, Int: 2, Float: 3.14159265358979, String: "a lot of string",
		}})

	case interfaceName + ".Test07":
		var in Test07In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test07", "Test08") {
			return clientIDError()
		}
		return call.Reply(Test07Out{Map: map[string]string{"foo": "Foo", "bar": "Bar"}})

	case interfaceName + ".Test08":
		var in Test08In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test08", "Test09") {
			return clientIDError()
		}
		return call.Reply(Test08Out{Set: map[string]struct{}{"one": {}, "two": {}, "three": {}}})

	case interfaceName + ".Test09":
		var in Test09In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test09", "Test10") {
			return clientIDError()
		}
		return call.Reply(Test09Out{Mytype: newMyType()})

	case interfaceName + ".Test10":
		var in Test10In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "Test10", "Test11") {
			return clientIDError()
		}
		for i := 1; i <= 10; i++ {
			out := Test10Out{String: replyNumber(i)}
			if i == 10 {
				return call.Reply(out)
			}
			if err := call.ReplyContinue(out); err != nil {
				return err
			}
		}
		return nil

	case interfaceName + ".Test11":
		var in Test11In
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		s.ids.Advance(in.ClientId, "Test11", "End")
		return nil

	case interfaceName + ".End":
		var in EndIn
		if err := decodeParams(req, &in); err != nil {
			return err
		}
		if !s.ids.Advance(in.ClientId, "End", "End") {
			return clientIDError()
		}
		return call.Reply(EndOut{AllOk: true})

	default:
		return varlink.ErrMethodNotFound
	}
}

func replyNumber(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "Reply number " + string(digits[i])
	}
	return "Reply number 10"
}

func newMyType() MyType {
	return MyType{
		Object: map[string]interface{}{
			"method":     interfaceName + ".Test09",
			"parameters": map[string]interface{}{"set": []string{"one", "two", "three"}},
		},
		Enum:       MyTypeEnumTwo,
		Struct:     MyTypeStruct{First: 1, Second: "2"},
		Array:      []string{"one", "two", "three"},
		Dictionary: map[string]string{"foo": "Foo", "bar": "Bar"},
		Stringset:  map[string]struct{}{"one": {}, "two": {}, "three": {}},
	}
}
