package certification

// StartOut is the reply to Start: nil -> string.
type StartOut struct {
	ClientId string `json:"client_id"`
}

// Test01In is string -> bool.
type Test01In struct {
	ClientId string `json:"client_id"`
}

type Test01Out struct {
	Bool bool `json:"bool"`
}

// Test02In is bool -> int.
type Test02In struct {
	ClientId string `json:"client_id"`
	Bool     bool   `json:"bool"`
}

type Test02Out struct {
	Int int64 `json:"int"`
}

// Test03In is int -> float.
type Test03In struct {
	ClientId string `json:"client_id"`
	Int      int64  `json:"int"`
}

type Test03Out struct {
	Float float64 `json:"float"`
}

// Test04In is float -> string.
type Test04In struct {
	ClientId string  `json:"client_id"`
	Float    float64 `json:"float"`
}

type Test04Out struct {
	String string `json:"string"`
}

// Test05In is string -> multiple values.
type Test05In struct {
	ClientId string `json:"client_id"`
	String   string `json:"string"`
}

type Test05Out struct {
	Bool   bool    `json:"bool"`
	Int    int64   `json:"int"`
	Float  float64 `json:"float"`
	String string  `json:"string"`
}

// Test06In is multiple values -> struct.
type Test06In struct {
	ClientId string  `json:"client_id"`
	Bool     bool    `json:"bool"`
	Int      int64   `json:"int"`
	Float    float64 `json:"float"`
	String   string  `json:"string"`
}

// Test06Struct is the struct both Test06's reply and Test07's argument
// carry (the generated name would be Test06_Reply_struct / Test07_Args_struct
// in the Rust bindings this is grounded on; Go collapses them into one type
// since both shapes are identical).
type Test06Struct struct {
	Bool   bool    `json:"bool"`
	Int    int64   `json:"int"`
	Float  float64 `json:"float"`
	String string  `json:"string"`
}

type Test06Out struct {
	Struct Test06Struct `json:"struct"`
}

// Test07In is struct -> map.
type Test07In struct {
	ClientId string       `json:"client_id"`
	Struct   Test06Struct `json:"struct"`
}

type Test07Out struct {
	Map map[string]string `json:"map"`
}

// Test08In is map -> set. A varlink set is a map to empty objects; Go
// represents the empty object as struct{} so the wire form is
// {"one":{},"two":{}} rather than {"one":true,...}.
type Test08In struct {
	ClientId string            `json:"client_id"`
	Map      map[string]string `json:"map"`
}

type Test08Out struct {
	Set map[string]struct{} `json:"set"`
}

// Test09In is set -> MyType, the richest type in the suite: every kind the
// grammar can express nested inside one struct (spec.md §4.6 is exercised
// by generating bindings for a type shaped like this one).
type Test09In struct {
	ClientId string              `json:"client_id"`
	Set      map[string]struct{} `json:"set"`
}

type MyTypeStruct struct {
	First  int64  `json:"first"`
	Second string `json:"second"`
}

type MyTypeEnum string

const (
	MyTypeEnumOne   MyTypeEnum = "one"
	MyTypeEnumTwo   MyTypeEnum = "two"
	MyTypeEnumThree MyTypeEnum = "three"
)

type MyType struct {
	Object              map[string]interface{} `json:"object"`
	Enum                MyTypeEnum              `json:"enum"`
	Struct              MyTypeStruct            `json:"struct"`
	Array               []string                `json:"array"`
	Dictionary          map[string]string       `json:"dictionary"`
	Stringset           map[string]struct{}     `json:"stringset"`
	Nullable            *string                 `json:"nullable,omitempty"`
	NullableArrayStruct []MyTypeStruct          `json:"nullable_array_struct,omitempty"`
}

type Test09Out struct {
	Mytype MyType `json:"mytype"`
}

// Test10In is MyType -> streaming string replies (More).
type Test10In struct {
	ClientId string `json:"client_id"`
	Mytype   MyType `json:"mytype"`
}

type Test10Out struct {
	String string `json:"string"`
}

// Test11In is a oneway call with no reply.
type Test11In struct {
	ClientId        string   `json:"client_id"`
	LastMoreReplies []string `json:"last_more_replies"`
}

type EndIn struct {
	ClientId string `json:"client_id"`
}

type EndOut struct {
	AllOk bool `json:"all_ok"`
}
