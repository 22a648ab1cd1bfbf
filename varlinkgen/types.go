package varlinkgen

import (
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/varlinkd/go-varlink/varlinkdef"
)

// pendingStruct and pendingEnum are the work queue this package's type
// emission is built on, the same shape as the EnumVec/StructVec the Rust
// generator in original_source/varlink/src/generator.rs accumulates while
// walking a type: an inline "(field: type, ...)" or "(a, b, c)" has no name
// of its own, so one is synthesized from the path that reached it and the
// declaration is queued rather than emitted inline. Processing the queue
// breadth-first (instead of recursing straight into jen.Code) is what lets
// a struct nested three levels deep enqueue its own children without the
// emitter having to track recursion depth.
type pendingStruct struct {
	name string
	st   varlinkdef.Struct
}

type pendingEnum struct {
	name string
	enum varlinkdef.Enum
}

// emitter accumulates queued struct/enum declarations while rendering a
// type expression, and de-duplicates by synthesized name so two fields
// that happen to produce the same parent name (e.g. two methods both named
// "Info") don't double-declare it. That can still legitimately happen
// because inline type names are derived from the enclosing method/field
// path, not guaranteed globally unique by the IDL grammar itself.
type emitter struct {
	structs []pendingStruct
	enums   []pendingEnum
	seen    map[string]bool
}

func newEmitter() *emitter {
	return &emitter{seen: make(map[string]bool)}
}

// goType renders the Go type expression for t. parent names the
// declaration that would be synthesized if t turns out to be an inline
// struct or enum, e.g. "PingOut_Info" or "PingOut_Info_Nested".
func (e *emitter) goType(t varlinkdef.Type, parent string) jen.Code {
	inner := e.goTypeInner(t, parent)
	if t.Nullable {
		// Only "?T" becomes a pointer; plain T is never made a pointer for
		// its own sake (resolves the spec's Option<T>-representation
		// question the same way original_source's VTypeExt::Option does).
		return jen.Op("*").Add(inner)
	}
	return inner
}

func (e *emitter) goTypeInner(t varlinkdef.Type, parent string) jen.Code {
	switch t.Kind {
	case varlinkdef.KindBool:
		return jen.Bool()
	case varlinkdef.KindInt:
		return jen.Int64()
	case varlinkdef.KindFloat:
		return jen.Float64()
	case varlinkdef.KindString:
		return jen.String()
	case varlinkdef.KindObject:
		return jen.Qual("encoding/json", "RawMessage")
	case varlinkdef.KindName:
		return jen.Id(exportName(t.Name))
	case varlinkdef.KindArray:
		return jen.Index().Add(e.goType(*t.Inner, parent))
	case varlinkdef.KindMap:
		return jen.Map(jen.String()).Add(e.goType(*t.Inner, parent))
	case varlinkdef.KindStruct:
		e.enqueueStruct(parent, t.Struct)
		return jen.Id(parent)
	case varlinkdef.KindEnum:
		e.enqueueEnum(parent, t.Enum)
		return jen.Id(parent)
	default:
		panic("varlinkgen: unhandled type kind")
	}
}

func (e *emitter) enqueueStruct(name string, st varlinkdef.Struct) {
	if e.seen[name] {
		return
	}
	e.seen[name] = true
	e.structs = append(e.structs, pendingStruct{name: name, st: st})
}

func (e *emitter) enqueueEnum(name string, enum varlinkdef.Enum) {
	if e.seen[name] {
		return
	}
	e.seen[name] = true
	e.enums = append(e.enums, pendingEnum{name: name, enum: enum})
}

// structFields renders st's fields in sorted field-name order (the source
// Struct is a map; sorting is what makes generator output reproducible
// across runs, which Go's randomized map order otherwise would not be).
func (e *emitter) structFields(parent string, st varlinkdef.Struct) []jen.Code {
	names := make([]string, 0, len(st))
	for name := range st {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]jen.Code, 0, len(names))
	for _, name := range names {
		ft := st[name]
		fieldParent := parent + "_" + exportName(name)
		field := jen.Id(exportName(name))
		tag := name
		if ft.Nullable {
			tag += ",omitempty"
		}
		field = field.Add(e.goType(ft, fieldParent)).Tag(map[string]string{"json": tag})
		fields = append(fields, field)
	}
	return fields
}

// enumConsts renders a string-backed Go enum: a named string type plus one
// constant per member, each holding the member's own wire spelling.
func enumConsts(name string, enum varlinkdef.Enum) (jen.Code, []jen.Code) {
	typeDecl := jen.Type().Id(name).String()
	consts := make([]jen.Code, 0, len(enum))
	for _, member := range enum {
		consts = append(consts, jen.Id(name+exportName(member)).Id(name).Op("=").Lit(member))
	}
	return typeDecl, consts
}

// drain emits every struct/enum declaration queued so far, including ones
// that queuing itself produces while a declaration earlier in the queue is
// being rendered (a struct field whose type is itself an inline struct).
// Processing by index instead of draining-and-refilling a slice, as the
// Rust generator's "loop { ... if nstructvec.len() == 0 { break } }" does,
// gets the same breadth-first effect with less bookkeeping in Go.
func (e *emitter) drain() []jen.Code {
	var decls []jen.Code

	for i := 0; i < len(e.structs); i++ {
		p := e.structs[i]
		fields := e.structFields(p.name, p.st)
		decls = append(decls, jen.Type().Id(p.name).Struct(fields...))
	}
	for i := 0; i < len(e.enums); i++ {
		p := e.enums[i]
		typeDecl, consts := enumConsts(p.name, p.enum)
		decls = append(decls, typeDecl)
		constBlock := make([]jen.Code, len(consts))
		copy(constBlock, consts)
		decls = append(decls, jen.Const().Defs(constBlock...))
	}
	return decls
}
