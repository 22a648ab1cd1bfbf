// Package varlinkgen generates Go bindings from a parsed varlink interface
// definition (varlinkdef.Interface), the way
// original_source/varlink/src/generator.rs generates Rust bindings from the
// same grammar: a server-side interface to implement, the request/reply
// structs each method needs, and the glue that wires an implementation into
// a *varlink.Dispatcher.
package varlinkgen

import (
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/varlinkd/go-varlink/varlinkdef"
)

const varlinkPkg = "github.com/varlinkd/go-varlink"

// Generate renders the Go source for iface into a *jen.File in package
// goPackage. rawIDL is the original interface definition text, embedded
// verbatim as the string org.varlink.service.GetInterfaceDescription
// serves back to callers (spec.md §4.1 "GetInterfaceDescription").
func Generate(iface *varlinkdef.Interface, rawIDL, goPackage string) (*jen.File, error) {
	f := jen.NewFile(goPackage)
	f.HeaderComment("Code generated by varlinkgen. DO NOT EDIT.")
	// The module path's last segment ("go-varlink") isn't the package's own
	// name ("varlink"); without this, jennifer would guess an alias from
	// the path instead of importing it the way every other file in this
	// repo does.
	f.ImportName(varlinkPkg, "varlink")

	e := newEmitter()
	goName := goInterfaceName(iface.Name)

	f.Const().Id(goName + "InterfaceName").Op("=").Lit(iface.Name)
	f.Var().Id(goName + "Description").Op("=").Lit(rawIDL)

	for _, decl := range namedTypeDecls(e, iface) {
		f.Add(decl)
	}

	methodNames := sortedKeys(iface.Methods)
	for _, name := range methodNames {
		m := iface.Methods[name]
		f.Type().Id(name + "In").Struct(e.structFields(name+"In", m.In)...)
		f.Type().Id(name + "Out").Struct(e.structFields(name+"Out", m.Out)...)
	}

	errorNames := sortedKeys(iface.Errors)
	for _, name := range errorNames {
		st := iface.Errors[name]
		f.Type().Id(name + "Params").Struct(e.structFields(name+"Params", st)...)
		f.Add(errorConstructor(iface.Name, name))
	}

	for _, decl := range e.drain() {
		f.Add(decl)
	}

	f.Add(serverInterface(goName, iface, methodNames))
	f.Add(dispatcherAdapter(goName, iface, methodNames)...)
	f.Add(clientContract(goName, iface, methodNames)...)
	f.Add(errorSumType(goName, iface, errorNames)...)

	return f, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// goInterfaceName turns a reverse-DNS interface name like
// "org.example.ping" into an exported Go identifier prefix, "OrgExamplePing".
func goInterfaceName(ifaceName string) string {
	var out string
	start := 0
	for i := 0; i <= len(ifaceName); i++ {
		if i == len(ifaceName) || ifaceName[i] == '.' || ifaceName[i] == '-' {
			if i > start {
				out += exportName(ifaceName[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func namedTypeDecls(e *emitter, iface *varlinkdef.Interface) []jen.Code {
	var decls []jen.Code
	for _, name := range sortedKeys(iface.Types) {
		t := iface.Types[name]
		goName := exportName(name)
		switch t.Kind {
		case varlinkdef.KindStruct:
			decls = append(decls, jen.Type().Id(goName).Struct(e.structFields(goName, t.Struct)...))
		case varlinkdef.KindEnum:
			typeDecl, consts := enumConsts(goName, t.Enum)
			decls = append(decls, typeDecl)
			decls = append(decls, jen.Const().Defs(consts...))
		default:
			// The grammar only allows "type Name (...)" to introduce a
			// struct or enum (varlinkdef.readStructOrEnum); any other kind
			// here would mean the parser accepted something it shouldn't
			// have.
		}
	}
	return decls
}

// errorConstructor emits a New<Name> helper that builds the
// *varlink.ServerError a generated Call method returns for a declared IDL
// error, so handwritten interface implementations never have to spell the
// "iface.Error" wire name themselves.
func errorConstructor(ifaceName, errName string) jen.Code {
	wireName := ifaceName + "." + errName
	return jen.Func().Id("New"+errName).Params(
		jen.Id("params").Id(errName+"Params"),
	).Op("*").Qual(varlinkPkg, "ServerError").Block(
		jen.Return(jen.Op("&").Qual(varlinkPkg, "ServerError").Values(jen.Dict{
			jen.Id("Name"):       jen.Lit(wireName),
			jen.Id("Parameters"): jen.Id("params"),
		})),
	)
}

// serverInterface emits the interface an application implements to handle
// iface's methods (analogous to original_source's VarlinkInterface trait).
func serverInterface(goName string, iface *varlinkdef.Interface, methodNames []string) jen.Code {
	methods := make([]jen.Code, 0, len(methodNames))
	for _, name := range methodNames {
		methods = append(methods, jen.Id(name).Params(
			jen.Id("call").Op("*").Qual(varlinkPkg, "Call"),
			jen.Id("in").Id(name+"In"),
		).Params(jen.Id(name+"Out"), jen.Error()))
	}
	return jen.Type().Id(goName + "Server").Interface(methods...)
}

// dispatcherAdapter emits the varlink.Interface implementation that adapts
// a <goName>Server into something *varlink.Dispatcher.Register accepts
// (analogous to original_source's VarlinkInterfaceProxy).
func dispatcherAdapter(goName string, iface *varlinkdef.Interface, methodNames []string) []jen.Code {
	adapterType := "generated" + goName + "Handler"

	var code []jen.Code

	code = append(code, jen.Type().Id(adapterType).Struct(
		jen.Id("impl").Id(goName+"Server"),
	))

	code = append(code, jen.Func().Id("New"+goName+"Interface").Params(
		jen.Id("impl").Id(goName+"Server"),
	).Qual(varlinkPkg, "Interface").Block(
		jen.Return(jen.Op("&").Id(adapterType).Values(jen.Dict{jen.Id("impl"): jen.Id("impl")})),
	))

	code = append(code, jen.Func().Params(jen.Id("h").Op("*").Id(adapterType)).Id("Name").Params().String().Block(
		jen.Return(jen.Id(goName + "InterfaceName")),
	))

	code = append(code, jen.Func().Params(jen.Id("h").Op("*").Id(adapterType)).Id("Description").Params().String().Block(
		jen.Return(jen.Id(goName + "Description")),
	))

	hasMethodValues := make([]jen.Code, 0, len(methodNames))
	for _, name := range methodNames {
		hasMethodValues = append(hasMethodValues, jen.Lit(name))
	}
	code = append(code, jen.Func().Params(jen.Id("h").Op("*").Id(adapterType)).Id("HasMethod").Params(
		jen.Id("method").String(),
	).Bool().Block(
		jen.Switch(jen.Id("method")).Block(
			jen.Case(hasMethodValues...).Block(jen.Return(jen.True())),
		),
		jen.Return(jen.False()),
	))

	cases := make([]jen.Code, 0, len(methodNames))
	for _, name := range methodNames {
		wireName := iface.Name + "." + name
		entry := entryPointName(name)
		cases = append(cases, jen.Case(jen.Lit(wireName)).Block(
			jen.Return(jen.Id("h").Dot(entry).Call(jen.Id("call"), jen.Id("req"))),
		))
		code = append(code, entryPointMethod(adapterType, name, entry))
	}
	cases = append(cases, jen.Default().Block(
		jen.Return(jen.Qual(varlinkPkg, "ErrMethodNotFound")),
	))

	callMethod := jen.Func().Params(jen.Id("h").Op("*").Id(adapterType)).Id("Call").Params(
		jen.Id("call").Op("*").Qual(varlinkPkg, "Call"),
		jen.Id("req").Op("*").Qual(varlinkPkg, "Request"),
	).Error().Block(
		jen.Switch(jen.Id("req").Dot("Method")).Block(cases...),
	)
	code = append(code, callMethod)

	return code
}

// entryPointMethod emits the unexported handler entry point a single IDL
// method dispatches through: unmarshal parameters, invoke the application's
// implementation, translate a returned *varlink.ServerError into a reply.
// Its Go name comes from the naming policy in naming.go, not from name
// itself, which is why callMethod's switch calls it by a separately
// computed identifier rather than by methodName.
func entryPointMethod(adapterType, methodName, entry string) jen.Code {
	return jen.Func().Params(jen.Id("h").Op("*").Id(adapterType)).Id(entry).Params(
		jen.Id("call").Op("*").Qual(varlinkPkg, "Call"),
		jen.Id("req").Op("*").Qual(varlinkPkg, "Request"),
	).Error().Block(
		jen.Var().Id("in").Id(methodName+"In"),
		jen.Id("params").Op(":=").Id("req").Dot("Parameters"),
		jen.If(jen.Len(jen.Id("params")).Op("==").Lit(0)).Block(
			jen.Id("params").Op("=").Qual("encoding/json", "RawMessage").Call(jen.Lit("{}")),
		),
		jen.If(jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("params"), jen.Op("&").Id("in")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Id("call").Dot("ReplyError").Call(
				jen.Lit("org.varlink.service.InvalidParameter"),
				jen.Map(jen.String()).String().Values(jen.Dict{jen.Lit("parameter"): jen.Lit("parameters")}),
			)),
		),
		jen.List(jen.Id("out"), jen.Err()).Op(":=").Id("h").Dot("impl").Dot(methodName).Call(jen.Id("call"), jen.Id("in")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Var().Id("serr").Op("*").Qual(varlinkPkg, "ServerError"),
			jen.If(jen.Qual("errors", "As").Call(jen.Err(), jen.Op("&").Id("serr"))).Block(
				jen.Return(jen.Id("call").Dot("ReplyError").Call(jen.Id("serr").Dot("Name"), jen.Id("serr").Dot("Parameters"))),
			),
			jen.Return(jen.Err()),
		),
		jen.Return(jen.Id("call").Dot("Reply").Call(jen.Id("out"))),
	)
}

// clientContract emits a typed client for iface (item 7): a struct wrapping
// a *varlink.Client, and per method a blocking call, a More-streaming call,
// and a Oneway call, mirroring the three call shapes *varlink.Client itself
// exposes (Do/DoMore/DoOneway).
func clientContract(goName string, iface *varlinkdef.Interface, methodNames []string) []jen.Code {
	clientType := goName + "Client"

	var code []jen.Code
	code = append(code, jen.Type().Id(clientType).Struct(
		jen.Id("conn").Op("*").Qual(varlinkPkg, "Client"),
	))
	code = append(code, jen.Func().Id("New"+clientType).Params(
		jen.Id("conn").Op("*").Qual(varlinkPkg, "Client"),
	).Op("*").Id(clientType).Block(
		jen.Return(jen.Op("&").Id(clientType).Values(jen.Dict{jen.Id("conn"): jen.Id("conn")})),
	))

	for _, name := range methodNames {
		wireName := iface.Name + "." + name
		inType, outType := name+"In", name+"Out"

		code = append(code, jen.Func().Params(jen.Id("c").Op("*").Id(clientType)).Id(name).Params(
			jen.Id("in").Id(inType),
		).Params(jen.Id(outType), jen.Error()).Block(
			jen.Var().Id("out").Id(outType),
			jen.If(jen.Err().Op(":=").Id("c").Dot("conn").Dot("Do").Call(jen.Lit(wireName), jen.Id("in"), jen.Op("&").Id("out")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Id("out"), jen.Id("to"+goName+"Error").Call(jen.Err())),
			),
			jen.Return(jen.Id("out"), jen.Nil()),
		))

		code = append(code, jen.Func().Params(jen.Id("c").Op("*").Id(clientType)).Id(name+"More").Params(
			jen.Id("in").Id(inType),
		).Params(jen.Op("*").Qual(varlinkPkg, "MoreCall"), jen.Error()).Block(
			jen.List(jen.Id("call"), jen.Err()).Op(":=").Id("c").Dot("conn").Dot("DoMore").Call(jen.Lit(wireName), jen.Id("in")),
			jen.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Id("to"+goName+"Error").Call(jen.Err())),
			),
			jen.Return(jen.Id("call"), jen.Nil()),
		))

		code = append(code, jen.Func().Params(jen.Id("c").Op("*").Id(clientType)).Id(name+"Oneway").Params(
			jen.Id("in").Id(inType),
		).Error().Block(
			jen.Return(jen.Id("to"+goName+"Error").Call(jen.Id("c").Dot("conn").Dot("DoOneway").Call(jen.Lit(wireName), jen.Id("in")))),
		))
	}

	return code
}

// errorSumType emits the client-side error translation (item 9): one
// concrete error type per IDL-declared error, three sentinel types for
// failures the IDL doesn't describe (transport, undecodable parameters, an
// error reply naming something the interface never declared), and a
// to<goName>Error function mapping a raw *varlink.Error onto whichever of
// these actually matches, the way errors.As lets a handwritten client match
// on a specific declared error without parsing wire names itself.
func errorSumType(goName string, iface *varlinkdef.Interface, errorNames []string) []jen.Code {
	var code []jen.Code

	transportType := goName + "TransportError"
	jsonType := goName + "JSONError"
	unknownType := goName + "UnknownError"

	code = append(code, jen.Type().Id(transportType).Struct(jen.Id("Err").Error()))
	code = append(code, jen.Func().Params(jen.Id("e").Op("*").Id(transportType)).Id("Error").Params().String().Block(
		jen.Return(jen.Lit("varlink: "+goName+": transport: ").Op("+").Id("e").Dot("Err").Dot("Error").Call()),
	))
	code = append(code, jen.Func().Params(jen.Id("e").Op("*").Id(transportType)).Id("Unwrap").Params().Error().Block(
		jen.Return(jen.Id("e").Dot("Err")),
	))

	code = append(code, jen.Type().Id(jsonType).Struct(jen.Id("Err").Error()))
	code = append(code, jen.Func().Params(jen.Id("e").Op("*").Id(jsonType)).Id("Error").Params().String().Block(
		jen.Return(jen.Lit("varlink: "+goName+": undecodable error parameters: ").Op("+").Id("e").Dot("Err").Dot("Error").Call()),
	))
	code = append(code, jen.Func().Params(jen.Id("e").Op("*").Id(jsonType)).Id("Unwrap").Params().Error().Block(
		jen.Return(jen.Id("e").Dot("Err")),
	))

	code = append(code, jen.Type().Id(unknownType).Struct(jen.Id("Reply").Op("*").Qual(varlinkPkg, "Error")))
	code = append(code, jen.Func().Params(jen.Id("e").Op("*").Id(unknownType)).Id("Error").Params().String().Block(
		jen.Return(jen.Lit("varlink: "+goName+": unknown error reply: ").Op("+").Id("e").Dot("Reply").Dot("Name")),
	))

	cases := make([]jen.Code, 0, len(errorNames))
	for _, name := range errorNames {
		wireName := iface.Name + "." + name
		errType := name + "Error"
		code = append(code, jen.Type().Id(errType).Struct(jen.Id("Params").Id(name+"Params")))
		code = append(code, jen.Func().Params(jen.Id("e").Op("*").Id(errType)).Id("Error").Params().String().Block(
			jen.Return(jen.Lit(wireName)),
		))

		cases = append(cases, jen.Case(jen.Lit(wireName)).Block(
			jen.Var().Id("params").Id(name+"Params"),
			jen.If(
				jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("verr").Dot("Parameters"), jen.Op("&").Id("params")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Return(jen.Op("&").Id(jsonType).Values(jen.Dict{jen.Id("Err"): jen.Err()})),
			),
			jen.Return(jen.Op("&").Id(errType).Values(jen.Dict{jen.Id("Params"): jen.Id("params")})),
		))
	}
	cases = append(cases, jen.Default().Block(
		jen.Return(jen.Op("&").Id(unknownType).Values(jen.Dict{jen.Id("Reply"): jen.Id("verr")})),
	))

	code = append(code, jen.Func().Id("to"+goName+"Error").Params(jen.Id("err").Error()).Error().Block(
		jen.If(jen.Id("err").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Var().Id("verr").Op("*").Qual(varlinkPkg, "Error"),
		jen.If(jen.Op("!").Qual("errors", "As").Call(jen.Id("err"), jen.Op("&").Id("verr"))).Block(
			jen.Return(jen.Op("&").Id(transportType).Values(jen.Dict{jen.Id("Err"): jen.Id("err")})),
		),
		jen.Switch(jen.Id("verr").Dot("Name")).Block(cases...),
	))

	return code
}
