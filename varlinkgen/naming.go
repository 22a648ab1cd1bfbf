package varlinkgen

import (
	"strings"
	"unicode"
)

// exportName derives an exported Go identifier from a varlink field or
// method name. Varlink method and type names are already written in the
// PascalCase the IDL grammar requires; field names are lower camel case.
// Either way, Go only needs the leading rune capitalized to make the
// identifier exported — unlike the Rust generator this is ported from,
// Go keeps the wire name byte-for-byte in a struct tag instead of
// reshaping the identifier into snake_case.
func exportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// goKeywords are reserved in Go and cannot be used as identifiers, even
// when they are perfectly legal varlink field names (e.g. "type", "range").
var goKeywords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

// paramName derives an unexported Go identifier for a field or handler entry
// point, suffixing it with an underscore if it would otherwise collide with
// a Go keyword (mirrors replace_if_rust_keyword in the generator this
// package is grounded on, applied to Go's reserved words instead of Rust's).
func paramName(name string) string {
	if goKeywords[name] {
		return name + "_"
	}
	return name
}

// toSnakeCase derives the snake_case handler entry-point name for a method
// or field's CamelCase wire spelling: leading underscores are preserved,
// the name is split on existing underscores, and each resulting word is
// further split immediately before an uppercase rune that follows a
// lowercase rune (so "GetXMLDoc" splits into "Get", "XMLDoc" rather than
// one letter at a time). The pieces are lowercased and rejoined with "_".
func toSnakeCase(name string) string {
	leading := 0
	for leading < len(name) && name[leading] == '_' {
		leading++
	}
	prefix := name[:leading]

	var pieces []string
	for _, word := range strings.Split(name[leading:], "_") {
		pieces = append(pieces, splitCamelWord(word)...)
	}
	for i, p := range pieces {
		pieces[i] = strings.ToLower(p)
	}
	return prefix + strings.Join(pieces, "_")
}

// splitCamelWord breaks w into runs that each start at a lowercase-to-
// uppercase boundary, leaving acronyms ("XML", "ID") intact as one run.
func splitCamelWord(w string) []string {
	runes := []rune(w)
	if len(runes) == 0 {
		return []string{w}
	}

	var pieces []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			pieces = append(pieces, string(runes[start:i]))
			start = i
		}
	}
	pieces = append(pieces, string(runes[start:]))
	return pieces
}

// entryPointName derives the unexported Go method name a generated
// dispatcher adapter uses to handle methodName, applying the snake_case
// naming policy and then Go keyword hygiene (spec.md §4.6): a method
// literally named "Type" would otherwise produce the reserved word "type".
func entryPointName(methodName string) string {
	return paramName(toSnakeCase(methodName))
}
