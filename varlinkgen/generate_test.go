package varlinkgen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/varlinkd/go-varlink/varlinkdef"
)

func pingFixture() *varlinkdef.Interface {
	return &varlinkdef.Interface{
		Name: "org.example.ping",
		Types: map[string]varlinkdef.Type{
			"State": {
				Kind: varlinkdef.KindEnum,
				Enum: varlinkdef.Enum{"up", "down"},
			},
		},
		Methods: map[string]varlinkdef.Method{
			"Ping": {
				In: varlinkdef.Struct{
					"ping": varlinkdef.TypeString,
				},
				Out: varlinkdef.Struct{
					"pong": varlinkdef.TypeString,
					"tags": {Kind: varlinkdef.KindArray, Inner: &varlinkdef.Type{Kind: varlinkdef.KindString}},
					"info": {
						Kind: varlinkdef.KindStruct,
						Struct: varlinkdef.Struct{
							"version": varlinkdef.TypeInt,
						},
					},
				},
			},
		},
		Errors: map[string]varlinkdef.Struct{
			"UnknownPing": {
				"ping": varlinkdef.TypeString,
			},
		},
	}
}

func TestGenerateRendersCoreDeclarations(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "interface org.example.ping\nmethod Ping(ping: string) -> (pong: string)\n", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	require.Contains(t, out, "package pingv1")
	require.Contains(t, out, `OrgExamplePingInterfaceName = "org.example.ping"`)
	require.Contains(t, out, "type PingIn struct")
	require.Contains(t, out, "type PingOut struct")
	require.Contains(t, out, `json:"ping"`)
}

func TestGenerateEmitsNestedInlineStruct(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	// The "info" field's inline struct is synthesized as PingOut_Info and
	// queued rather than inlined (spec.md §4.6 work-queue emission).
	require.Contains(t, out, "type PingOut_Info struct")
	require.Contains(t, out, "Version int64")
}

func TestGenerateEmitsEnum(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	require.Contains(t, out, "type State string")
	require.Contains(t, out, `StateUp   State = "up"`)
	require.Contains(t, out, `StateDown State = "down"`)
}

func TestGenerateEmitsServerInterfaceAndAdapter(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	require.Contains(t, out, "type OrgExamplePingServer interface")
	require.Contains(t, out, "Ping(call *varlink.Call, in PingIn) (PingOut, error)")
	require.Contains(t, out, "func NewOrgExamplePingInterface(impl OrgExamplePingServer) varlink.Interface")
	require.Contains(t, out, `case "org.example.ping.Ping":`)
	require.Contains(t, out, "func NewUnknownPing(params UnknownPingParams) *varlink.ServerError")
}

func TestGenerateEmitsHasMethod(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	require.Contains(t, out, "func (h *generatedOrgExamplePingHandler) HasMethod(method string) bool")
	require.Contains(t, out, `case "Ping":`)
}

func TestGenerateEmitsClientContract(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	require.Contains(t, out, "type OrgExamplePingClient struct")
	require.Contains(t, out, "func NewOrgExamplePingClient(conn *varlink.Client) *OrgExamplePingClient")
	require.Contains(t, out, "func (c *OrgExamplePingClient) Ping(in PingIn) (PingOut, error)")
	require.Contains(t, out, "func (c *OrgExamplePingClient) PingMore(in PingIn) (*varlink.MoreCall, error)")
	require.Contains(t, out, "func (c *OrgExamplePingClient) PingOneway(in PingIn) error")
}

func TestGenerateEmitsClientErrorSumType(t *testing.T) {
	iface := pingFixture()
	f, err := Generate(iface, "", "pingv1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()

	require.Contains(t, out, "type UnknownPingError struct")
	require.Contains(t, out, "type OrgExamplePingTransportError struct")
	require.Contains(t, out, "type OrgExamplePingJSONError struct")
	require.Contains(t, out, "type OrgExamplePingUnknownError struct")
	require.Contains(t, out, "func toOrgExamplePingError(err error) error")
	require.Contains(t, out, `case "org.example.ping.UnknownPing":`)
}

func TestToSnakeCaseHandlesAcronymsAndUnderscores(t *testing.T) {
	cases := map[string]string{
		"Ping":          "ping",
		"GetInfo":       "get_info",
		"_Private":      "_private",
		"GetXMLDoc":     "get_xmldoc",
		"Already_Snake": "already_snake",
	}
	for in, want := range cases {
		require.Equal(t, want, toSnakeCase(in), "toSnakeCase(%q)", in)
	}
}

func TestEntryPointNameAvoidsGoKeywords(t *testing.T) {
	require.Equal(t, "type_", entryPointName("Type"))
	require.Equal(t, "range_", entryPointName("Range"))
}
