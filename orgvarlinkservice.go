package varlink

import (
	_ "embed"
	"encoding/json"
)

//go:embed org.varlink.service.varlink
var orgVarlinkServiceDescription string

// orgVarlinkService implements the built-in org.varlink.service interface
// (C5, spec.md §4.2): GetInfo and GetInterfaceDescription.
type orgVarlinkService struct {
	dispatcher *Dispatcher
}

func newOrgVarlinkService(d *Dispatcher) *orgVarlinkService {
	return &orgVarlinkService{dispatcher: d}
}

func (s *orgVarlinkService) Name() string { return "org.varlink.service" }

func (s *orgVarlinkService) Description() string { return orgVarlinkServiceDescription }

func (s *orgVarlinkService) HasMethod(method string) bool {
	switch method {
	case "GetInfo", "GetInterfaceDescription":
		return true
	default:
		return false
	}
}

type getInfoOut struct {
	Vendor     string   `json:"vendor"`
	Product    string   `json:"product"`
	Version    string   `json:"version"`
	URL        string   `json:"url"`
	Interfaces []string `json:"interfaces"`
}

type getInterfaceDescriptionIn struct {
	Interface string `json:"interface"`
}

type getInterfaceDescriptionOut struct {
	Description string `json:"description"`
}

func (s *orgVarlinkService) Call(call *Call, req *Request) error {
	switch req.Method {
	case "org.varlink.service.GetInfo":
		opts := s.dispatcher.options
		return call.Reply(getInfoOut{
			Vendor:     opts.Vendor,
			Product:    opts.Product,
			Version:    opts.Version,
			URL:        opts.URL,
			Interfaces: s.dispatcher.InterfaceNames(),
		})
	case "org.varlink.service.GetInterfaceDescription":
		var in getInterfaceDescriptionIn
		if err := json.Unmarshal(req.parameters(), &in); err != nil {
			return call.ReplyError("org.varlink.service.InvalidParameter", map[string]string{"parameter": "interface"})
		}
		iface, ok := s.dispatcher.interfaces[in.Interface]
		if !ok {
			return call.ReplyError("org.varlink.service.InvalidParameter", map[string]string{"parameter": "interface"})
		}
		return call.Reply(getInterfaceDescriptionOut{Description: iface.Description()})
	default:
		return ErrMethodNotFound
	}
}
