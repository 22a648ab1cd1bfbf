package certification

import (
	"github.com/varlinkd/go-varlink"
)

// interfaceName is the wire name of the certification interface.
const interfaceName = "org.varlink.certification"

// Client drives the org.varlink.certification test sequence against a
// server (cmd/certification). It is hand-written rather than generated:
// org.varlink.certification has no .varlink IDL file feeding varlinkgen in
// this tree, so Test10's More call and Test11's Oneway call go through the
// embedded *varlink.Client's DoMore/DoOneway directly, the same way a
// varlinkgen-generated client's PingMore/PingOneway would.
type Client struct {
	Client *varlink.Client
}

func (c *Client) Start(_ *struct{}) (*StartOut, error) {
	var out StartOut
	if err := c.Client.Do(interfaceName+".Start", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test01(in *Test01In) (*Test01Out, error) {
	var out Test01Out
	if err := c.Client.Do(interfaceName+".Test01", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test02(in *Test02In) (*Test02Out, error) {
	var out Test02Out
	if err := c.Client.Do(interfaceName+".Test02", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test03(in *Test03In) (*Test03Out, error) {
	var out Test03Out
	if err := c.Client.Do(interfaceName+".Test03", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test04(in *Test04In) (*Test04Out, error) {
	var out Test04Out
	if err := c.Client.Do(interfaceName+".Test04", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test05(in *Test05In) (*Test05Out, error) {
	var out Test05Out
	if err := c.Client.Do(interfaceName+".Test05", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test06(in *Test06In) (*Test06Out, error) {
	var out Test06Out
	if err := c.Client.Do(interfaceName+".Test06", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test07(in *Test07In) (*Test07Out, error) {
	var out Test07Out
	if err := c.Client.Do(interfaceName+".Test07", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test08(in *Test08In) (*Test08Out, error) {
	var out Test08Out
	if err := c.Client.Do(interfaceName+".Test08", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Test09(in *Test09In) (*Test09Out, error) {
	var out Test09Out
	if err := c.Client.Do(interfaceName+".Test09", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) End(in *EndIn) (*EndOut, error) {
	var out EndOut
	if err := c.Client.Do(interfaceName+".End", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
