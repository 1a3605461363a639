package transaction

import "github.com/ghettovoice/gosip/internal/types"

// AckMaxForwards is the Max-Forwards value AckBuilder stamps on every ACK it
// constructs (spec §4.4).
const AckMaxForwards = 70

// Via is the subset of a Via header the transaction layer reads: the
// transport/host/port triple plus its parameters, the most important of
// which is branch.
type Via struct {
	Transport string
	Host      string
	Port      int
	Params    types.Values
}

// Branch returns the branch parameter, or "" if absent.
func (v Via) Branch() string {
	b, _ := v.Params.First("branch")
	return b
}

// NameAddr models a From/To header: a display name, a URI, and parameters
// (of which "tag" is the one the transaction layer cares about).
type NameAddr struct {
	DisplayName string
	URI         string
	Params      types.Values
}

// Tag returns the tag parameter, or "" if absent.
func (n NameAddr) Tag() string {
	t, _ := n.Params.First("tag")
	return t
}

// WithTag returns a copy of n with its tag parameter set to tag.
func (n NameAddr) WithTag(tag string) NameAddr {
	params := n.Params.Clone()
	if params == nil {
		params = types.Values{}
	}
	params.Set("tag", tag)
	n.Params = params
	return n
}

// CSeq is the CSeq header: a sequence number and the method it refers to.
type CSeq struct {
	Sequence uint32
	Method   types.RequestMethod
}

// Request is the minimal immutable view of a SIP request the transaction
// layer needs. Full wire-format parsing/rendering belongs to the external
// MessageCodec collaborator (spec §1, §6.3).
type Request struct {
	Method      types.RequestMethod
	RequestURI  string
	MaxForwards int
	Via         []Via
	From        NameAddr
	To          NameAddr
	CallID      string
	CSeq        CSeq
	Route       []string
}

// TopVia returns the first Via entry, which carries the transaction branch.
func (r *Request) TopVia() (Via, bool) {
	if r == nil || len(r.Via) == 0 {
		return Via{}, false
	}
	return r.Via[0], true
}

// Clone returns a deep-enough copy safe to mutate independently of r.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	c.Via = append([]Via(nil), r.Via...)
	c.Route = append([]string(nil), r.Route...)
	c.From.Params = r.From.Params.Clone()
	c.To.Params = r.To.Params.Clone()
	return &c
}

// Response is the minimal immutable view of a SIP response the transaction
// layer needs.
type Response struct {
	StatusCode types.ResponseStatus
	Reason     string
	Via        []Via
	From       NameAddr
	To         NameAddr
	CallID     string
	CSeq       CSeq
}

// Class returns the status class: 1 (provisional) through 6.
func (r *Response) Class() int { return int(r.StatusCode) / 100 }

// Clone returns a deep-enough copy safe to mutate independently of r.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Via = append([]Via(nil), r.Via...)
	c.From.Params = r.From.Params.Clone()
	c.To.Params = r.To.Params.Clone()
	return &c
}
