package transaction

import "github.com/ghettovoice/gosip/internal/types"

// BuildAck constructs the ACK for a non-2xx final response to an INVITE
// (spec §4.4, RFC 3261 §17.1.1.3). It reuses the top Via of req verbatim —
// the ACK for a non-2xx shares the INVITE's branch and travels through the
// same transaction — and overwrites the To tag with the one the UAS
// assigned in res.
func BuildAck(req *Request, res *Response) *Request {
	ack := &Request{
		Method:      types.RequestMethodAck,
		RequestURI:  req.RequestURI,
		MaxForwards: AckMaxForwards,
		From:        req.From,
		To:          req.To,
		CallID:      req.CallID,
		CSeq: CSeq{
			Sequence: req.CSeq.Sequence,
			Method:   types.RequestMethodAck,
		},
	}

	if top, ok := req.TopVia(); ok {
		ack.Via = []Via{top}
	}

	if tag := res.To.Tag(); tag != "" {
		ack.To = ack.To.WithTag(tag)
	}

	if len(req.Route) > 0 {
		ack.Route = append([]string(nil), req.Route...)
	}

	return ack
}
