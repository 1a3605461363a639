package transaction

import (
	"context"

	"github.com/ghettovoice/gosip/internal/types"
)

// Dispatcher is the entry point Core code uses to start client transactions
// (spec §4.1, component C7). It owns no transaction-table storage itself —
// each started [baseTransact] (base.go) is handed back directly to the
// caller to key and hold — it only knows how to pick and start the right
// state machine for a method.
type Dispatcher struct{}

// Start creates and starts a client transaction for req. INVITE starts an
// [inviteClientTransact]; every other method except ACK starts a
// [nonInviteClientTransact] (RFC 3261 §17.1.3 — ACK for a non-2xx is part of
// the INVITE transaction itself and is never dispatched on its own; an ACK
// for a 2xx is sent directly by the Core, outside any transaction).
func (Dispatcher) Start(ctx context.Context, req *Request, transport ClientTransport, core Core, opts ClientTransactionOptions) (Transaction, error) {
	if req.Method.Equal(types.RequestMethodAck) {
		return nil, ErrUnsupportedMethod
	}

	if opts.Key.IsZero() {
		if via, ok := req.TopVia(); ok {
			opts.Key = NewClientTransactionKey(via.Branch(), req.Method)
		}
	}

	var tx Transaction
	if req.Method.Equal(types.RequestMethodInvite) {
		ic := newInviteClientFSM(req, transport, core, opts)
		ic.start(ctx)
		tx = ic
	} else {
		nc := newNonInviteClientFSM(req, transport, core, opts)
		nc.start(ctx)
		tx = nc
	}
	return tx, nil
}
