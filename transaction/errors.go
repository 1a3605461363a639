package transaction

import "github.com/ghettovoice/gosip/internal/errorutil"

const (
	// ErrTransportFailed is reported to the Core when the transport fails to
	// send a request or an ACK.
	ErrTransportFailed errorutil.Error = "transaction: transport error"
	// ErrTransactionTimedOut is reported to the Core when Timer B (INVITE)
	// or Timer F (non-INVITE) expires.
	ErrTransactionTimedOut errorutil.Error = "transaction: timed out"
	// ErrShutdown is the reason recorded when a transaction is terminated
	// by an external Terminate call rather than a protocol event.
	ErrShutdown errorutil.Error = "transaction: shutdown"
	// ErrUnsupportedMethod is returned by Dispatcher.Start for a method that
	// cannot be dispatched as a client transaction (ACK).
	ErrUnsupportedMethod errorutil.Error = "transaction: method not supported by a client transaction"
)
