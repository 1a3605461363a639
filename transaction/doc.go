// Package transaction implements the SIP (RFC 3261 §17.1) client-side
// transaction layer: the INVITE and non-INVITE client state machines, their
// timer discipline, the ACK builder for non-2xx INVITE finals, and the
// dispatcher that picks a machine for an outbound request.
//
// Message parsing/serialization, transport I/O, transaction demultiplexing,
// TU business logic, and server-side transactions are external collaborators
// ([ClientTransport], [Core]) and are not implemented here.
package transaction

//go:generate go tool errtrace -w .
//go:generate go tool mockgen -destination transactionmock/mock.go -package transactionmock github.com/ghettovoice/gosip/transaction ClientTransport,Core
