package transaction

import (
	"fmt"
	"log/slog"

	"braces.dev/errtrace"

	"github.com/ghettovoice/gosip/internal/types"
	"github.com/ghettovoice/gosip/internal/util"
)

// ClientTransactionKey is the external identity of a client transaction:
// the branch parameter of the top Via header together with the request
// method, with ACK folded into INVITE (RFC 3261 §17.1.3 — a transaction's
// identity is "method, modulo ACK").
type ClientTransactionKey struct {
	Branch string
	Method types.RequestMethod
}

// NewClientTransactionKey builds a key, folding ACK into INVITE per
// RFC 3261 §17.1.3.
func NewClientTransactionKey(branch string, method types.RequestMethod) ClientTransactionKey {
	method = method.ToUpper()
	if method == types.RequestMethodAck {
		method = types.RequestMethodInvite
	}
	return ClientTransactionKey{Branch: branch, Method: method}
}

func (k ClientTransactionKey) IsZero() bool {
	return k.Branch == "" && k.Method == ""
}

func (k ClientTransactionKey) IsValid() bool {
	return k.Branch != "" && k.Method.IsValid()
}

func (k ClientTransactionKey) Equal(val any) bool {
	other, ok := val.(ClientTransactionKey)
	if !ok {
		if p, ok2 := val.(*ClientTransactionKey); ok2 && p != nil {
			other = *p
		} else {
			return false
		}
	}
	return k.Branch == other.Branch && k.Method.Equal(other.Method)
}

func (k ClientTransactionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Branch, k.Method)
}

func (k ClientTransactionKey) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		_, _ = fmt.Fprint(f, k.String())
	default:
		_, _ = fmt.Fprintf(f, "%%!%c(ClientTransactionKey=%s)", verb, k.String())
	}
}

func (k ClientTransactionKey) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("branch", k.Branch),
		slog.String("method", string(k.Method)),
	)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k ClientTransactionKey) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, util.SizePrefixedString(k.Branch)+util.SizePrefixedString(string(k.Method)))
	buf = util.AppendPrefixedString(buf, k.Branch)
	buf = util.AppendPrefixedString(buf, string(k.Method))
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (k *ClientTransactionKey) UnmarshalBinary(data []byte) error {
	branch, rest, err := util.ConsumePrefixedString(data)
	if err != nil {
		return errtrace.Wrap(err)
	}
	method, _, err := util.ConsumePrefixedString(rest)
	if err != nil {
		return errtrace.Wrap(err)
	}
	k.Branch = branch
	k.Method = types.RequestMethod(method)
	return nil
}
