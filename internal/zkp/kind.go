package zkp

import (
	"github.com/consensys/gnark/frontend"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// Kind is the closed set of circuits the engine knows. Dispatch is a tagged
// variant, not an open registry: anything that does not parse to one of the
// three known kinds is KindUnknown and always invalid.
type Kind int

const (
	KindUnknown Kind = iota
	KindMessageSend
	KindMessageDelivery
	KindForwardSecrecy
)

// AllKinds lists the full circuit catalog.
var AllKinds = []Kind{KindMessageSend, KindMessageDelivery, KindForwardSecrecy}

// KindFromID parses a wire circuit id. Unknown ids map to KindUnknown.
func KindFromID(id string) Kind {
	switch id {
	case domain.CircuitMessageSend:
		return KindMessageSend
	case domain.CircuitMessageDelivery:
		return KindMessageDelivery
	case domain.CircuitForwardSecrecy:
		return KindForwardSecrecy
	default:
		return KindUnknown
	}
}

// CircuitID returns the wire identifier for the kind.
func (k Kind) CircuitID() string {
	switch k {
	case KindMessageSend:
		return domain.CircuitMessageSend
	case KindMessageDelivery:
		return domain.CircuitMessageDelivery
	case KindForwardSecrecy:
		return domain.CircuitForwardSecrecy
	default:
		return "unknown"
	}
}

// newCircuit returns a zero circuit of the kind for compilation and witness
// construction. KindUnknown returns nil.
func (k Kind) newCircuit() frontend.Circuit {
	switch k {
	case KindMessageSend:
		return &MessageSendCircuit{}
	case KindMessageDelivery:
		return &MessageDeliveryCircuit{}
	case KindForwardSecrecy:
		return &ForwardSecrecyCircuit{}
	default:
		return nil
	}
}
