package gateway

import "fmt"

// Error kinds. Callers branch on the kind instead of probing the SDK's
// untyped error shapes.
const (
	KindBadRequest = "bad_request"
	KindGateway    = "gateway"
	KindServer     = "server"
	KindNetwork    = "network"
)

// Error is the tagged error every gateway operation returns on failure.
type Error struct {
	Kind        string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s error: %s", e.Kind, e.Description)
}

// BadRequest reports whether the gateway rejected the request itself, as
// opposed to failing to process it. Cancel treats this as idempotent success.
func (e *Error) BadRequest() bool {
	return e.Kind == KindBadRequest
}
