package feed

// ErrorKind classifies a failed fetch attempt.
type ErrorKind string

const (
	// KindTransport covers network failures: unreachable host, timeout, DNS.
	KindTransport ErrorKind = "transport"
	// KindBackend covers responses the backend itself flagged as failed,
	// either via a non-2xx status or an envelope with success=false.
	KindBackend ErrorKind = "backend"
	// KindUnknown covers everything that yields no usable message.
	KindUnknown ErrorKind = "unknown"
)

// genericMessage is the last-resort message when neither the transport nor
// the backend provided anything usable.
const genericMessage = "failed to fetch funding data"

// Error is the single error type returned by Client.Fetch. All kinds collapse
// to a displayable message; none of them is fatal and every attempt may be
// retried.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return genericMessage
	}
	return e.Message
}
