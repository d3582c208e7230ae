package entities

import (
	"fmt"
	"strings"
)

// ResolutionKind tags a ResolutionResult
type ResolutionKind int

const (
	ResolutionSuccess ResolutionKind = iota
	ResolutionAPIError
	ResolutionTransportError
)

// String returns the label used in logs and metrics
func (k ResolutionKind) String() string {
	switch k {
	case ResolutionSuccess:
		return "success"
	case ResolutionAPIError:
		return "api_error"
	default:
		return "transport_error"
	}
}

// ResolutionResult is the classified outcome of a resolution call.
// Fields are populated according to Kind:
//   - Success: DownloadLink, StreamingLink (both optional)
//   - APIError: Message
//   - TransportError: StatusCode (0 when no response), RawBody, Malformed
type ResolutionResult struct {
	Kind          ResolutionKind
	DownloadLink  string
	StreamingLink string
	Message       string
	StatusCode    int
	RawBody       string
	Malformed     bool
}

// OK reports whether the resolution succeeded
func (r *ResolutionResult) OK() bool {
	return r.Kind == ResolutionSuccess
}

// Empty reports a success carrying no link at all
func (r *ResolutionResult) Empty() bool {
	return r.OK() && r.DownloadLink == "" && r.StreamingLink == ""
}

// Diagnostic renders the raw failure for the administrator
func (r *ResolutionResult) Diagnostic() string {
	var b strings.Builder
	fmt.Fprintf(&b, "kind: %s\n", r.Kind)
	switch r.Kind {
	case ResolutionAPIError:
		fmt.Fprintf(&b, "message: %s\n", r.Message)
	case ResolutionTransportError:
		fmt.Fprintf(&b, "status: %d\n", r.StatusCode)
		if r.Malformed {
			b.WriteString("malformed payload: true\n")
		}
		fmt.Fprintf(&b, "body: %s\n", r.RawBody)
	}
	return strings.TrimRight(b.String(), "\n")
}
