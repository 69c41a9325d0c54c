// Package lookup defines the result variants of the external lookup tools.
//
// Every tool returns a closed set of result kinds so that consumers can
// switch exhaustively over the outcome instead of probing optional fields.
// Transport-level problems are values too: a Failure is a normal result,
// not a Go error, so nothing unexpected crosses the tool boundary.
package lookup

// Failure reports a lookup that could not be completed, either because the
// input was rejected before any network call or because the upstream API
// failed. It satisfies every tool's result interface.
type Failure struct {
	Message string `json:"message"`
}

func (Failure) postalResult()  {}
func (Failure) speciesResult() {}
func (Failure) geoResult()     {}
func (Failure) weatherResult() {}
func (Failure) mediaResult()   {}
