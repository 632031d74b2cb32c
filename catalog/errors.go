package catalog

import "fmt"

// UnavailableError reports that the catalog could not be reached or refused
// the request, after the retry budget was exhausted for transient causes.
type UnavailableError struct {
	// ID of the node whose listing failed, empty for the root listing.
	ID     string
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	switch {
	case e.Status != 0 && e.ID != "":
		return fmt.Sprintf("catalog unavailable for %q: HTTP %d", e.ID, e.Status)
	case e.Status != 0:
		return fmt.Sprintf("catalog unavailable: HTTP %d", e.Status)
	case e.ID != "":
		return fmt.Sprintf("catalog unavailable for %q: %v", e.ID, e.Err)
	default:
		return fmt.Sprintf("catalog unavailable: %v", e.Err)
	}
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// MalformedError reports a payload that could not be parsed into catalog nodes.
// It carries the identifier of the offending entity for diagnostics.
type MalformedError struct {
	ID  string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed catalog response for %q: %v", e.ID, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
