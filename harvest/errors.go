package harvest

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FetchErrorKind labels the recoverable fetch failure classes. Each
// counts against the loop's consecutive-failure budget.
type FetchErrorKind string

const (
	FetchTimeout   FetchErrorKind = "timeout"
	FetchNetwork   FetchErrorKind = "network"
	FetchMalformed FetchErrorKind = "malformed"
)

// FetchError classifies a failed page fetch. The page fetcher returns
// it instead of retrying; retry and abort policy belong to the loop.
type FetchError struct {
	Kind FetchErrorKind
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %s: %v", e.Page, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyFetchError maps a transport failure onto the fetch error
// taxonomy. Decode failures are classified at the call site as
// FetchMalformed.
func classifyFetchError(page int, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: FetchTimeout, Page: page, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: FetchTimeout, Page: page, Err: err}
	}
	return &FetchError{Kind: FetchNetwork, Page: page, Err: err}
}
