package workflow

import "fmt"

// CardinalityError reports an enumeration that did not produce the expected
// number of distinct club pages. Runs hitting this are rejected rather than
// failed: the site structure changed or the wrong league was fetched, and
// retrying won't help.
type CardinalityError struct {
	Expected int
	Actual   int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("expected %d distinct club pages, found %d", e.Expected, e.Actual)
}

// ExtractionError reports a club whose extraction failed after all retry
// attempts were used.
type ExtractionError struct {
	ClubURL  string
	Attempts int
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s failed after %d attempts: %v", e.ClubURL, e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
