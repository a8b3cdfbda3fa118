package layout

import "fmt"

// DecodeError reports account data that does not match its schema: a length
// mismatch, or a field whose read would run past the buffer end.
type DecodeError struct {
	Field    string
	Offset   int
	Expected int
	Actual   int
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("layout data size is not valid, expected: %d, actual: %d", e.Expected, e.Actual)
	}
	if e.Err != nil {
		return fmt.Sprintf("layout field %s at offset %d is not valid, err: %s", e.Field, e.Offset, e.Err)
	}
	return fmt.Sprintf("layout field %s at offset %d reads past the end, expected: %d, actual: %d", e.Field, e.Offset, e.Expected, e.Actual)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
