package filter

import "fmt"

// InvalidPatternError is returned for an only or exclude pattern that does not compile.
type InvalidPatternError struct {
	Err     error
	Pattern string
}

func (err InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid project pattern %q: %v", err.Pattern, err.Err)
}

func (err InvalidPatternError) Unwrap() error {
	return err.Err
}
