package scenario

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrAssertion is returned by a step whose observation did not match.
var ErrAssertion = errors.New("assertion failed")

func expectEqual[T comparable](what string, want, got T) error {
	if want != got {
		return fmt.Errorf("%w: %s: want %v, got %v", ErrAssertion, what, want, got)
	}
	return nil
}

func expectTrue(cond bool, format string, args ...any) error {
	if !cond {
		return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
	}
	return nil
}

// expectError checks that err matches target.
func expectError(what string, err, target error) error {
	if err == nil {
		return fmt.Errorf("%w: %s: want %v, got success", ErrAssertion, what, target)
	}
	if !errors.Is(err, target) {
		return fmt.Errorf("%w: %s: want %v, got %w", ErrAssertion, what, target, err)
	}
	return nil
}

func expectIDs(what string, want, got []string) error {
	if len(want) == 0 && len(got) == 0 {
		return nil
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("%w: %s: want ids %v, got %v", ErrAssertion, what, want, got)
	}
	return nil
}
