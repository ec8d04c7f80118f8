package models

import (
	"fmt"

	"github.com/nkiryanov/bankledger/internal/apperrors"
)

// parseEnum returns value as T if it is one of allowed
func parseEnum[T ~string](kind string, value string, allowed ...T) (T, error) {
	for _, a := range allowed {
		if string(a) == value {
			return a, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("%s %q: %w", kind, value, apperrors.ErrInvalidValue)
}
