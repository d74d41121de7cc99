// internal/setup/options.go
package setup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedType reports an option whose current value is not one of
// the supported schemas (bool, float64, string). No shipped descriptor
// defines such an option; surfacing this as an error instead of panicking
// keeps a bad descriptor from taking the command handler down.
var ErrUnsupportedType = errors.New("setup: option has unsupported type")

// Coerce converts raw argument tokens into a typed option value, using the
// current value's type as the schema.
//
// bool:    true iff the first token is "true" or "1"
// float64: numeric parse of the joined tokens; parse failures are errors
// string:  tokens joined with single spaces, verbatim
func Coerce(current any, raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, errors.New("setup: no value given")
	}
	switch current.(type) {
	case bool:
		return raw[0] == "true" || raw[0] == "1", nil
	case float64:
		joined := strings.Join(raw, " ")
		n, err := strconv.ParseFloat(joined, 64)
		if err != nil {
			return nil, fmt.Errorf("setup: %q is not a number", joined)
		}
		return n, nil
	case string:
		return strings.Join(raw, " "), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, current)
	}
}
