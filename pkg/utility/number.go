package utility

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrNotANumber    = errors.New("not a number")
	ErrWrongType     = errors.New("wrong type")
)

// DecimalNumber is a float64 that decodes from either a JSON number or a JSON
// string holding a decimal number.
type DecimalNumber float64

func (d *DecimalNumber) UnmarshalJSON(data []byte) error {
	v, err := ParseDecimalNumber(data)
	if err != nil {
		return err
	}
	*d = DecimalNumber(v)
	return nil
}

func (d DecimalNumber) Float64() float64 { return float64(d) }

// ParseDecimalNumber decodes a single raw JSON value into a float64. Numbers are
// converted directly, strings are parsed as decimal floats, every other JSON
// type is rejected with ErrWrongType.
func ParseDecimalNumber(raw []byte) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty value: %w", ErrWrongType)
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("malformed string %s: %w", raw, ErrNotANumber)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("unable to parse %q: %w", s, ErrNotANumber)
		}
		return v, nil
	case c == '-' || (c >= '0' && c <= '9'):
		if !json.Valid(raw) {
			return 0, fmt.Errorf("malformed number %s: %w", raw, ErrInvalidNumber)
		}
		v, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return 0, fmt.Errorf("number %s is not representable as float64: %w", raw, ErrInvalidNumber)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("expected number or numeric string, got %s: %w", jsonKind(c), ErrWrongType)
	}
}

func jsonKind(c byte) string {
	switch c {
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	case '{':
		return "object"
	case '[':
		return "array"
	default:
		return "invalid value"
	}
}
