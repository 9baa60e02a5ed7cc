package convert

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrNumericParse signals a provider value that failed numeric parsing.
var ErrNumericParse = errors.New("numeric parse failure")

// Sensor is the plain passthrough converter: the source value becomes the
// attribute value unchanged.
type Sensor struct {
	S Spec
}

func (c Sensor) Spec() Spec { return c.S }

func (c Sensor) Decode(_ *Context, payload Payload, value any) error {
	payload[c.S.Attr] = value
	return nil
}

// Numeric strips a unit substring from the source value, parses it and
// rounds half-up to a configured precision. The parse-failure policy is
// explicit per converter: lenient drops the attribute, strict surfaces
// ErrNumericParse (and the converter is skipped for the pass).
type Numeric struct {
	S         Spec
	Unit      string
	Precision int
	// Strict converts parse failures into errors instead of dropping the
	// attribute silently.
	Strict bool
}

func (c Numeric) Spec() Spec { return c.S }

func (c Numeric) Decode(_ *Context, payload Payload, value any) error {
	val, err := c.parse(value)
	if err != nil {
		if c.Strict {
			return err
		}
		return nil
	}
	payload[c.S.Attr] = val
	return nil
}

func (c Numeric) parse(value any) (float64, error) {
	s := strings.TrimSpace(fmt.Sprint(value))
	if c.Unit != "" {
		s = strings.TrimSpace(strings.ReplaceAll(s, c.Unit, ""))
	}
	val, err := roundHalfUp(s, c.Precision)
	if err != nil {
		return 0, fmt.Errorf("%w: attr %s: %q", ErrNumericParse, c.S.Attr, s)
	}
	return val, nil
}

// roundHalfUp parses a decimal string and rounds it half-up (away from
// zero) at prec decimal places. The arithmetic runs on the decimal
// representation: rounding the nearest binary float would turn 23.45 into
// 23.4 because the float actually stored is 23.44999….
func roundHalfUp(s string, prec int) (float64, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	neg := r.Sign() < 0
	abs := new(big.Rat).Abs(r)

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(prec)), nil)
	abs.Mul(abs, new(big.Rat).SetInt(scale))
	abs.Add(abs, big.NewRat(1, 2))

	units := new(big.Int).Quo(abs.Num(), abs.Denom())
	out, _ := new(big.Rat).SetFrac(units, scale).Float64()
	if neg {
		out = -out
	}
	return out, nil
}
