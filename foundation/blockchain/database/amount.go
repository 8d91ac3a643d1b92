package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when an amount isn't a finite JSON number.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a transaction value held as the JSON number literal that goes
// into the block digest. Literals are kept in the form Python's json module
// writes them so blocks hash the same on every node: integers keep all of
// their digits and any other number is written as the shortest float repr.
type Amount string

// ParseAmount validates the JSON number literal and returns it in its
// written form.
func ParseAmount(literal string) (Amount, error) {
	s := strings.TrimSpace(literal)
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) || !json.Valid([]byte(s)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, literal)
	}

	// Integers are unbounded and are written back digit for digit.
	if !strings.ContainsAny(s, ".eE") {
		if s == "-0" {
			return "0", nil
		}
		return Amount(s), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && (!errors.Is(err, strconv.ErrRange) || math.IsInf(f, 0)) {
		return "", fmt.Errorf("%w: %q: %s", ErrInvalidAmount, literal, err)
	}

	return FloatAmount(f), nil
}

// FloatAmount returns the amount for a float value. Integral values are
// written with a trailing ".0" and the exponent form is used below 1e-4 and
// from 1e16 up. Values that can't be represented in JSON become zero.
func FloatAmount(f float64) Amount {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}

	exp := 0
	if f != 0 {
		e := strconv.FormatFloat(f, 'e', -1, 64)
		exp, _ = strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	}

	if exp < -4 || exp >= 16 {
		return Amount(strconv.FormatFloat(f, 'e', -1, 64))
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return Amount(s)
}

// String implements the fmt.Stringer interface.
func (a Amount) String() string {
	if a == "" {
		return "0"
	}
	return string(a)
}

// MarshalJSON writes the literal as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number and keeps it in its written form.
// Strings holding numbers are rejected.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	amount, err := ParseAmount(string(data))
	if err != nil {
		return err
	}

	*a = amount
	return nil
}
