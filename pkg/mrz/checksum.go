package mrz

import (
	"errors"
	"fmt"
)

// ErrInvalidCharacter is returned when check digit input holds a character
// outside A-Z, 0-9 and the filler.
var ErrInvalidCharacter = errors.New("mrz: invalid character for check digit")

var checkWeights = [3]int{7, 3, 1}

func charValue(c byte) (int, bool) {
	switch {
	case IsFiller(c):
		return 0, true
	case isDigit(c):
		return int(c - '0'), true
	case isLetter(c):
		return int(c-'A') + 10, true
	}
	return 0, false
}

// CheckDigit computes the ICAO 9303 check digit of value: each character is
// mapped to a number (filler 0, digits as is, A=10 … Z=35), multiplied by the
// repeating weights 7, 3, 1, and the sum is taken modulo 10.
func CheckDigit(value string) (int, error) {
	sum := 0
	for i := 0; i < len(value); i++ {
		v, ok := charValue(value[i])
		if !ok {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidCharacter, value[i], i)
		}
		sum += v * checkWeights[i%len(checkWeights)]
	}
	return sum % 10, nil
}

// ValidateCheckDigit compares the declared digit against the computed one.
// A filler in place of the digit means "no check" and is accepted only when
// the field is optional.
func ValidateCheckDigit(value string, declared byte, optional bool) bool {
	if IsFiller(declared) {
		return optional
	}
	if !isDigit(declared) {
		return false
	}
	digit, err := CheckDigit(value)
	if err != nil {
		return false
	}
	return digit == int(declared-'0')
}
