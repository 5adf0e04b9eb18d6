// Package validation holds the input checks shared by the coupon handlers.
//
// CNPJ and CPF are validated differently: a store's CNPJ must
// carry valid check digits, while a customer's CPF given at coupon assignment
// is only checked for shape.
package validation

import (
	"regexp"
	"strings"
)

var (
	cnpjMask   = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Digits strips every non-digit character from s
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CNPJMasked reports whether s is written as XX.XXX.XXX/XXXX-XX
func CNPJMasked(s string) bool {
	return cnpjMask.MatchString(s)
}

// CNPJ reports whether s holds 14 digits with valid mod-11 check digits.
// Sequences of a single repeated digit are rejected.
func CNPJ(s string) bool {
	d := Digits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}

	return checkDigit(d[:12], 5) == int(d[12]-'0') &&
		checkDigit(d[:13], 6) == int(d[13]-'0')
}

// checkDigit computes a CNPJ verifier over digits, with weights starting at
// first and cycling 9..2.
func checkDigit(digits string, first int) int {
	sum, weight := 0, first
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weight
		if weight == 2 {
			weight = 9
		} else {
			weight--
		}
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// CPFFormat reports whether s has the shape of a CPF: eleven digits once
// punctuation is removed. No check digit verification is done.
func CPFFormat(s string) bool {
	return len(Digits(s)) == 11
}

// Email reports whether s looks like local@domain.tld
func Email(s string) bool {
	return emailShape.MatchString(s)
}
