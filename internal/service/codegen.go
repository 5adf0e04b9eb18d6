package service

import (
	"context"

	"github.com/jaevor/go-nanoid"

	"coupon-service/prometheus"
)

const (
	// CodeAlphabet is the character set of campaign and individual coupon codes
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength is the length of every generated code
	CodeLength = 8
	// MaxCodeAttempts bounds the collision retries of code allocation
	MaxCodeAttempts = 10
)

// CodeGenerator returns a new random code on every call
type CodeGenerator func() string

// NewCodeGenerator returns a generator drawing CodeLength characters
// uniformly from CodeAlphabet using crypto/rand.
func NewCodeGenerator() (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(CodeAlphabet, CodeLength)
	if err != nil {
		return nil, err
	}
	return CodeGenerator(gen), nil
}

var errCodeTaken = conflict("code already in use")

// allocateCode draws codes until try accepts one. try returns errCodeTaken to
// ask for another code; any other error stops the loop. After MaxCodeAttempts
// collisions the allocation fails with ResourceExhausted.
func allocateCode(ctx context.Context, gen CodeGenerator, try func(code string) error) error {
	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return internal("allocate code", err)
		}

		err := try(gen())
		if err != errCodeTaken {
			return err
		}
		prometheus.CodeCollisionsCounter.Inc()
	}

	return &Error{Kind: KindExhausted, Message: "Unable to generate unique coupon code"}
}
