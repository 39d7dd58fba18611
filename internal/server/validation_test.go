package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email  string `validate:"required,email"`
	Amount int64  `validate:"gte=1"`
}

func TestValidateStruct_Valid(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Email: "rider@example.com", Amount: 500})
	assert.Empty(t, errs)
}

func TestValidateStruct_Invalid(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Email: "not-an-email", Amount: 0})

	assert.Len(t, errs, 2)
	assert.Equal(t, "Email must be a valid email address", errs[0].Message)
	assert.Equal(t, "Amount must be greater than or equal to 1", errs[1].Message)
}
