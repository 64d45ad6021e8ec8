package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type vatRequest struct {
	VATType string `validate:"required,vattype"`
}

func TestVATTypeRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(vatRequest{VATType: "exclusive"}))
	assert.NoError(t, v.Struct(vatRequest{VATType: "inclusive"}))
	assert.Error(t, v.Struct(vatRequest{VATType: "reverse"}))
	assert.Error(t, v.Struct(vatRequest{}))
}
