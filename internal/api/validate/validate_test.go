package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.Nil(t, Required("token", "x"))
	e := Required("token", "   ")
	assert.NotNil(t, e)
	assert.Equal(t, "token", e.Field)
}

func TestMaxLen(t *testing.T) {
	assert.Nil(t, MaxLen("token", "abc", 3))
	assert.NotNil(t, MaxLen("token", "abcd", 3))
}

func TestErrsError(t *testing.T) {
	errs := Errs{
		{Field: "token", Message: "token is required"},
		{Field: "amount", Message: "amount too long"},
	}
	assert.Equal(t, "token: token is required; amount: amount too long", errs.Error())
}
