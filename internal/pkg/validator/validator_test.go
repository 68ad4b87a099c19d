package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" validate:"required,min=3"`
	Price float64 `json:"price,omitempty" validate:"gt=0"`
	Note  string  `validate:"max=2"`
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(sample{Name: "ab", Note: "abc"})
	require.Error(t, err)

	var fieldErrs validator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs))

	fields := map[string]string{}
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"name": "min", "price": "gt", "Note": "max"}, fields)
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "abc", Price: 1}))
	assert.Same(t, validate, Get())
}
