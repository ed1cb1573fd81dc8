package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		kind   string
	}{
		{BadRequest("bad"), 400, KindBadRequest},
		{Unauthorized("denied"), 401, KindUnauthorized},
		{Conflict("taken"), 409, KindConflict},
		{Internal("broken"), 500, KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status)
		assert.Equal(t, tc.kind, tc.err.Kind)
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Customer not found", BadRequest("Customer not found").Error())
}

func TestFromKindedError(t *testing.T) {
	err := BadRequest("Customer not found")

	got := From(fmt.Errorf("handling request: %w", err))
	assert.Equal(t, err, got)
}

func TestFromUnkindedErrorDefaultsToInternal(t *testing.T) {
	got := From(errors.New("boom"))
	assert.Equal(t, 500, got.Status)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "boom", got.Message)
}
