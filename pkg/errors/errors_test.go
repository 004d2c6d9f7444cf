package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := fmt.Errorf("service: %w", Clone(ErrNotFound, "class not found"))
	appErr := FromError(err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "class not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(stdErrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := Transport(stdErrors.New("dial tcp: refused"), "failed to fetch roster")
	assert.True(t, stdErrors.Is(err, ErrTransport))
	assert.False(t, stdErrors.Is(err, ErrValidation))
	assert.True(t, stdErrors.Is(Clone(ErrInvalidWeights, "total 90"), ErrInvalidWeights))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	c := Clone(ErrValidation, "custom")
	assert.Equal(t, "custom", c.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestValidationListsFieldErrors(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Score int    `validate:"min=0,max=100"`
	}
	err := validator.New().Struct(payload{Score: 120})
	require.Error(t, err)

	appErr := Validation(err, "invalid score payload")
	assert.True(t, stdErrors.Is(appErr, ErrValidation))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, []FieldError{
		{Field: "payload.Name", Rule: "required"},
		{Field: "payload.Score", Rule: "max", Param: "100"},
	}, appErr.Details)
}

func TestValidationWithoutValidatorError(t *testing.T) {
	appErr := Validation(stdErrors.New("unexpected EOF"), "invalid payload")
	assert.Empty(t, appErr.Details)
	assert.EqualError(t, appErr, "invalid payload: unexpected EOF")
}
