package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := SchemaError("missing column Country")
	wrapped := Wrap(base, "failed to load dataset")

	assert.Equal(t, CodeSchemaError, GetCode(wrapped))
	assert.Equal(t, "failed to load dataset: missing column Country", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, ErrSchema))
	assert.False(t, stderrors.Is(wrapped, ErrDataLoad))
}

func TestWrapForeignError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestIsThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("filter: %w", InvalidRange(10, 1))
	assert.True(t, stderrors.Is(err, ErrInvalidRange))
	assert.Equal(t, "UNKNOWN", GetCode(err))

	var appErr *AppError
	if assert.True(t, stderrors.As(err, &appErr)) {
		assert.Equal(t, CodeInvalidRange, appErr.Code)
		assert.Contains(t, appErr.Message, "min_rank 10 > max_rank 1")
	}
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDataLoadError, fmt.Errorf("short read"))
	assert.True(t, stderrors.Is(err, ErrDataLoad))
	assert.Nil(t, WithCode(CodeDataLoadError, nil))
}

func TestDegenerateMetricMessage(t *testing.T) {
	err := DegenerateMetric("Tanks")
	assert.True(t, stderrors.Is(err, ErrDegenerateMetric))
	assert.Contains(t, err.Error(), "Tanks")
}
