package scrapetmpl_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/scrapetmpl"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := scrapetmpl.Errorf(scrapetmpl.ENOTFOUND, "template %q not found", "test")

	assert.Equal(t, scrapetmpl.ENOTFOUND, scrapetmpl.ErrorCode(err))
	assert.Equal(t, "template \"test\" not found", scrapetmpl.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scrapetmpl.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, scrapetmpl.ErrorMessage(nil))
}

func TestErrorCode_WrappedErrors(t *testing.T) {
	t.Parallel()

	t.Run("unwraps application error", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("saving: %w", scrapetmpl.Errorf(scrapetmpl.EINVALID, "bad"))

		assert.Equal(t, scrapetmpl.EINVALID, scrapetmpl.ErrorCode(err))
		assert.Equal(t, "bad", scrapetmpl.ErrorMessage(err))
	})

	t.Run("reports fetch errors with fetch code", func(t *testing.T) {
		t.Parallel()

		err := &scrapetmpl.FetchError{Cause: scrapetmpl.CauseHTTPStatus, URL: "https://example.com", StatusCode: 404}

		assert.Equal(t, scrapetmpl.EFETCH, scrapetmpl.ErrorCode(err))
		assert.Equal(t, "fetch https://example.com: HTTP 404", scrapetmpl.ErrorMessage(err))
	})

	t.Run("hides details of other errors", func(t *testing.T) {
		t.Parallel()

		err := errors.New("disk I/O error")

		assert.Equal(t, scrapetmpl.EINTERNAL, scrapetmpl.ErrorCode(err))
		assert.Equal(t, "internal error", scrapetmpl.ErrorMessage(err))
	})
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	t.Run("network causes are retryable", func(t *testing.T) {
		t.Parallel()

		for _, c := range []scrapetmpl.FetchCause{scrapetmpl.CauseTimeout, scrapetmpl.CauseConnection, scrapetmpl.CauseTLS} {
			err := &scrapetmpl.FetchError{Cause: c}
			assert.True(t, err.Retryable(), string(c))
		}
	})

	t.Run("status and engine causes are not retryable", func(t *testing.T) {
		t.Parallel()

		assert.False(t, (&scrapetmpl.FetchError{Cause: scrapetmpl.CauseHTTPStatus}).Retryable())
		assert.False(t, (&scrapetmpl.FetchError{Cause: scrapetmpl.CauseNoEngine}).Retryable())
	})

	t.Run("unwraps to the underlying error", func(t *testing.T) {
		t.Parallel()

		err := &scrapetmpl.FetchError{Cause: scrapetmpl.CauseTimeout, URL: "u", Err: context.DeadlineExceeded}

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, scrapetmpl.CauseTimeout, scrapetmpl.FetchCauseOf(fmt.Errorf("wrap: %w", err)))
		assert.Empty(t, scrapetmpl.FetchCauseOf(errors.New("other")))
	})
}

func TestNoTemplateError(t *testing.T) {
	t.Parallel()

	err := scrapetmpl.NoTemplateError("example.com")

	assert.Equal(t, scrapetmpl.ENOTFOUND, scrapetmpl.ErrorCode(err))
	assert.Contains(t, scrapetmpl.ErrorMessage(err), "example.com")
}

func TestNewOutcome(t *testing.T) {
	t.Parallel()

	t.Run("success carries value", func(t *testing.T) {
		t.Parallel()

		o := scrapetmpl.NewOutcome(42, nil)

		assert.True(t, o.Success)
		assert.Equal(t, 42, o.Value)
		assert.Empty(t, o.Reason)
	})

	t.Run("failure carries reason and drops value", func(t *testing.T) {
		t.Parallel()

		o := scrapetmpl.NewOutcome(42, scrapetmpl.NoTemplateError("x.com"))

		assert.False(t, o.Success)
		assert.Zero(t, o.Value)
		assert.Equal(t, scrapetmpl.ENOTFOUND, o.Code)
		assert.Contains(t, o.Reason, "x.com")
	})
}
