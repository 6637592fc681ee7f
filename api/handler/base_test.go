package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayplan/backend/domain"
)

func TestMapError(t *testing.T) {
	t.Run("unauthorized is reported as not found", func(t *testing.T) {
		status, code, message := mapError(domain.ErrUnauthorized)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, string(domain.ErrCodeNotFound), code)
		assert.Equal(t, domain.ErrTaskNotFound.Error(), message)
	})

	t.Run("not found passes through", func(t *testing.T) {
		status, code, _ := mapError(domain.ErrTaskNotFound)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, string(domain.ErrCodeNotFound), code)
	})

	t.Run("unauthenticated maps to 401", func(t *testing.T) {
		status, code, _ := mapError(domain.ErrUnauthenticated)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, string(domain.ErrCodeUnauthenticated), code)
	})

	t.Run("validation maps to 400", func(t *testing.T) {
		status, code, _ := mapError(domain.ErrInvalidPayload)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, string(domain.ErrCodeInvalid), code)
	})

	t.Run("unknown errors are hidden", func(t *testing.T) {
		status, code, message := mapError(assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, string(domain.ErrCodeInternal), code)
		assert.Equal(t, "internal error", message)
	})
}
