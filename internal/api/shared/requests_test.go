package shared

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type startForm struct {
		CollectionID string `json:"collection_id"`
		Limit        int    `json:"limit"`
	}

	t.Run("valid json", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost,
			"/sessions",
			bytes.NewBufferString(`{"collection_id": "5a3f8e6e-4c3f-4f7a-b61c-3f6a2f1f9d10", "limit": 20}`),
		)

		var form startForm
		require.NoError(t, DecodeJSON(req, &form))
		assert.Equal(t, "5a3f8e6e-4c3f-4f7a-b61c-3f6a2f1f9d10", form.CollectionID)
		assert.Equal(t, 20, form.Limit)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost,
			"/sessions",
			bytes.NewBufferString(`{"collection_id": "abc", "shuffle": true}`),
		)

		var form startForm
		require.NoError(t, DecodeJSON(req, &form))
		assert.Equal(t, "abc", form.CollectionID)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(
			http.MethodPost,
			"/sessions",
			bytes.NewBufferString(`{"collection_id": "abc",}`),
		)

		err := DecodeJSON(req, &startForm{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid character")
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(""))

		err := DecodeJSON(req, &startForm{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EOF")
	})
}

// errorReader fails every read, standing in for a broken request body.
type errorReader struct{}

func (er errorReader) Read(p []byte) (n int, err error) {
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeJSON_ReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sessions", errorReader{})

	var target struct{}
	err := DecodeJSON(req, &target)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

// reviewForm carries both struct tags and its own Validate method; the method
// must win.
type reviewForm struct {
	Difficulty int `validate:"min=1,max=3"`
	valid      bool
}

func (f *reviewForm) Validate() error {
	if !f.valid {
		return errors.New("difficulty must be between 1 and 3")
	}
	return nil
}

// taggedForm relies on struct tags alone.
type taggedForm struct {
	CollectionID string `validate:"required,uuid"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("Validate method takes priority over tags", func(t *testing.T) {
		// The min/max tags would reject 99; the custom Validate accepts it,
		// proving the interface path short-circuits tag validation.
		form := &reviewForm{Difficulty: 99, valid: true}
		assert.NoError(t, ValidateRequest(form))
	})

	t.Run("Validate method failure is returned as-is", func(t *testing.T) {
		form := &reviewForm{Difficulty: 2, valid: false}
		err := ValidateRequest(form)
		require.Error(t, err)
		assert.EqualError(t, err, "difficulty must be between 1 and 3")
	})

	t.Run("struct tags apply when there is no Validate method", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&taggedForm{
			CollectionID: "5a3f8e6e-4c3f-4f7a-b61c-3f6a2f1f9d10",
		}))
	})

	t.Run("struct tag violations come back as validator errors", func(t *testing.T) {
		err := ValidateRequest(&taggedForm{})
		require.Error(t, err)

		var vErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &vErrs)
	})
}
