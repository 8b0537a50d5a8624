package errors

import (
	"fmt"
	"net/http"
	"testing"

	"dashviz/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"unsupported format", core.NewUnsupportedFormatError("txt"), CodeUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"parse", core.NewParseError("csv", fmt.Errorf("bare quote")), CodeParseError, http.StatusUnprocessableEntity},
		{"column", core.NewColumnNotFoundError("Value"), CodeColumnNotFound, http.StatusUnprocessableEntity},
		{"function", core.NewUnknownFunctionError("median"), CodeUnknownFunction, http.StatusUnprocessableEntity},
		{"session", core.ErrSessionNotFound, CodeNotFound, http.StatusNotFound},
		{"plain", fmt.Errorf("boom"), "UNKNOWN", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestWrapKeepsDomainCode(t *testing.T) {
	err := Wrap(core.NewColumnNotFoundError("Region"), "aggregation failed")

	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeColumnNotFound, GetCode(err))
	assert.Contains(t, err.Error(), "aggregation failed")
	assert.Contains(t, err.Error(), `"Region"`)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestWithCodeOverrides(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad payload"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(err))
	assert.Nil(t, Wrap(nil, "ignored"))
}
