package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	cause := FetchFailed("sheet", fmt.Errorf("dial tcp: timeout"))
	err := Wrap(cause, "load dataset")

	assert.Equal(t, CodeFetchFailed, GetCode(err))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "load dataset: failed to fetch dataset from sheet: dial tcp: timeout", err.Error())

	plain := Wrapf(fmt.Errorf("boom"), "step %d", 2)
	assert.Equal(t, CodeInternalError, GetCode(plain))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad year"), http.StatusBadRequest},
		{NotFound("page"), http.StatusNotFound},
		{FetchFailed("sheet", nil), http.StatusBadGateway},
		{Wrap(SchemaMismatch("missing year"), "decode"), http.StatusBadGateway},
		{UnknownRegistryKey("rates", "x"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(InvalidInput("bad year"), "parse query")
	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(fmt.Errorf("plain"), CodeInvalidInput))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
