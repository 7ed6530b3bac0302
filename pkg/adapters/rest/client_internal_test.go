package rest

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStatus(t *testing.T) {
	notFound := &StatusError{Method: http.MethodDelete, URL: "http://x/notes/a", Code: http.StatusNotFound}

	assert.True(t, isStatus(notFound, http.StatusNotFound))
	assert.True(t, isStatus(fmt.Errorf("delete a: %w", notFound), http.StatusNotFound), "wrapped errors still match")
	assert.False(t, isStatus(notFound, http.StatusConflict))
	assert.False(t, isStatus(errors.New("connection refused"), http.StatusNotFound))
	assert.False(t, isStatus(nil, http.StatusNotFound))
}
