package httputil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "admin-gateway/pkg/domainerrors"
)

func TestWriteErrorInternalHidesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "internal", body["error"])
	assert.NotContains(t, body, "message")
}

func TestWriteErrorClientFacingKeepsMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "username is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "invalid_input", body["error"])
	assert.Equal(t, "username is required", body["message"])
}

func TestWriteErrorUncodedErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"ops"}`))
	got, err := Decode[payload](r)
	require.NoError(t, err)
	assert.Equal(t, "ops", got.Name)

	r = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{broken`))
	_, err = Decode[payload](r)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
