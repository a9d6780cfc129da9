package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	client := NewMockHTTPClient().AddResponse(http.StatusOK, `{"id":"run-1","steps":720}`)

	var got struct {
		ID    string `json:"id"`
		Steps int    `json:"steps"`
	}
	require.NoError(t, GetJSON(context.Background(), client, "http://sim/api/runs/run-1", &got))
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, 720, got.Steps)

	require.Len(t, client.Requests, 1)
	assert.Equal(t, http.MethodGet, client.Requests[0].Method)
	assert.Equal(t, "/api/runs/run-1", client.Requests[0].URL.Path)
}

func TestGetBody_StatusError(t *testing.T) {
	client := NewMockHTTPClient().AddResponse(http.StatusNotFound, `{"error":"run not found"}`)

	_, err := GetBody(context.Background(), client, "http://sim/api/runs/nope")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "run not found", se.Message)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGetBody_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	client := NewMockHTTPClient().AddErrorResponse(boom)

	_, err := GetBody(context.Background(), client, "http://sim/")
	assert.ErrorIs(t, err, boom)
}

func TestGetJSON_BadPayload(t *testing.T) {
	client := NewMockHTTPClient().AddResponse(http.StatusOK, `not json`)
	var v map[string]interface{}
	err := GetJSON(context.Background(), client, "http://sim/", &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestMockHTTPClient_DefaultResponse(t *testing.T) {
	client := NewMockHTTPClient()
	body, err := GetBody(context.Background(), client, "http://sim/")
	require.NoError(t, err)
	assert.Empty(t, body)
}
