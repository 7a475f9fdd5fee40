package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the decoded response envelope
type Envelope struct {
	API struct {
		Status       bool    `json:"status"`
		ErrorMessage *string `json:"errorMessage"`
		ElapsedTime  float64 `json:"elapsedTime"`
		Version      string  `json:"version"`
	} `json:"api"`
	Response json.RawMessage `json:"response"`
}

// DecodeEnvelope parses a response envelope
func DecodeEnvelope(t *testing.T, body []byte) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env), "Failed to parse envelope: %s", body)
	return env
}

// AssertSuccessResponse asserts the body is a successful envelope and
// returns its response field.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()

	env := DecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.API.Status, "Expected api.status to be true")
	assert.Nil(t, env.API.ErrorMessage, "Expected no error message")
	assert.Equal(t, "v2", env.API.Version)
	assert.GreaterOrEqual(t, env.API.ElapsedTime, 0.0)
	return env.Response
}

// AssertErrorResponse asserts the body is a failed envelope with the
// expected message and an empty response object.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()

	env := DecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.API.Status, "Expected api.status to be false")
	require.NotNil(t, env.API.ErrorMessage, "Expected an error message")
	assert.Equal(t, expectedMessage, *env.API.ErrorMessage, "Unexpected error message")
	assert.JSONEq(t, `{}`, string(env.Response), "Expected an empty response object")
}

// ToolCase is one request against a tool endpoint. Exactly one of
// Response (compared with JSONEq) or Error is expected.
type ToolCase struct {
	Name     string
	Method   string
	Target   string
	Header   http.Header
	Status   int
	Response string
	Error    string
}

// RunToolCases serves every case through h and checks status and envelope.
func RunToolCases(t *testing.T, h http.Handler, cases []ToolCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			w := ServeTool(h, tc)

			status := tc.Status
			if status == 0 {
				status = http.StatusOK
			}
			require.Equal(t, status, w.Code, w.Body.String())

			if tc.Error != "" {
				AssertErrorResponse(t, w, tc.Error)
				return
			}
			response := AssertSuccessResponse(t, w)
			if tc.Response != "" {
				assert.JSONEq(t, tc.Response, string(response))
			}
		})
	}
}

// ServeTool sends a single case to h
func ServeTool(h http.Handler, tc ToolCase) *httptest.ResponseRecorder {
	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, tc.Target, nil)
	req.Header.Set("Accept", "application/json")
	for k, v := range tc.Header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
