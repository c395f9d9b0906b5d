package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStrictJSON_RejectsUnknownFields(t *testing.T) {
	var req CreatePollRequest
	err := strictJSON.Bind(newJSONRequest(`{"title":"Q","options":["a","b"],"closed":true}`), &req)
	assert.Error(t, err)

	// gin's shared JSON binding keeps its default behaviour
	assert.False(t, binding.EnableDecoderDisallowUnknownFields)
	require.NoError(t, binding.JSON.Bind(newJSONRequest(`{"title":"Q","closed":true}`), &req))
	assert.Equal(t, "Q", req.Title)
}

func TestStrictJSON_Decodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newJSONRequest(`{"title":"t","dueDate":"2026-05-01","priority":"Low"}`)

	var req CreateTaskRequest
	require.NoError(t, bindJSON(c, &req))
	assert.Equal(t, "t", req.Title)
	require.NotNil(t, req.DueDate.ptr())
	assert.Equal(t, "2026-05-01", req.DueDate.ptr().Format("2006-01-02"))
	assert.False(t, req.DueDate.cleared())
}

func TestStrictJSON_EmptyBody(t *testing.T) {
	var req VoteRequest
	assert.Error(t, strictJSON.Bind(newJSONRequest(``), &req))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantSet bool
		cleared bool
		wantErr bool
	}{
		{name: "omitted", body: `{}`},
		{name: "null", body: `{"dueDate":null}`, cleared: true},
		{name: "empty string", body: `{"dueDate":""}`, cleared: true},
		{name: "date only", body: `{"dueDate":"2026-05-01"}`, wantSet: true},
		{name: "rfc3339", body: `{"dueDate":"2026-05-01T10:00:00+02:00"}`, wantSet: true},
		{name: "garbage", body: `{"dueDate":"soon"}`, wantErr: true},
		{name: "number", body: `{"dueDate":5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			err := strictJSON.Bind(newJSONRequest(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, req.DueDate.ptr() != nil)
			assert.Equal(t, tt.cleared, req.DueDate.cleared())
		})
	}
}
