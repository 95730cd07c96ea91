package mindflow_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcoaching/mindflow/pkg/mindflow"
	"github.com/angelcoaching/mindflow/pkg/mindflow/mindflowtest"
)

func TestIntegrations_Endpoints(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))
	core := client.Integrations.Core
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func() error
		wantPath string
		wantBody string
	}{
		{
			name: "SendEmail",
			call: func() error {
				_, err := core.SendEmail(ctx, mindflow.SendEmailRequest{
					To:       "coachee@example.com",
					Subject:  "Promemoria",
					Body:     "A domani",
					FromName: "Angel Coaching",
				})
				return err
			},
			wantPath: "/integrations/email",
			wantBody: `{"boardId":"tenantA","to":"coachee@example.com","subject":"Promemoria","body":"A domani","from_name":"Angel Coaching"}`,
		},
		{
			name: "GenerateImage",
			call: func() error {
				_, err := core.GenerateImage(ctx, "a calm office")
				return err
			},
			wantPath: "/integrations/generate-image",
			wantBody: `{"boardId":"tenantA","prompt":"a calm office"}`,
		},
		{
			name: "ExtractDataFromUploadedFile",
			call: func() error {
				_, err := core.ExtractDataFromUploadedFile(ctx, "file-1")
				return err
			},
			wantPath: "/integrations/extract-data",
			wantBody: `{"boardId":"tenantA","file_id":"file-1"}`,
		},
		{
			name: "CreateFileSignedURL",
			call: func() error {
				_, err := core.CreateFileSignedURL(ctx, "file-2")
				return err
			},
			wantPath: "/integrations/create-signed-url",
			wantBody: `{"boardId":"tenantA","file_id":"file-2"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())

			req := srv.LastRequest()
			assert.Equal(t, "POST", req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.JSONEq(t, tt.wantBody, string(req.Body))
		})
	}
}

func TestIntegrations_InvokeLLM(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))

	raw, err := client.Integrations.Core.InvokeLLM(context.Background(), mindflow.InvokeLLMRequest{
		Prompt: "Scrivi una biografia",
	})
	require.NoError(t, err)

	var text string
	require.NoError(t, json.Unmarshal(raw, &text))
	assert.Equal(t, "echo: Scrivi una biografia", text)
	assert.JSONEq(t, `{"boardId":"tenantA","prompt":"Scrivi una biografia"}`, string(srv.LastRequest().Body))
	assert.Equal(t, http.MethodPost, srv.LastRequest().Method)
}

func TestIntegrations_UploadFile(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))
	content := "%PDF-1.4 coaching agreement"

	tests := []struct {
		name        string
		upload      func(context.Context, mindflow.File) (mindflow.Record, error)
		wantPath    string
		wantPrivate bool
	}{
		{"Public", client.Integrations.Core.UploadFile, "/integrations/upload", false},
		{"Private", client.Integrations.Core.UploadPrivateFile, "/integrations/upload-private", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.upload(context.Background(), mindflow.File{
				Name:   "agreement.pdf",
				Reader: strings.NewReader(content),
			})
			require.NoError(t, err)
			assert.Equal(t, srv.URL+"/files/agreement.pdf", result.String("file_url"))
			assert.Equal(t, tt.wantPrivate, result["private"])

			req := srv.LastRequest()
			assert.Equal(t, tt.wantPath, req.Path)

			var body map[string]string
			require.NoError(t, req.JSON(&body))
			assert.Equal(t, "agreement.pdf", body["filename"])
			decoded, err := base64.StdEncoding.DecodeString(body["file"])
			require.NoError(t, err)
			assert.Equal(t, content, string(decoded))
		})
	}
}

func TestIntegrations_UploadNilReader(t *testing.T) {
	client := newClient(t, "https://backend.test", "", storeWithToken(t, "tok"))

	_, err := client.Integrations.Core.UploadFile(context.Background(), mindflow.File{Name: "x"})
	require.Error(t, err)
}

func TestFunctions_Invoke(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))

	raw, err := client.Functions.Invoke(context.Background(), "matchCoachee", map[string]interface{}{
		"coachee_id": "c1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"function":"matchCoachee","params":{"boardId":"tenantA","coachee_id":"c1"}}`, string(raw))
	assert.Equal(t, "/functions/matchCoachee", srv.LastRequest().Path)
	assert.Equal(t, http.MethodPost, srv.LastRequest().Method)
}

func TestFunctions_InvokeForwardsErrors(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()
	srv.RequireToken = true

	client := newClient(t, srv.URL, "", storeWithToken(t, "unknown"))

	_, err := client.Functions.Invoke(context.Background(), "report", nil)
	require.Error(t, err)

	var apiErr *mindflow.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Unauthorized", apiErr.Message)
}
