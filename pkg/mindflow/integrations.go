package mindflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Integrations groups the backend's side-effecting services.
type Integrations struct {
	Core *CoreIntegrations
}

// CoreIntegrations wraps the /integrations endpoints. Every body is scoped to
// the configured board.
type CoreIntegrations struct {
	client *Client
}

// InvokeLLMRequest is the body of POST /integrations/llm.
type InvokeLLMRequest struct {
	Prompt                 string      `json:"prompt"`
	ResponseJSONSchema     interface{} `json:"response_json_schema,omitempty"`
	AddContextFromInternet bool        `json:"add_context_from_internet,omitempty"`
	FileURLs               []string    `json:"file_urls,omitempty"`
}

// SendEmailRequest is the body of POST /integrations/email.
type SendEmailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	FromName string `json:"from_name,omitempty"`
}

// File is an upload source.
type File struct {
	Name   string
	Reader io.Reader
}

// InvokeLLM runs a prompt. The result is a JSON string, or an object when a
// response schema was given.
func (i *CoreIntegrations) InvokeLLM(ctx context.Context, req InvokeLLMRequest) (json.RawMessage, error) {
	scoped, err := i.client.withBoardID(req)
	if err != nil {
		return nil, err
	}
	return i.client.DoRaw(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/integrations/llm",
		Body:         scoped,
		RequiresAuth: i.client.RequiresAuth(),
	})
}

// SendEmail sends an email through the backend mailer.
func (i *CoreIntegrations) SendEmail(ctx context.Context, req SendEmailRequest) (Record, error) {
	return i.post(ctx, "/integrations/email", req)
}

// UploadFile base64-encodes the file and uploads it as JSON.
func (i *CoreIntegrations) UploadFile(ctx context.Context, file File) (Record, error) {
	return i.upload(ctx, "/integrations/upload", file)
}

// UploadPrivateFile is UploadFile for files only reachable through signed URLs.
func (i *CoreIntegrations) UploadPrivateFile(ctx context.Context, file File) (Record, error) {
	return i.upload(ctx, "/integrations/upload-private", file)
}

// GenerateImage renders an image from prompt. The result carries its URL.
func (i *CoreIntegrations) GenerateImage(ctx context.Context, prompt string) (Record, error) {
	return i.post(ctx, "/integrations/generate-image", map[string]string{"prompt": prompt})
}

// ExtractDataFromUploadedFile parses a previously uploaded file.
func (i *CoreIntegrations) ExtractDataFromUploadedFile(ctx context.Context, fileID string) (Record, error) {
	return i.post(ctx, "/integrations/extract-data", map[string]string{"file_id": fileID})
}

// CreateFileSignedURL returns a temporary URL for a private file.
func (i *CoreIntegrations) CreateFileSignedURL(ctx context.Context, fileID string) (Record, error) {
	return i.post(ctx, "/integrations/create-signed-url", map[string]string{"file_id": fileID})
}

func (i *CoreIntegrations) upload(ctx context.Context, path string, file File) (Record, error) {
	if file.Reader == nil {
		return nil, fmt.Errorf("no file to upload")
	}
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", file.Name, err)
	}
	return i.post(ctx, path, map[string]string{
		"file":     base64.StdEncoding.EncodeToString(data),
		"filename": file.Name,
	})
}

func (i *CoreIntegrations) post(ctx context.Context, path string, body interface{}) (Record, error) {
	var result Record
	if err := i.client.Post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Functions invokes named backend functions.
type Functions struct {
	client *Client
}

// Invoke posts params, scoped to the board, to /functions/<name>.
func (f *Functions) Invoke(ctx context.Context, name string, params interface{}) (json.RawMessage, error) {
	scoped, err := f.client.withBoardID(params)
	if err != nil {
		return nil, err
	}
	return f.client.DoRaw(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/functions/" + url.PathEscape(name),
		Body:         scoped,
		RequiresAuth: f.client.RequiresAuth(),
	})
}
