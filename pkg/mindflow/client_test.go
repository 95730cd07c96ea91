package mindflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcoaching/mindflow/pkg/mindflow"
	"github.com/angelcoaching/mindflow/pkg/mindflow/mindflowtest"
)

// roundTripFunc lets tests answer requests without a server.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newClient(t *testing.T, baseURL, boardID string, tokens mindflow.TokenStore) *mindflow.Client {
	t.Helper()
	client, err := mindflow.NewClient(&mindflow.Config{
		BaseURL:    baseURL,
		BoardID:    boardID,
		TokenStore: tokens,
		Logger:     hclog.NewNullLogger(),
	})
	require.NoError(t, err)
	return client
}

func storeWithToken(t *testing.T, token string) *mindflow.MemoryTokenStore {
	t.Helper()
	store := mindflow.NewMemoryTokenStore()
	require.NoError(t, store.Set(token))
	return store
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := mindflow.NewClient(&mindflow.Config{BaseURL: "ftp://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := mindflow.NewClient(nil)
	require.NoError(t, err)

	assert.Equal(t, mindflow.ProductionURL, client.BaseURL())
	assert.True(t, client.RequiresAuth())
	assert.Empty(t, client.BoardID())
	assert.False(t, client.Auth.IsAuthenticated())
}

func TestEntityGet_Path(t *testing.T) {
	tests := []struct {
		name      string
		boardID   string
		wantPath  string
		wantQuery string
	}{
		{
			name:     "Single tenant",
			wantPath: "/entities/coachprofile/abc123",
		},
		{
			name:      "Multi tenant",
			boardID:   "tenantA",
			wantPath:  "/entities/coachprofile/abc123",
			wantQuery: "boardId=tenantA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mindflowtest.NewServer()
			defer srv.Close()
			srv.Seed("coachprofile", mindflow.Record{"id": "abc123", "boardId": "tenantA", "full_name": "Anna"})

			client := newClient(t, srv.URL, tt.boardID, storeWithToken(t, "tok"))

			rec, err := client.Entities.CoachProfile.Get(context.Background(), "abc123")
			require.NoError(t, err)
			assert.Equal(t, "Anna", rec.String("full_name"))

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodGet, reqs[0].Method)
			assert.Equal(t, tt.wantPath, reqs[0].Path)
			assert.Equal(t, tt.wantQuery, reqs[0].RawQuery)
		})
	}
}

func TestEntityCreate_BoardOverridesCaller(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))

	created, err := client.Entities.Appointment.Create(context.Background(), map[string]interface{}{
		"status":  "pending",
		"boardId": "tenantB",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())

	var body map[string]interface{}
	require.NoError(t, srv.LastRequest().JSON(&body))
	assert.Equal(t, map[string]interface{}{
		"boardId": "tenantA",
		"status":  "pending",
	}, body)
}

func TestEntityCreate_StructPayload(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	type slot struct {
		Date        string `json:"date"`
		IsAvailable bool   `json:"is_available"`
	}

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))
	_, err := client.Entities.TimeSlot.Create(context.Background(), slot{Date: "2025-01-10", IsAvailable: true})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, srv.LastRequest().JSON(&body))
	assert.Equal(t, "tenantA", body["boardId"])
	assert.Equal(t, "2025-01-10", body["date"])
	assert.Equal(t, true, body["is_available"])
}

func TestEntityCreate_NoBoardPassesThrough(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))

	_, err := client.Entities.Message.Create(context.Background(), map[string]interface{}{"content": "ciao"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"content":"ciao"}`, string(srv.LastRequest().Body))
}

func TestEntityCreate_NonObjectPayload(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))

	_, err := client.Entities.Message.Create(context.Background(), []string{"not", "an", "object"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON object")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestEntityBulkCreate_TagsEveryRecord(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))

	created, err := client.Entities.TimeSlot.BulkCreate(context.Background(), []interface{}{
		map[string]interface{}{"date": "2025-01-10"},
		map[string]interface{}{"date": "2025-01-11", "boardId": "other"},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	req := srv.LastRequest()
	assert.Equal(t, "/entities/timeslot/bulk", req.Path)

	var body []map[string]interface{}
	require.NoError(t, req.JSON(&body))
	require.Len(t, body, 2)
	for _, rec := range body {
		assert.Equal(t, "tenantA", rec["boardId"])
	}
}

func TestEntityUpdateAndDelete(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()
	srv.Seed("appointment", mindflow.Record{"id": "a1", "boardId": "tenantA", "status": "pending"})

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))
	ctx := context.Background()

	updated, err := client.Entities.Appointment.Update(ctx, "a1", map[string]interface{}{"status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", updated.String("status"))

	put := srv.LastRequest()
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "/entities/appointment/a1", put.Path)
	assert.Empty(t, put.RawQuery)
	assert.JSONEq(t, `{"boardId":"tenantA","status":"confirmed"}`, string(put.Body))

	deleted, err := client.Entities.Appointment.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	del := srv.LastRequest()
	assert.Equal(t, http.MethodDelete, del.Method)
	assert.Equal(t, "/entities/appointment/a1", del.Path)
	assert.Equal(t, "boardId=tenantA", del.RawQuery)

	_, err = client.Entities.Appointment.Get(ctx, "a1")
	require.Error(t, err)
	assert.True(t, mindflow.IsNotFound(err))
	assert.Equal(t, "Record not found", err.Error())
}

func TestEntityList_FilterQuery(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()
	srv.Seed("appointment",
		mindflow.Record{"id": "1", "boardId": "tenantA", "status": "pending"},
		mindflow.Record{"id": "2", "boardId": "tenantA", "status": "confirmed"},
		mindflow.Record{"id": "3", "boardId": "tenantB", "status": "pending"},
	)

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))

	records, err := client.Entities.Appointment.List(context.Background(), map[string]interface{}{"status": "pending"}, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].ID())

	req := srv.LastRequest()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/entities/appointment", req.Path)
	assert.Equal(t, "boardId=tenantA&filter=%7B%22status%22%3A%22pending%22%7D", req.RawQuery)
}

func TestEntityFilter_SortAndNoParams(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()
	srv.Seed("coachprofile",
		mindflow.Record{"id": "1", "experience_years": float64(3)},
		mindflow.Record{"id": "2", "experience_years": float64(10)},
	)

	client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))
	ctx := context.Background()

	records, err := client.Entities.CoachProfile.Filter(ctx, nil, "-experience_years")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0].ID())
	assert.Equal(t, "sort=-experience_years", srv.LastRequest().RawQuery)

	_, err = client.Entities.CoachProfile.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, srv.LastRequest().RawQuery)
}

func TestAuthRequired_NoNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", mindflow.NewMemoryTokenStore())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"list", func() error { _, err := client.Entities.Appointment.List(ctx, nil, ""); return err }},
		{"get", func() error { _, err := client.Entities.Appointment.Get(ctx, "1"); return err }},
		{"create", func() error { _, err := client.Entities.Appointment.Create(ctx, nil); return err }},
		{"bulk", func() error { _, err := client.Entities.Appointment.BulkCreate(ctx, nil); return err }},
		{"me", func() error { _, err := client.Auth.Me(ctx); return err }},
		{"updateMe", func() error { _, err := client.Auth.UpdateMe(ctx, nil); return err }},
		{"llm", func() error {
			_, err := client.Integrations.Core.InvokeLLM(ctx, mindflow.InvokeLLMRequest{Prompt: "hi"})
			return err
		}},
		{"function", func() error { _, err := client.Functions.Invoke(ctx, "match", nil); return err }},
		{"raw get", func() error { return client.Get(ctx, "/anything", nil) }},
		{"raw delete", func() error { return client.Delete(ctx, "/anything", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, mindflow.ErrAuthenticationRequired))
			assert.Contains(t, err.Error(), "Authentication required")
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestAuthNotRequired_SendsWithoutToken(t *testing.T) {
	srv := mindflowtest.NewServer()
	defer srv.Close()

	requiresAuth := false
	client, err := mindflow.NewClient(&mindflow.Config{
		BaseURL:      srv.URL,
		RequiresAuth: &requiresAuth,
	})
	require.NoError(t, err)

	_, err = client.Entities.CoachProfile.List(context.Background(), map[string]interface{}{"status": "approved"}, "")
	require.NoError(t, err)
	assert.Empty(t, srv.LastRequest().Header.Get("Authorization"))
}

func TestNoContent_ReturnsNull(t *testing.T) {
	client, err := mindflow.NewClient(&mindflow.Config{
		BaseURL:    "https://backend.test",
		TokenStore: storeWithToken(t, "tok"),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Status:     "204 No Content",
				Body:       io.NopCloser(strings.NewReader("this is not json")),
				Header:     http.Header{},
				Request:    r,
			}, nil
		})},
	})
	require.NoError(t, err)

	data, err := client.DoRaw(context.Background(), mindflow.Request{Path: "/entities/message/1"})
	require.NoError(t, err)
	assert.Nil(t, data)

	out := map[string]interface{}{"untouched": true}
	require.NoError(t, client.Get(context.Background(), "/entities/message/1", &out))
	assert.Equal(t, map[string]interface{}{"untouched": true}, out)
}

func TestEmptyBody_IsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))

	data, err := client.DoRaw(context.Background(), mindflow.Request{Path: "/ping"})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestEmptyBody_IsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))
	ctx := context.Background()

	records, err := client.Entities.Appointment.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, records)

	created, err := client.Entities.Appointment.BulkCreate(ctx, []interface{}{map[string]interface{}{"coach_id": "c1"}})
	require.NoError(t, err)
	assert.Empty(t, created)

	slots, err := mindflow.For[testSlot](client.Entities.TimeSlot).List(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestInvalidJSON_IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))

	_, err := client.DoRaw(context.Background(), mindflow.Request{Path: "/ping"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "Error field",
			status:  http.StatusBadRequest,
			body:    `{"error":"X"}`,
			wantMsg: "X",
		},
		{
			name:    "Message field",
			status:  http.StatusBadRequest,
			body:    `{"message":"Y"}`,
			wantMsg: "Y",
		},
		{
			name:    "Details wins",
			status:  http.StatusUnprocessableEntity,
			body:    `{"details":"D","error":"E","message":"M"}`,
			wantMsg: "D",
		},
		{
			name:    "Empty error falls through",
			status:  http.StatusConflict,
			body:    `{"error":"","message":"M"}`,
			wantMsg: "M",
		},
		{
			name:    "Structured details",
			status:  http.StatusBadRequest,
			body:    `{"details":{"field":"email"}}`,
			wantMsg: `{"field":"email"}`,
		},
		{
			name:    "Empty body",
			status:  http.StatusInternalServerError,
			body:    "",
			wantMsg: "Errore 500",
		},
		{
			name:    "No known fields",
			status:  http.StatusBadGateway,
			body:    `{"code":42}`,
			wantMsg: "Errore 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))

			err := client.Get(context.Background(), "/entities/user", nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())

			var apiErr *mindflow.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestErrorMessage_CustomStatusText(t *testing.T) {
	client, err := mindflow.NewClient(&mindflow.Config{
		BaseURL:    "https://backend.test",
		TokenStore: storeWithToken(t, "tok"),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Status:     "503 Backend Sleeping",
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
				Request:    r,
			}, nil
		})},
	})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/entities/user", nil)
	require.Error(t, err)
	assert.Equal(t, "Backend Sleeping", err.Error())
}

func TestTransportError_Propagates(t *testing.T) {
	transportErr := errors.New("connection refused")
	client, err := mindflow.NewClient(&mindflow.Config{
		BaseURL:    "https://backend.test",
		TokenStore: storeWithToken(t, "tok"),
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, transportErr
		})},
	})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/entities/user", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, transportErr))

	var apiErr *mindflow.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "", storeWithToken(t, "secret-token"))

	err := client.Do(context.Background(), mindflow.Request{
		Path: "files",
		Header: http.Header{
			"Content-Type":  []string{"application/merge-patch+json"},
			"Authorization": []string{"Basic ignored"},
			"X-Trace":       []string{"abc"},
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "application/merge-patch+json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer secret-token", got.Get("Authorization"))
	assert.Equal(t, "abc", got.Get("X-Trace"))
}

func TestHeaders_CallerAuthorizationWithoutToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "", mindflow.NewMemoryTokenStore())

	err := client.Do(context.Background(), mindflow.Request{
		Path:   "/public",
		Header: http.Header{"Authorization": []string{"Bearer service-key"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-key", got)
}

func TestRawHelpers(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "tenantA", storeWithToken(t, "tok"))
	ctx := context.Background()

	var out map[string]interface{}
	require.NoError(t, client.Post(ctx, "/custom/report", map[string]interface{}{"month": 3}, &out))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/custom/report", path)
	assert.JSONEq(t, `{"boardId":"tenantA","month":3}`, string(body))
	assert.Equal(t, true, out["ok"])

	require.NoError(t, client.Put(ctx, "/custom/report", nil, nil))
	assert.Equal(t, http.MethodPut, method)
	assert.JSONEq(t, `{"boardId":"tenantA"}`, string(body))

	require.NoError(t, client.Delete(ctx, "/custom/report/1", nil))
	assert.Equal(t, http.MethodDelete, method)
	assert.Empty(t, body)
}

func TestDo_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "", storeWithToken(t, "tok"))

	var out []json.RawMessage
	err := client.Get(context.Background(), "/entities/user", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
