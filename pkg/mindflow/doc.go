// Package mindflow provides a client for the MindFlow backend-as-a-service that
// stores every Angel Coaching record (coach and coachee profiles, time slots,
// appointments, messages, documents).
//
// # Overview
//
// The backend owns the schema, persistence, authentication and business rules.
// The client only builds requests, attaches the bearer token, tags writes with
// the configured board id (tenant) and normalizes error responses. Every
// operation is a single HTTP round-trip through Client.Do.
//
// # Usage
//
//	client, err := mindflow.NewClient(&mindflow.Config{
//	  BaseURL:    "https://mindflowbackend2--main.angelodamora.deno.net",
//	  BoardID:    "68f8ea6151e7f9d5ce21bc30",
//	  TokenStore: mindflow.NewMemoryTokenStore(),
//	})
//	if err != nil {
//	  return err
//	}
//
//	if _, err := client.Auth.Login(ctx, "coach@example.com", "secret"); err != nil {
//	  return err
//	}
//
//	pending, err := client.Entities.Appointment.Filter(ctx,
//	  map[string]any{"status": "pending"}, "-created_date")
//
// # Endpoints
//
// Entities:
//   - GET    /entities/:slug?boardId=&filter=&sort=
//   - GET    /entities/:slug/:id?boardId=
//   - POST   /entities/:slug
//   - PUT    /entities/:slug/:id
//   - DELETE /entities/:slug/:id?boardId=
//   - POST   /entities/:slug/bulk
//
// Auth:
//   - POST /auth/register
//   - POST /auth/login
//   - GET  /auth/me
//   - PUT  /auth/me
//
// Integrations:
//   - POST /integrations/llm
//   - POST /integrations/email
//   - POST /integrations/upload
//   - POST /integrations/generate-image
//   - POST /integrations/extract-data
//   - POST /integrations/create-signed-url
//   - POST /integrations/upload-private
//
// Functions:
//   - POST /functions/:name
//
// # Error Handling
//
// Calls that require authentication fail with ErrAuthenticationRequired before
// any network activity when no token is stored. Non-2xx responses become an
// *APIError whose message is taken from the response body (details, error,
// message), then the status text, then "Errore <status>". Transport errors are
// returned as net/http reports them. The client never retries.
//
// # Security
//
//   - Bearer token authentication
//   - Token kept in an injected TokenStore, never logged
//   - Configurable TLS verification for dev/test environments
package mindflow
