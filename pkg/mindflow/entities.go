package mindflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Entities holds one EntityClient per catalog entry. It is built once by
// NewClient and never modified.
type Entities struct {
	CoachProfile           *EntityClient
	CoacheeProfile         *EntityClient
	TimeSlot               *EntityClient
	Appointment            *EntityClient
	Message                *EntityClient
	Document               *EntityClient
	CoachingAgreement      *EntityClient
	CoacheeAgreement       *EntityClient
	CoacheeMatchingProfile *EntityClient
	User                   *EntityClient

	byName map[EntityName]*EntityClient
}

func newEntities(c *Client) *Entities {
	byName := make(map[EntityName]*EntityClient, len(catalog))
	for name, def := range catalog {
		byName[name] = &EntityClient{
			client: c,
			name:   name,
			base:   "/entities/" + def.slug,
		}
	}

	return &Entities{
		CoachProfile:           byName[CoachProfile],
		CoacheeProfile:         byName[CoacheeProfile],
		TimeSlot:               byName[TimeSlot],
		Appointment:            byName[Appointment],
		Message:                byName[Message],
		Document:               byName[Document],
		CoachingAgreement:      byName[CoachingAgreement],
		CoacheeAgreement:       byName[CoacheeAgreement],
		CoacheeMatchingProfile: byName[CoacheeMatchingProfile],
		User:                   byName[User],
		byName:                 byName,
	}
}

// Entity returns the client for name, or nil if name is not in the catalog.
func (e *Entities) Entity(name EntityName) *EntityClient {
	return e.byName[name]
}

// Lookup returns the client for a catalog name or legacy alias.
func (e *Entities) Lookup(name string) (*EntityClient, bool) {
	entity, ok := ParseEntityName(name)
	if !ok {
		return nil, false
	}
	return e.byName[entity], true
}

// EntityClient performs CRUD operations on one entity collection.
type EntityClient struct {
	client *Client
	name   EntityName
	base   string
}

// Name returns the logical entity name.
func (e *EntityClient) Name() EntityName {
	return e.name
}

// Slug returns the URL slug.
func (e *EntityClient) Slug() string {
	return e.name.Slug()
}

// List returns records matching filter, ordered by sort ("field" or
// "-field"). filter is sent JSON-encoded; nil means no filter. An empty
// response body yields no records.
func (e *EntityClient) List(ctx context.Context, filter interface{}, sort string) ([]Record, error) {
	var records []Record
	if err := e.list(ctx, filter, sort, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Filter is an alias of List.
func (e *EntityClient) Filter(ctx context.Context, filter interface{}, sort string) ([]Record, error) {
	return e.List(ctx, filter, sort)
}

// Get returns the record with the given id.
func (e *EntityClient) Get(ctx context.Context, id string) (Record, error) {
	var record Record
	if err := e.get(ctx, id, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create stores a new record scoped to the configured board.
func (e *EntityClient) Create(ctx context.Context, data interface{}) (Record, error) {
	var record Record
	if err := e.create(ctx, data, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update replaces fields of the record with the given id.
func (e *EntityClient) Update(ctx context.Context, id string, data interface{}) (Record, error) {
	var record Record
	if err := e.update(ctx, id, data, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the record with the given id. The result is nil when the
// backend answers 204.
func (e *EntityClient) Delete(ctx context.Context, id string) (Record, error) {
	var record Record
	if err := e.remove(ctx, id, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// BulkCreate stores all records in one request. Every record is scoped to
// the configured board individually. An empty response body yields no
// records.
func (e *EntityClient) BulkCreate(ctx context.Context, records []interface{}) ([]Record, error) {
	var created []Record
	if err := e.bulkCreate(ctx, records, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (e *EntityClient) list(ctx context.Context, filter interface{}, sort string, out interface{}) error {
	params := e.boardParams()
	if filter != nil {
		encoded, err := json.Marshal(filter)
		if err != nil {
			return fmt.Errorf("failed to encode %s filter: %w", e.name, err)
		}
		if string(encoded) != "null" {
			params.Set("filter", string(encoded))
		}
	}
	if sort != "" {
		params.Set("sort", sort)
	}

	data, err := e.client.DoRaw(ctx, Request{
		Path:         withQuery(e.base, params),
		RequiresAuth: e.client.RequiresAuth(),
	})
	if err != nil {
		return err
	}
	return decodeList(data, out)
}

func (e *EntityClient) get(ctx context.Context, id string, out interface{}) error {
	return e.client.Do(ctx, Request{
		Path:         withQuery(e.recordPath(id), e.boardParams()),
		RequiresAuth: e.client.RequiresAuth(),
	}, out)
}

func (e *EntityClient) create(ctx context.Context, data, out interface{}) error {
	body, err := e.client.withBoardID(data)
	if err != nil {
		return err
	}
	return e.client.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         e.base,
		Body:         body,
		RequiresAuth: e.client.RequiresAuth(),
	}, out)
}

func (e *EntityClient) update(ctx context.Context, id string, data, out interface{}) error {
	body, err := e.client.withBoardID(data)
	if err != nil {
		return err
	}
	return e.client.Do(ctx, Request{
		Method:       http.MethodPut,
		Path:         e.recordPath(id),
		Body:         body,
		RequiresAuth: e.client.RequiresAuth(),
	}, out)
}

func (e *EntityClient) remove(ctx context.Context, id string, out interface{}) error {
	return e.client.Do(ctx, Request{
		Method:       http.MethodDelete,
		Path:         withQuery(e.recordPath(id), e.boardParams()),
		RequiresAuth: e.client.RequiresAuth(),
	}, out)
}

func (e *EntityClient) bulkCreate(ctx context.Context, records []interface{}, out interface{}) error {
	body, err := e.client.withBoardIDAll(records)
	if err != nil {
		return err
	}
	data, err := e.client.DoRaw(ctx, Request{
		Method:       http.MethodPost,
		Path:         e.base + "/bulk",
		Body:         body,
		RequiresAuth: e.client.RequiresAuth(),
	})
	if err != nil {
		return err
	}
	return decodeList(data, out)
}

// decodeList decodes a list response into out. An empty body or an empty
// object decodes as no records.
func decodeList(data json.RawMessage, out interface{}) error {
	if data == nil || string(bytes.TrimSpace(data)) == "{}" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (e *EntityClient) recordPath(id string) string {
	return e.base + "/" + url.PathEscape(id)
}

func (e *EntityClient) boardParams() url.Values {
	params := url.Values{}
	if boardID := e.client.BoardID(); boardID != "" {
		params.Set("boardId", boardID)
	}
	return params
}

// withQuery appends the encoded params to path when there are any.
func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
