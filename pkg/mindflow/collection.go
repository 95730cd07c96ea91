package mindflow

import "context"

// Collection is a typed view of an entity. The backend still owns the schema;
// T only describes how records are encoded and decoded at the boundary.
type Collection[T any] struct {
	entity *EntityClient
}

// For returns a typed collection over entity.
func For[T any](entity *EntityClient) *Collection[T] {
	return &Collection[T]{entity: entity}
}

// Entity returns the untyped client the collection wraps.
func (c *Collection[T]) Entity() *EntityClient {
	return c.entity
}

// List returns records matching filter, ordered by sort.
func (c *Collection[T]) List(ctx context.Context, filter interface{}, sort string) ([]T, error) {
	var items []T
	if err := c.entity.list(ctx, filter, sort, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Filter is an alias of List.
func (c *Collection[T]) Filter(ctx context.Context, filter interface{}, sort string) ([]T, error) {
	return c.List(ctx, filter, sort)
}

// First returns the first record matching filter, or nil when none match.
func (c *Collection[T]) First(ctx context.Context, filter interface{}) (*T, error) {
	items, err := c.List(ctx, filter, "")
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := c.entity.get(ctx, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create stores item scoped to the configured board and returns the stored
// record.
func (c *Collection[T]) Create(ctx context.Context, item T) (*T, error) {
	var created T
	if err := c.entity.create(ctx, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update sends a partial or full update. changes may be a T or any
// JSON-object value such as map[string]any.
func (c *Collection[T]) Update(ctx context.Context, id string, changes interface{}) (*T, error) {
	var updated T
	if err := c.entity.update(ctx, id, changes, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.entity.remove(ctx, id, nil)
}

// BulkCreate stores items in one request.
func (c *Collection[T]) BulkCreate(ctx context.Context, items []T) ([]T, error) {
	records := make([]interface{}, len(items))
	for i := range items {
		records[i] = items[i]
	}

	var created []T
	if err := c.entity.bulkCreate(ctx, records, &created); err != nil {
		return nil, err
	}
	return created, nil
}
