package entity

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/angelcoaching/mindflow/internal/cmd/base"
	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

// entityClient returns the entity client for a user-supplied name.
func entityClient(client *mindflow.Client, arg string) (*mindflow.EntityClient, error) {
	name, ok := base.ResolveEntity(arg)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q, run mindflow entities for the list", arg)
	}
	return client.Entities.Entity(name), nil
}

type EntitiesCommand struct {
	*base.Command
}

func (c *EntitiesCommand) Synopsis() string {
	return "List the entity catalog"
}

func (c *EntitiesCommand) Help() string {
	return `Usage: mindflow entities

  Lists every entity name and the URL slug it is stored under.` +
		c.Flags().Help()
}

func (c *EntitiesCommand) Flags() *base.FlagSet {
	return c.CommonFlags("entities")
}

func (c *EntitiesCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}

	type entry struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	names := mindflow.EntityNames()
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, entry{Name: string(name), Slug: name.Slug()})
	}

	if err := c.Output(entries); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type ListCommand struct {
	*base.Command

	flagFilter string
	flagSort   string
}

func (c *ListCommand) Synopsis() string {
	return "List records of an entity"
}

func (c *ListCommand) Help() string {
	return `Usage: mindflow list [options] <entity>

  Lists records of an entity, optionally filtered by field equality and
  sorted by a field ("-field" for descending).

  Example:
    mindflow list -filter='{"status":"pending"}' -sort=-created_date Appointment` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := c.CommonFlags("list")

	f.StringVar(&c.flagFilter, "filter", "", "JSON object of field values to match.")
	f.StringVar(&c.flagSort, "sort", "", "Sort field, prefixed with - for descending.")

	return f
}

func (c *ListCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() != 1 {
		c.UI.Error("expected exactly one entity argument")
		return 1
	}

	var filter interface{}
	if c.flagFilter != "" {
		raw, err := c.ReadJSON(c.flagFilter)
		if err != nil {
			return c.Fail("error parsing filter", err)
		}
		filter = raw
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	entity, err := entityClient(client, f.Arg(0))
	if err != nil {
		return c.Fail("error", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	records, err := entity.List(ctx, filter, c.flagSort)
	if err != nil {
		return c.Fail("error listing records", err)
	}
	if err := c.Output(records); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type GetCommand struct {
	*base.Command
}

func (c *GetCommand) Synopsis() string {
	return "Fetch one record"
}

func (c *GetCommand) Help() string {
	return `Usage: mindflow get [options] <entity> <id>` +
		c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	return c.CommonFlags("get")
}

func (c *GetCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() != 2 {
		c.UI.Error("expected entity and id arguments")
		return 1
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	entity, err := entityClient(client, f.Arg(0))
	if err != nil {
		return c.Fail("error", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	record, err := entity.Get(ctx, f.Arg(1))
	if err != nil {
		if mindflow.IsNotFound(err) {
			c.UI.Error(fmt.Sprintf("%s %s not found", entity.Name(), f.Arg(1)))
			return 1
		}
		return c.Fail("error fetching record", err)
	}
	if err := c.Output(record); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type CreateCommand struct {
	*base.Command
}

func (c *CreateCommand) Synopsis() string {
	return "Create a record"
}

func (c *CreateCommand) Help() string {
	return `Usage: mindflow create [options] <entity> <json|@file>

  Creates a record. The tenant board id is added to the payload.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	return c.CommonFlags("create")
}

func (c *CreateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() != 2 {
		c.UI.Error("expected entity and data arguments")
		return 1
	}

	data, err := c.ReadJSON(f.Arg(1))
	if err != nil {
		return c.Fail("error parsing data", err)
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	entity, err := entityClient(client, f.Arg(0))
	if err != nil {
		return c.Fail("error", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	record, err := entity.Create(ctx, data)
	if err != nil {
		return c.Fail("error creating record", err)
	}
	if err := c.Output(record); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type UpdateCommand struct {
	*base.Command
}

func (c *UpdateCommand) Synopsis() string {
	return "Update a record"
}

func (c *UpdateCommand) Help() string {
	return `Usage: mindflow update [options] <entity> <id> <json|@file>

  Sends a partial update. Fields not present are left unchanged.` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	return c.CommonFlags("update")
}

func (c *UpdateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() != 3 {
		c.UI.Error("expected entity, id and data arguments")
		return 1
	}

	data, err := c.ReadJSON(f.Arg(2))
	if err != nil {
		return c.Fail("error parsing data", err)
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	entity, err := entityClient(client, f.Arg(0))
	if err != nil {
		return c.Fail("error", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	record, err := entity.Update(ctx, f.Arg(1), data)
	if err != nil {
		return c.Fail("error updating record", err)
	}
	if err := c.Output(record); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type DeleteCommand struct {
	*base.Command
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete one or more records"
}

func (c *DeleteCommand) Help() string {
	return `Usage: mindflow delete [options] <entity> <id>...

  Deletes each id in turn. Failures do not stop the remaining deletes and
  are reported together at the end.` +
		c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	return c.CommonFlags("delete")
}

func (c *DeleteCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() < 2 {
		c.UI.Error("expected entity and at least one id")
		return 1
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	entity, err := entityClient(client, f.Arg(0))
	if err != nil {
		return c.Fail("error", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	var result *multierror.Error
	for _, id := range f.Args()[1:] {
		if _, err := entity.Delete(ctx, id); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", id, err))
			continue
		}
		c.UI.Info(fmt.Sprintf("Deleted %s %s", entity.Name(), id))
	}

	if err := result.ErrorOrNil(); err != nil {
		return c.Fail("error deleting records", err)
	}
	return 0
}

type BulkCreateCommand struct {
	*base.Command
}

func (c *BulkCreateCommand) Synopsis() string {
	return "Create several records in one request"
}

func (c *BulkCreateCommand) Help() string {
	return `Usage: mindflow bulk-create [options] <entity> <json-array|@file>

  Creates every element of a JSON array. The backend accepts or rejects the
  batch as a whole.` +
		c.Flags().Help()
}

func (c *BulkCreateCommand) Flags() *base.FlagSet {
	return c.CommonFlags("bulk-create")
}

func (c *BulkCreateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() != 2 {
		c.UI.Error("expected entity and data arguments")
		return 1
	}

	data, err := c.ReadJSON(f.Arg(1))
	if err != nil {
		return c.Fail("error parsing data", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return c.Fail("error parsing data", fmt.Errorf("expected a JSON array: %w", err))
	}
	records := make([]interface{}, len(items))
	for i, item := range items {
		records[i] = item
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	entity, err := entityClient(client, f.Arg(0))
	if err != nil {
		return c.Fail("error", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	created, err := entity.BulkCreate(ctx, records)
	if err != nil {
		return c.Fail("error creating records", err)
	}
	if err := c.Output(created); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}
