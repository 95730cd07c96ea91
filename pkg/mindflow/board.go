package mindflow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const boardIDField = "boardId"

// withBoardID returns payload with boardId set to the configured tenant id.
// The tenant id overrides any boardId the caller supplied. With no tenant id
// the payload passes through unchanged and a nil payload becomes {}.
func (c *Client) withBoardID(payload interface{}) (interface{}, error) {
	boardID := c.config.BoardID
	if boardID == "" {
		if payload == nil {
			return map[string]interface{}{}, nil
		}
		return payload, nil
	}

	record, err := toObject(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to scope payload to board %q: %w", boardID, err)
	}

	tag, _ := json.Marshal(boardID)
	if existing, ok := record[boardIDField]; ok && !bytes.Equal(existing, tag) && string(existing) != "null" {
		c.logger.Warn("overriding caller boardId with configured board",
			"caller_board_id", string(existing),
			"board_id", boardID,
		)
	}
	record[boardIDField] = tag

	return record, nil
}

// withBoardIDAll tags every element of records individually.
func (c *Client) withBoardIDAll(records []interface{}) ([]interface{}, error) {
	scoped := make([]interface{}, 0, len(records))
	for i, r := range records {
		s, err := c.withBoardID(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		scoped = append(scoped, s)
	}
	return scoped, nil
}

// toObject converts any JSON-object-shaped value to a field map, keeping
// field values exactly as encoded.
func toObject(payload interface{}) (map[string]json.RawMessage, error) {
	record := map[string]json.RawMessage{}
	if payload == nil {
		return record, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	if string(data) == "null" {
		return record, nil
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("payload must encode to a JSON object: %w", err)
	}
	return record, nil
}
