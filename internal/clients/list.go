package clients

import (
	"bytes"
	"encoding/json"
	"errors"
)

// list decodes either a bare JSON array or a paginated {"results": [...]}
// envelope.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var page struct {
			Results *[]T `json:"results"`
		}
		if err := json.Unmarshal(b, &page); err != nil {
			return err
		}
		if page.Results == nil {
			return errors.New("object response without results")
		}
		*l = *page.Results
		return nil
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
