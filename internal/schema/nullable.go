package schema

import (
	"encoding/json"

	"github.com/vidcraft/backend/internal/models"
)

// Nullable decodes a JSON field that may be absent, null, or a value.
type Nullable[T any] struct {
	set   bool
	value *T
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.set = true
	if string(data) == "null" {
		n.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.value = &v
	return nil
}

func (n Nullable[T]) model() models.Nullable[T] {
	return models.Nullable[T]{Set: n.set, Value: n.value}
}
