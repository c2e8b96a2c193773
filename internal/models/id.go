package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// ID is an opaque identifier. Platform ids may have been persisted as JSON
// numbers, so decoding accepts both strings and numbers. The empty ID encodes
// as null.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ID: expected string or number, got %s", b)
	}
	*id = ID(n.String())
	return nil
}

// ContainsID reports whether ids holds id.
func ContainsID(ids []ID, id ID) bool {
	return slices.Contains(ids, id)
}

// RemoveID returns ids without any occurrence of id. The result is never nil.
func RemoveID(ids []ID, id ID) []ID {
	out := make([]ID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// AppendUniqueID appends id unless it is already present.
func AppendUniqueID(ids []ID, id ID) []ID {
	if ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}
