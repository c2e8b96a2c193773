package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reserved field names maintained by the store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is one schema-less record. Values are restricted to what JSON can
// carry: nil, bool, string, json.Number, []any and map[string]any.
type Document map[string]any

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// ID returns the canonical form of the document id, or "" when unset.
func (d Document) ID() string {
	id, ok := canonical(d[FieldID])
	if !ok {
		return ""
	}
	return id
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}

// normalize converts caller supplied values (typed slices, named string types,
// structs) into the plain JSON representation kept in memory and on disk.
func normalize(d Document) (Document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode document: %w", err)
	}
	var out Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("docstore: decode document: %w", err)
	}
	if out == nil {
		out = Document{}
	}
	return out, nil
}

// Decode fills target (a pointer to a struct) from the document.
func (d Document) Decode(target any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("docstore: decode into %T: %w", target, err)
	}
	return nil
}

// FromStruct builds a document from any JSON-encodable value.
func FromStruct(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode %T: %w", v, err)
	}
	var out Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("docstore: %T is not an object: %w", v, err)
	}
	return out, nil
}

// decodeCollection parses a persisted collection. Anything that is not an
// array of objects yields ok=false; non-object elements are dropped.
func decodeCollection(raw []byte) (docs []Document, dropped int, ok bool) {
	var parsed any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil, 0, false
	}
	items, isArray := parsed.([]any)
	if !isArray {
		return nil, 0, false
	}
	docs = make([]Document, 0, len(items))
	for _, item := range items {
		obj, isObj := item.(map[string]any)
		if !isObj {
			dropped++
			continue
		}
		docs = append(docs, Document(obj))
	}
	return docs, dropped, true
}

func encodeCollection(docs []Document) ([]byte, error) {
	if docs == nil {
		docs = []Document{}
	}
	return json.MarshalIndent(docs, "", "  ")
}
