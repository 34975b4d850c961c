// Package normalize maps the loosely shaped JSON bodies of the HR API onto the
// canonical domain records. Every function is pure.
package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tells apart the three outcomes of normalizing a body.
type Kind int

const (
	KindOK Kind = iota
	// KindEmptyRoot means the expected root key was absent or null.
	KindEmptyRoot
	// KindMalformedShape means the body was not JSON, or the root was of the wrong type.
	KindMalformedShape
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindEmptyRoot:
		return "empty_root"
	case KindMalformedShape:
		return "malformed_shape"
	}
	return "unknown"
}

// Result is the normalized collection of one body. Records is never nil.
type Result[T any] struct {
	Kind    Kind
	Records []T
	// Dropped counts elements excluded for lacking their identity field or not being objects.
	Dropped int
}

func emptyRoot[T any]() Result[T] {
	return Result[T]{Kind: KindEmptyRoot, Records: []T{}}
}

func malformed[T any]() Result[T] {
	return Result[T]{Kind: KindMalformedShape, Records: []T{}}
}

// collect finds the first present root path in body and builds one record per array element.
func collect[T any](body []byte, roots []string, build func(object) (T, bool)) Result[T] {
	root, ok := parseRoot(body)
	if !ok {
		return malformed[T]()
	}
	raw, found := findRoot(root, roots)
	if !found {
		return emptyRoot[T]()
	}
	items, ok := decodeArray(raw)
	if !ok {
		return malformed[T]()
	}
	return buildAll(items, build)
}

func buildAll[T any](items []json.RawMessage, build func(object) (T, bool)) Result[T] {
	res := Result[T]{Kind: KindOK, Records: make([]T, 0, len(items))}
	for _, item := range items {
		obj, ok := decodeObject(item)
		if !ok {
			res.Dropped++
			continue
		}
		rec, ok := build(obj)
		if !ok {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func parseRoot(body []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, false
	}
	return root, true
}

// findRoot returns the value of the first path that is present and not null.
// Paths may be dotted to reach into nested objects.
func findRoot(root map[string]json.RawMessage, paths []string) (json.RawMessage, bool) {
	for _, path := range paths {
		if raw, ok := rawAt(root, path); ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

func rawAt(root map[string]json.RawMessage, path string) (json.RawMessage, bool) {
	parts := strings.Split(path, ".")
	current := root
	for i, part := range parts {
		raw, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return raw, true
		}
		var next map[string]json.RawMessage
		if !isObject(raw) || json.Unmarshal(raw, &next) != nil {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

func decodeObject(raw json.RawMessage) (object, bool) {
	if !isObject(raw) {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	return object(obj), true
}

// orderedKeys lists the keys of a JSON object in document order.
func orderedKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}
