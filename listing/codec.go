package listing

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Pages are stored as msgpack payloads: compact, stable across processes,
// and it round-trips the zero-item page without the nil/empty slice
// ambiguity JSON introduces.

func encodePage[T any](p Page[T]) (string, error) {
	data, err := msgpack.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodePage[T any](raw string) (Page[T], error) {
	var p Page[T]
	if err := msgpack.Unmarshal([]byte(raw), &p); err != nil {
		return Page[T]{}, err
	}
	return p, nil
}
