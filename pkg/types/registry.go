package types

import "errors"

// Blob is a serialized container or contract: a string-keyed tree of
// scalars, slices and maps that encodes to JSON.
type Blob = map[string]any

// Registry stores serialized blobs by container id, plus the contract
// entry under ContractKey. Put replaces the stored blob wholesale.
type Registry interface {
	// Attach connects the Registry to the backend described by config.
	// Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach every
	// other operation returns ErrDetached.
	Detach() error

	// Get returns a copy of the blob stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(key string) (Blob, error)

	// Put stores blob under key, replacing any previous value.
	Put(key string, blob Blob) error

	// Delete removes key. Deleting an absent key succeeds.
	Delete(key string) error

	// Keys returns the stored keys in ascending order.
	Keys() ([]string, error)

	// Snapshot returns a copy of every stored blob.
	Snapshot() (map[string]Blob, error)
}

// Registry lifecycle and lookup errors.
var (
	ErrDetached        = errors.New("registry is detached")
	ErrAlreadyAttached = errors.New("registry is already attached")
	ErrNotFound        = errors.New("not found")
	ErrEmptyKey        = errors.New("registry key must not be empty")
)

// CloneBlob returns a deep copy of b. Nested maps and slices are copied;
// scalars are shared.
func CloneBlob(b Blob) Blob {
	if b == nil {
		return nil
	}
	out := make(Blob, len(b))
	for k, v := range b {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return CloneBlob(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, e := range x {
			out[i] = CloneBlob(e)
		}
		return out
	}
	return v
}
