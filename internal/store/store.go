package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted state slices.
const (
	KeyTheme         = "theme"
	KeyUser          = "user"
	KeyUserGoals     = "userGoals"
	KeyDailyLogs     = "dailyLogs"
	KeyWeightHistory = "weightHistory"
	KeyChatHistory   = "chatHistory"
)

// Keys lists every slice key in a stable order.
var Keys = []string{KeyTheme, KeyUser, KeyUserGoals, KeyDailyLogs, KeyWeightHistory, KeyChatHistory}

var ErrEmptyKey = errors.New("state key is required")

// KV is the persistence contract: raw JSON documents stored by key.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Keys() ([]string, error)
}

// Load decodes the document at key into a value of type T. A missing key
// yields fallback.
func Load[T any](kv KV, key string, fallback T) (T, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback, fmt.Errorf("decode state %q: %w", key, err)
	}
	return out, nil
}

func Save[T any](kv KV, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state %q: %w", key, err)
	}
	return kv.Set(key, raw)
}

// Snapshot returns every stored document keyed by slice name.
func Snapshot(kv KV) (map[string]json.RawMessage, error) {
	keys, err := kv.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		raw, ok, err := kv.Get(k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = json.RawMessage(raw)
		}
	}
	return out, nil
}

// Restore replaces the store contents with docs. Unknown keys are rejected.
func Restore(kv KV, docs map[string]json.RawMessage) error {
	for k, v := range docs {
		if !knownKey(k) {
			return fmt.Errorf("unknown state key %q", k)
		}
		if !json.Valid(v) {
			return fmt.Errorf("state %q is not valid JSON", k)
		}
	}
	if err := kv.Clear(); err != nil {
		return err
	}
	for _, k := range Keys {
		v, ok := docs[k]
		if !ok {
			continue
		}
		if err := kv.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
