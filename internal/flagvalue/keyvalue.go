package flagvalue

import (
	"flag"
	"strings"

	"braces.dev/errtrace"
)

// KeyValue is a flag argument in the form "key=value".
type KeyValue struct {
	Key   string
	Value string
}

var _ flag.Getter = (*KeyValue)(nil)

// Get returns the KeyValue.
func (kv *KeyValue) Get() any { return *kv }

// String returns the argument in its "key=value" form.
func (kv KeyValue) String() string {
	if kv.Key == "" && kv.Value == "" {
		return ""
	}
	return kv.Key + "=" + kv.Value
}

// Set parses a "key=value" argument.
// The key must not be empty.
func (kv *KeyValue) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return errtrace.Errorf("expected form 'key=value', got %q", s)
	}
	kv.Key = key
	kv.Value = value
	return nil
}
