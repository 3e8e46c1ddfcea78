package diagnostics

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

const (
	circularMarker = "[Circular Reference]"
	maxDepth       = 12
)

// Type names that indicate transport or SDK internals. Serializing these in
// full produces oversized dumps, so they are redacted to a label.
var redactedTypeNames = []string{
	"Socket", "Parser", "Firebase", "Firestore", "TLS", "HTTP", "Client", "Conn",
}

// stringifySafely renders an arbitrary value as indented JSON without ever
// panicking. Cycles are cut with a marker and known SDK internals are
// replaced by a label.
func stringifySafely(v any) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = fmt.Sprintf("[Serialization Error: %v]", r)
		}
	}()

	sanitized := sanitizeValue(reflect.ValueOf(v), map[uintptr]bool{}, 0)
	out, err := json.MarshalIndent(sanitized, "", "  ")
	if err != nil {
		return fmt.Sprintf("[Serialization Error: %v]", err)
	}
	return string(out)
}

func sanitizeValue(v reflect.Value, seen map[uintptr]bool, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return circularMarker
	}

	if v.CanInterface() {
		if err, ok := v.Interface().(error); ok && err != nil {
			return map[string]any{"error": err.Error()}
		}
	}

	if name := v.Type().Name(); name != "" && v.Kind() == reflect.Struct {
		for _, fragment := range redactedTypeNames {
			if strings.Contains(name, fragment) {
				return fmt.Sprintf("[Internal System Object: %s]", name)
			}
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return sanitizeValue(v.Elem(), seen, depth)
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return circularMarker
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return sanitizeValue(v.Elem(), seen, depth+1)
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return circularMarker
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		out := map[string]any{}
		for _, key := range v.MapKeys() {
			out[fmt.Sprint(key.Interface())] = sanitizeValue(v.MapIndex(key), seen, depth+1)
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return circularMarker
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return sanitizeSequence(v, seen, depth)
	case reflect.Array:
		return sanitizeSequence(v, seen, depth)
	case reflect.Struct:
		out := map[string]any{}
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out[field.Name] = sanitizeValue(v.Field(i), seen, depth+1)
		}
		return out
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("[Unserializable: %s]", v.Kind())
	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return fmt.Sprint(v)
	}
}

func sanitizeSequence(v reflect.Value, seen map[uintptr]bool, depth int) any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = sanitizeValue(v.Index(i), seen, depth+1)
	}
	return out
}
