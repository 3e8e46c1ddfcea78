package gateway

import (
	"reflect"
	"strings"
)

// circularMarker replaces values that would make a document self-referential.
const circularMarker = "[Circular]"

// Sanitize deep-copies a document body, dropping anything Firestore cannot
// store: functions and channels are elided, cycles are replaced with a
// marker, nil values and keys starting with "_" are skipped.
func Sanitize(doc map[string]any) map[string]any {
	out, _ := sanitize(reflect.ValueOf(doc), map[uintptr]bool{}).(map[string]any)
	if out == nil {
		return map[string]any{}
	}
	return out
}

func sanitize(v reflect.Value, seen map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Pointer {
			ptr := v.Pointer()
			if seen[ptr] {
				return circularMarker
			}
			seen[ptr] = true
			defer delete(seen, ptr)
		}
		return sanitize(v.Elem(), seen)
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
			name, ok := key.Interface().(string)
			if !ok || strings.HasPrefix(name, "_") {
				continue
			}
			cleaned := sanitize(v.MapIndex(key), seen)
			if cleaned == nil {
				continue
			}
			out[name] = cleaned
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

		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out = append(out, sanitize(v.Index(i), seen))
		}
		return out
	case reflect.Array:
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out = append(out, sanitize(v.Index(i), seen))
		}
		return out
	case reflect.Struct:
		out := map[string]any{}
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			if cleaned := sanitize(v.Field(i), seen); cleaned != nil {
				out[field.Name] = cleaned
			}
		}
		return out
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Not representable in a document.
		return nil
	default:
		if v.CanInterface() {
			return v.Interface()
		}
		return nil
	}
}
