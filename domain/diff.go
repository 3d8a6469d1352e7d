package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// FieldRemarks is the field name used for remark addenda.
const FieldRemarks = "remarks"

// Diff compares the proposed updates against before and returns one change per
// field whose normalized value differs, in updates order. before is not modified.
func Diff(before map[string]any, updates Updates) []AuditChange {
	changes := make([]AuditChange, 0, len(updates))
	for _, u := range updates {
		old := before[u.Name]
		if Normalize(old) == Normalize(u.Value) {
			continue
		}
		changes = append(changes, AuditChange{
			Field:    u.Name,
			OldValue: old,
			NewValue: u.Value,
		})
	}
	return changes
}

// Apply returns a copy of before with every change's new value assigned.
func Apply(before map[string]any, changes []AuditChange) map[string]any {
	after := make(map[string]any, len(before)+len(changes))
	for k, v := range before {
		after[k] = v
	}
	for _, c := range changes {
		if c.Field == FieldRemarks {
			continue
		}
		after[c.Field] = c.NewValue
	}
	return after
}

// RemarkChange is the synthetic change recorded when a remark is appended.
func RemarkChange(summary string) AuditChange {
	return AuditChange{Field: FieldRemarks, OldValue: nil, NewValue: summary}
}

// Normalize renders v as the string used for change detection. Lists join
// their elements with commas, so ["a","b"] and "a,b" are considered equal.
// Maps and structs render as JSON with sorted keys, so key order never
// counts as a change.
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(time.RFC3339Nano)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Normalize(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Map, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	case reflect.Int8, reflect.Int16:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return fmt.Sprintf("%v", v)
}

// Snapshot converts an entity into its field map using its JSON field names.
func Snapshot(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to snapshot: %w", err)
	}
	return out, nil
}

// Restore decodes a field map produced by Snapshot/Apply into dst.
func Restore(fields map[string]any, dst any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
