package schema

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Violation describes a single failed constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint, not just the first, so
// the peer gets a complete diagnosis in one round trip.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Field == "" {
			msgs[i] = v.Message
		} else {
			msgs[i] = v.Field + ": " + v.Message
		}
	}
	return "invalid arguments: " + strings.Join(msgs, "; ")
}

// Validate checks arguments against the resolved schema. It returns nil on
// success or a *ValidationError listing all violations.
func (r *Resolved) Validate(arguments map[string]interface{}) error {
	st := &state{resolved: r}
	st.validate(arguments, r.root, "")
	if len(st.violations) > 0 {
		return &ValidationError{Violations: st.violations}
	}
	return nil
}

type state struct {
	resolved   *Resolved
	violations []Violation
}

func (st *state) addf(field, format string, args ...interface{}) {
	st.violations = append(st.violations, Violation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (st *state) validate(value interface{}, s *Schema, path string) {
	if s == nil {
		return
	}

	if s.Type != "" && !st.checkType(value, s, path) {
		// Remaining keyword checks would only produce confusing duplicate
		// messages on a value of the wrong type.
		return
	}

	if len(s.Enum) > 0 {
		st.checkEnum(value, s, path)
	}

	switch v := value.(type) {
	case string:
		st.checkString(v, s, path)
	case float64:
		st.checkNumber(v, s, path)
	case int:
		st.checkNumber(float64(v), s, path)
	case int64:
		st.checkNumber(float64(v), s, path)
	case map[string]interface{}:
		st.checkObject(v, s, path)
	case []interface{}:
		st.checkArray(v, s, path)
	}
}

func (st *state) checkType(value interface{}, s *Schema, path string) bool {
	ok := false
	switch s.Type {
	case "string":
		_, ok = value.(string)
	case "number":
		_, ok = asFloat(value)
	case "integer":
		f, isNum := asFloat(value)
		ok = isNum && f == math.Trunc(f)
	case "boolean":
		_, ok = value.(bool)
	case "object":
		_, ok = value.(map[string]interface{})
	case "array":
		_, ok = value.([]interface{})
	case "null":
		ok = value == nil
	}

	if !ok {
		st.addf(path, "expected %s, got %s", s.Type, typeName(value))
	}
	return ok
}

func (st *state) checkEnum(value interface{}, s *Schema, path string) {
	for _, allowed := range s.Enum {
		if jsonEqual(value, allowed) {
			return
		}
	}
	st.addf(path, "value %v is not one of the allowed values %v", value, s.Enum)
}

func (st *state) checkString(v string, s *Schema, path string) {
	n := utf8.RuneCountInString(v)
	if s.MinLength != nil && n < *s.MinLength {
		st.addf(path, "string length %d is less than minimum %d", n, *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		st.addf(path, "string length %d exceeds maximum %d", n, *s.MaxLength)
	}
	if s.Pattern != "" {
		if re := st.resolved.patterns[s]; re != nil && !re.MatchString(v) {
			st.addf(path, "string does not match pattern %q", s.Pattern)
		}
	}
}

func (st *state) checkNumber(v float64, s *Schema, path string) {
	if s.Minimum != nil && v < *s.Minimum {
		st.addf(path, "value %v is less than minimum %v", v, *s.Minimum)
	}
	if s.Maximum != nil && v > *s.Maximum {
		st.addf(path, "value %v exceeds maximum %v", v, *s.Maximum)
	}
}

func (st *state) checkObject(v map[string]interface{}, s *Schema, path string) {
	for _, name := range s.Required {
		if _, present := v[name]; !present {
			st.addf(joinPath(path, name), "missing required field")
		}
	}
	for name, sub := range s.Properties {
		val, present := v[name]
		if !present {
			continue
		}
		st.validate(val, sub, joinPath(path, name))
	}
}

func (st *state) checkArray(v []interface{}, s *Schema, path string) {
	if s.Items == nil {
		return
	}
	for i, item := range v {
		st.validate(item, s.Items, fmt.Sprintf("%s[%d]", path, i))
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func typeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	default:
		return reflect.TypeOf(value).String()
	}
}

// jsonEqual compares two decoded JSON values, treating numeric types as
// interchangeable the way encoding/json does.
func jsonEqual(a, b interface{}) bool {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
