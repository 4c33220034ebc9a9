package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func mustResolve(t *testing.T, s *Schema) *Resolved {
	t.Helper()
	r, err := s.Resolve()
	require.NoError(t, err)
	return r
}

func TestValidateRequired(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"name": {Type: "string"},
	}, "name"))

	assert.NoError(t, r.Validate(map[string]interface{}{"name": "Ada"}))

	err := r.Validate(map[string]interface{}{})
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "name", verr.Violations[0].Field)
	assert.Contains(t, verr.Violations[0].Message, "missing required field")
}

func TestValidateTypes(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"s":   {Type: "string"},
		"n":   {Type: "number"},
		"i":   {Type: "integer"},
		"b":   {Type: "boolean"},
		"o":   {Type: "object"},
		"arr": {Type: "array"},
	}))

	assert.NoError(t, r.Validate(map[string]interface{}{
		"s":   "hello",
		"n":   1.5,
		"i":   float64(3), // decoded JSON numbers arrive as float64
		"b":   true,
		"o":   map[string]interface{}{},
		"arr": []interface{}{},
	}))

	err := r.Validate(map[string]interface{}{
		"s":   42,
		"n":   "not a number",
		"i":   1.5,
		"b":   "true",
		"o":   []interface{}{},
		"arr": map[string]interface{}{},
	})
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.Len(t, verr.Violations, 6)
}

func TestValidateIntAcceptedForNumber(t *testing.T) {
	// Handlers constructed in-process may pass Go ints rather than float64.
	r := mustResolve(t, Object(map[string]*Schema{
		"n": {Type: "number", Minimum: floatPtr(0)},
		"i": {Type: "integer"},
	}))
	assert.NoError(t, r.Validate(map[string]interface{}{"n": 7, "i": int64(2)}))
}

func TestValidateEnum(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"color": {Type: "string", Enum: []interface{}{"red", "green", "blue"}},
		"level": {Enum: []interface{}{float64(1), float64(2)}},
	}))

	assert.NoError(t, r.Validate(map[string]interface{}{"color": "green", "level": float64(2)}))
	// int 2 matches the enum entry float64(2)
	assert.NoError(t, r.Validate(map[string]interface{}{"level": 2}))

	err := r.Validate(map[string]interface{}{"color": "purple"})
	require.Error(t, err)
	verr := err.(*ValidationError)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "color", verr.Violations[0].Field)
}

func TestValidateNumericRange(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"count": {Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(10)},
	}))

	assert.NoError(t, r.Validate(map[string]interface{}{"count": float64(5)}))

	err := r.Validate(map[string]interface{}{"count": float64(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "less than minimum")

	err = r.Validate(map[string]interface{}{"count": float64(11)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestValidateStringConstraints(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"id": {Type: "string", MinLength: intPtr(3), MaxLength: intPtr(8), Pattern: "^[a-z]+$"},
	}))

	assert.NoError(t, r.Validate(map[string]interface{}{"id": "abcdef"}))

	err := r.Validate(map[string]interface{}{"id": "ab"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "less than minimum")

	err = r.Validate(map[string]interface{}{"id": "ABC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern")
}

func TestValidateCollectsAllViolations(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"name":  {Type: "string"},
		"age":   {Type: "integer", Minimum: floatPtr(0)},
		"color": {Type: "string", Enum: []interface{}{"red", "blue"}},
	}, "name", "age"))

	err := r.Validate(map[string]interface{}{
		"age":   float64(-1),
		"color": "purple",
	})
	require.Error(t, err)
	verr := err.(*ValidationError)

	// missing name, age below minimum, color not in enum: all reported
	require.Len(t, verr.Violations, 3)
	fields := make(map[string]bool)
	for _, v := range verr.Violations {
		fields[v.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["age"])
	assert.True(t, fields["color"])
}

func TestValidateNestedAndArrays(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"owner": {
			Type: "object",
			Properties: map[string]*Schema{
				"email": {Type: "string", Pattern: "@"},
			},
			Required: []string{"email"},
		},
		"tags": {Type: "array", Items: &Schema{Type: "string"}},
	}))

	assert.NoError(t, r.Validate(map[string]interface{}{
		"owner": map[string]interface{}{"email": "ada@example.com"},
		"tags":  []interface{}{"a", "b"},
	}))

	err := r.Validate(map[string]interface{}{
		"owner": map[string]interface{}{},
		"tags":  []interface{}{"ok", float64(7)},
	})
	require.Error(t, err)
	verr := err.(*ValidationError)
	require.Len(t, verr.Violations, 2)
	assert.Equal(t, "owner.email", verr.Violations[0].Field)
	assert.Equal(t, "tags[1]", verr.Violations[1].Field)
}

func TestValidateExtraPropertiesAllowed(t *testing.T) {
	r := mustResolve(t, Object(map[string]*Schema{
		"name": {Type: "string"},
	}))
	assert.NoError(t, r.Validate(map[string]interface{}{
		"name":  "Ada",
		"extra": 123,
	}))
}

func TestResolveErrors(t *testing.T) {
	_, err := (&Schema{Type: "object", Properties: map[string]*Schema{
		"bad": {Type: "string", Pattern: "("},
	}}).Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")

	_, err = (&Schema{Type: "wibble"}).Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestNilSchemaAcceptsEverything(t *testing.T) {
	var s *Schema
	r, err := s.Resolve()
	require.NoError(t, err)
	assert.NoError(t, r.Validate(map[string]interface{}{"anything": "goes"}))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Violations: []Violation{
		{Field: "name", Message: "missing required field"},
		{Field: "age", Message: "expected integer, got string"},
	}}
	assert.Equal(t,
		"invalid arguments: name: missing required field; age: expected integer, got string",
		err.Error())
}
