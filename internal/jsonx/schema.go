package jsonx

import "fmt"

// FieldType names an expected JSON type.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeBool   FieldType = "bool"
	TypeArray  FieldType = "array"
	TypeObject FieldType = "object"
	TypeAny    FieldType = "any"
)

// FieldSpec describes one field's expectations.
type FieldSpec struct {
	Type     FieldType
	Required bool
	// MinItems applies to arrays.
	MinItems int
	// Fields is the nested sub-schema for object fields.
	Fields map[string]FieldSpec
}

// Schema is the shape a consumer expects back from a model call.
type Schema struct {
	Fields map[string]FieldSpec
}

// Result is the validation outcome. Validation never fails hard: callers
// get the pruned data plus the list of problems and decide whether to
// retry the call or accept partial data.
type Result struct {
	IsValid bool
	Data    map[string]any
	Errors  []string
}

// Validate checks data against the schema. Required fields must be
// present and non-null; mistyped fields are recorded and pruned from the
// returned data so downstream consumers only see well-typed values.
func (s Schema) Validate(data map[string]any) Result {
	res := Result{Data: map[string]any{}}
	if data == nil {
		res.Errors = append(res.Errors, "no data")
		return res
	}

	for name, spec := range s.Fields {
		val, present := data[name]
		if !present || val == nil {
			if spec.Required {
				res.Errors = append(res.Errors, fmt.Sprintf("missing required field %q", name))
			}
			continue
		}

		cleaned, errs := validateValue(name, spec, val)
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			if spec.Required {
				continue
			}
		}
		if cleaned != nil {
			res.Data[name] = cleaned
		}
	}

	// Unknown fields pass through untouched; the model often volunteers
	// extras and consumers ignore what they don't know.
	for name, val := range data {
		if _, known := s.Fields[name]; !known {
			res.Data[name] = val
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func validateValue(name string, spec FieldSpec, val any) (any, []string) {
	switch spec.Type {
	case TypeString:
		if s, ok := val.(string); ok {
			return s, nil
		}
		return nil, []string{fmt.Sprintf("field %q: expected string, got %T", name, val)}

	case TypeNumber:
		if f, ok := val.(float64); ok {
			return f, nil
		}
		return nil, []string{fmt.Sprintf("field %q: expected number, got %T", name, val)}

	case TypeBool:
		if b, ok := val.(bool); ok {
			return b, nil
		}
		return nil, []string{fmt.Sprintf("field %q: expected bool, got %T", name, val)}

	case TypeArray:
		arr, ok := val.([]any)
		if !ok {
			return nil, []string{fmt.Sprintf("field %q: expected array, got %T", name, val)}
		}
		if len(arr) < spec.MinItems {
			return arr, []string{fmt.Sprintf("field %q: expected at least %d items, got %d", name, spec.MinItems, len(arr))}
		}
		return arr, nil

	case TypeObject:
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, []string{fmt.Sprintf("field %q: expected object, got %T", name, val)}
		}
		if spec.Fields == nil {
			return obj, nil
		}
		sub := Schema{Fields: spec.Fields}.Validate(obj)
		var errs []string
		for _, e := range sub.Errors {
			errs = append(errs, fmt.Sprintf("field %q: %s", name, e))
		}
		return sub.Data, errs

	default:
		return val, nil
	}
}
