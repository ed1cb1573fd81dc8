package request

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"crm-service/pkg/apierror"

	"github.com/labstack/echo/v4"
)

// Field declares one schema property for the declarative body variant.
type Field struct {
	Name     string
	Type     ParamType
	Required bool
	// Default is applied when the field is absent and not required.
	Default any
}

// Schema is an ordered list of declared body fields. Properties not declared
// here are stripped from the payload.
type Schema []Field

// SchemaBody validates the JSON body against the schema: strips undeclared
// properties, coerces string values to numbers and ISO dates, applies
// defaults, and aggregates every missing required field (or every type
// violation) into a single BadRequest message before decoding into T.
func SchemaBody[T any](c echo.Context, schema Schema) (T, error) {
	var payload T

	fields, err := bodyFields(c)
	if err != nil {
		return payload, err
	}

	out := make(map[string]any, len(schema))
	var missing, invalid []string

	for _, f := range schema {
		raw, ok := fields[f.Name]
		if !ok || string(raw) == "null" {
			if f.Required {
				missing = append(missing, f.Name)
			} else if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		value, ok := coerceField(raw, f.Type)
		if !ok {
			invalid = append(invalid, f.Name)
			continue
		}
		out[f.Name] = value
	}

	if len(missing) > 0 {
		return payload, apierror.BadRequest("Missing fields: " + strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return payload, apierror.BadRequest("Invalid fields: " + strings.Join(invalid, ", "))
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return payload, apierror.BadRequest("Event body not found")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, apierror.BadRequest("Event body not found")
	}
	return payload, nil
}

func coerceField(raw json.RawMessage, t ParamType) (any, bool) {
	switch t {
	case String:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return s, true
	case Number:
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return n, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case Date:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return nil, false
		}
		return parsed.UTC().Format(time.RFC3339), true
	case Boolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, false
		}
		return b, true
	case Array:
		var a []any
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, false
		}
		return a, true
	default:
		return nil, false
	}
}
