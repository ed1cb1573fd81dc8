// Package request parses and validates inbound path parameters, query-string
// parameters and JSON bodies. Every violation is reported as a single
// aggregated BadRequest error, and parsing is pure: no partial results, no
// side effects on the request.
package request

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"crm-service/pkg/apierror"

	"github.com/labstack/echo/v4"
)

// ParamType declares how a query parameter or schema field is coerced.
type ParamType int

const (
	String ParamType = iota
	Number
	Date
	Array
	Boolean
	Enum
)

// QueryParam describes one expected query-string parameter.
type QueryParam struct {
	Name     string
	Required bool
	Type     ParamType
	// Enum maps accepted raw literals to their canonical values. Only
	// consulted when Type is Enum.
	Enum map[string]string
}

// PathParams returns the request's path parameters, failing with a single
// BadRequest that names every missing required parameter in declaration
// order. Path parameters are never coerced; they are the external UUIDs.
func PathParams(c echo.Context, required ...string) (map[string]string, error) {
	names := c.ParamNames()
	if len(names) == 0 {
		return nil, apierror.BadRequest("Event path parameters not found")
	}

	params := make(map[string]string, len(names))
	for i, name := range names {
		params[name] = c.ParamValues()[i]
	}

	var missing []string
	for _, name := range required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apierror.BadRequest("Missing path parameters: " + strings.Join(missing, ", "))
	}

	return params, nil
}

// Body decodes the JSON request body into T after checking that every
// required field is present. Missing fields are reported comma-joined in
// declaration order. An absent or unparsable body is a BadRequest.
func Body[T any](c echo.Context, required ...string) (T, error) {
	var payload T

	fields, err := bodyFields(c)
	if err != nil {
		return payload, err
	}

	var missing []string
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return payload, apierror.BadRequest("Missing fields: " + strings.Join(missing, ", "))
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return payload, apierror.BadRequest("Event body not found")
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, apierror.BadRequest("Event body not found")
	}
	return payload, nil
}

func bodyFields(c echo.Context) (map[string]json.RawMessage, error) {
	body := c.Request().Body
	if body == nil {
		return nil, apierror.BadRequest("Event body not found")
	}

	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return nil, apierror.BadRequest("Event body not found")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apierror.BadRequest("Event body not found")
	}
	return fields, nil
}

// QueryParams validates and coerces query-string parameters against the
// expected descriptors. Missing required parameters are aggregated into one
// BadRequest; each present parameter is then coerced per its declared type.
func QueryParams(c echo.Context, expected []QueryParam) (Values, error) {
	raw := c.QueryParams()
	if len(raw) == 0 {
		return nil, apierror.BadRequest("Event query parameters not found")
	}

	var missing []string
	for _, p := range expected {
		if p.Required && !raw.Has(p.Name) {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, apierror.BadRequest("Missing required query parameters: " + strings.Join(missing, ", "))
	}

	values := Values{}
	for _, p := range expected {
		if !raw.Has(p.Name) {
			continue
		}
		value := raw.Get(p.Name)

		switch p.Type {
		case Number:
			n, err := parseNumberParam(value, p.Name)
			if err != nil {
				return nil, err
			}
			values[p.Name] = n
		case Date:
			d, err := parseDateParam(value, p.Name)
			if err != nil {
				return nil, err
			}
			values[p.Name] = d
		case Array:
			a, err := parseArrayParam(value, p.Name)
			if err != nil {
				return nil, err
			}
			values[p.Name] = a
		case Boolean:
			// Lenient on purpose: only the literal "true" is true, every
			// other value (including "false") is false and never an error.
			values[p.Name] = value == "true"
		case Enum:
			e, err := parseEnumParam(value, p.Name, p.Enum)
			if err != nil {
				return nil, err
			}
			values[p.Name] = e
		case String:
			values[p.Name] = value
		default:
			return nil, apierror.BadRequest("Invalid type specified for parameter: " + p.Name)
		}
	}

	return values, nil
}

// Values holds validated, coerced query parameters keyed by name.
type Values map[string]any

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v Values) Number(name string) float64 {
	n, _ := v[name].(float64)
	return n
}

func (v Values) Int(name string) int {
	return int(v.Number(name))
}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Strings(name string) []string {
	s, _ := v[name].([]string)
	return s
}

func invalidParamMessage(name string) string {
	return "Invalid query parameter: " + name
}

func parseNumberParam(value, name string) (float64, error) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, apierror.BadRequest(invalidParamMessage(name))
	}
	return n, nil
}

func parseDateParam(value, name string) (string, error) {
	t, err := ParseDate(value)
	if err != nil {
		return "", apierror.BadRequest(invalidParamMessage(name))
	}
	return t.UTC().Format(time.RFC3339), nil
}

func parseArrayParam(value, name string) ([]string, error) {
	var values []string
	for _, segment := range strings.Split(value, ",") {
		if strings.TrimSpace(segment) != "" {
			values = append(values, segment)
		}
	}
	if len(values) == 0 {
		return nil, apierror.BadRequest(invalidParamMessage(name))
	}
	return values, nil
}

func parseEnumParam(value, name string, enum map[string]string) (string, error) {
	canonical, ok := enum[value]
	if !ok {
		return "", apierror.BadRequest(invalidParamMessage(name))
	}
	return canonical, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the ISO-8601 shapes clients send for date fields.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", value)
}
