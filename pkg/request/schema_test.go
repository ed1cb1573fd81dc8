package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemaPayload struct {
	FirstName string  `json:"firstName"`
	Rating    float64 `json:"rating"`
	Joined    string  `json:"joined"`
	Active    bool    `json:"active"`
	ImageURL  *string `json:"imageUrl"`
}

var payloadSchema = Schema{
	{Name: "firstName", Type: String, Required: true},
	{Name: "rating", Type: Number, Required: true},
	{Name: "joined", Type: Date, Required: true},
	{Name: "active", Type: Boolean, Required: false, Default: true},
	{Name: "imageUrl", Type: String, Required: false},
}

func TestSchemaBodyMissingFieldsAggregated(t *testing.T) {
	c := newContext(t, "/customers", `{"rating":3}`)

	_, err := SchemaBody[schemaPayload](c, payloadSchema)
	assert.Equal(t, "Missing fields: firstName, joined", badRequestMessage(t, err))
}

func TestSchemaBodyNullCountsAsMissing(t *testing.T) {
	c := newContext(t, "/customers", `{"firstName":null,"rating":3,"joined":"2026-01-01"}`)

	_, err := SchemaBody[schemaPayload](c, payloadSchema)
	assert.Equal(t, "Missing fields: firstName", badRequestMessage(t, err))
}

func TestSchemaBodyInvalidFieldsAggregated(t *testing.T) {
	c := newContext(t, "/customers", `{"firstName":"Ada","rating":"lots","joined":"not a date"}`)

	_, err := SchemaBody[schemaPayload](c, payloadSchema)
	assert.Equal(t, "Invalid fields: rating, joined", badRequestMessage(t, err))
}

func TestSchemaBodyCoercesAndDefaults(t *testing.T) {
	c := newContext(t, "/customers", `{"firstName":"Ada","rating":"4.5","joined":"2026-01-02","stray":"dropped"}`)

	payload, err := SchemaBody[schemaPayload](c, payloadSchema)
	require.NoError(t, err)
	assert.Equal(t, "Ada", payload.FirstName)
	assert.Equal(t, 4.5, payload.Rating)
	assert.Equal(t, "2026-01-02T00:00:00Z", payload.Joined)
	assert.True(t, payload.Active)
	assert.Nil(t, payload.ImageURL)
}

func TestSchemaBodyOptionalWithoutDefaultStaysAbsent(t *testing.T) {
	c := newContext(t, "/customers", `{"firstName":"Ada","rating":1,"joined":"2026-01-02","imageUrl":"https://img.example/a.png","active":false}`)

	payload, err := SchemaBody[schemaPayload](c, payloadSchema)
	require.NoError(t, err)
	require.NotNil(t, payload.ImageURL)
	assert.Equal(t, "https://img.example/a.png", *payload.ImageURL)
	assert.False(t, payload.Active)
}
