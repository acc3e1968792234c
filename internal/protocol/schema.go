package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schemas returns the JSON Schema documents for both frame directions,
// keyed by "inbound" and "outbound".
func Schemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	return map[string]*jsonschema.Schema{
		"inbound":  r.Reflect(&InboundFrame{}),
		"outbound": r.Reflect(&OutboundMessage{}),
	}
}

// SchemaJSON renders the schema for one direction as indented JSON.
func SchemaJSON(direction string) ([]byte, error) {
	schema, ok := Schemas()[direction]
	if !ok {
		return nil, fmt.Errorf("unknown frame direction %q (want inbound or outbound)", direction)
	}
	return json.MarshalIndent(schema, "", "  ")
}

// JSONSchemaExtend allows the extra metadata keys a gateway may send.
func (InboundMetadata) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.AdditionalProperties = jsonschema.TrueSchema
}
