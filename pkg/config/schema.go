package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects Config into a JSON Schema document, used by the
// 'config schema' CLI command for IDE autocompletion and config file
// validation.
func GenerateSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "Access Request Engine Configuration"
	schema.Description = "Configuration schema for the access-request workflow engine"

	return json.MarshalIndent(schema, "", "  ")
}
