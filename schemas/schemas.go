// Package schemas embeds the JSON schemas for lossgrid configuration files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the schema for .lossgrid.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
