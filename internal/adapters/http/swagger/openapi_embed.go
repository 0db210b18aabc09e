package swagger

import _ "embed"

// OpenAPI is the API description served on /openapi.yaml and rendered by /api-docs.
//
//go:embed openapi.yaml
var OpenAPI []byte
