// Package docs registers the OpenAPI document with swag so that echo-swagger can
// serve it at /swagger/doc.json.
package docs

import (
	"encoding/json"

	"orderflow/internal/generated/servers"

	"github.com/swaggo/swag"
)

type openAPIDoc struct{}

// ReadDoc returns the document as JSON, or an empty object when it does not parse.
func (openAPIDoc) ReadDoc() string {
	doc, err := servers.GetSwagger()
	if err != nil {
		return "{}"
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func init() {
	swag.Register(swag.Name, openAPIDoc{})
}
