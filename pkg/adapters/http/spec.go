package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	swaggerOnce sync.Once
	swaggerDoc  *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed and validated API description.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(rawSpec)
		if err != nil {
			swaggerErr = fmt.Errorf("load openapi spec: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			swaggerErr = fmt.Errorf("validate openapi spec: %w", err)
			return
		}
		swaggerDoc = doc
	})
	return swaggerDoc, swaggerErr
}

// errBadRequest marks request decoding and schema failures (HTTP 400).
var errBadRequest = errors.New("bad request")

// decodeBody reads a JSON body, checks it against the operation's request
// schema and decodes it into dest. An empty optional body leaves dest untouched.
func decodeBody(r *http.Request, path, method string, dest any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	schema, required := requestSchema(path, method)
	if len(data) == 0 {
		if required {
			return fmt.Errorf("%w: request body is required", errBadRequest)
		}
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if schema != nil {
		if err := schema.VisitJSON(raw); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func requestSchema(path, method string) (*openapi3.Schema, bool) {
	doc, err := GetSwagger()
	if err != nil || doc.Paths == nil {
		return nil, false
	}
	item := doc.Paths.Find(path)
	if item == nil {
		return nil, false
	}
	op := item.GetOperation(method)
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, false
	}
	body := op.RequestBody.Value
	media := body.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil, body.Required
	}
	return media.Schema.Value, body.Required
}
