//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// MountSwagger serves the Swagger UI at /swagger/ with the document below.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "promptbench API",
	Description:      "Batch prompt-by-model comparison runs over local and remote LLM backends.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

const swaggerTemplate = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "description": "{{escape .Description}}", "version": "{{.Version}}"},
  "basePath": "{{.BasePath}}",
  "schemes": {{ marshal .Schemes }},
  "paths": {
    "/prompts": {"get": {"summary": "Prompt catalog", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PromptsResponse"}}}}},
    "/models": {"get": {"summary": "Model catalog", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}}},
    "/catalog/reload": {"post": {"summary": "Reload both catalogs", "responses": {"200": {"description": "OK"}}}},
    "/selection": {"get": {"summary": "Current selection", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SelectionResponse"}}}}},
    "/selection/{kind}": {"put": {
      "summary": "Replace the prompt or model selection",
      "consumes": ["application/json"],
      "parameters": [
        {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["prompts", "models"]},
        {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.SelectionRequest"}}
      ],
      "responses": {
        "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SelectionResponse"}},
        "400": {"description": "Unknown kind or malformed body", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
        "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
      }
    }},
    "/runs": {"post": {
      "summary": "Start a run over the current selection",
      "parameters": [{"name": "wait", "in": "query", "type": "boolean"}],
      "responses": {
        "200": {"description": "Not started", "schema": {"$ref": "#/definitions/types.RunResponse"}},
        "202": {"description": "Started", "schema": {"$ref": "#/definitions/types.RunResponse"}}
      }
    }},
    "/results": {"get": {"summary": "Run state and published results", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ViewResponse"}}}}},
    "/comparison": {"get": {"summary": "Results grouped by selected model", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ComparisonResponse"}}}}},
    "/events": {"get": {"summary": "Websocket stream of run events", "responses": {"101": {"description": "Switching Protocols"}}}},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
  },
  "definitions": {
    "types.Prompt": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "content": {"type": "string"}}},
    "types.Model": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "family": {"type": "string"}, "parameter_size": {"type": "string"}, "quant": {"type": "string"}, "size_bytes": {"type": "integer"}}},
    "types.InferenceResult": {"type": "object", "properties": {"id": {"type": "string"}, "run_id": {"type": "string"}, "model_id": {"type": "string"}, "model_name": {"type": "string"}, "prompt_id": {"type": "string"}, "prompt_content": {"type": "string"}, "paragraphs": {"type": "array", "items": {"type": "string"}}}},
    "types.PromptsResponse": {"type": "object", "properties": {"prompts": {"type": "array", "items": {"$ref": "#/definitions/types.Prompt"}}}},
    "types.ModelsResponse": {"type": "object", "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}},
    "types.SelectionRequest": {"type": "object", "properties": {"ids": {"type": "array", "items": {"type": "string"}}}},
    "types.SelectionResponse": {"type": "object", "properties": {"prompt_ids": {"type": "array", "items": {"type": "string"}}, "model_ids": {"type": "array", "items": {"type": "string"}}}},
    "types.RunResponse": {"type": "object", "properties": {"started": {"type": "boolean"}, "run_id": {"type": "string"}, "reason": {"type": "string"}}},
    "types.ViewResponse": {"type": "object", "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/types.InferenceResult"}}, "state": {"type": "string"}, "run_id": {"type": "string"}, "loading": {"type": "boolean"}, "error": {"type": "string"}, "prompt_ids": {"type": "array", "items": {"type": "string"}}, "model_ids": {"type": "array", "items": {"type": "string"}}}},
    "types.ComparisonGroup": {"type": "object", "properties": {"model_id": {"type": "string"}, "model_name": {"type": "string"}, "results": {"type": "array", "items": {"$ref": "#/definitions/types.InferenceResult"}}}},
    "types.ComparisonResponse": {"type": "object", "properties": {"state": {"type": "string"}, "groups": {"type": "array", "items": {"$ref": "#/definitions/types.ComparisonGroup"}}}},
    "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}}
  }
}`
