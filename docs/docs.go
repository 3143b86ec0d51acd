// Package docs registers the generated OpenAPI document for the dashboard
// API. Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/progress": {
            "get": {
                "produces": ["application/json"],
                "summary": "Cross-course progress snapshot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/pathway": {
            "get": {
                "produces": ["application/json"],
                "summary": "Pathway summary with per-course standings",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/courses": {
            "get": {
                "produces": ["application/json"],
                "summary": "Paginated course summaries",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/courses/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "One course's summary and AI feedback",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/courses/{id}/challenges": {
            "get": {
                "produces": ["application/json"],
                "summary": "Paginated challenge list with per-challenge progress",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/courses/{id}/challenges/{challengeId}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Challenge detail: metadata, instructions, latest result, AI feedback",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "challengeId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/review": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Trigger a review run (pathway, course, or single challenge)",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "A run is already in progress"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Service health, artifact freshness, and tool availability",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics": {
            "get": {
                "produces": ["application/json"],
                "summary": "Pipeline and API counters",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Challenge Engine Dashboard API",
	Description:      "Review pipeline results and controls for the learning pathway dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
