//go:build swagger

package main

import "github.com/swaggo/swag"

// Generated by swag init; kept in sync with the annotations in the httpapi
// handlers. Only compiled in with -tags=swagger.
const docTemplate = `{
    "schemes": ["http"],
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "contact": {
            "name": "compressd maintainers",
            "url": "https://github.com/your-org/compressd"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/compress": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Compress prompts",
                "parameters": [
                    {
                        "description": "prompts and compression parameters",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.CompressRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CompressResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/reconfigure": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Swap the worker pool onto a new model/device",
                "parameters": [
                    {
                        "description": "new pool configuration; empty fields inherit",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.PoolConfig"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.CompressRequest": {
            "type": "object",
            "properties": {
                "prompts": {"type": "array", "items": {"type": "string"}},
                "rate": {"type": "number"},
                "target_token": {"type": "integer"},
                "target_context_level_rate": {"type": "number"},
                "context_level_rate": {"type": "number"},
                "context_level_target_token": {"type": "integer"},
                "chunk_end_tokens": {"type": "string"},
                "query": {"type": "string"}
            }
        },
        "types.CompressResponse": {
            "type": "object",
            "properties": {
                "prompts": {"type": "array", "items": {"type": "string"}},
                "original_tokens": {"type": "integer"},
                "compressed_tokens": {"type": "integer"},
                "rate": {"type": "number"}
            }
        },
        "types.PoolConfig": {
            "type": "object",
            "properties": {
                "model": {"type": "string"},
                "device": {"type": "string"},
                "use_lingua2": {"type": "boolean"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "backend": {"type": "string"},
                "pool": {"$ref": "#/definitions/types.PoolStatus"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        },
        "types.PoolStatus": {
            "type": "object",
            "properties": {
                "pool_size": {"type": "integer"},
                "available": {"type": "integer"},
                "in_use": {"type": "integer"},
                "model": {"type": "string"},
                "device": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer"}
            }
        }
    }
}`

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "compressd API",
	Description:      "HTTP API for prompt compression backed by a bounded worker pool.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}
