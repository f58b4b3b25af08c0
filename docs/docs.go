// Package docs registers the OpenAPI description served on /swagger.
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
        "/clients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "List clients",
                "parameters": [
                    {"type": "string", "description": "Filter, e.g. name|contains|doe", "name": "query", "in": "query"},
                    {"type": "string", "description": "Ordering, e.g. name|asc", "name": "order", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ClientResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Create a client",
                "parameters": [
                    {"description": "Client", "name": "client", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateClientRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.ClientResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/clients/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Get a client",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClientResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Update a client",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "client", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateClientRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClientResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["clients"],
                "summary": "Delete a client",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/clients/cpf/{cpf}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Find a client by CPF",
                "parameters": [{"type": "string", "name": "cpf", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClientResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/clients/email/{email}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Find a client by email",
                "parameters": [{"type": "string", "name": "email", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClientResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ClientResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "cpf": {"type": "string"},
                "email": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "dto.CreateClientRequest": {
            "type": "object",
            "required": ["name", "cpf", "email"],
            "properties": {
                "name": {"type": "string"},
                "cpf": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "dto.UpdateClientRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "cpf": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "integer"},
                "field": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "clientdesk API",
	Description:      "Client registry with CPF and email lookups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
