// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["controller"],
                "summary": "Controller status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StatusView"}}}
            }
        },
        "/api/v1/config": {
            "get": {
                "produces": ["application/json"],
                "tags": ["controller"],
                "summary": "Current configuration",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Configuration"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["controller"],
                "summary": "Update configuration",
                "parameters": [{
                    "description": "Configuration payload",
                    "name": "body",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/handlers.ConfigRequest"}
                }],
                "responses": {
                    "200": {"description": "status, config"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/api/v1/control": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["controller"],
                "summary": "Control the controller",
                "parameters": [{
                    "description": "Action payload",
                    "name": "body",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/handlers.ControlRequest"}
                }],
                "responses": {
                    "200": {"description": "status, action, state"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Conflict"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/api/v1/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["controller"],
                "summary": "Sample history",
                "responses": {"200": {"description": "count, points"}}
            }
        },
        "/api/v1/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List logs",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {
                        "enum": ["START", "STOP", "RELAY_ON", "RELAY_OFF", "SHUTDOWN", "CONFIG_CHANGE", "SENSOR_ERROR", "SENSOR_RESTORED"],
                        "type": "string",
                        "name": "type",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "count, events"},
                    "400": {"description": "Bad Request"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        }
    },
    "definitions": {
        "handlers.ConfigRequest": {
            "type": "object",
            "required": ["check_interval", "temp_high", "temp_low"],
            "properties": {
                "check_interval": {"type": "integer", "example": 5},
                "temp_high": {"type": "number", "example": 70},
                "temp_low": {"type": "number", "example": 60}
            }
        },
        "handlers.ControlRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "example": "stop"}
            }
        },
        "models.Configuration": {
            "type": "object",
            "properties": {
                "check_interval": {"type": "integer"},
                "max_temp": {"type": "number"},
                "min_temp": {"type": "number"},
                "temp_high": {"type": "number"},
                "temp_low": {"type": "number"}
            }
        },
        "models.StatusView": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["IDLE", "RELAY_OFF", "RELAY_ON", "SHUTDOWN"]},
                "temperature": {"type": "number"},
                "relay_active": {"type": "boolean"},
                "running": {"type": "boolean"},
                "sensor_connected": {"type": "boolean"},
                "relay_working": {"type": "boolean"},
                "total_readings": {"type": "integer"},
                "errors": {"type": "integer"},
                "last_error": {"type": "string"},
                "last_reading_at": {"type": "string"},
                "started_at": {"type": "string"},
                "uptime_seconds": {"type": "integer"},
                "config": {"$ref": "#/definitions/models.Configuration"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Thermo Relay API",
	Description:      "Hysteresis temperature relay controller.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
