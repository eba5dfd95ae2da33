// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {"get": {"tags": ["ops"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/healthz": {"get": {"tags": ["ops"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/api/login": {"post": {"tags": ["auth"], "summary": "Log in",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "INVALID_CREDENTIALS"}, "429": {"description": "TOO_MANY_REQUESTS"}}}},
        "/api/logout": {"post": {"tags": ["auth"], "summary": "Log out", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/profile": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/medicines": {
            "get": {"tags": ["medicines"], "summary": "List medicines", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "q", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["medicines"], "summary": "Create medicine", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/service.MedicineInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "DUPLICATE_MEDICINE"}, "422": {"description": "VALIDATION_ERROR"}}}
        },
        "/api/medicines/{id}": {
            "get": {"tags": ["medicines"], "summary": "Get medicine", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "NOT_FOUND"}}},
            "put": {"tags": ["medicines"], "summary": "Update medicine", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["medicines"], "summary": "Delete medicine", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "MEDICINE_IN_USE"}}}
        },
        "/api/stock-transactions": {
            "get": {"tags": ["transactions"], "summary": "List stock transactions", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "query", "name": "medicine_id", "type": "string"}, {"in": "query", "name": "limit", "type": "integer"}, {"in": "query", "name": "offset", "type": "integer"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["transactions"], "summary": "Record stock transaction", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/service.TransactionInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "PERIOD_CLOSED"}, "422": {"description": "VALIDATION_ERROR or INSUFFICIENT_STOCK"}}}
        },
        "/api/transaction-types": {"get": {"tags": ["transactions"], "summary": "Transaction types", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/daily": {"get": {"tags": ["reports"], "summary": "Daily report", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "query", "name": "date", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/monthly": {"get": {"tags": ["reports"], "summary": "Monthly report", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "query", "name": "year", "required": true, "type": "integer"}, {"in": "query", "name": "month", "required": true, "type": "integer"}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "INVALID_PERIOD"}}}},
        "/api/reports/month-close": {
            "get": {"tags": ["reports"], "summary": "Month close history", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["reports"], "summary": "Close month", "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.monthCloseRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "INVALID_PERIOD"}, "409": {"description": "MONTH_ALREADY_CLOSED or PERIOD_NOT_OPEN"}}}
        },
        "/api/reports/month-close/{year}/{month}/archive": {"get": {"tags": ["reports"], "summary": "Archived month report", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "year", "required": true, "type": "integer"}, {"in": "path", "name": "month", "required": true, "type": "integer"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "ARCHIVE_NOT_FOUND"}}}}
    },
    "definitions": {
        "handler.loginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handler.monthCloseRequest": {"type": "object", "properties": {"year": {"type": "integer"}, "month": {"type": "integer"}}},
        "service.MedicineInput": {"type": "object", "properties": {"name": {"type": "string"}, "unit": {"type": "string"}, "dosage_form": {"type": "string"}, "description": {"type": "string"}}},
        "service.TransactionInput": {"type": "object", "properties": {"medicine_id": {"type": "string"}, "txn_type_id": {"type": "integer"}, "txn_date": {"type": "string"}, "quantity": {"type": "integer"}, "remarks": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Medstock API",
	Description:      "Medication inventory: catalog, stock ledger, reports and month close.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
