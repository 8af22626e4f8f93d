package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Board API",
        "description": "Drag-and-drop weekly timetable sessions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Board sessions, cells and moves"},
        {"name": "Ops", "description": "Health and readiness"}
    ],
    "paths": {
        "/timetable/layout": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Describe the timetable grid",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/cells/{day}/{period}/droppable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Tell whether a cell accepts drops",
                "parameters": [
                    {"name": "day", "in": "path", "required": true, "type": "integer"},
                    {"name": "period", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/boards": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Open a board session with the initial timetable",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/boards/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the current board state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired board", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetable"],
                "summary": "Close a board session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/timetable/boards/{id}/cells/{day}/{period}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the content of one cell",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "path", "required": true, "type": "integer"},
                    {"name": "period", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/boards/{id}/empty-cells": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List empty cells in row-major order",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/boards/{id}/moves": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Apply a completed drag",
                "description": "An occupied destination pushes its entry to a free cell. Drops on the break period are ignored.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or source out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Destination outside the grid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/boards/{id}/reset": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Restore the initial timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/boards/{id}/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download the board as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "Cell": {
            "type": "object",
            "required": ["day", "period"],
            "properties": {
                "day": {"type": "integer", "minimum": 0},
                "period": {"type": "integer", "minimum": 0}
            }
        },
        "MoveEntryRequest": {
            "type": "object",
            "required": ["source", "destination"],
            "properties": {
                "source": {"$ref": "#/definitions/Cell"},
                "destination": {"$ref": "#/definitions/Cell"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
