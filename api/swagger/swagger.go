package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Classgotcha API",
        "description": "Course catalog ingestion, classroom schedules and feeds",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Catalog", "description": "Course catalog import and export"},
        {"name": "Classrooms", "description": "Majors, classroom search, sessions and calendars"},
        {"name": "Feed", "description": "Classroom tasks and moments"},
        {"name": "Observability", "description": "Counters and readiness"}
    ],
    "paths": {
        "/catalog/imports": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Import a course catalog batch",
                "description": "Accepts a JSON array or object of course records as the raw body or a multipart file. Each record commits or fails on its own.",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string", "required": false},
                    {"name": "file", "in": "formData", "type": "file", "required": false}
                ],
                "responses": {
                    "200": {"description": "Ingestion summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid batch format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/exports": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Export a semester catalog",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "required": false}
                ],
                "responses": {
                    "200": {"description": "Rendered catalog"},
                    "404": {"description": "Semester not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/majors": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List majors",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/search": {
            "post": {
                "tags": ["Classrooms"],
                "summary": "Search classrooms",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassroomSearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Get classroom",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/sessions": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List class sessions",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time", "required": false},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time", "required": false}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/calendar.ics": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Export classroom calendar",
                "produces": ["text/calendar"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "iCalendar document"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/tasks": {
            "get": {
                "tags": ["Feed"],
                "summary": "List active classroom tasks",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Feed"],
                "summary": "Schedule a classroom task or event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Ambiguous or malformed input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Classroom has no class time", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classrooms/{id}/moments": {
            "get": {
                "tags": ["Feed"],
                "summary": "List recent classroom moments",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "page", "in": "query", "type": "integer", "required": false}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Ingestion and cache counters",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ClassroomSearchRequest": {
            "type": "object",
            "required": ["query"],
            "properties": {
                "query": {"type": "string", "example": "csci 104"},
                "semester": {"type": "string", "example": "Fall 2017"}
            }
        },
        "CreateTaskRequest": {
            "type": "object",
            "required": ["task_name"],
            "properties": {
                "task_name": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string", "enum": ["HOMEWORK", "QUIZ", "TODO", "GROUP_MEETING", "EXAM"]},
                "location": {"type": "string"},
                "due_datetime": {"type": "string", "example": "2017-09-08T23:59:00"},
                "due_date": {"type": "string", "example": "2017-09-08"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "group_id": {"type": "string", "format": "uuid"},
                "participants": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
