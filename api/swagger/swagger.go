package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "College Timetable API",
        "description": "Academic calendar, teaching slot placement and instructor workload service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and current user"},
        {"name": "Calendar", "description": "Teaching weeks of a term"},
        {"name": "Scheduler", "description": "Teaching slot placement"},
        {"name": "Workload", "description": "Instructor workload balance"},
        {"name": "Exports", "description": "Timetable, workload and calendar documents"},
        {"name": "Jobs", "description": "Background batch and export jobs"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/weeks": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List teaching weeks",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/IDPath"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Term not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/weeks/generate": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Generate teaching weeks skipping breaks",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/IDPath"}],
                "responses": {
                    "200": {"description": "Created and updated counts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Term has no start date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/schedule/fixed": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Place a section in one slot for all its weeks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/IDPath"},
                    {"in": "body", "name": "payload", "schema": {"type": "object", "properties": {"resetExisting": {"type": "boolean"}}}}
                ],
                "responses": {
                    "201": {"description": "Slots created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Section could not be scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/schedule/semi-auto": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Place a section week by week inside a window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/IDPath"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SemiAutoRequest"}}
                ],
                "responses": {
                    "201": {"description": "Slots created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Section could not be scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/schedule/fixed": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Run fixed placement for every section of a term",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/IDPath"},
                    {"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/TermScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Scheduled, failed and skipped sections", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/schedule/jobs": {
            "post": {
                "tags": ["Scheduler", "Jobs"],
                "summary": "Queue whole-term placement as a background job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/IDPath"},
                    {"in": "body", "name": "payload", "schema": {"$ref": "#/definitions/TermScheduleRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/slots": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List teaching slots of a term",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/IDPath"},
                    {"in": "query", "name": "cohortId", "type": "string"},
                    {"in": "query", "name": "roomId", "type": "string"},
                    {"in": "query", "name": "instructorId", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/{id}/timetable/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the term timetable",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"$ref": "#/parameters/IDPath"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/sections/{id}/calendar.ics": {
            "get": {
                "tags": ["Exports"],
                "summary": "iCalendar feed of a section",
                "security": [{"BearerAuth": []}],
                "produces": ["text/calendar"],
                "parameters": [{"$ref": "#/parameters/IDPath"}],
                "responses": {
                    "200": {"description": "Calendar"}
                }
            }
        },
        "/workload/{yearId}": {
            "get": {
                "tags": ["Workload"],
                "summary": "Compute instructor workload for an academic year",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "yearId", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Balance sheet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workload/{yearId}/export": {
            "get": {
                "tags": ["Workload", "Exports"],
                "summary": "Download the workload balance sheet",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"in": "path", "name": "yearId", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/research-projects/{id}/distribute-shares": {
            "post": {
                "tags": ["Workload"],
                "summary": "Store positional share ratios on project members",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/IDPath"}],
                "responses": {
                    "200": {"description": "Members with ratios", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/jobs": {
            "post": {
                "tags": ["Jobs"],
                "summary": "Queue a batch or export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateJobRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Job status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/IDPath"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Job not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports", "Jobs"],
                "summary": "Download a job result through a signed link",
                "parameters": [{"in": "path", "name": "token", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "IDPath": {"in": "path", "name": "id", "required": true, "type": "string"}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SemiAutoRequest": {
            "type": "object",
            "required": ["startWeekIndex", "sessionsPerWeek"],
            "properties": {
                "startWeekIndex": {"type": "integer", "minimum": 1},
                "sessionsPerWeek": {"type": "integer", "minimum": 1, "maximum": 12},
                "weekCount": {"type": "integer", "minimum": 1},
                "allowedRoomCodes": {"type": "array", "items": {"type": "string"}},
                "resetExisting": {"type": "boolean"}
            }
        },
        "TermScheduleRequest": {
            "type": "object",
            "properties": {
                "departmentCode": {"type": "string"},
                "resetExisting": {"type": "boolean", "default": true}
            }
        },
        "CreateJobRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["BATCH_SCHEDULE", "WORKLOAD_EXPORT", "TIMETABLE_EXPORT"]},
                "termId": {"type": "string"},
                "academicYearId": {"type": "string"},
                "departmentCode": {"type": "string"},
                "resetExisting": {"type": "boolean"},
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]}
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
