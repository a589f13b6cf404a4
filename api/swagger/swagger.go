package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu Admin Gateway",
        "description": "Admin gateway for the learning platform backend",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Admin sign-in and session"},
        {"name": "Taxonomy", "description": "Grades, subjects, streams"},
        {"name": "Teachers", "description": "Approval and assignments"},
        {"name": "Classes", "description": "Class management"},
        {"name": "Schedule", "description": "Lessons and live sessions"},
        {"name": "Papers", "description": "Paper and question authoring"},
        {"name": "Students", "description": "Roster and bans"},
        {"name": "Enrollments", "description": "Enrollment request inbox"},
        {"name": "Results", "description": "Report feeds and exports"},
        {"name": "Uploads", "description": "Image uploads"}
    ],
    "paths": {
        "/auth/sign-in": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin sign in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/verify-otp": {
            "post": {
                "tags": ["Auth"],
                "summary": "Complete the OTP challenge",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List grades",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List subjects of a grade",
                "parameters": [
                    {"name": "gradeId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Taxonomy"],
                "summary": "Create a subject, creating its grade when missing",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateChildRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/approve": {
            "patch": {
                "tags": ["Teachers"],
                "summary": "Approve a pending teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/papers": {
            "get": {
                "tags": ["Papers"],
                "summary": "List papers with derived status",
                "parameters": [
                    {"name": "gradeId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/papers/{id}/publish": {
            "patch": {
                "tags": ["Papers"],
                "summary": "Publish a complete paper",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not complete or already published"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students under the saved filter",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/exports": {
            "post": {
                "tags": ["Results"],
                "summary": "Queue a report export",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string"},
                    {"name": "admin", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SignInRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateChildRequest": {
            "type": "object",
            "properties": {
                "grade": {"type": "integer"},
                "name": {"type": "string"}
            },
            "required": ["grade", "name"]
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
