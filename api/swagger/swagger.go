package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ResolveIT Complaints API",
        "description": "Grievance tracking with lifecycle state machine and automatic escalation",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Signup and login"},
        {"name": "Complaints", "description": "Complaint intake and workflow"},
        {"name": "AutoEscalation", "description": "Automatic escalation engine"},
        {"name": "Notifications", "description": "Per-recipient notification polling"},
        {"name": "Reports", "description": "Dashboard statistics and exports"}
    ],
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/complaints/submit": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Submit a complaint",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "category", "in": "formData", "required": true, "type": "string"},
                    {"name": "description", "in": "formData", "required": true, "type": "string"},
                    {"name": "urgency", "in": "formData", "required": true, "type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
                    {"name": "attachment", "in": "formData", "required": false, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Attachment too large"},
                    "415": {"description": "Unsupported attachment type"}
                }
            }
        },
        "/complaints/submit/anonymous": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Submit a complaint anonymously",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "category", "in": "formData", "required": true, "type": "string"},
                    {"name": "description", "in": "formData", "required": true, "type": "string"},
                    {"name": "urgency", "in": "formData", "required": true, "type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
                    {"name": "attachment", "in": "formData", "required": false, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Attachment too large"},
                    "415": {"description": "Unsupported attachment type"}
                }
            }
        },
        "/complaints/my": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List my complaints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/assigned": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List complaints assigned to me",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/admin/all": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List all complaints",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "urgency", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/admin/escalated": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List escalated complaints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/admin/unresolved": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List unresolved complaints",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/{id}": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Get a complaint",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Access denied"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/complaints/{id}/timeline": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Complaint timeline (internal notes filtered by role)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/{id}/notes": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Append a timeline note",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/complaints/assign/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Assign to an officer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignComplaintRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict or terminal state"}
                }
            }
        },
        "/complaints/unassign/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Unassign, reverting to review",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/deadline/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Update the deadline",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeadlineUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/complete/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Mark completed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "comment", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/resolve/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Mark resolved",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "comment", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/status/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Override status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/complaints/escalate/{id}": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Manually escalate",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EscalationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already escalated or terminal"}
                }
            }
        },
        "/complaints/de-escalate/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Clear escalation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "comment", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not escalated"}
                }
            }
        },
        "/auto-escalation/trigger": {
            "post": {
                "tags": ["AutoEscalation"],
                "summary": "Trigger a manual sweep",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SweepResult"}},
                    "409": {"description": "Sweep already in progress"}
                }
            }
        },
        "/auto-escalation/candidates": {
            "get": {
                "tags": ["AutoEscalation"],
                "summary": "List current escalation candidates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auto-escalation/stats": {
            "get": {
                "tags": ["AutoEscalation"],
                "summary": "Escalation statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auto-escalation/test/{id}": {
            "get": {
                "tags": ["AutoEscalation"],
                "summary": "Dry-run the policy against one complaint",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auto-escalation/config": {
            "get": {
                "tags": ["AutoEscalation"],
                "summary": "Current thresholds",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EscalationConfig"}}
                }
            },
            "put": {
                "tags": ["AutoEscalation"],
                "summary": "Update thresholds at runtime",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EscalationConfig"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EscalationConfig"}}
                }
            }
        },
        "/auto-escalation/health": {
            "get": {
                "tags": ["AutoEscalation"],
                "summary": "Engine health",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List my notifications",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Unread count",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notifications/read/{id}": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark one as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/notifications/read-all": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark all as read",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reports/dashboard": {
            "get": {
                "tags": ["Reports"],
                "summary": "Dashboard statistics",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export/csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export complaints as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reports/export/pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export complaints as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"}
            },
            "required": ["username", "email", "password", "full_name"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "AssignComplaintRequest": {
            "type": "object",
            "properties": {
                "assign_to_user_id": {"type": "string"},
                "deadline": {"type": "string"},
                "comment": {"type": "string"}
            },
            "required": ["assign_to_user_id"]
        },
        "DeadlineUpdateRequest": {
            "type": "object",
            "properties": {
                "deadline": {"type": "string"},
                "comment": {"type": "string"}
            },
            "required": ["deadline"]
        },
        "StatusUpdateRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "comment": {"type": "string"}
            },
            "required": ["status"]
        },
        "EscalationRequest": {
            "type": "object",
            "properties": {
                "escalate_to_user_id": {"type": "string"},
                "reason": {"type": "string"},
                "priority": {"type": "string", "enum": ["HIGH", "URGENT", "CRITICAL"]},
                "comment": {"type": "string"},
                "keep_status": {"type": "boolean"}
            },
            "required": ["reason"]
        },
        "NoteRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"},
                "is_internal_note": {"type": "boolean"}
            },
            "required": ["comment"]
        },
        "EscalationConfig": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "unassigned_threshold_hours": {"type": "integer"},
                "overdue_threshold_hours": {"type": "integer"},
                "stuck_threshold_hours": {"type": "integer"},
                "high_urgency_threshold_hours": {"type": "integer"},
                "medium_urgency_threshold_hours": {"type": "integer"},
                "low_urgency_threshold_hours": {"type": "integer"},
                "scheduling_interval": {"type": "string"}
            }
        },
        "SweepResult": {
            "type": "object",
            "properties": {
                "trigger": {"type": "string"},
                "scanned": {"type": "integer"},
                "escalated": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "object"}},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
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
                "message": {"type": "string"}
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
