// Package docs contains the swagger documentation of the outreach API.
// Run `swag init -g cmd/server/main.go -o internal/docs` to regenerate.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/companies": {
            "post": {
                "tags": ["companies"],
                "summary": "Create a company",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "company", "required": true, "schema": {"$ref": "#/definitions/models.CreateCompanyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Company"}},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "409": {"description": "DUPLICATE_NAME", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            },
            "get": {
                "tags": ["companies"],
                "summary": "List companies",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PaginatedResponse"}}
                }
            }
        },
        "/companies/{company_id}": {
            "get": {
                "tags": ["companies"],
                "summary": "Get a company",
                "produces": ["application/json"],
                "parameters": [{"$ref": "#/parameters/companyID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Company"}},
                    "404": {"description": "COMPANY_NOT_FOUND", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/companies/{company_id}/analytics": {
            "get": {
                "tags": ["analytics"],
                "summary": "Outreach analytics",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"type": "string", "format": "date-time", "name": "since", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Analytics"}}
                }
            }
        },
        "/companies/{company_id}/imports/parse": {
            "post": {
                "tags": ["imports"],
                "summary": "Parse a CSV file",
                "consumes": ["multipart/form-data", "application/json", "text/csv"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"type": "file", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.ParseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ImportError"}},
                    "413": {"description": "Too Large", "schema": {"$ref": "#/definitions/models.ImportError"}}
                }
            }
        },
        "/companies/{company_id}/imports/analyze": {
            "post": {
                "tags": ["imports"],
                "summary": "Map and normalize parsed CSV rows",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/importer.ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ImportError"}}
                }
            }
        },
        "/companies/{company_id}/imports/suggest-mapping": {
            "post": {
                "tags": ["imports"],
                "summary": "Ask the language model for a column mapping",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/importer.SuggestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.SuggestResponse"}},
                    "502": {"description": "Model failed", "schema": {"$ref": "#/definitions/models.ImportError"}},
                    "503": {"description": "Not configured", "schema": {"$ref": "#/definitions/models.ImportError"}}
                }
            }
        },
        "/companies/{company_id}/imports/commit": {
            "post": {
                "tags": ["imports"],
                "summary": "Save reviewed leads",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/importer.CommitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importer.CommitResponse"}}
                }
            }
        },
        "/companies/{company_id}/leads": {
            "post": {
                "tags": ["leads"],
                "summary": "Create a lead",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"in": "body", "name": "lead", "required": true, "schema": {"$ref": "#/definitions/models.Lead"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Lead"}},
                    "409": {"description": "DUPLICATE_EMAIL", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            },
            "get": {
                "tags": ["leads"],
                "summary": "List leads",
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PaginatedResponse"}}
                }
            }
        },
        "/companies/{company_id}/leads/{lead_id}/draft": {
            "post": {
                "tags": ["leads"],
                "summary": "Draft an email for a lead",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"type": "string", "name": "lead_id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"prompt_id": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DraftedEmail"}},
                    "503": {"description": "LLM_UNAVAILABLE", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/companies/{company_id}/prompts": {
            "post": {
                "tags": ["prompts"],
                "summary": "Create a prompt",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"in": "body", "name": "prompt", "required": true, "schema": {"$ref": "#/definitions/models.Prompt"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Prompt"}}
                }
            }
        },
        "/companies/{company_id}/sequences": {
            "post": {
                "tags": ["sequences"],
                "summary": "Create a sequence",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"in": "body", "name": "sequence", "required": true, "schema": {"$ref": "#/definitions/models.Sequence"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Sequence"}}
                }
            }
        },
        "/companies/{company_id}/sequences/{sequence_id}/enrollments": {
            "post": {
                "tags": ["sequences"],
                "summary": "Enroll leads into a sequence",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/companyID"},
                    {"type": "string", "name": "sequence_id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"lead_ids": {"type": "array", "items": {"type": "string"}}}}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}}
                }
            }
        },
        "/followups/run": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["followups"],
                "summary": "Send due follow-ups",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/outreach.RunResult"}},
                    "401": {"description": "UNAUTHORIZED", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        }
    },
    "parameters": {
        "companyID": {"type": "string", "description": "Company ID (UUID)", "name": "company_id", "in": "path", "required": true}
    },
    "definitions": {
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "models.ImportError": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "fallbackRequired": {"type": "boolean"}
            }
        },
        "models.CreateCompanyRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "domain": {"type": "string"},
                "from_email": {"type": "string"}
            }
        },
        "models.Company": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "domain": {"type": "string"},
                "from_email": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.Lead": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "company_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "company": {"type": "string"},
                "email": {"type": "string"},
                "title": {"type": "string"},
                "website": {"type": "string"},
                "linkedin": {"type": "string"},
                "phone": {"type": "string"},
                "location": {"type": "string"},
                "industry": {"type": "string"},
                "notes": {"type": "string"},
                "source": {"type": "string"},
                "custom_fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "tags": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["new", "contacted", "replied"]}
            }
        },
        "models.Prompt": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "template": {"type": "string"},
                "tone": {"type": "string"}
            }
        },
        "models.Sequence": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "active": {"type": "boolean"},
                "steps": {"type": "array", "items": {"$ref": "#/definitions/models.SequenceStep"}}
            }
        },
        "models.SequenceStep": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "position": {"type": "integer"},
                "delay_days": {"type": "integer"},
                "prompt_id": {"type": "string"}
            }
        },
        "models.DraftedEmail": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "body": {"type": "string"}
            }
        },
        "models.Analytics": {
            "type": "object",
            "properties": {
                "leads": {"type": "integer"},
                "leads_by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "active_enrollments": {"type": "integer"},
                "emails_sent": {"type": "integer"},
                "emails_by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "since": {"type": "string", "format": "date-time"}
            }
        },
        "models.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "importer.ParseResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "string"}}},
                "totalRows": {"type": "integer"}
            }
        },
        "importer.ImportRequest": {
            "type": "object",
            "properties": {
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "string"}}},
                "headerMapping": {"type": "object", "additionalProperties": {"type": "string"}},
                "splitName": {"$ref": "#/definitions/normalizer.SplitNameRule"},
                "options": {
                    "type": "object",
                    "properties": {
                        "skipEmptyRows": {"type": "boolean"},
                        "validateEmails": {"type": "boolean"},
                        "detectDuplicates": {"type": "boolean"},
                        "maxRows": {"type": "integer"}
                    }
                },
                "useAI": {"type": "boolean"}
            }
        },
        "importer.ImportResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "totalRows": {"type": "integer"},
                "validRows": {"type": "integer"},
                "skippedRows": {"type": "integer"},
                "headerMapping": {"type": "object", "additionalProperties": {"type": "string"}},
                "splitName": {"$ref": "#/definitions/normalizer.SplitNameRule"},
                "dataQuality": {"type": "object"},
                "leads": {"type": "array", "items": {"type": "object"}},
                "errors": {"type": "array", "items": {"type": "object"}},
                "suggestions": {"type": "array", "items": {"type": "string"}},
                "customFields": {"type": "array", "items": {"type": "string"}},
                "processingTime": {"type": "integer"},
                "mappingSource": {"type": "string", "enum": ["request", "ai", "heuristic"]}
            }
        },
        "importer.SuggestRequest": {
            "type": "object",
            "properties": {
                "columns": {"type": "array", "items": {"type": "string"}},
                "sampleRows": {"type": "array", "items": {"type": "object", "additionalProperties": {"type": "string"}}}
            }
        },
        "importer.SuggestResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "headerMapping": {"type": "object", "additionalProperties": {"type": "string"}},
                "splitName": {"$ref": "#/definitions/normalizer.SplitNameRule"}
            }
        },
        "importer.CommitRequest": {
            "type": "object",
            "required": ["leads"],
            "properties": {
                "leads": {"type": "array", "items": {"type": "object"}},
                "source": {"type": "string"}
            }
        },
        "importer.CommitResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "inserted": {"type": "integer"},
                "duplicates": {"type": "integer"},
                "rejected": {"type": "integer"}
            }
        },
        "normalizer.SplitNameRule": {
            "type": "object",
            "properties": {
                "column": {"type": "string"},
                "firstNameFirst": {"type": "boolean"}
            }
        },
        "outreach.RunResult": {
            "type": "object",
            "properties": {
                "processed": {"type": "integer"},
                "sent": {"type": "integer"},
                "completed": {"type": "integer"},
                "stopped": {"type": "integer"},
                "skipped": {"type": "integer"},
                "failed": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Outreach API",
	Description:      "Lead import, prompt-driven email drafting and follow-up sequences.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
