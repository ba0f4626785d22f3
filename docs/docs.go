// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g main.go
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
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/skills": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["技能"],
                "summary": "技能列表",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/skills/{skillId}/questions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["技能"],
                "summary": "抽取题目",
                "parameters": [
                    {"type": "string", "description": "技能ID", "name": "skillId", "in": "path", "required": true},
                    {"type": "integer", "description": "题目数量", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/attempts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["测验"],
                "summary": "我的测验记录",
                "parameters": [
                    {"type": "string", "description": "技能ID", "name": "skillId", "in": "query"},
                    {"type": "integer", "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "description": "每页数量", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["测验"],
                "summary": "开始测验",
                "parameters": [
                    {"description": "技能", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.CreateAttemptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/attempts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["测验"],
                "summary": "测验详情",
                "parameters": [
                    {"type": "string", "description": "测验ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/attempts/{id}/answers": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["测验"],
                "summary": "提交答案",
                "parameters": [
                    {"type": "string", "description": "测验ID", "name": "id", "in": "path", "required": true},
                    {"description": "答案", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.SubmitAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/attempts/{id}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["测验"],
                "summary": "完成测验",
                "parameters": [
                    {"type": "string", "description": "测验ID", "name": "id", "in": "path", "required": true},
                    {"description": "用时（秒）", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.CompleteAttemptRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/admin/attempts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["测验"],
                "summary": "全部测验记录（管理员）",
                "parameters": [
                    {"type": "integer", "description": "用户ID", "name": "ownerId", "in": "query"},
                    {"type": "string", "description": "技能ID", "name": "skillId", "in": "query"},
                    {"type": "integer", "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "description": "每页数量", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        }
    },
    "definitions": {
        "controller.CreateAttemptRequest": {
            "type": "object",
            "required": ["skillId"],
            "properties": {"skillId": {"type": "string"}}
        },
        "controller.CompleteAttemptRequest": {
            "type": "object",
            "properties": {"timeTaken": {"type": "integer", "minimum": 0}}
        },
        "service.SubmitAnswerRequest": {
            "type": "object",
            "required": ["questionId", "selectedAnswer"],
            "properties": {
                "questionId": {"type": "string"},
                "selectedAnswer": {"type": "string", "enum": ["A", "B", "C", "D"]},
                "timeTaken": {"type": "integer", "minimum": 0}
            }
        },
        "util.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Skill Assessment API",
	Description:      "Quiz attempt lifecycle: attempts, answers and scoring.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
