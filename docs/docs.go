// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/products": {
			"get": {
				"tags": [
					"Products"
				],
				"summary": "List active products",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.Product"
							}
						}
					}
				}
			},
			"post": {
				"tags": [
					"Products"
				],
				"summary": "Create a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.Product"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "Request body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.ProductRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/products/category/{id}": {
			"get": {
				"tags": [
					"Products"
				],
				"summary": "List products in a category",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.Product"
							}
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/products/{id}": {
			"get": {
				"tags": [
					"Products"
				],
				"summary": "Get a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.Product"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"tags": [
					"Products"
				],
				"summary": "Update an owned product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.Product"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.ProductRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"tags": [
					"Products"
				],
				"summary": "Deactivate an owned product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/reviews": {
			"get": {
				"tags": [
					"Reviews"
				],
				"summary": "List active reviews",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.Review"
							}
						}
					}
				}
			},
			"post": {
				"tags": [
					"Reviews"
				],
				"summary": "Review a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.Review"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "Request body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.CreateReviewRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/reviews/products/{id}/reviews": {
			"get": {
				"tags": [
					"Reviews"
				],
				"summary": "List reviews of a product",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.Review"
							}
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/reviews/{id}": {
			"delete": {
				"tags": [
					"Reviews"
				],
				"summary": "Delete a review",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/categories": {
			"get": {
				"tags": [
					"Categories"
				],
				"summary": "List active categories",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/domain.Category"
							}
						}
					}
				}
			},
			"post": {
				"tags": [
					"Categories"
				],
				"summary": "Create a category",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.Category"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "Request body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.CategoryRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/categories/{id}": {
			"get": {
				"tags": [
					"Categories"
				],
				"summary": "Get a category",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.Category"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				]
			},
			"put": {
				"tags": [
					"Categories"
				],
				"summary": "Update a category",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/domain.Category"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.CategoryRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"tags": [
					"Categories"
				],
				"summary": "Deactivate a category",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"format": "uuid",
						"description": "Resource ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/users": {
			"post": {
				"tags": [
					"Users"
				],
				"summary": "Register an account",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/domain.User"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"description": "Request body",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/user.Registration"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/users/token": {
			"post": {
				"tags": [
					"Users"
				],
				"summary": "Exchange credentials for tokens",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/user.Tokens"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "username",
						"in": "formData",
						"required": true,
						"description": "Email"
					},
					{
						"type": "string",
						"name": "password",
						"in": "formData",
						"required": true
					}
				],
				"consumes": [
					"application/x-www-form-urlencoded"
				]
			}
		},
		"/users/refresh-token": {
			"post": {
				"tags": [
					"Users"
				],
				"summary": "Refresh an access token",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/user.Tokens"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/response.ErrorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"name": "refresh_token",
						"in": "formData",
						"required": true
					}
				],
				"consumes": [
					"application/x-www-form-urlencoded"
				]
			}
		}
	},
	"definitions": {
		"domain.Product": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string",
					"format": "uuid"
				},
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"price": {
					"type": "number"
				},
				"image_url": {
					"type": "string"
				},
				"stock": {
					"type": "integer"
				},
				"category_id": {
					"type": "string",
					"format": "uuid"
				},
				"rating": {
					"type": "number"
				},
				"seller_id": {
					"type": "string",
					"format": "uuid"
				},
				"is_active": {
					"type": "boolean"
				}
			}
		},
		"domain.Review": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string",
					"format": "uuid"
				},
				"user_id": {
					"type": "string",
					"format": "uuid"
				},
				"product_id": {
					"type": "string",
					"format": "uuid"
				},
				"comment": {
					"type": "string"
				},
				"grade": {
					"type": "integer",
					"minimum": 1,
					"maximum": 5
				},
				"comment_date": {
					"type": "string",
					"format": "date-time"
				},
				"is_active": {
					"type": "boolean"
				}
			}
		},
		"domain.Category": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string",
					"format": "uuid"
				},
				"name": {
					"type": "string"
				},
				"parent_id": {
					"type": "string",
					"format": "uuid"
				},
				"is_active": {
					"type": "boolean"
				}
			}
		},
		"domain.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string",
					"format": "uuid"
				},
				"email": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"buyer",
						"seller",
						"admin"
					]
				},
				"is_active": {
					"type": "boolean"
				}
			}
		},
		"handler.ProductRequest": {
			"type": "object",
			"required": [
				"name",
				"price",
				"category_id"
			],
			"properties": {
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"price": {
					"type": "number",
					"exclusiveMinimum": true,
					"minimum": 0
				},
				"image_url": {
					"type": "string"
				},
				"stock": {
					"type": "integer",
					"minimum": 0
				},
				"category_id": {
					"type": "string",
					"format": "uuid"
				}
			}
		},
		"handler.CreateReviewRequest": {
			"type": "object",
			"required": [
				"product_id",
				"grade"
			],
			"properties": {
				"product_id": {
					"type": "string",
					"format": "uuid"
				},
				"comment": {
					"type": "string",
					"maxLength": 5000
				},
				"grade": {
					"type": "integer",
					"minimum": 1,
					"maximum": 5
				}
			}
		},
		"handler.CategoryRequest": {
			"type": "object",
			"required": [
				"name"
			],
			"properties": {
				"name": {
					"type": "string",
					"minLength": 3,
					"maxLength": 50
				},
				"parent_id": {
					"type": "string",
					"format": "uuid"
				}
			}
		},
		"user.Registration": {
			"type": "object",
			"required": [
				"email",
				"password"
			],
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string",
					"minLength": 8,
					"maxLength": 72
				},
				"role": {
					"type": "string",
					"enum": [
						"buyer",
						"seller"
					]
				}
			}
		},
		"user.Tokens": {
			"type": "object",
			"properties": {
				"access_token": {
					"type": "string"
				},
				"refresh_token": {
					"type": "string"
				},
				"token_type": {
					"type": "string"
				}
			}
		},
		"response.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				}
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
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Catalog API",
	Description:      "Product catalog with categories, buyer reviews and role-based access.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
