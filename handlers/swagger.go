package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the account service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r gin.IRouter) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>account-service - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "account-service", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" } } },
      "User": { "type": "object", "properties": {
        "id": {"type":"string"}, "email": {"type":"string"}, "name": {"type":"string"}, "role": {"type":"string"},
        "isOnboarded": {"type":"boolean"}, "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"} } }
    }
  },
  "paths": {
    "/auth": {
      "post": {
        "summary": "Sign in, or register when no profile exists for the email",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","password"],"properties":{"email":{"type":"string"},"password":{"type":"string"},"name":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "201": { "description": "user registered" }, "400": { "description": "invalid input" }, "401": { "description": "wrong credentials" } }
      }
    },
    "/confirm": {
      "post": { "summary": "Confirm sign-up with the emailed code", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","code"],"properties":{"email":{"type":"string"},"code":{"type":"string"}}}}}}, "responses": { "200": { "description": "confirmed" }, "400": { "description": "invalid or expired code" } } }
    },
    "/logout": {
      "post": { "summary": "Sign out everywhere and revoke the access token", "security": [{"bearer": []}], "responses": { "200": { "description": "logged out" }, "401": { "description": "invalid token" } } }
    },
    "/me": {
      "get": { "summary": "Get the caller's profile", "security": [{"bearer": []}], "responses": { "200": { "description": "profile" }, "404": { "description": "no profile" } } }
    },
    "/edit-account": {
      "put": { "summary": "Edit a profile; admins may change roles", "security": [{"bearer": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email"],"properties":{"email":{"type":"string"},"name":{"type":"string"},"role":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated" }, "400": { "description": "missing email" }, "403": { "description": "not allowed" }, "404": { "description": "no such user" } } }
    },
    "/users": {
      "get": { "summary": "List profiles (admin only)", "security": [{"bearer": []}], "parameters": [{"name":"page","in":"query","schema":{"type":"integer","default":1}},{"name":"limit","in":"query","schema":{"type":"integer","default":10,"maximum":100}}], "responses": { "200": { "description": "page of users" }, "403": { "description": "not an admin" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
