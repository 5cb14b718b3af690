package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a Swagger UI page and the OpenAPI document.
func RegisterSwagger(r gin.IRouter) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Help Restaurant Review API</title>
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
  "info": { "title": "help-restaurant-review", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Envelope": { "type": "object", "properties": { "success": {"type":"boolean"}, "message": {"type":"string"}, "payload": {} } },
      "Property": { "type": "object", "properties": { "fieldName": {"type":"string"}, "value": {} } },
      "Review": { "type": "object", "properties": {
        "reviewId": {"type":"string"}, "author": {"type":"string"}, "nodeId": {"type":"string"},
        "parentReviewId": {"type":"string","nullable":true}, "content": {"type":"string"},
        "rating": {"type":"number","minimum":0,"maximum":5}, "replies": {"type":"array","items":{"type":"string"}} } },
      "Node": { "type": "object", "properties": {
        "nodeId": {"type":"string"}, "title": {"type":"string"},
        "type": {"type":"string","enum":["text","image","folder","restaurant"]},
        "content": {}, "filePath": {"type":"object"}, "dateCreated": {"type":"string","format":"date-time"} } }
    }
  },
  "paths": {
    "/node/create": { "post": { "summary": "Create a node", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"node":{"$ref":"#/components/schemas/Node"}}}}}}, "responses": { "201": { "description": "created" }, "400": { "description": "invalid node" }, "409": { "description": "duplicate id" } } } },
    "/node/get/{nodeId}": { "get": { "summary": "Get a node", "responses": { "200": { "description": "node" }, "404": { "description": "not found" } } } },
    "/node/getNodesById": { "post": { "summary": "Get nodes by id", "responses": { "200": { "description": "nodes" } } } },
    "/node/roots": { "get": { "summary": "Root nodes as trees", "responses": { "200": { "description": "trees" } } } },
    "/node/search": { "get": { "summary": "Search nodes by title or content", "responses": { "200": { "description": "nodes" } } } },
    "/node/move": { "post": { "summary": "Move a node under a new parent", "responses": { "200": { "description": "moved" } } } },
    "/node/{nodeId}": {
      "put": { "summary": "Update node properties", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"data":{"type":"array","items":{"$ref":"#/components/schemas/Property"}}}}}}}, "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a node, its subtree, reviews and anchors", "responses": { "200": { "description": "deleted ids" } } }
    },
    "/review/create": { "post": { "summary": "Create a review or reply", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"review":{"$ref":"#/components/schemas/Review"}}}}}}, "responses": { "201": { "description": "created" }, "400": { "description": "not a valid review" }, "409": { "description": "duplicate id" } } } },
    "/review/getByReviewId/{reviewId}": { "get": { "summary": "Get a review", "responses": { "200": { "description": "review" }, "404": { "description": "not found" } } } },
    "/review/getByNodeId/{nodeId}": { "get": { "summary": "Reviews of a node", "responses": { "200": { "description": "reviews" } } } },
    "/review/thread/{nodeId}": { "get": { "summary": "Nested review thread with rendered content", "responses": { "200": { "description": "thread" } } } },
    "/review/rating/{nodeId}": { "get": { "summary": "Rating summary of a node", "responses": { "200": { "description": "rating" } } } },
    "/review/feed/{nodeId}": { "get": { "summary": "RSS feed of recent reviews", "responses": { "200": { "description": "rss" } } } },
    "/review/{reviewId}": {
      "put": { "summary": "Update author, content or rating", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a review and its replies", "responses": { "200": { "description": "deleted ids" } } }
    },
    "/anchor/create": { "post": { "summary": "Create an anchor", "responses": { "201": { "description": "created" } } } },
    "/anchor/getAnchorsById": { "post": { "summary": "Get anchors by id", "responses": { "200": { "description": "anchors" } } } },
    "/anchor/getByNodeId/{nodeId}": { "get": { "summary": "Anchors of a node", "responses": { "200": { "description": "anchors" } } } },
    "/anchor/{anchorId}": {
      "get": { "summary": "Get an anchor", "responses": { "200": { "description": "anchor" } } },
      "put": { "summary": "Update an anchor extent", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete an anchor and its links", "responses": { "200": { "description": "deleted" } } }
    },
    "/link/create": { "post": { "summary": "Link two anchors", "responses": { "201": { "description": "created" } } } },
    "/link/getLinksById": { "post": { "summary": "Get links by id", "responses": { "200": { "description": "links" } } } },
    "/link/getByAnchorId/{anchorId}": { "get": { "summary": "Links of an anchor", "responses": { "200": { "description": "links" } } } },
    "/link/getLinksByAnchorIds": { "post": { "summary": "Links of several anchors", "responses": { "200": { "description": "links" } } } },
    "/link/{linkId}": {
      "get": { "summary": "Get a link", "responses": { "200": { "description": "link" } } },
      "put": { "summary": "Update title or explainer", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a link", "responses": { "200": { "description": "deleted" } } }
    },
    "/media/upload": { "post": { "summary": "Upload an image", "responses": { "201": { "description": "key and presigned url" }, "415": { "description": "not an image" } } } },
    "/sitemap.xml": { "get": { "summary": "Sitemap of restaurants", "responses": { "200": { "description": "xml" } } } },
    "/auth/login": {
      "post": {
        "summary": "Log in through Keycloak",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mode":{"type":"string","enum":["password","auth_code"]},"username":{"type":"string"},"password":{"type":"string"},"code":{"type":"string"},"redirect_uri":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "authentication failed" } }
      }
    },
    "/auth/refresh": { "post": { "summary": "Rotate the refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new tokens" }, "401": { "description": "invalid refresh" } } } },
    "/auth/logout": { "post": { "summary": "End the session and revoke the access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } } },
    "/api/v1/me": { "get": { "summary": "Reviewer profile", "responses": { "200": { "description": "reviewer" }, "401": { "description": "not signed in" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
