// Package api documents the figurebot host HTTP API.
//
// The handlers live in api/handlers; cmd/figurebot wires them onto a
// gorilla/mux router.
//
// # API Overview
//
//   - POST /v1/events  hand one chat message to the plugin registry
//   - GET  /health     liveness with per-check details
//   - GET  /healthz    bare liveness probe
//   - GET  /ready      readiness, fails until the figurine plugin is initialized
//   - GET  /version    build information
//   - GET  /metrics    Prometheus exposition
//
// # Events
//
// Request body:
//
//	{"content": "帮我手办化", "images": ["https://cdn.example.com/cat.png"]}
//
// Response body (image bytes are base64 encoded by encoding/json):
//
//	{"success": true, "data": {"results": [{"plugin": "figurine",
//	  "result": {"type": "image", "image": "iVBORw0KGgo..."}}]},
//	  "request_id": "..."}
//
// A message no plugin answers returns 422 with code NO_PLUGIN_MATCHED.
//
// # Errors
//
// Every error uses the same envelope:
//
//	{"success": false, "error": {"code": "INVALID_REQUEST", "message": "..."},
//	  "request_id": "..."}
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
