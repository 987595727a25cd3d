// Package server exposes a sentence embedding client as a JSON HTTP API
// built on gin.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/similarity        {"source": "...", "compare": ["...", "..."]}
//	POST /v1/encode            {"text": ["...", "..."]}
//	POST /v1/batch-similarity  {"sources": [...], "compares": [...]}
//
// Input validation errors answer 400, a closed client 503 and every other
// failure 500, always as {"error": "..."}. Each response carries an
// X-Request-ID header, copied from the request when the caller sent one.
package server
