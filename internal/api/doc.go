// Package api exposes a factorization pool over HTTP.
//
// Numbers are posted in batches; a shutdown request merges every worker's
// table, returns the LCM and starts a fresh pool for the next batch. Pool
// events are relayed to WebSocket clients on /ws.
//
//	POST /api/numbers   {"numbers": [4, 6]}
//	POST /api/shutdown  -> {"batch": 1, "factors": [...], "lcm": "12"}
//	GET  /api/status
//	GET  /api/metrics
//	GET  /ws
package api
