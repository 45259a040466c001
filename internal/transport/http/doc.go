// Package http contains the HTTP handlers of the web interface. Each
// handler owns a chi sub-router; the app package mounts them under
// /api. Consolidation runs are started asynchronously and followed
// either by polling the operation endpoints or over the WebSocket.
package http
