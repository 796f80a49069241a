// Package http contains the HTTP transport layer: chi handlers that parse
// and validate dashboard queries, delegate to the services layer, and render
// JSON or file downloads.
package http
