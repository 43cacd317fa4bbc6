// Package api implements the HTTP surface of the study service: the
// session endpoints, request decoding and validation, and the mapping
// from service errors to status codes and redacted client messages.
package api
