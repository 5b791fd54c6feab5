// Package openapi exposes the loader contract used to fetch OpenAPI documents
// for scaffolding. The file, fs.FS and HTTP implementations live under
// internal/openapi/loader; kin-openapi parsing happens in pkg/scaffold.
package openapi
