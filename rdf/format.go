package rdf

import (
	"path/filepath"
	"strings"
)

// Format identifies RDF serialization formats accepted as canonicalization input.
type Format string

const (
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
)

// ParseFormat normalizes a format string.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ntriples", "nt":
		return FormatNTriples, true
	case "nquads", "nq":
		return FormatNQuads, true
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromPath infers the format from a filename extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return FormatNTriples, true
	case ".nq":
		return FormatNQuads, true
	case ".jsonld", ".json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// FormatFromContentType infers the format from a media type.
func FormatFromContentType(contentType string) (Format, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "application/n-triples":
		return FormatNTriples, true
	case "application/n-quads", "text/plain", "":
		return FormatNQuads, true
	case "application/ld+json", "application/json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}
