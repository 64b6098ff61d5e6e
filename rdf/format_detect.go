package rdf

import (
	"bytes"
	"io"
	"strings"
)

const formatDetectionBufferSize = 512

// DetectFormat sniffs the first bytes of r. It returns the detected format and
// a reader that replays the sampled bytes, so the caller must continue with the
// returned reader. Line-based input is reported as N-Quads, which also accepts
// N-Triples documents.
func DetectFormat(r io.Reader) (Format, io.Reader, bool) {
	buf := make([]byte, formatDetectionBufferSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", r, false
	}
	sample := buf[:n]
	replay := io.MultiReader(bytes.NewReader(sample), r)

	format, ok := detectFormatFromSample(string(sample))
	return format, replay, ok
}

func detectFormatFromSample(sample string) (Format, bool) {
	for _, line := range strings.Split(sample, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "{"), strings.HasPrefix(line, "["):
			return FormatJSONLD, true
		case strings.HasPrefix(line, "<"), strings.HasPrefix(line, "_:"):
			return FormatNQuads, true
		default:
			return "", false
		}
	}
	return "", false
}
