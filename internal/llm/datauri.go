package llm

import (
	"fmt"
	"strings"
)

// SplitDataURI returns the media type and base64 payload of a
// data:<mime>;base64,<payload> URI.
func SplitDataURI(uri string) (mediaType, payload string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("data URI has no payload")
	}
	mediaType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("data URI is not base64 encoded")
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return mediaType, payload, nil
}
