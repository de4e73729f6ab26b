package feed

import (
	"fmt"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var xmlEncodingPattern = regexp.MustCompile(`(?i)^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// toUTF8 transcodes a feed body using the charset from the Content-Type header,
// falling back to the XML declaration. Unknown labels pass the body through.
func toUTF8(data []byte, contentType string) ([]byte, error) {
	label := charsetFromContentType(contentType)
	if label == "" {
		label = charsetFromDeclaration(data)
	}

	if label == "" || isUTF8(label) {
		return data, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return data, nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s feed: %w", label, err)
	}

	// The declaration must agree with the new encoding for downstream XML parsers
	if loc := xmlEncodingPattern.FindSubmatchIndex(decoded); loc != nil {
		fixed := make([]byte, 0, len(decoded))
		fixed = append(fixed, decoded[:loc[2]]...)
		fixed = append(fixed, "UTF-8"...)
		fixed = append(fixed, decoded[loc[3]:]...)
		decoded = fixed
	}

	return decoded, nil
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

func charsetFromDeclaration(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if m := xmlEncodingPattern.FindSubmatch(head); m != nil {
		return string(m[1])
	}
	return ""
}

func isUTF8(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return true
	}
	return false
}
