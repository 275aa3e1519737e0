package util

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

func SanitizePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	re := regexp.MustCompile(`[^a-z0-9_\-]`)
	s = re.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

// DocumentPrefix is the GCS folder all attachment objects for one document
// instance live under.
func DocumentPrefix(typeCode, documentNumber string) string {
	return fmt.Sprintf("documents/%s/%s", SanitizePart(typeCode), SanitizePart(documentNumber))
}

// FieldPrefix scopes attachment objects to a single field of a document so a
// re-upload for that field can purge its predecessors.
func FieldPrefix(typeCode, documentNumber, fieldKey string) string {
	return DocumentPrefix(typeCode, documentNumber) + "/" + SanitizePart(fieldKey)
}

func ClampComment255(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > 255 {
		return string(r[:255])
	}
	return s
}

func ExtFromFilenameOrMime(filename, mime string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext != "" {
		return ext
	}
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	case "text/csv":
		return ".csv"
	default:
		return ".bin"
	}
}
