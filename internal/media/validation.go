package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/uniformhub/gateway/internal/constraints"
)

// File is an in-memory image bound to an upload slot.
type File struct {
	Slot string
	Name string
	Data []byte
}

// Rejection explains why a file failed the media constraints.
type Rejection struct {
	Slot   string `json:"slot"`
	Reason string `json:"reason"`
}

// sniffFormat detects the image format from content, ignoring the declared
// name and content type.
func sniffFormat(data []byte) (string, string) {
	mt := mimetype.Detect(data)
	return strings.TrimPrefix(mt.Extension(), "."), mt.String()
}

func formatAllowed(format string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == format {
			return true
		}
		if format == "jpg" && candidate == "jpeg" {
			return true
		}
	}
	return false
}

// checkFile returns a rejection reason, or "" when the file is acceptable.
func checkFile(f File, limits constraints.MediaConstraints) string {
	if len(f.Data) == 0 {
		return "file is empty"
	}
	if limit := limits.MaxBytes(); limit > 0 && int64(len(f.Data)) > limit {
		return fmt.Sprintf("file exceeds %d MB", limits.MaxImgSize)
	}
	format, mimeType := sniffFormat(f.Data)
	if !strings.HasPrefix(mimeType, "image/") || !formatAllowed(format, limits.Formats()) {
		return fmt.Sprintf("format must be one of %s", strings.Join(limits.Formats(), ", "))
	}
	return ""
}
