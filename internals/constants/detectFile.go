package constants

import (
	"path/filepath"
	"strings"
)

type FileType int

const (
	FileUnknown FileType = 99
	FileImage   FileType = 6
	FileSheet   FileType = 7
)

func DetectFileTypeFromExt(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileImage
	case ".xlsx":
		return FileSheet
	default:
		return FileUnknown
	}
}

// IsImageFile reports whether filename has an extension the photo
// pipeline can decode.
func IsImageFile(filename string) bool {
	return DetectFileTypeFromExt(filename) == FileImage
}
