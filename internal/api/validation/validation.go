// Package validation provides request validation utilities for the API.
package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// AllowedAudioExtensions defines the allowed audio file extensions
var AllowedAudioExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
}

// AllowedAudioMimeTypes defines the decodable audio MIME types
var AllowedAudioMimeTypes = []string{
	"audio/wav",
	"audio/mpeg",
}

// ReadAudioUpload validates an uploaded audio file and returns its contents.
// Files larger than maxBytes are rejected; maxBytes <= 0 disables the limit.
func ReadAudioUpload(fileHeader *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}

	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return nil, fmt.Errorf("file size exceeds maximum allowed size of %d MB", maxBytes/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !AllowedAudioExtensions[ext] {
		return nil, fmt.Errorf("invalid file extension: %q. Allowed extensions: wav, mp3", ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file size exceeds maximum allowed size of %d MB", maxBytes/(1024*1024))
	}

	if err := ValidateAudioContent(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateAudioContent checks that data is a WAV or MP3 stream.
func ValidateAudioContent(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("file is empty")
	}
	mtype := mimetype.Detect(data)
	if !isAllowed(mtype) {
		return fmt.Errorf("invalid audio file format %s. Please upload a WAV or MP3 file", mtype.String())
	}
	return nil
}

func isAllowed(mtype *mimetype.MIME) bool {
	for _, allowed := range AllowedAudioMimeTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

// SanitizeFilename removes potentially dangerous characters from filenames
func SanitizeFilename(filename string) string {
	// Get the base name without directory
	filename = filepath.Base(filename)

	// Replace spaces with underscores
	filename = strings.ReplaceAll(filename, " ", "_")

	// Remove any other potentially problematic characters
	filename = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, filename)

	return filename
}
