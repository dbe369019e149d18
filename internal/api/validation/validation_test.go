package validation

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wavHeader is the smallest header mimetype recognises as WAV.
var wavHeader = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestReadAudioUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		maxBytes int64
		wantErr  string
	}{
		{"wav", "voice.wav", wavHeader, 0, ""},
		{"mp3 with id3", "voice.MP3", append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...), 0, ""},
		{"bad extension", "voice.ogg", wavHeader, 0, "invalid file extension"},
		{"not audio", "voice.wav", []byte("just some text that is not audio"), 0, "invalid audio file format"},
		{"empty", "voice.wav", nil, 0, "file is empty"},
		{"too large", "voice.wav", wavHeader, 8, "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadAudioUpload(uploadHeader(t, tt.filename, tt.content), tt.maxBytes)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, data)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_bed_1_.mp3", SanitizeFilename("../../etc/my bed(1).mp3"))
}
