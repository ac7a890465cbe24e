package imaging

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func TestRawBase64(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"raw passthrough", "aGVsbG8=", "aGVsbG8="},
		{"jpeg data url", "data:image/jpeg;base64,aGVsbG8=", "aGVsbG8="},
		{"png data url", "data:image/png;base64,AAAA", "AAAA"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RawBase64(tt.in))
		})
	}
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", DataURL("aGVsbG8="))
	assert.Equal(t, "data:image/png;base64,AAAA", DataURL("data:image/png;base64,AAAA"))
}

func TestDecode(t *testing.T) {
	t.Run("padded", func(t *testing.T) {
		data, err := Decode("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader))
		require.NoError(t, err)
		assert.Equal(t, pngHeader, data)
	})

	t.Run("unpadded", func(t *testing.T) {
		data, err := Decode(base64.RawStdEncoding.EncodeToString([]byte("leaf")))
		require.NoError(t, err)
		assert.Equal(t, []byte("leaf"), data)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Decode("data:image/jpeg;base64,@@not-base64@@")
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Decode("data:image/jpeg;base64,")
		assert.Error(t, err)
	})
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"png bytes", base64.StdEncoding.EncodeToString(pngHeader), "image/png"},
		{"jpeg bytes", base64.StdEncoding.EncodeToString(jpegHeader), "image/jpeg"},
		{"png bytes behind jpeg label", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngHeader), "image/png"},
		{"unknown bytes use declared type", "data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("plain text")), "image/webp"},
		{"unknown bytes default", base64.StdEncoding.EncodeToString([]byte("plain text")), DefaultMIME},
		{"garbage", "###", DefaultMIME},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIME(tt.in))
		})
	}
}
