package minio

import (
	"path"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfiguration(t *testing.T) {
	_, err := New(Config{Endpoint: "localhost:9000"}, zerolog.Nop())
	require.Error(t, err)
}

func TestURLUsesEndpointWhenPublicURLMissing(t *testing.T) {
	svc, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "audio"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/audio/assignments/x.webm", svc.URL("assignments/x.webm"))

	svc, err = New(Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "audio", PublicURL: "https://cdn.example.com/audio/"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/audio/x.wav", svc.URL("/x.wav"))
}

func TestObjectKeyKeepsFolderAndExtension(t *testing.T) {
	key := objectKey("/submissions/take one.webm")
	require.Equal(t, "submissions", path.Dir(key))
	require.Equal(t, ".webm", path.Ext(key))
	require.False(t, strings.Contains(key, "take one"))

	require.Equal(t, ".bin", path.Ext(objectKey("recording")))
}
