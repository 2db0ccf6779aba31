package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/gema-interpret-api/internal/dto"
)

// ErrAudioTypeNotAllowed indicates uploaded content is not a recognised audio container.
var ErrAudioTypeNotAllowed = errors.New("audio file type not allowed")

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedAudioTypes = []string{"video/webm", "video/ogg", "application/ogg"}

// detectAudioType sniffs the asset bytes and rejects anything that is not audio.
func detectAudioType(data []byte) (string, error) {
	mime := mimetype.Detect(data)
	for current := mime; current != nil; current = current.Parent() {
		if strings.HasPrefix(current.String(), "audio/") {
			return mime.String(), nil
		}
	}
	for _, allowed := range allowedAudioTypes {
		if mime.Is(allowed) {
			return mime.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrAudioTypeNotAllowed, mime.String())
}

// storeAudio uploads fresh audio bytes and returns the resulting URL. Assets that
// already reference stored audio are returned as-is; empty assets yield "".
func storeAudio(ctx context.Context, uploader FileUploader, folder string, asset dto.AudioAsset) (string, error) {
	if len(asset.Data) == 0 {
		return strings.TrimSpace(asset.URL), nil
	}
	if uploader == nil {
		return "", errors.New("audio uploader is not configured")
	}

	if _, err := detectAudioType(asset.Data); err != nil {
		return "", err
	}

	name := asset.FileName
	if strings.TrimSpace(name) == "" {
		name = "recording" + mimetype.Detect(asset.Data).Extension()
	}

	url, err := uploader.Upload(ctx, path.Join(folder, path.Base(name)), bytes.NewReader(asset.Data))
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	return url, nil
}
