package stt

import "context"

type Provider interface {
	// TranscribeFile transcribes the recording at path. The file extension
	// tells the backend which container/codec it holds.
	TranscribeFile(ctx context.Context, path, language string) (text string, confidence float64, err error)
	Close() error
}
