package stt

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

type GoogleSpeech struct {
	c *speech.Client
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{c: c}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// language example: "en-US", "id-ID"
func (g *GoogleSpeech) TranscribeFile(ctx context.Context, path, language string) (string, float64, error) {
	if language == "" {
		language = "en-US"
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}

	encoding, rate := encodingFor(filepath.Ext(path))
	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            rate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	// Results are consecutive segments; join the top alternative of each.
	var parts []string
	var confSum float64
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 || r.Alternatives[0].Transcript == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(r.Alternatives[0].Transcript))
		confSum += float64(r.Alternatives[0].Confidence)
	}
	if len(parts) == 0 {
		return "", 0, nil
	}
	return strings.Join(parts, " "), confSum / float64(len(parts)), nil
}

// encodingFor maps a container extension to the recognizer config. A zero
// sample rate lets the service read it from the file header.
func encodingFor(ext string) (speechpb.RecognitionConfig_AudioEncoding, int32) {
	switch strings.ToLower(ext) {
	case ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, 48000
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS, 48000
	case ".flac":
		return speechpb.RecognitionConfig_FLAC, 0
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16, 0
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, 0
	}
}
