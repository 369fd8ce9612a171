package ocr

import "context"

// Recognizer derives text from a scanned document.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
	Close() error
}

// Options tune recognition quality and cost.
type Options struct {
	DPI      float64 // raster resolution per page
	Quality  int     // JPEG quality 1..100
	MaxPages int     // pages beyond this are ignored
	Language string  // hint passed to the model, ex: "English"
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = 200
	}
	if o.Quality < 1 || o.Quality > 100 {
		o.Quality = 90
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 5
	}
	if o.Language == "" {
		o.Language = "English"
	}
	return o
}
