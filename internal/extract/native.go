package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/lu4p/cat"
)

// TextSource pulls the text layer out of a document on disk.
type TextSource interface {
	Text(ctx context.Context, path string, kind Kind) (string, error)
}

// NativeText reads PDFs through MuPDF and DOCX files through cat.
type NativeText struct{}

func (NativeText) Text(ctx context.Context, path string, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return pdfText(ctx, path)
	case KindDOCX:
		return docxText(path)
	default:
		return "", fmt.Errorf("no text source for %q", kind)
	}
}

func pdfText(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		t, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	return text, nil
}
