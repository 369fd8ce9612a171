package extract

import (
	"mime"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DetectKind resolves the document kind from the declared file name,
// falling back to the declared content type when the name has no extension.
func DetectKind(filename, contentType string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	case "":
	default:
		return "", false
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mt {
	case mimePDF:
		return KindPDF, true
	case mimeDOCX:
		return KindDOCX, true
	default:
		return "", false
	}
}

func (k Kind) Ext() string { return "." + string(k) }
