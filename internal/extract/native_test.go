package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Backend </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Kubernetes</w:t><w:br/><w:t>PostgreSQL</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, dir string, body string) string {
	t.Helper()

	path := filepath.Join(dir, "cv.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<Types/>`))
	require.NoError(t, err)

	if body != "" {
		w, err = zw.Create("word/document.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestNativeTextDocx(t *testing.T) {
	t.Parallel()

	path := writeDocx(t, t.TempDir(), documentXML)

	text, err := NativeText{}.Text(context.Background(), path, KindDOCX)
	require.NoError(t, err)

	for _, want := range []string{"Jane Doe", "Backend", "Engineer", "Kubernetes", "PostgreSQL"} {
		assert.Contains(t, text, want)
	}
}

func TestNativeTextDocxWithoutBody(t *testing.T) {
	t.Parallel()

	path := writeDocx(t, t.TempDir(), "")

	text, err := NativeText{}.Text(context.Background(), path, KindDOCX)
	if err == nil {
		assert.Empty(t, strings.TrimSpace(text))
	}
}

func TestNativeTextRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := NativeText{}.Text(context.Background(), path, KindDOCX)
	assert.Error(t, err)
}
