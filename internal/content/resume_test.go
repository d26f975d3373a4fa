package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePDF writes a minimal PDF with the given number of blank pages.
func writePDF(t *testing.T, path string, pages int) {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for range pages {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestResumeInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	writePDF(t, path, 2)

	info, err := ResumeInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Pages)
	assert.Equal(t, path, info.Path)
	assert.Positive(t, info.Size)
}

func TestResumeInfoRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	_, err := ResumeInfo(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResumeInfoMissingFile(t *testing.T) {
	_, err := ResumeInfo(filepath.Join(t.TempDir(), "resume.pdf"))
	assert.ErrorIs(t, err, ErrNotFound)
}
