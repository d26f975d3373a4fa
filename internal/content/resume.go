package content

import (
	"fmt"
	"os"

	"rsc.io/pdf"
)

// Resume describes the PDF served at /resume.pdf.
type Resume struct {
	Path  string
	Pages int
	Size  int64
}

// ResumeInfo inspects the resume PDF at p.
func ResumeInfo(p string) (Resume, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Resume{}, fmt.Errorf("resume %s: %w", p, ErrNotFound)
		}
		return Resume{}, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Resume{}, fmt.Errorf("stat resume: %w", err)
	}
	r, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return Resume{}, fmt.Errorf("read resume pdf: %w", err)
	}
	return Resume{Path: p, Pages: r.NumPage(), Size: st.Size()}, nil
}
