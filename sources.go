package aientity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Source supplies the text records are extracted from.
type Source interface {
	// Name identifies the source in errors and logs.
	Name() string
	Content(ctx context.Context) (string, error)
}

// TextSource is an in-memory text.
type TextSource struct {
	Label string
	Text  string
}

// NewTextSource creates a new text source
func NewTextSource(text string) *TextSource {
	return &TextSource{Label: "text", Text: text}
}

func (t *TextSource) Name() string { return t.Label }

func (t *TextSource) Content(ctx context.Context) (string, error) {
	return t.Text, nil
}

// FileSource reads a local text file. Files whose content is detected as
// binary are rejected.
type FileSource struct {
	Path string
}

// NewFileSource creates a new file source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return f.Path }

func (f *FileSource) Content(ctx context.Context) (string, error) {
	if f.Path == "" {
		return "", &SourceUnavailableError{Source: "file", Err: fmt.Errorf("file path is empty")}
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return "", &SourceUnavailableError{Source: f.Path, Err: err}
	}
	if info.IsDir() {
		return "", &SourceUnavailableError{Source: f.Path, Err: fmt.Errorf("is a directory")}
	}
	if info.Size() == 0 {
		return "", nil
	}

	mtype, err := mimetype.DetectFile(f.Path)
	if err != nil {
		return "", &SourceUnavailableError{Source: f.Path, Err: err}
	}
	if !isTextMIME(mtype) {
		return "", &SourceUnavailableError{Source: f.Path, Err: fmt.Errorf("not a text file: %s", mtype.String())}
	}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return "", &SourceUnavailableError{Source: f.Path, Err: err}
	}
	return string(content), nil
}

// isTextMIME walks the detected type's ancestry looking for text/plain.
func isTextMIME(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") || strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// URLSource fetches text over HTTP GET.
type URLSource struct {
	URL    string
	Client HTTPDoer // nil → http.DefaultClient
}

// NewURLSource creates a new URL source
func NewURLSource(url string) *URLSource {
	return &URLSource{URL: url}
}

func (u *URLSource) Name() string { return u.URL }

func (u *URLSource) Content(ctx context.Context) (string, error) {
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return "", &SourceUnavailableError{Source: u.URL, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &SourceUnavailableError{Source: u.URL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close() // Best effort close, ignore error in defer
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SourceUnavailableError{Source: u.URL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SourceUnavailableError{Source: u.URL, Err: err}
	}
	return string(body), nil
}
