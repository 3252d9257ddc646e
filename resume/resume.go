// Package resume extracts text from uploaded resume PDFs and keeps the original files.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxSize is the largest resume upload accepted.
const MaxSize = 10 << 20

var (
	ErrNotPDF      = errors.New("file is not a PDF")
	ErrTooLarge    = errors.New("file is too large")
	ErrNotFound    = errors.New("could not find resume")
	errInvalidName = errors.New("invalid resume name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ReadUpload reads an uploaded file, refusing anything over MaxSize or without the PDF magic bytes.
func ReadUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	return data, nil
}

// ExtractText returns the plain text content of a PDF.
func ExtractText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	textReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	textBytes, err := io.ReadAll(textReader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(textBytes)), nil
}

// Store keeps uploaded PDFs in a directory, one file per applicant.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", errInvalidName
	}
	return filepath.Join(s.dir, name+".pdf"), nil
}

// Save writes data as the resume called name, replacing any previous one.
func (s *Store) Save(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the file holding the resume called name.
func (s *Store) Path(name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", ErrNotFound
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}
	return path, nil
}

// Delete removes the resume called name. A missing resume is not an error.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
