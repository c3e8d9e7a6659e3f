package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services"
)

// Document is a knowledge-base file together with its content.
type Document struct {
	Filename string    `json:"filename"`
	Content  string    `json:"content"`
	AddedAt  time.Time `json:"added_at"`
}

// Store is a filesystem-backed document store. Every .txt file inside the
// configured directory is one knowledge-base document keyed by filename.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a document store rooted at dir. The directory is created
// if it does not exist yet.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// List returns every document as filename -> content.
func (s *Store) List(ctx context.Context) (map[string]string, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(docs))
	for _, doc := range docs {
		result[doc.Filename] = doc.Content
	}
	return result, nil
}

// ListDocuments returns every document with metadata, sorted by filename.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, services.WrapInternal("failed to read documents directory", err)
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable document",
				zap.String("filename", entry.Name()),
				zap.Error(err))
			continue
		}

		info, err := entry.Info()
		addedAt := time.Now()
		if err == nil {
			addedAt = info.ModTime()
		}

		docs = append(docs, Document{
			Filename: entry.Name(),
			Content:  string(content),
			AddedAt:  addedAt,
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

// Put creates or replaces a document.
func (s *Store) Put(ctx context.Context, filename, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validFilename(filename); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return services.WrapInternal("failed to write document", err)
	}

	s.logger.Info("document stored",
		zap.String("filename", filename),
		zap.Int("bytes", len(content)))
	return nil
}

// Delete removes a document, returning ErrDocumentNotFound when absent.
func (s *Store) Delete(ctx context.Context, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validFilename(filename); err != nil {
		return err
	}

	path := filepath.Join(s.dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return services.ErrDocumentNotFound
		}
		return services.WrapInternal("failed to delete document", err)
	}

	s.logger.Info("document deleted", zap.String("filename", filename))
	return nil
}

// Fingerprint hashes the full store contents (names and bytes, in filename
// order) so callers can detect any membership or content change.
func (s *Store) Fingerprint(ctx context.Context) (string, error) {
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, doc := range docs {
		h.Write([]byte(doc.Filename))
		h.Write([]byte{0})
		h.Write([]byte(doc.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// validFilename rejects names that would escape the store directory.
func validFilename(filename string) error {
	if filename == "" {
		return services.ErrEmptyFilename
	}
	if filepath.Base(filename) != filename || strings.Contains(filename, "..") {
		return services.NewDomainError(services.ErrorTypeValidation, "invalid filename", nil).
			WithDetail("filename", filename)
	}
	if !strings.HasSuffix(filename, ".txt") {
		return services.NewDomainError(services.ErrorTypeValidation, "only .txt documents are supported", nil).
			WithDetail("filename", filename)
	}
	return nil
}
