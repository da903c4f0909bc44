package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is the blob-store boundary for memo artifacts. The workflow only
// ever holds the opaque stored name; bytes live behind this interface.
type Storage interface {
	Save(r io.Reader, originalName string) (string, error)
	Open(name string) (io.ReadCloser, error)
	List() ([]string, error)
	SignedURL(name string, ttl time.Duration) string
	Verify(name, expires, sig string) bool
}

// Store is the process-wide artifact store, set up by InitStorage.
var Store Storage

// InitStorage wires the local-disk store from environment variables.
func InitStorage() {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	secret := os.Getenv("STORAGE_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
		log.Println("Warning: STORAGE_SECRET not set, signing artifact URLs with JWT_SECRET")
	}
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create upload directory: %v", err)
	}

	Store = &LocalStorage{
		Root:    root,
		Secret:  []byte(secret),
		BaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
	}
}

// LocalStorage keeps artifacts on disk under Root and signs short-lived
// retrieval URLs with an HMAC so /uploads can stay public.
type LocalStorage struct {
	Root    string
	Secret  []byte
	BaseURL string
}

// Save writes the artifact under a fresh uuid-based name and returns that
// name as the artifact reference.
func (s *LocalStorage) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext

	if err := os.MkdirAll(s.Root, os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(s.Root, name))
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return name, nil
}

// Open returns the artifact bytes for a stored name.
func (s *LocalStorage) Open(name string) (io.ReadCloser, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}
	return os.Open(filepath.Join(s.Root, name))
}

// List returns every stored artifact name.
func (s *LocalStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// SignedURL issues a retrieval URL that expires after ttl.
func (s *LocalStorage) SignedURL(name string, ttl time.Duration) string {
	expires := strconv.FormatInt(time.Now().Add(ttl).Unix(), 10)
	return fmt.Sprintf("%s/uploads/%s?expires=%s&sig=%s",
		s.BaseURL, url.PathEscape(name), expires, s.sign(name, expires))
}

// Verify checks a signed URL's token and expiry.
func (s *LocalStorage) Verify(name, expires, sig string) bool {
	deadline, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || time.Now().Unix() > deadline {
		return false
	}
	return hmac.Equal([]byte(s.sign(name, expires)), []byte(sig))
}

func (s *LocalStorage) sign(name, expires string) string {
	mac := hmac.New(sha256.New, s.Secret)
	fmt.Fprintf(mac, "%s:%s", name, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
