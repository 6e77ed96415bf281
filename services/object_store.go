package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ObjectStore is the document storage capability the workflow depends on.
// Paths are opaque forward-slash keys chosen by the caller.
type ObjectStore interface {
	Put(ctx context.Context, path string, r io.Reader, size int64) error
	Open(path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	SignedURL(path string, ttl time.Duration) (string, error)
}

// LocalObjectStore keeps uploaded documents on local disk under a root
// directory and issues time-bounded signed download URLs. The URL token is an
// HS256 JWT carrying the object path, redeemed by GET /api/v1/files/signed.
type LocalObjectStore struct {
	root    string
	secret  []byte
	baseURL string
}

type signedURLClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// NewLocalObjectStore builds a store from the environment: UPLOAD_PATH
// (default ./uploads), JWT_SECRET and PUBLIC_BASE_URL.
func NewLocalObjectStore() *LocalObjectStore {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	baseURL := strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &LocalObjectStore{
		root:    root,
		secret:  []byte(os.Getenv("JWT_SECRET")),
		baseURL: baseURL,
	}
}

// NewLocalObjectStoreAt is the explicit-configuration constructor used by
// commands and tests.
func NewLocalObjectStoreAt(root, baseURL string, secret []byte) *LocalObjectStore {
	return &LocalObjectStore{root: root, secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalObjectStore) fullPath(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == "/" || strings.Contains(path, "..") {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalObjectStore) Put(ctx context.Context, path string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	// Write to a temp name first so a failed upload never leaves a
	// half-written object at the final path.
	tmp := full + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}

	written, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && size > 0 && written != size {
		err = fmt.Errorf("short write: got %d bytes, want %d", written, size)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, full)
}

func (s *LocalObjectStore) Open(path string) (io.ReadCloser, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *LocalObjectStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SignedURL returns a download URL that stays valid for ttl.
func (s *LocalObjectStore) SignedURL(path string, ttl time.Duration) (string, error) {
	if _, err := s.fullPath(path); err != nil {
		return "", err
	}

	now := time.Now()
	claims := signedURLClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/files/signed?token=%s", s.baseURL, url.QueryEscape(token)), nil
}

// VerifySignedToken checks a download token and returns the object path it
// grants access to.
func (s *LocalObjectStore) VerifySignedToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &signedURLClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired download token")
	}
	claims, ok := token.Claims.(*signedURLClaims)
	if !ok || claims.Path == "" {
		return "", fmt.Errorf("invalid download token claims")
	}
	return claims.Path, nil
}
