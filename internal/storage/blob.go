package storage

import "io"

type BlobStore interface {
	Put(key, contentType string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
	PublicURL(key string) string // fs returns "file://..." for dev
}
