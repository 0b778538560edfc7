package filestorage

import "mime/multipart"

// FileStorage is the object-storage boundary for document binaries. The
// profile store keeps only the returned storage key as metadata.
type FileStorage interface {
	// SaveFile saves a file under the root directory and returns its storage key
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath lets you specify a subdirectory for storing the file
	SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a given storage key
	GetFullPath(fileURL string) string
}
