package port

// FileStore persists uploaded artifacts and yields an opaque URL per file.
// The workflow stores only the URL.
type FileStore interface {
	// Save writes content under the given category (e.g. "documents",
	// "invoices") and returns the public URL of the stored file.
	Save(category, originalName string, content []byte) (string, error)
}
