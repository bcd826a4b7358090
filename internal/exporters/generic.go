package exporters

import "github.com/mrlokans/clippings/internal/kindle"

type EntryExporter interface {
	Export(entries []kindle.Entry) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed   int `json:"books_processed"`
	EntriesProcessed int `json:"entries_processed"`
	BooksFailed      int `json:"books_failed"`
	EntriesFailed    int `json:"entries_failed"`
}
