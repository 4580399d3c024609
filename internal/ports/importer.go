package ports

// ImportResult carries what a format importer could pull out of a source
// file. Paragraphs hold raw text; sentence segmentation happens downstream
// so every format goes through the same splitter.
type ImportResult struct {
	Title      string
	Paragraphs []string
}

type Importer interface {
	Format() string
	Parse(data []byte) (ImportResult, error)
}
