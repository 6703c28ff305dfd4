package codec

import (
	"io"

	"webofworlds/internal/domain"
)

// Importer reads a run fragment from a serialized form
type Importer interface {
	Parse(r io.Reader) (*domain.Fragment, error)
	Format() string
}

// Exporter writes a run fragment in a serialized form
type Exporter interface {
	Export(fragment *domain.Fragment, w io.Writer) error
	Format() string
}

// StarImporter reads a star catalog
type StarImporter interface {
	ParseStars(r io.Reader) ([]*domain.Star, error)
}

// StarExporter writes a star catalog, including exploration results
type StarExporter interface {
	ExportStars(stars []*domain.Star, w io.Writer) error
}

// ForFormat returns the fragment exporter for a format name, or nil
func ForFormat(format string) Exporter {
	switch format {
	case "json":
		return NewJSONCodec()
	case "yaml", "yml":
		return NewYAMLCodec()
	}
	return nil
}
