package arch

import (
	"fmt"
	"io"
	"os"

	"github.com/archview/archview/pkg/xmltree"
)

// Parse reads an architecture description from r and returns the fully
// built model. Ingestion failures surface as *xmltree.MalformedError;
// schema and linking failures as the error types of this package.
func Parse(r io.Reader) (*Arch, error) {
	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, err
	}
	return build(root)
}

// ParseBytes is like Parse but takes the document as a byte slice.
func ParseBytes(data []byte) (*Arch, error) {
	root, err := xmltree.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return build(root)
}

// ParseFile parses the architecture file at path.
func ParseFile(path string) (*Arch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open architecture file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
