package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/respicare/triage-engine/internal/domain"
)

//go:embed data/enfermedades.md
var embeddedDiseaseList string

// EmbeddedSource serves the disease list shipped with the binary.
type EmbeddedSource struct{}

// Load parses the embedded disease list.
func (EmbeddedSource) Load(_ context.Context) ([]domain.Condition, error) {
	return ParseMarkdown(embeddedDiseaseList)
}

// FileSource loads the disease list from a markdown file on disk, so
// deployments can extend the catalog without a rebuild.
type FileSource struct {
	Path string
}

// Load reads and parses the disease list file.
func (f FileSource) Load(_ context.Context) ([]domain.Condition, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading disease list %s: %w", f.Path, err)
	}
	return ParseMarkdown(string(content))
}
