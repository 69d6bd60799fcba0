package processor

import (
	"context"
	"errors"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
)

// ErrNoText is returned when a processor ran but produced nothing that
// looks like MRZ lines.
var ErrNoText = errors.New("processor: no MRZ text found")

// Processor turns uploaded bytes into candidate MRZ lines. Implementations
// can be swapped in to add OCR engines without changing the service or
// handler layer. Decoding the lines is left to the caller.
type Processor interface {
	// CanProcess returns true if this processor handles the given media
	CanProcess(media domain.MediaType) bool

	// Process extracts MRZ lines from data.
	// The data should NOT be retained after processing.
	Process(ctx context.Context, data []byte) ([]string, error)

	// Name returns the processor name for logging/audit. It becomes the
	// method field of the scan result.
	Name() string
}

// Registry holds all registered processors and dispatches to the right one
type Registry struct {
	processors []Processor
}

// NewRegistry creates a new processor registry. Nil entries are skipped so
// optional processors can be passed unconditionally.
func NewRegistry(processors ...Processor) *Registry {
	r := &Registry{}
	for _, p := range processors {
		if p != nil {
			r.processors = append(r.processors, p)
		}
	}
	return r
}

// FindProcessors returns all processors that can handle the given media,
// in registration order. This supports fallback: if the first processor
// fails or reads garbage, the next one can try.
func (r *Registry) FindProcessors(media domain.MediaType) []Processor {
	var result []Processor
	for _, p := range r.processors {
		if p.CanProcess(media) {
			result = append(result, p)
		}
	}
	return result
}

// Names lists the registered processors in order
func (r *Registry) Names() []string {
	names := make([]string, len(r.processors))
	for i, p := range r.processors {
		names[i] = p.Name()
	}
	return names
}
