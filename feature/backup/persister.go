package backup

import (
	"context"

	"achievement-hub/core/library"

	"go.uber.org/zap"
)

// Persister saves through a local persister and then pushes the document to the object
// store. A failed upload is logged and does not fail the save.
type Persister struct {
	local   library.Persister
	service *Service
}

// NewPersister wraps local with backups through service.
func NewPersister(local library.Persister, service *Service) *Persister {
	return &Persister{local: local, service: service}
}

// Load reads the local document only.
func (p *Persister) Load(ctx context.Context) (*library.Document, error) {
	return p.local.Load(ctx)
}

// Save writes the local document, then uploads it.
func (p *Persister) Save(ctx context.Context, doc *library.Document) error {
	if err := p.local.Save(ctx, doc); err != nil {
		return err
	}
	if err := p.service.Push(ctx, doc); err != nil {
		p.service.logger.Warn("Backup upload failed", zap.Error(err))
	}
	return nil
}
