package service

import (
	"context"
	"strings"

	"github.com/layer-3/keygate/ports"
)

// RecordService serves the generic record surface over the document
// store. The unauthenticated collection dump mirrors the legacy
// behaviour; the owner view is the hardened, identity-filtered path.
type RecordService struct {
	records           ports.RecordStore
	defaultCollection string
}

// NewRecordService creates a new record service. defaultCollection is
// used when a request names no collection.
func NewRecordService(records ports.RecordStore, defaultCollection string) *RecordService {
	return &RecordService{records: records, defaultCollection: defaultCollection}
}

// Collection returns every document in a collection.
func (s *RecordService) Collection(ctx context.Context, collection string) ([]map[string]any, error) {
	return s.records.Collection(ctx, s.resolve(collection))
}

// Document returns a single document by id.
func (s *RecordService) Document(ctx context.Context, collection, id string) (map[string]any, error) {
	return s.records.Document(ctx, s.resolve(collection), id)
}

// OwnerView returns the parts of a document addressed to owner and
// nothing else. A document stamped with the owner's address is returned
// whole; otherwise only top-level fields keyed by the owner's address
// survive, so another owner's sub-fields never leak.
func (s *RecordService) OwnerView(ctx context.Context, collection, id, owner string) (map[string]any, error) {
	doc, err := s.Document(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	if stamped, ok := doc["ethereumAddress"].(string); ok && strings.EqualFold(stamped, owner) {
		return doc, nil
	}

	view := make(map[string]any)
	for field, value := range doc {
		if strings.EqualFold(field, owner) {
			view[field] = value
		}
	}
	return view, nil
}

func (s *RecordService) resolve(collection string) string {
	if collection == "" {
		return s.defaultCollection
	}
	return collection
}
