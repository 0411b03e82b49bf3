package app

import (
	"context"
	"fmt"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
)

// VectorService runs the two-step search pipeline: the query text is
// vectorized remotely, then the embedding is submitted to the similarity
// search. The embedding is not retained anywhere after the search call.
type VectorService struct {
	api domain.SuitesAPI
}

func NewVectorService(api domain.SuitesAPI) *VectorService {
	return &VectorService{api: api}
}

func (s *VectorService) Search(ctx context.Context, query string, maxResults int, minSimilarity float64) ([]domain.SearchResult, error) {
	vec, err := s.api.Vectorize(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: vectorize returned an empty vector", domain.ErrInvalidArgument)
	}
	return s.api.VectorSearch(ctx, vec, maxResults, minSimilarity)
}
