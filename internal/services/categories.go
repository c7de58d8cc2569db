package services

import "context"

// CategoryService lists book categories.
type CategoryService struct {
	store Store
}

func NewCategoryService(store Store) *CategoryService {
	return &CategoryService{store: store}
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.store.Repos(ctx).Categories.List()
	if err != nil {
		return nil, unexpected(err)
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return out, nil
}
