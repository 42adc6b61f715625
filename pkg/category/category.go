package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/pkg/user"
)

var ErrInvalidCategory = errors.New("invalid category")

const allCategoriesId = "all"

type Category struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Service interface {
	List(ctx context.Context) ([]Category, error)
	// Replace stores the whole category list.
	Replace(ctx context.Context, categories []Category) ([]Category, error)
}

type ServiceImpl struct {
	store docstore.Store
}

func NewService(store docstore.Store) *ServiceImpl {
	return &ServiceImpl{store: store}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Category, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	var categories []Category
	if _, err := docstore.GetJSON(ctx, s.store, owner, docstore.Categories, allCategoriesId, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

func (s *ServiceImpl) Replace(ctx context.Context, categories []Category) ([]Category, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.Id == "" || c.Name == "" {
			return nil, fmt.Errorf("%w: id and name are required", ErrInvalidCategory)
		}
		if seen[c.Id] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCategory, c.Id)
		}
		seen[c.Id] = true
	}
	if err := docstore.SetJSON(ctx, s.store, owner, docstore.Categories, allCategoriesId, categories); err != nil {
		return nil, err
	}
	return categories, nil
}
