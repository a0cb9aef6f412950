package dto

import (
	"github.com/fintrove/family_finance_app/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name     string              `json:"name" binding:"required"`
	Kind     domain.CategoryKind `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	FamilyID *string             `json:"familyID"`
	Icon     string              `json:"icon"`
	Color    string              `json:"color"`
}

// UpdateCategoryRequest defines the editable fields of a category.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID string              `json:"categoryID"`
	Kind       domain.CategoryKind `json:"kind"`
	Name       string              `json:"name"`
	FamilyID   *string             `json:"familyID,omitempty"`
	IsSystem   bool                `json:"isSystem"`
	Icon       string              `json:"icon"`
	Color      string              `json:"color"`
}

// ToCategoryResponse converts a domain.Category to its response DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		Kind:       c.Kind,
		Name:       c.Name,
		FamilyID:   c.FamilyID,
		IsSystem:   c.OwnerUserID == nil,
		Icon:       c.Icon,
		Color:      c.Color,
	}
}

// ToCategoryResponses converts a slice of categories to response DTOs.
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i := range categories {
		res[i] = ToCategoryResponse(&categories[i])
	}
	return res
}
