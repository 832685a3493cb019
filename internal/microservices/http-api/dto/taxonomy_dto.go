package dto

import "yamdb/internal/microservices/http-api/models"

// TaxonRequest creates a category or a genre
type TaxonRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type TaxonResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToTaxonResponse(t models.Taxon) TaxonResponse {
	return TaxonResponse{Name: t.Name, Slug: t.Slug}
}
