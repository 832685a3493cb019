package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTitleRequest references its category and genres by slug
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required,notfuture"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"required,min=1,dive,slug"`
	Category    string   `json:"category" binding:"omitempty,slug"`
}

// UpdateTitleRequest is a partial update. An empty category string clears the category.
type UpdateTitleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=256"`
	Year        *int     `json:"year" binding:"omitempty,notfuture"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" binding:"omitempty,min=1,dive,slug"`
	Category    *string  `json:"category"`
}

// TitleFilterQuery binds the list filters from the query string
type TitleFilterQuery struct {
	Category string `form:"category"`
	Genre    string `form:"genre"`
	Name     string `form:"name"`
	Year     int    `form:"year"`
}

type TitleResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Year        int             `json:"year"`
	Rating      *float64        `json:"rating"`
	Description string          `json:"description"`
	Genre       []TaxonResponse `json:"genre"`
	Category    *TaxonResponse  `json:"category"`
}

func FromModelToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]TaxonResponse, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, FromModelToTaxonResponse(g.Taxon))
	}
	if t.Category != nil {
		c := FromModelToTaxonResponse(t.Category.Taxon)
		resp.Category = &c
	}
	return resp
}
