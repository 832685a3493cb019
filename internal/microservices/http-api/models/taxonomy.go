package models

import "regexp"

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Taxon is the shared shape of categories and genres.
type Taxon struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:50;not null"`
}

type Category struct {
	Taxon
}

func (Category) TableName() string {
	return "categories"
}

type Genre struct {
	Taxon
}

func (Genre) TableName() string {
	return "genres"
}

func ValidSlug(slug string) bool {
	return len(slug) > 0 && len(slug) <= 50 && slugPattern.MatchString(slug)
}
