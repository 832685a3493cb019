package models

type Title struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text;not null;default:''"`
	CategoryID  *int64    `json:"-" gorm:"index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	// Rating is AVG(reviews.score) selected alongside the row; it has no column.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`
}

func (Title) TableName() string {
	return "titles"
}
