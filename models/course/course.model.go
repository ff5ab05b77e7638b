package course

import "gorm.io/gorm"

// Course represents a course with ordered chapters
type Course struct {
	gorm.Model
	Title         string  `json:"title"`
	Description   string  `json:"description" gorm:"type:text"`
	Author        string  `json:"author"`
	Duration      int64   `json:"duration"` // Estimated duration in minutes
	ThumbnailURL  string  `json:"thumbnail_url"`
	AverageRating float64 `json:"average_rating" gorm:"default:0"` // Rounded to 1 decimal place
	TotalRatings  int     `json:"total_ratings" gorm:"default:0"`
	IsPublished   bool    `json:"is_published" gorm:"default:false"`
	IsDeleted     bool    `gorm:"default:false"`
}
