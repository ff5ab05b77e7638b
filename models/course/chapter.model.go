package course

import "gorm.io/gorm"

// Chapter represents an ordered content unit within a course.
// ChapterOrder values within a course form a contiguous sequence starting
// at 1, maintained by the authoring endpoints.
type Chapter struct {
	gorm.Model
	CourseID     uint   `json:"course_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Description  string `json:"description" gorm:"type:text"`
	ChapterOrder int    `json:"chapter_order" gorm:"not null;index"`
	IsDeleted    bool   `gorm:"default:false"`
}
