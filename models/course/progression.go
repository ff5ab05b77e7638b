package course

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoChaptersDefined is returned when a course has no chapters, making completion impossible
	ErrNoChaptersDefined = errors.New("course has no chapters defined")
	// ErrChapterNotInCourse is returned when the chapter does not belong to the course
	ErrChapterNotInCourse = errors.New("chapter does not belong to this course")
)

// PrerequisiteNotMetError names the first unmet prerequisite chapter
type PrerequisiteNotMetError struct {
	ChapterTitle string
}

func (e *PrerequisiteNotMetError) Error() string {
	return fmt.Sprintf("complete chapter %q first", e.ChapterTitle)
}

// CanComplete decides whether a chapter may be completed given the set of
// already-completed chapter IDs. Chapters unlock strictly left to right:
// every chapter before the target must be completed. The check walks the
// full prefix, not just the immediately preceding chapter, so a gap
// anywhere blocks completion.
func CanComplete(orderedChapters []Chapter, chapterID uint, completed map[uint]bool) error {
	if len(orderedChapters) == 0 {
		return ErrNoChaptersDefined
	}

	target := -1
	for i, ch := range orderedChapters {
		if ch.ID == chapterID {
			target = i
			break
		}
	}
	if target == -1 {
		return ErrChapterNotInCourse
	}

	for i := 0; i < target; i++ {
		if !completed[orderedChapters[i].ID] {
			return &PrerequisiteNotMetError{ChapterTitle: orderedChapters[i].Title}
		}
	}

	return nil
}

// ComputeProgress converts a completed-chapter count into a percentage,
// rounded to the nearest integer and clamped to [0,100]. A course with
// zero chapters yields 0 rather than dividing by zero.
func ComputeProgress(totalChapters, completedCount int) int {
	if totalChapters <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completedCount) / float64(totalChapters) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// NextChapter returns the chapter immediately after the given one in
// course order, or false if it is the last chapter or not found.
func NextChapter(orderedChapters []Chapter, currentID uint) (*Chapter, bool) {
	for i, ch := range orderedChapters {
		if ch.ID == currentID {
			if i+1 < len(orderedChapters) {
				next := orderedChapters[i+1]
				return &next, true
			}
			return nil, false
		}
	}
	return nil, false
}

// IsCourseComplete reports whether every chapter of a non-empty course is completed
func IsCourseComplete(totalChapters, completedCount int) bool {
	return totalChapters > 0 && completedCount == totalChapters
}

// IsChapterAccessible reports whether the chapter at the given index is
// reachable: the first chapter always is, later ones once the whole
// preceding prefix is completed. Uses the same full-prefix rule as
// CanComplete so the projection can never show an unlocked chapter the
// gate would reject.
func IsChapterAccessible(orderedChapters []Chapter, index int, completed map[uint]bool) bool {
	if index < 0 || index >= len(orderedChapters) {
		return false
	}
	for i := 0; i < index; i++ {
		if !completed[orderedChapters[i].ID] {
			return false
		}
	}
	return true
}
