package course

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func chapterFixture(id uint, order int, title string) Chapter {
	return Chapter{
		Model:        gorm.Model{ID: id},
		CourseID:     1,
		Title:        title,
		ChapterOrder: order,
	}
}

func threeChapters() []Chapter {
	return []Chapter{
		chapterFixture(10, 1, "A"),
		chapterFixture(20, 2, "B"),
		chapterFixture(30, 3, "C"),
	}
}

func TestCanCompleteFirstChapter(t *testing.T) {
	err := CanComplete(threeChapters(), 10, map[uint]bool{})
	assert.NoError(t, err)
}

func TestCanCompleteRequiresFullPrefix(t *testing.T) {
	chapters := threeChapters()

	// Completing C with nothing done fails naming A, the first unmet prerequisite
	err := CanComplete(chapters, 30, map[uint]bool{})
	var prereq *PrerequisiteNotMetError
	require.True(t, errors.As(err, &prereq))
	assert.Equal(t, "A", prereq.ChapterTitle)

	// A done, B missing: C still blocked, now naming B
	err = CanComplete(chapters, 30, map[uint]bool{10: true})
	require.True(t, errors.As(err, &prereq))
	assert.Equal(t, "B", prereq.ChapterTitle)

	// Full prefix done: C unlocks
	err = CanComplete(chapters, 30, map[uint]bool{10: true, 20: true})
	assert.NoError(t, err)
}

func TestCanCompleteEveryLaterChapterBlocked(t *testing.T) {
	chapters := threeChapters()

	// For every K > 1, completing chapter K before its predecessors fails
	for _, target := range []uint{20, 30} {
		err := CanComplete(chapters, target, map[uint]bool{})
		var prereq *PrerequisiteNotMetError
		assert.True(t, errors.As(err, &prereq), "chapter %d should be gated", target)
	}
}

func TestCanCompleteChapterNotInCourse(t *testing.T) {
	err := CanComplete(threeChapters(), 99, map[uint]bool{})
	assert.ErrorIs(t, err, ErrChapterNotInCourse)
}

func TestCanCompleteNoChapters(t *testing.T) {
	err := CanComplete(nil, 10, map[uint]bool{})
	assert.ErrorIs(t, err, ErrNoChaptersDefined)
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		completed int
		want      int
	}{
		{"zero chapters yields zero", 0, 0, 0},
		{"nothing completed", 3, 0, 0},
		{"one of three rounds to 33", 3, 1, 33},
		{"two of three rounds to 67", 3, 2, 67},
		{"all completed", 3, 3, 100},
		{"half", 2, 1, 50},
		{"clamped above 100", 3, 5, 100},
		{"negative total yields zero", -1, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeProgress(tt.total, tt.completed))
		})
	}
}

func TestComputeProgressMonotonic(t *testing.T) {
	prev := 0
	for completed := 0; completed <= 10; completed++ {
		pct := ComputeProgress(10, completed)
		assert.GreaterOrEqual(t, pct, prev)
		prev = pct
	}
	assert.Equal(t, 100, prev)
}

func TestNextChapter(t *testing.T) {
	chapters := threeChapters()

	next, ok := NextChapter(chapters, 10)
	require.True(t, ok)
	assert.Equal(t, uint(20), next.ID)

	next, ok = NextChapter(chapters, 30)
	assert.False(t, ok)
	assert.Nil(t, next)

	next, ok = NextChapter(chapters, 99)
	assert.False(t, ok)
	assert.Nil(t, next)
}

func TestIsCourseComplete(t *testing.T) {
	assert.True(t, IsCourseComplete(3, 3))
	assert.False(t, IsCourseComplete(3, 2))
	assert.False(t, IsCourseComplete(0, 0))
}

func TestIsChapterAccessible(t *testing.T) {
	chapters := threeChapters()

	// First chapter is always accessible
	assert.True(t, IsChapterAccessible(chapters, 0, map[uint]bool{}))

	// Later chapters need the full prefix, not just the previous one
	assert.False(t, IsChapterAccessible(chapters, 1, map[uint]bool{}))
	assert.True(t, IsChapterAccessible(chapters, 1, map[uint]bool{10: true}))
	assert.False(t, IsChapterAccessible(chapters, 2, map[uint]bool{20: true}))
	assert.True(t, IsChapterAccessible(chapters, 2, map[uint]bool{10: true, 20: true}))

	// Out of range
	assert.False(t, IsChapterAccessible(chapters, -1, map[uint]bool{}))
	assert.False(t, IsChapterAccessible(chapters, 3, map[uint]bool{}))
}
