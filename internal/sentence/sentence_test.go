package sentence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	got := Split("First one. Second one!  Third?")
	assert.Equal(t, []string{"First one.", "Second one!", "Third?"}, got)
}

func TestSplit_NoTerminator(t *testing.T) {
	assert.Equal(t, []string{"no terminator here"}, Split("  no terminator here "))
	assert.Nil(t, Split("   "))
}

func TestSplitPeriods(t *testing.T) {
	got := SplitPeriods("CS 150. Not open to majors.  Not open to majors. Covers recursion.")
	assert.Equal(t, []string{"CS 150", "Not open to majors", "Not open to majors", "Covers recursion"}, got)
	assert.Empty(t, SplitPeriods(" . . "))
}

func TestWindow(t *testing.T) {
	s := []string{"a.", "b.", "c.", "d.", "e."}
	assert.Equal(t, []string{"a. b.", "b. c.", "c. d.", "d. e."}, Window(s, 2, 1))
	assert.Equal(t, []string{"a. b. c. d. e."}, Window(s, 10, 0))
	assert.Nil(t, Window(nil, 3, 1))
}
