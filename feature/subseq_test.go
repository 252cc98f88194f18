package feature

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSubsequence(t *testing.T) {
	cases := []struct {
		sub, full []string
		want      bool
	}{
		{[]string{"times", "plus"}, []string{"times", "minus", "plus"}, true},
		{[]string{"times", "plus"}, []string{"plus", "times"}, false},
		{[]string{"plus"}, []string{"plus"}, true},
		{[]string{}, []string{"plus"}, true},
		{[]string{}, []string{}, true},
		{[]string{"plus"}, []string{}, false},
		{[]string{"a", "a"}, []string{"a"}, false},
		{[]string{"a", "a"}, []string{"a", "b", "a"}, true},
		{[]string{"times", "plus", "times"}, []string{"times", "plus", "times"}, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v in %v", tc.sub, tc.full), func(t *testing.T) {
			assert.Equal(t, tc.want, IsSubsequence(tc.sub, tc.full))
		})
	}
}

func TestSubsets(t *testing.T) {
	t.Run("empty input has only the empty subset", func(t *testing.T) {
		subsets := Subsets([]string{})
		assert.Equal(t, [][]string{{}}, subsets)
	})

	t.Run("count is two to the n and all distinct", func(t *testing.T) {
		subsets := Subsets([]string{"a", "b", "c"})
		assert.Len(t, subsets, 8)

		seen := map[string]bool{}
		for _, s := range subsets {
			key := fmt.Sprintf("%v", s)
			assert.False(t, seen[key], "duplicate subset %s", key)
			seen[key] = true
		}
	})

	t.Run("order within subsets follows the input", func(t *testing.T) {
		subsets := Subsets([]string{"x", "y"})
		assert.Contains(t, subsets, []string{"x", "y"})
		assert.Contains(t, subsets, []string{"x"})
		assert.Contains(t, subsets, []string{"y"})
		assert.Contains(t, subsets, []string{})
	})
}
