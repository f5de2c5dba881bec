package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNormalizeRoots(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"ancestor first", []string{"/a", "/a/b"}, []string{"/a"}},
		{"descendant first", []string{"/a/b", "/a"}, []string{"/a"}},
		{"duplicate", []string{"/a", "/a"}, []string{"/a"}},
		{"sibling with shared prefix", []string{"/a", "/a-b", "/a/b"}, []string{"/a", "/a-b"}},
		{"disjoint sorted", []string{"/z", "/m", "/a"}, []string{"/a", "/m", "/z"}},
		{"deep chain", []string{"/a/b/c", "/a/b", "/x", "/a/b/c/d"}, []string{"/a/b", "/x"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRoots(tt.in))
		})
	}
}

func TestNormalizeRoots_NoAncestorPairs(t *testing.T) {
	in := []string{"/p/q", "/p", "/p/q/r", "/pq", "/r/s", "/r", "/p/q2"}
	out := normalizeRoots(in)
	for i, a := range out {
		for j, b := range out {
			if i != j {
				assert.False(t, isWithin(a, b), "%s contains %s", a, b)
			}
		}
	}
	assert.Equal(t, []string{"/p", "/pq", "/r"}, out)
}

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "", commonPrefix(nil))
	assert.Equal(t, "", commonPrefix([]string{"/home/u/a"}))
	assert.Equal(t, "/home/u", commonPrefix([]string{"/home/u/a", "/home/u/b"}))
	assert.Equal(t, "/home", commonPrefix([]string{"/home/u/a", "/home/v"}))
	// Segment-wise, not character-wise.
	assert.Equal(t, "/srv", commonPrefix([]string{"/srv/app1", "/srv/app2"}))
	assert.Equal(t, "", commonPrefix([]string{"/x", "/y"}))
}

func TestRootLabel(t *testing.T) {
	assert.Equal(t, "/home/u/a", rootLabel("/home/u/a", ""))
	assert.Equal(t, "a", rootLabel("/home/u/a", "/home/u"))
	assert.Equal(t, "u/a", rootLabel("/home/u/a", "/home"))
}

func TestIsWithin(t *testing.T) {
	assert.True(t, isWithin("/a", "/a"))
	assert.True(t, isWithin("/a", "/a/b"))
	assert.False(t, isWithin("/a", "/ab"))
	assert.True(t, isWithin("/", "/a"))
}
