package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipdeck/internal/history"
)

func entries(contents ...string) []history.Entry {
	out := make([]history.Entry, len(contents))
	for i, c := range contents {
		out[i] = history.Entry{ID: uint64(i + 1), Content: c, CreatedAt: time.Now().UTC()}
	}
	return out
}

func contentsOf(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Entry.Content
	}
	return out
}

func requireNonIncreasing(t *testing.T, rs []Result) {
	t.Helper()
	for i := 0; i+1 < len(rs); i++ {
		require.GreaterOrEqual(t, rs[i].Score, rs[i+1].Score, "scores out of order at %d", i)
	}
}

func TestSearch_EmptyQueryIsIdentity(t *testing.T) {
	in := entries("hello", "world", "foo")

	got := Search("", in)

	require.Len(t, got, len(in))
	for i := range in {
		assert.Equal(t, in[i], got[i].Entry)
		assert.Zero(t, got[i].Score)
		assert.Empty(t, got[i].Matched)
	}
}

func TestSearch_EmptyQueryEmptyInput(t *testing.T) {
	assert.Empty(t, Search("", nil))
	assert.Empty(t, Search("abc", nil))
}

func TestSearch_FuzzyMatchFilters(t *testing.T) {
	got := Search("helo", entries("hello world", "goodbye world", "foo bar"))

	require.NotEmpty(t, got)
	assert.Contains(t, contentsOf(got), "hello world")
	assert.NotContains(t, contentsOf(got), "foo bar")
}

func TestSearch_NoMatchReturnsEmpty(t *testing.T) {
	got := Search("zzzzz", entries("hello", "world"))
	assert.Empty(t, got)
}

func TestSearch_SortedByScore(t *testing.T) {
	tests := []struct {
		query string
		in    []string
	}{
		{"abc", []string{"abc", "abcdef", "xyzabc"}},
		{"gc", []string{"git commit", "go get", "grep -c", "cat log"}},
		{"ls", []string{"ls -la", "false", "/usr/local/share", "tools"}},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got := Search(tc.query, entries(tc.in...))
			require.GreaterOrEqual(t, len(got), 2)
			requireNonIncreasing(t, got)
		})
	}
}

func TestSearch_PrefixBeatsBuriedMatch(t *testing.T) {
	got := Search("abc", entries("xyzabc", "abc"))
	require.Len(t, got, 2)
	assert.Equal(t, "abc", got[0].Entry.Content)
}

func TestSearch_TiesKeepInputOrder(t *testing.T) {
	// Same length, same match positions: identical scores.
	in := entries("foo bar", "foo baz", "foo bat")

	got := Search("foo", in)
	require.Len(t, got, 3)
	require.Equal(t, got[0].Score, got[1].Score)
	require.Equal(t, got[1].Score, got[2].Score)
	assert.Equal(t, []string{"foo bar", "foo baz", "foo bat"}, contentsOf(got))

	reversed := entries("foo bat", "foo baz", "foo bar")
	got = Search("foo", reversed)
	assert.Equal(t, []string{"foo bat", "foo baz", "foo bar"}, contentsOf(got))
}

func TestSearch_MatchedIndexesPointIntoContent(t *testing.T) {
	got := Search("hw", entries("hello world"))
	require.Len(t, got, 1)

	content := got[0].Entry.Content
	require.Len(t, got[0].Matched, 2)
	assert.Equal(t, byte('h'), content[got[0].Matched[0]])
	assert.Equal(t, byte('w'), content[got[0].Matched[1]])
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	in := entries("b match", "a match", "no")
	snapshot := append([]history.Entry(nil), in...)

	Search("match", in)
	assert.Equal(t, snapshot, in)
}
