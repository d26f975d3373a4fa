package content

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundledDefaults(t *testing.T) {
	site, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Zach Kordas-Potter", site.Profile.Name)
	assert.NotEmpty(t, site.Profile.Skills)
	require.NotEmpty(t, site.Profile.Socials)
	assert.NotEmpty(t, site.Projects)
	assert.NotEmpty(t, site.Posts)

	for i := 1; i < len(site.Posts); i++ {
		assert.False(t, site.Posts[i].Date.After(site.Posts[i-1].Date), "posts must be newest first")
	}
}

func TestLoadFSParsesFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"profile.toml":   {Data: []byte("name = \"Ada\"\ntitle = \"Engineer\"\n")},
		"posts/older.md": {Data: []byte("---\ntitle: Older\ndescription: first\ndate: 2024-01-02\ntags: [go]\n---\nbody one\n\nbody two\n")},
		"posts/newer.md": {Data: []byte("---\ntitle: Newer\ndescription: second\ndate: 2025-03-04\n---\nhello\n")},
	}

	site, err := LoadFS(fsys)
	require.NoError(t, err)

	require.Len(t, site.Posts, 2)
	assert.Equal(t, "newer", site.Posts[0].Slug)
	assert.Equal(t, "older", site.Posts[1].Slug)
	assert.Equal(t, []string{"go"}, site.Posts[1].Tags)
	assert.Equal(t, []string{"body one", "body two"}, site.Posts[1].Paragraphs())
	assert.Empty(t, site.Projects)
}

func TestLoadFSRejectsBrokenFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"profile.toml": {Data: []byte("name = \"Ada\"\n")},
		"posts/bad.md": {Data: []byte("---\ntitle: never closed\n")},
	}

	_, err := LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posts/bad.md")
}

func TestLookupAndSearch(t *testing.T) {
	site, err := Load("")
	require.NoError(t, err)

	post, err := site.Post(site.Posts[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, site.Posts[0].Title, post.Title)

	_, err = site.Project("does-not-exist")
	assert.True(t, errors.Is(err, ErrNotFound))

	hits := site.SearchPosts("SQLITE")
	require.Len(t, hits, 1)
	assert.Equal(t, "privacy-first-analytics", hits[0].Slug)
	assert.Len(t, site.SearchPosts("  "), len(site.Posts))
}

