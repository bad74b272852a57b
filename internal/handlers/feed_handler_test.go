package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postTitles(body map[string]any) []string {
	data := body["data"].([]any)
	titles := make([]string, len(data))
	for i, item := range data {
		titles[i] = item.(map[string]any)["title"].(string)
	}
	return titles
}

func TestExploreFeedShowsEveryonesPosts(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	bob := app.createUser(t, "bob")
	app.createPost(t, alice.ID, "alice-track")
	app.createPost(t, bob.ID, "bob-track")

	rec := app.request(t, http.MethodGet, "/api/posts/explore", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.ElementsMatch(t, []string{"alice-track", "bob-track"}, postTitles(body))

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["currentPage"])
	assert.EqualValues(t, 2, pagination["totalItems"])
}

func TestHomeFeedMembership(t *testing.T) {
	app := newTestApp(t)
	viewer := app.createUser(t, "viewer")
	followed := app.createUser(t, "followed")
	stranger := app.createUser(t, "stranger")
	app.follow(t, viewer.ID, followed.ID)

	app.createPost(t, viewer.ID, "own-track")
	app.createPost(t, followed.ID, "followed-track")
	app.createPost(t, stranger.ID, "stranger-track")

	rec := app.request(t, http.MethodGet, "/api/posts/home-feed", nil, authCookie(t, viewer))
	require.Equal(t, http.StatusOK, rec.Code)

	titles := postTitles(decodeBody(t, rec))
	assert.ElementsMatch(t, []string{"own-track", "followed-track"}, titles)
	assert.NotContains(t, titles, "stranger-track")
}

func TestHomeFeedRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/posts/home-feed", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeedPaginationBounds(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	for i := 0; i < 3; i++ {
		app.createPost(t, alice.ID, string(rune('a'+i))+"-track")
	}

	rec := app.request(t, http.MethodGet, "/api/posts/explore?page=2&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["data"].([]any), 1)

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pagination["currentPage"])
	assert.EqualValues(t, 2, pagination["totalPages"])

	// Garbage paging params fall back to defaults instead of erroring
	rec = app.request(t, http.MethodGet, "/api/posts/explore?page=-1&limit=0", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.EqualValues(t, 1, body["pagination"].(map[string]any)["currentPage"])
}

func TestExploreFeedViewerLikedFlags(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "alice")
	post := app.createPost(t, alice.ID, "alice-track")

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/like", post.ID), nil, authCookie(t, alice))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodGet, "/api/posts/explore", nil, authCookie(t, alice))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, true, data[0].(map[string]any)["isLiked"])
}
