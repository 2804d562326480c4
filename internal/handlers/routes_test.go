package handlers_test

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndBanner(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	code, _ = h.do(t, request{method: http.MethodGet, path: "/"})
	assert.Equal(t, http.StatusOK, code)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(t, request{method: http.MethodGet, path: "/nope"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, request{method: http.MethodGet, path: "/api/users/me"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized - No user ID provided", body["message"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/posts/feed", as: "ghost"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized - User not found", body["message"])
}

func TestSyncUser(t *testing.T) {
	h := newHarness(t)
	req := request{method: http.MethodPost, path: "/api/users/sync", as: "newbie", contentType: "application/json"}

	req.body = jsonBody(t, map[string]string{"full_name": "New Bie"})
	code, body := h.do(t, req)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User created", body["message"])

	req.body = jsonBody(t, map[string]string{"email": "not-an-email"})
	code, body = h.do(t, req)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email must be a valid email address", body["message"])

	req.body = jsonBody(t, map[string]string{"username": "Bie"})
	code, body = h.do(t, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User synced", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "bie", user["username"])
	assert.Equal(t, "New Bie", user["full_name"])
}

func TestPostLifecycle(t *testing.T) {
	h := newHarness(t)
	h.user("alice")
	h.user("bob")

	form, ct := multipartBody(t, map[string]string{"content": "hello #Go"}, part{"images", "a.png", "image/png", "png"})
	code, body := h.do(t, request{method: http.MethodPost, path: "/api/posts", as: "alice", body: form, contentType: ct})
	require.Equal(t, http.StatusCreated, code, body)
	post := body["post"].(map[string]any)
	postID := post["_id"].(string)
	assert.Equal(t, []any{"go"}, post["hashtags"])
	assert.Equal(t, []any{"https://cdn.test/pingup/posts/a.png"}, post["image_urls"])

	code, body = h.do(t, request{method: http.MethodPost, path: "/api/posts/" + postID + "/like", as: "bob"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Post liked", body["message"])
	assert.Equal(t, true, body["isLiked"])
	assert.Equal(t, float64(1), body["likes_count"])
	assert.Len(t, h.notifications.All(), 1)

	code, body = h.do(t, request{method: http.MethodPost, path: "/api/posts/" + postID + "/comment", as: "bob",
		body: jsonBody(t, map[string]string{"text": "   "}), contentType: "application/json"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Comment text is required", body["message"])

	code, body = h.do(t, request{method: http.MethodPost, path: "/api/posts/" + postID + "/comment", as: "bob",
		body: jsonBody(t, map[string]string{"text": "nice"}), contentType: "application/json"})
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Comment added", body["message"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/posts/hashtag/GO", as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["posts"], 1)
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["total"])

	code, _ = h.do(t, request{method: http.MethodDelete, path: "/api/posts/" + postID, as: "bob"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = h.do(t, request{method: http.MethodDelete, path: "/api/posts/" + postID, as: "alice"})
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, h.notifications.ByPost(postID))

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/posts/" + postID, as: "alice"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Post not found", body["message"])
}

func TestPost_InvalidIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	h.user("alice")

	code, body := h.do(t, request{method: http.MethodPost, path: "/api/posts/not-an-id/like", as: "alice"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Post not found", body["message"])
}

func TestCreatePost_RejectsBadImage(t *testing.T) {
	h := newHarness(t)
	h.user("alice")

	form, ct := multipartBody(t, nil, part{"images", "a.txt", "text/plain", "nope"})
	code, body := h.do(t, request{method: http.MethodPost, path: "/api/posts", as: "alice", body: form, contentType: ct})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, h.media.Uploads)
}

func TestCreatePost_MalformedMultipart(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")

	truncated := "--xyz\r\nContent-Disposition: form-data; name=\"images\"; filename=\"a.png\"\r\n" +
		"Content-Type: image/png\r\n\r\npng"
	code, body := h.do(t, request{method: http.MethodPost, path: "/api/posts", as: "alice",
		body: strings.NewReader(truncated), contentType: "multipart/form-data; boundary=xyz"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	n, err := h.posts.CountUserPosts(t.Context(), alice)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, h.media.Uploads)

	code, _ = h.do(t, request{method: http.MethodPost, path: "/api/posts", as: "alice",
		body: jsonBody(t, map[string]string{"content": "text only"}), contentType: "application/json"})
	assert.Equal(t, http.StatusCreated, code)
}

func TestFollowAndNotifications(t *testing.T) {
	h := newHarness(t)
	h.user("alice")
	bob := h.user("bob")

	follow := request{method: http.MethodPost, path: "/api/connections/follow/" + bob.Hex(), as: "alice"}
	code, body := h.do(t, follow)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isFollowing"])

	code, body = h.do(t, follow)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Already following this user", body["message"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/connections/status/" + bob.Hex(), as: "alice"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isFollowing"])
	assert.Equal(t, false, body["isConnection"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/connections/followers/" + bob.Hex(), as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/notifications", as: "bob"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["unreadCount"])
	items := body["notifications"].([]any)
	require.Len(t, items, 1)
	id := strconv.Itoa(int(items[0].(map[string]any)["_id"].(float64)))

	code, _ = h.do(t, request{method: http.MethodPut, path: "/api/notifications/" + id + "/read", as: "alice"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(t, request{method: http.MethodPut, path: "/api/notifications/abc/read", as: "bob"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(t, request{method: http.MethodPut, path: "/api/notifications/" + id + "/read", as: "bob"})
	assert.Equal(t, http.StatusOK, code)

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/notifications/unread", as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["unreadCount"])

	code, body = h.do(t, request{method: http.MethodPost, path: "/api/connections/unfollow/" + bob.Hex(), as: "alice"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["isFollowing"])
}

func TestMessages(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")

	code, body := h.do(t, request{method: http.MethodPost, path: "/api/messages/" + bob.Hex(), as: "alice",
		body: jsonBody(t, map[string]string{"text": "hi"}), contentType: "application/json"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "hi", body["message"].(map[string]any)["text"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/messages/unread", as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["unreadCount"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/messages/" + alice.Hex(), as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["messages"], 1)
	assert.Equal(t, "alice", body["recipient"].(map[string]any)["username"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/messages/unread", as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["unreadCount"])

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/messages", as: "alice"})
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["conversations"], 1)
}

func TestStories(t *testing.T) {
	h := newHarness(t)
	h.user("alice")
	h.user("bob")

	form, ct := multipartBody(t, map[string]string{"content": "sunset"})
	code, body := h.do(t, request{method: http.MethodPost, path: "/api/stories", as: "alice", body: form, contentType: ct})
	require.Equal(t, http.StatusCreated, code, body)
	storyID := body["story"].(map[string]any)["_id"].(string)

	code, body = h.do(t, request{method: http.MethodPost, path: "/api/stories/" + storyID + "/view", as: "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["views_count"])

	code, _ = h.do(t, request{method: http.MethodGet, path: "/api/stories/" + storyID + "/viewers", as: "bob"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = h.do(t, request{method: http.MethodGet, path: "/api/stories/" + storyID + "/viewers", as: "alice"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["views_count"])
}
