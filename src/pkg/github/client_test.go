package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

type fakeAPI struct {
	comments []map[string]any
	edited   map[string]any
	created  map[string]any
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/acme/libs/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"number": 7,
			"title":  "Bump libs",
			"state":  "open",
			"base":   map[string]any{"ref": "main", "sha": "aaaaaaaaaaaa"},
			"head":   map[string]any{"ref": "bump", "sha": "bbbbbbbbbbbb"},
		})
	})
	mux.HandleFunc("/repos/acme/libs/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			page := r.URL.Query().Get("page")
			if page == "" || page == "1" {
				w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
				_ = json.NewEncoder(w).Encode(api.comments[:1])
				return
			}
			_ = json.NewEncoder(w).Encode(api.comments[1:])
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &api.created)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 99, "body": api.created["body"]})
		}
	})
	mux.HandleFunc("/repos/acme/libs/issues/comments/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &api.edited)
		api.edited["path"] = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 3, "body": api.edited["body"]})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClientWithToken("test-token", srv.URL)
	require.NoError(t, err)
	return c
}

func TestClient_GetPR(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	pr, err := c.GetPR(context.Background(), "acme/libs", 7)
	require.NoError(t, err)
	assert.Equal(t, &models.PullRequest{
		Number: 7, Title: "Bump libs", State: "open",
		BaseRef: "main", BaseSHA: "aaaaaaaaaaaa",
		HeadRef: "bump", HeadSHA: "bbbbbbbbbbbb",
	}, pr)
}

func TestClient_GetCommentsPaginates(t *testing.T) {
	api := &fakeAPI{comments: []map[string]any{
		{"id": 1, "body": "first", "user": map[string]any{"login": "alice"}},
		{"id": 2, "body": "second"},
	}}
	c := newTestClient(t, api)

	comments, err := c.GetComments(context.Background(), "acme/libs", 7)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "alice", comments[0].User)
	assert.Equal(t, int64(2), comments[1].ID)
}

func TestClient_UpsertToolComment(t *testing.T) {
	t.Run("updates latest marker comment", func(t *testing.T) {
		api := &fakeAPI{comments: []map[string]any{
			{"id": 2, "body": GH_COMMENT_MARKER + "\nold"},
			{"id": 3, "body": GH_COMMENT_MARKER + "\nolder run"},
		}}
		c := newTestClient(t, api)

		got, err := c.UpsertToolComment(context.Background(), "acme/libs", 7, GH_COMMENT_MARKER+"\nnew")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
		assert.Equal(t, "/repos/acme/libs/issues/comments/3", api.edited["path"])
		assert.Nil(t, api.created)
	})

	t.Run("creates when missing", func(t *testing.T) {
		api := &fakeAPI{comments: []map[string]any{
			{"id": 1, "body": "lgtm"},
			{"id": 2, "body": "/jardiff-override-errors"},
		}}
		c := newTestClient(t, api)

		got, err := c.UpsertToolComment(context.Background(), "acme/libs", 7, "summary")
		require.NoError(t, err)
		assert.Equal(t, int64(99), got.ID)
		assert.Equal(t, "summary", api.created["body"])
		assert.Nil(t, api.edited)
	})
}

func TestParseOwnerRepo(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"acme/libs", "acme", "libs", false},
		{"acme/libs/sub/path", "acme", "libs", false},
		{"acme", "", "", true},
		{"/libs", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, repo, err := ParseOwnerRepo(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOwnerRepo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseOwnerRepo() = %v/%v, want %v/%v", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abcdef1", ShortSHA("abcdef1234567"))
	assert.Equal(t, "abc", ShortSHA("abc"))
}
