package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Headers(t *testing.T) {
	r := NewResolver("", "anonymous")
	req := httptest.NewRequest(http.MethodGet, "/api/init", nil)
	req.Header.Set(UsernameHeader, " alice ")
	req.Header.Set(PostIDHeader, "t3_abc")

	v := r.Resolve(req)
	assert.Equal(t, Viewer{Username: "alice", PostID: "t3_abc"}, v)
}

func TestResolve_QueryPostID(t *testing.T) {
	r := NewResolver("", "anonymous")
	req := httptest.NewRequest(http.MethodGet, "/api/init?post_id=t3_q", nil)

	v := r.Resolve(req)
	assert.Equal(t, "t3_q", v.PostID)
	assert.Equal(t, "anonymous", v.Username)
	assert.True(t, v.Anonymous)
}

func TestResolve_Token(t *testing.T) {
	r := NewResolver("secret", "anonymous")
	token, err := r.Issue("alice", "t3_tok", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/init", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	// headers are not trusted for the username once tokens are configured
	req.Header.Set(UsernameHeader, "mallory")

	v := r.Resolve(req)
	assert.Equal(t, Viewer{Username: "alice", PostID: "t3_tok"}, v)
}

func TestResolve_BadTokenDegradesToAnonymous(t *testing.T) {
	issuer := NewResolver("other-secret", "anonymous")
	token, err := issuer.Issue("alice", "t3_tok", time.Minute)
	require.NoError(t, err)

	r := NewResolver("secret", "guest")
	req := httptest.NewRequest(http.MethodGet, "/api/init", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(PostIDHeader, "t3_hdr")

	v := r.Resolve(req)
	assert.Equal(t, Viewer{Username: "guest", PostID: "t3_hdr", Anonymous: true}, v)
}

func TestResolve_ExpiredToken(t *testing.T) {
	r := NewResolver("secret", "anonymous")
	token, err := r.Issue("alice", "t3_tok", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/init", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	v := r.Resolve(req)
	assert.True(t, v.Anonymous)
	assert.Empty(t, v.PostID)
}

func TestIssue_WithoutSecret(t *testing.T) {
	_, err := NewResolver("", "anonymous").Issue("alice", "p", time.Minute)
	assert.Error(t, err)
}
