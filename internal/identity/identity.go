// Package identity resolves who is viewing which post from an incoming request.
package identity

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

const (
	UsernameHeader = "X-Username"
	PostIDHeader   = "X-Post-Id"
	PostIDQuery    = "post_id"

	bearerPrefix = "Bearer "
)

// Viewer is the resolved caller of one request.
type Viewer struct {
	Username  string
	PostID    string
	Anonymous bool
}

// Claims carried by the context token the hosting platform hands to the post.
type Claims struct {
	Username string `json:"username"`
	PostID   string `json:"post_id"`
	jwt.RegisteredClaims
}

type Resolver struct {
	secret    []byte
	anonymous string
}

// NewResolver trusts only signed tokens when secret is set; without a secret the
// username and post headers are taken as is.
func NewResolver(secret, anonymous string) *Resolver {
	r := &Resolver{anonymous: anonymous}
	if secret != "" {
		r.secret = []byte(secret)
	}
	return r
}

// Resolve never fails: an unknown viewer becomes the anonymous placeholder.
func (r *Resolver) Resolve(req *http.Request) Viewer {
	var v Viewer
	if r.secret != nil {
		if claims, err := r.parseToken(req); err != nil {
			log.Warnf("resolve viewer from token:%v", err)
		} else if claims != nil {
			v.Username = claims.Username
			v.PostID = claims.PostID
		}
	} else {
		v.Username = strings.TrimSpace(req.Header.Get(UsernameHeader))
	}
	if v.PostID == "" {
		v.PostID = strings.TrimSpace(req.Header.Get(PostIDHeader))
	}
	if v.PostID == "" {
		v.PostID = strings.TrimSpace(req.URL.Query().Get(PostIDQuery))
	}
	if v.Username == "" {
		v.Username = r.anonymous
		v.Anonymous = true
	}
	return v
}

// parseToken returns nil claims when the request carries no bearer token.
func (r *Resolver) parseToken(req *http.Request) (*Claims, error) {
	auth := req.Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return nil, nil
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(strings.TrimPrefix(auth, bearerPrefix), &claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse viewer token")
	}
	return &claims, nil
}

// Issue signs a context token, used by the post launcher and local tooling.
func (r *Resolver) Issue(username, postID string, ttl time.Duration) (string, error) {
	if r.secret == nil {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := Claims{
		Username: username,
		PostID:   postID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	return signed, errors.Wrap(err, "sign viewer token")
}
