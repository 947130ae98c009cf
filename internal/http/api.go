package http

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/tidwall/gjson"
	"gopkg.in/fatih/set.v0"
	"olympus.io/loot-of-olympus/internal/databus"
	"olympus.io/loot-of-olympus/internal/game"
	"olympus.io/loot-of-olympus/internal/item"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
	"olympus.io/loot-of-olympus/pkg/log/meta"
)

const maxAnswerBodyBytes = 4 << 10

type initResponse struct {
	Type         string          `json:"type"`
	PostID       string          `json:"postId"`
	Right        int64           `json:"right"`
	Wrong        int64           `json:"wrong"`
	Username     string          `json:"username"`
	Collectibles []string        `json:"collectibles"`
	ItemStatus   game.ItemStatus `json:"itemStatus"`
	ClaimCount   int64           `json:"claimCount"`
	MaxClaims    int64           `json:"maxClaims"`
}

func (s *Server) handleInit(ctx *gin.Context) {
	v := viewerOf(ctx)
	it := s.loadItem(ctx, v.PostID)
	if it == nil {
		return
	}
	st, err := s.Evaluator.Init(ctx.Request.Context(), it, v.Username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, initResponse{
		Type:         "init",
		PostID:       st.PostID,
		Right:        st.Stats.Right,
		Wrong:        st.Stats.Wrong,
		Username:     st.Username,
		Collectibles: nonNil(st.Collectibles),
		ItemStatus:   st.ItemStatus,
		ClaimCount:   st.ClaimCount,
		MaxClaims:    st.MaxClaims,
	})
}

type answerResponse struct {
	Status      game.Outcome `json:"status"`
	Message     string       `json:"message"`
	Collectible string       `json:"collectible,omitempty"`
	ClaimCount  *int64       `json:"claimCount,omitempty"`
}

func (s *Server) handleAnswer(ctx *gin.Context) {
	v := viewerOf(ctx)
	answer, err := readAnswer(ctx)
	switch {
	case errors.Is(err, errAnswerTooLarge):
		abortWithError(ctx, http.StatusRequestEntityTooLarge, "Answer is too long")
		return
	case err != nil:
		log.Warnf("reject answer body:%v", err)
		abortWithError(ctx, http.StatusBadRequest, "Missing postId or answer")
		return
	}
	if strings.TrimSpace(answer) == "" {
		respondError(ctx, game.ErrEmptyAnswer)
		return
	}
	it := s.loadItem(ctx, v.PostID)
	if it == nil {
		return
	}
	if s.Limiter != nil {
		allowed, err := s.Limiter.Allow(ctx.Request.Context(), it.PostID, v.Username)
		switch {
		case err != nil:
			log.Warnf("answer rate check failed, letting it through:%v", err)
		case !allowed:
			abortWithError(ctx, http.StatusTooManyRequests, "Too many submissions, slow down.")
			return
		}
	}

	res, err := s.Evaluator.Submit(ctx.Request.Context(), it, v.Username, answer)
	if err != nil {
		respondError(ctx, err)
		return
	}
	meta.WithValue(ctx.Request.Context(), meta.OutcomeKey, string(res.Outcome))
	if res.Outcome == game.OutcomeCorrect {
		s.publishClaim(it, v.Username, res)
	}
	ctx.JSON(http.StatusOK, answerResponse{
		Status:      res.Outcome,
		Message:     res.Message,
		Collectible: res.Collectible,
		ClaimCount:  res.ClaimCount,
	})
}

func (s *Server) publishClaim(it *item.Item, username string, res *game.Result) {
	evt := databus.CollectibleClaimed{
		PostID:      it.PostID,
		Username:    username,
		Collectible: res.Collectible,
		ClaimedAt:   time.Now(),
	}
	if res.ClaimCount != nil {
		evt.ClaimCount = *res.ClaimCount
	}
	if err := s.Bus.Publish(evt); err != nil {
		log.Warnf("publish claim of post %v by %v:%v", it.PostID, username, err)
	}
}

var (
	errAnswerTooLarge  = errors.New("answer body too large")
	errMalformedAnswer = errors.New("malformed answer body")
)

// readAnswer accepts a url encoded form, a text/plain body, or json: an object
// {"answer": ...} or a bare string or number. Bodies over the limit and broken json are
// rejected, never read as an answer.
func readAnswer(ctx *gin.Context) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxAnswerBodyBytes+1))
	if err != nil {
		return "", errors.Wrap(err, "read answer body")
	}
	if len(raw) > maxAnswerBodyBytes {
		return "", errAnswerTooLarge
	}
	switch ctx.ContentType() {
	case binding.MIMEPOSTForm:
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return "", errors.WithMessage(errMalformedAnswer, err.Error())
		}
		return values.Get("answer"), nil
	case binding.MIMEPlain:
		return string(raw), nil
	}
	if !gjson.ValidBytes(raw) {
		return "", errMalformedAnswer
	}
	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.IsObject():
		return parsed.Get("answer").String(), nil
	case parsed.Type == gjson.String, parsed.Type == gjson.Number:
		return parsed.String(), nil
	default:
		return "", errMalformedAnswer
	}
}

type profileEntry struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
	Owned    bool   `json:"owned"`
}

type profileSet struct {
	Name  string         `json:"name"`
	Owned int            `json:"owned"`
	Total int            `json:"total"`
	Items []profileEntry `json:"items"`
}

type profileResponse struct {
	Type         string       `json:"type"`
	Username     string       `json:"username"`
	Right        int64        `json:"right"`
	Wrong        int64        `json:"wrong"`
	Collectibles []string     `json:"collectibles"`
	Sets         []profileSet `json:"sets"`
}

func (s *Server) handleProfile(ctx *gin.Context) {
	v := viewerOf(ctx)
	p, err := s.Evaluator.Profile(ctx.Request.Context(), v.Username)
	if err != nil {
		respondError(ctx, err)
		return
	}
	owned := set.New(set.NonThreadSafe)
	for _, name := range p.Collectibles {
		owned.Add(name)
	}
	sets := []profileSet{}
	if s.Catalog != nil {
		for _, cs := range s.Catalog.Sets() {
			ps := profileSet{Name: cs.Name, Total: len(cs.Entries), Items: []profileEntry{}}
			for _, e := range cs.Entries {
				has := owned.Has(e.Name)
				if has {
					ps.Owned++
				}
				ps.Items = append(ps.Items, profileEntry{Name: e.Name, ImageURL: e.ImageURL, Owned: has})
			}
			sets = append(sets, ps)
		}
	}
	ctx.JSON(http.StatusOK, profileResponse{
		Type:         "profile",
		Username:     p.Username,
		Right:        p.Stats.Right,
		Wrong:        p.Stats.Wrong,
		Collectibles: nonNil(p.Collectibles),
		Sets:         sets,
	})
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
