package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"olympus.io/loot-of-olympus/internal/csv"
	"olympus.io/loot-of-olympus/internal/databus"
	"olympus.io/loot-of-olympus/internal/game"
	"olympus.io/loot-of-olympus/internal/identity"
	"olympus.io/loot-of-olympus/internal/item"
	"olympus.io/loot-of-olympus/internal/ledger"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
	"olympus.io/loot-of-olympus/pkg/log/meta"
	"olympus.io/loot-of-olympus/pkg/log/middleware"
)

const (
	internalTokenHeader = "X-Internal-Token"
	viewerContextKey    = "viewer"
	shutdownTimeout     = 5 * time.Second
)

// ItemPublisher creates new item posts.
type ItemPublisher interface {
	Publish(ctx context.Context) (*item.Item, error)
	PostURL(postID string) string
	Subreddit() string
}

type SubmitLimiter interface {
	Allow(ctx context.Context, postID, username string) (bool, error)
}

type ClaimantExporter interface {
	Export(ctx context.Context, postID string, claimants []ledger.Claimant) (*csv.Export, error)
}

// Options wires the server. Limiter and Exporter are optional.
type Options struct {
	Evaluator      *game.Evaluator
	Items          item.Repository
	Catalog        *item.Catalog
	Ledger         ledger.Ledger
	Resolver       *identity.Resolver
	Publisher      ItemPublisher
	Bus            databus.Publisher
	Limiter        SubmitLimiter
	Exporter       ClaimantExporter
	InternalToken  string
	RequestTimeout time.Duration
}

type Server struct {
	Options
	engine *gin.Engine
}

func NewServer(opts Options) *Server {
	if opts.Bus == nil {
		opts.Bus = databus.LocalBus{}
	}
	s := &Server{Options: opts, engine: gin.New()}
	s.engine.Use(middleware.RecoveredHTTPLog(), middleware.TimeoutHTTP(opts.RequestTimeout))

	api := s.engine.Group("/api", s.resolveViewer)
	api.GET("/init", s.handleInit)
	api.POST("/answer", s.handleAnswer)
	api.GET("/profile", s.handleProfile)

	internal := s.engine.Group("/internal", s.requireInternalToken)
	internal.POST("/on-app-install", s.handleAppInstall)
	internal.POST("/menu/post-create", s.handleMenuPostCreate)
	internal.GET("/items/:postId/claimants", s.handleClaimants)
	internal.POST("/items/:postId/claimants/export", s.handleClaimantExport)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown http server:%v", err)
		}
	}()
	log.Infof("Http server listening on %v", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve http")
	}
	return nil
}

func (s *Server) resolveViewer(ctx *gin.Context) {
	v := s.Resolver.Resolve(ctx.Request)
	rctx := ctx.Request.Context()
	meta.WithValue(rctx, meta.UsernameKey, v.Username)
	if v.PostID != "" {
		meta.WithValue(rctx, meta.PostIDKey, v.PostID)
	}
	ctx.Set(viewerContextKey, v)
	ctx.Next()
}

func viewerOf(ctx *gin.Context) identity.Viewer {
	if v, ok := ctx.Get(viewerContextKey); ok {
		return v.(identity.Viewer)
	}
	return identity.Viewer{}
}

func (s *Server) requireInternalToken(ctx *gin.Context) {
	if s.InternalToken != "" && ctx.GetHeader(internalTokenHeader) != s.InternalToken {
		abortWithError(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ctx.Next()
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func abortWithError(ctx *gin.Context, code int, message string) {
	ctx.AbortWithStatusJSON(code, errorResponse{Status: "error", Message: message})
}

// respondError maps domain errors onto status codes, unexpected ones are logged as 500.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrMissingItem), errors.Is(err, game.ErrEmptyAnswer):
		abortWithError(ctx, http.StatusBadRequest, "Missing postId or answer")
	case errors.Is(err, item.ErrItemNotFound):
		abortWithError(ctx, http.StatusNotFound, "Item not found")
	default:
		log.Errorf("%+v", err)
		abortWithError(ctx, http.StatusInternalServerError, "Server internal error")
	}
}

// loadItem answers 400/404/500 itself and returns nil when the item is unavailable.
func (s *Server) loadItem(ctx *gin.Context, postID string) *item.Item {
	if postID == "" {
		abortWithError(ctx, http.StatusBadRequest, "postId is required but missing from context")
		return nil
	}
	it, err := s.Items.Get(ctx.Request.Context(), postID)
	if err != nil {
		respondError(ctx, err)
		return nil
	}
	return it
}
