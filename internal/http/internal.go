package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"olympus.io/loot-of-olympus/internal/ledger"
	"olympus.io/loot-of-olympus/pkg/log"
)

func (s *Server) handleAppInstall(ctx *gin.Context) {
	it, err := s.Publisher.Publish(ctx.Request.Context())
	if err != nil {
		log.Errorf("create post on install:%v", err)
		abortWithError(ctx, http.StatusBadRequest, "Failed to create post")
		return
	}
	ctx.JSON(http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Post created in subreddit %v with id %v", s.Publisher.Subreddit(), it.PostID),
	})
}

func (s *Server) handleMenuPostCreate(ctx *gin.Context) {
	it, err := s.Publisher.Publish(ctx.Request.Context())
	if err != nil {
		log.Errorf("create post from menu:%v", err)
		abortWithError(ctx, http.StatusBadRequest, "Failed to create post")
		return
	}
	ctx.JSON(http.StatusOK, map[string]interface{}{
		"navigateTo": s.Publisher.PostURL(it.PostID),
	})
}

type claimantsResponse struct {
	PostID     string            `json:"postId"`
	ClaimCount int               `json:"claimCount"`
	MaxClaims  int64             `json:"maxClaims"`
	Claimants  []ledger.Claimant `json:"claimants"`
}

func (s *Server) handleClaimants(ctx *gin.Context) {
	it := s.loadItem(ctx, ctx.Param("postId"))
	if it == nil {
		return
	}
	claimants, err := s.Ledger.Claimants(ctx.Request.Context(), it.PostID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if claimants == nil {
		claimants = []ledger.Claimant{}
	}
	ctx.JSON(http.StatusOK, claimantsResponse{
		PostID:     it.PostID,
		ClaimCount: len(claimants),
		MaxClaims:  s.Evaluator.MaxClaims(),
		Claimants:  claimants,
	})
}

func (s *Server) handleClaimantExport(ctx *gin.Context) {
	if s.Exporter == nil {
		abortWithError(ctx, http.StatusNotImplemented, "Claimant export is not configured")
		return
	}
	it := s.loadItem(ctx, ctx.Param("postId"))
	if it == nil {
		return
	}
	claimants, err := s.Ledger.Claimants(ctx.Request.Context(), it.PostID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	exp, err := s.Exporter.Export(ctx.Request.Context(), it.PostID, claimants)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"key":    exp.Key,
		"url":    exp.URL,
		"rows":   exp.Rows,
	})
}
