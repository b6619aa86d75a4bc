package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codedrip/models"
)

// Service is the set of operations exposed over HTTP.
type Service interface {
	Analyze(ctx context.Context, name, gitURL string) (*models.RepoAnalysis, error)
	List(ctx context.Context) ([]models.RepoAnalysis, error)
	Get(ctx context.Context, id string) (*models.RepoAnalysis, error)
	Ask(ctx context.Context, id, question string) (string, error)
	Ping(ctx context.Context) error
}

// AnalyzeRequest is the body of POST /api/repos.
type AnalyzeRequest struct {
	Name   string `json:"name"`
	GitURL string `json:"gitUrl"`
}

// AskRequest is the body of POST /api/repos/:id/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Handler serves the repository analysis endpoints.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Repo Explorer backend running!"})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListRepos(c *gin.Context) {
	repos, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "")
		return
	}
	if repos == nil {
		repos = []models.RepoAnalysis{}
	}
	c.JSON(http.StatusOK, repos)
}

func (h *Handler) AnalyzeRepo(c *gin.Context) {
	var req AnalyzeRequest
	// A missing or malformed body is reported the same way as a missing URL.
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.GitURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Git URL is required"})
		return
	}

	analysis, err := h.svc.Analyze(c.Request.Context(), req.Name, req.GitURL)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, analysis)
}

func (h *Handler) GetRepo(c *gin.Context) {
	analysis, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *Handler) AskQuestion(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	answer, err := h.svc.Ask(c.Request.Context(), c.Param("id"), req.Question)
	if err != nil {
		writeError(c, err, "Failed to generate answer: ")
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
