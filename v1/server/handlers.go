package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
)

type similarityRequest struct {
	Source  any `json:"source"`
	Compare any `json:"compare"`
}

type similarityResponse struct {
	Scores         []float64 `json:"scores"`
	EmbeddingShape []int     `json:"embedding_shape"`
}

type encodeRequest struct {
	Text any `json:"text"`
}

type encodeResponse struct {
	Embedding      sentence.Embedding `json:"embedding"`
	EmbeddingShape []int              `json:"embedding_shape"`
}

type batchRequest struct {
	Sources  any `json:"sources"`
	Compares any `json:"compares"`
}

type batchResponse struct {
	Results []sentence.BatchResult `json:"results"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) similarity(c *gin.Context) {
	var req similarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	res, err := s.embedder.Similarity(c.Request.Context(), req.Source, req.Compare)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, similarityResponse{
		Scores:         res.Scores,
		EmbeddingShape: res.TextEmbedding.Shape(),
	})
}

func (s *Server) encode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	emb, err := s.embedder.Encode(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, encodeResponse{
		Embedding:      emb,
		EmbeddingShape: emb.Shape(),
	})
}

func (s *Server) batchSimilarity(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	results, err := s.embedder.BatchSimilarity(c.Request.Context(), req.Sources, req.Compares)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, batchResponse{Results: results})
}

// fail maps an Embedder error to a response. Input errors are the caller's
// fault; everything else is reported as an internal error.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	if sentence.IsInputError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, sentence.ErrClosed) || errors.Is(err, sentence.ErrNotStarted) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	s.log.ErrorWithContext(c.Request.Context(), "embedding request failed", err, map[string]interface{}{
		"route":      c.FullPath(),
		"request_id": c.GetString(requestIDKey),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
