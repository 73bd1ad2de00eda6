package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"courserag/internal/apperrors"
	"courserag/internal/corpus"
	"courserag/internal/courseindex"
	"courserag/internal/domain"
	"courserag/internal/service"
)

// Deps are the collaborators served over HTTP.
type Deps struct {
	Courses    *courseindex.Index
	Similarity domain.SimilarityIndex
	Assistant  *service.Assistant
	// Reload refreshes the course index and anything derived from it.
	// Defaults to reloading Courses only.
	Reload       func(ctx context.Context) error
	ChunkSize    int
	ChunkOverlap int
	Logger       zerolog.Logger
}

// Handler implements the API endpoints.
type Handler struct {
	courses      *courseindex.Index
	similarity   domain.SimilarityIndex
	assistant    *service.Assistant
	reload       func(ctx context.Context) error
	chunkSize    int
	chunkOverlap int
	log          zerolog.Logger
}

// NewHandler wires the endpoints. Without Courses the course endpoints serve
// an empty index.
func NewHandler(d Deps) *Handler {
	if d.Courses == nil {
		d.Courses = courseindex.FromCourses(nil)
	}
	h := &Handler{
		courses:      d.Courses,
		similarity:   d.Similarity,
		assistant:    d.Assistant,
		reload:       d.Reload,
		chunkSize:    d.ChunkSize,
		chunkOverlap: d.ChunkOverlap,
		log:          d.Logger,
	}
	if h.reload == nil {
		h.reload = h.courses.Reload
	}
	return h
}

func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if h.assistant != nil {
		resp.LiteLLM = h.assistant.CompletionAvailable()
	}
	resp.Courses = h.courses.Len()
	if h.similarity != nil {
		resp.Documents = h.similarity.Len()
	}
	c.JSON(http.StatusOK, resp)
}

// ListCourses serves every course, or those matching ?prefix= sorted by code.
func (h *Handler) ListCourses(c *gin.Context) {
	var out []domain.Course
	if prefix, ok := c.GetQuery("prefix"); ok {
		out = h.courses.QueryByPrefix(prefix)
	} else {
		out = h.courses.All()
	}
	c.JSON(http.StatusOK, CoursesResponse{Count: len(out), Courses: out})
}

func (h *Handler) SearchCourses(c *gin.Context) {
	out := h.courses.Search(c.Query("q"))
	c.JSON(http.StatusOK, CoursesResponse{Count: len(out), Courses: out})
}

func (h *Handler) GetCourse(c *gin.Context) {
	code := c.Param("code")
	course, ok := h.courses.Get(code)
	if !ok {
		h.handleError(c, apperrors.NewNotFoundError(code))
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) ReloadCourses(c *gin.Context) {
	if err := h.reload(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	resp := ReloadResponse{Courses: h.courses.Len()}
	if h.similarity != nil {
		resp.Documents = h.similarity.Len()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AddDocument(c *gin.Context) {
	var req AddDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	h.addDocuments(c, []string{req.Document})
}

func (h *Handler) AddDocuments(c *gin.Context) {
	var req AddDocumentsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.addDocuments(c, req.Documents)
}

func (h *Handler) addDocuments(c *gin.Context, texts []string) {
	if h.similarity == nil {
		h.handleError(c, apperrors.NewUnavailableError("similarity index", nil))
		return
	}
	var docs []domain.Document
	for _, text := range texts {
		docs = append(docs, corpus.CustomDocuments(text, h.chunkSize, h.chunkOverlap)...)
	}
	if len(docs) == 0 {
		h.handleError(c, apperrors.NewValidationError("documents are blank", nil))
		return
	}
	if err := h.similarity.Add(c.Request.Context(), docs); err != nil {
		h.handleError(c, apperrors.NewUnavailableError("similarity index", err))
		return
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	c.JSON(http.StatusCreated, AddDocumentsResponse{IDs: ids})
}

func (h *Handler) QueryDocuments(c *gin.Context) {
	var req QueryRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.similarity == nil {
		h.handleError(c, apperrors.NewUnavailableError("similarity index", nil))
		return
	}
	n := req.NResults
	if n == 0 {
		n = service.DefaultTopK
	}
	hits, err := h.similarity.Query(c.Request.Context(), strings.TrimSpace(req.Query), n)
	if err != nil {
		h.handleError(c, apperrors.NewUnavailableError("similarity index", err))
		return
	}
	out := make([]QueryHit, len(hits))
	for i, hit := range hits {
		out[i] = QueryHit{ID: hit.Document.ID, Kind: hit.Document.Kind, Key: hit.Document.Key, Text: hit.Document.Text, Score: hit.Score}
	}
	c.JSON(http.StatusOK, QueryResponse{Results: out})
}

func (h *Handler) LLM(c *gin.Context) {
	var req LLMRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.assistant.Complete(c.Request.Context(), req.SystemPrompt, req.Message)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, LLMResponse{Reply: reply})
}

func (h *Handler) RAG(c *gin.Context) {
	var req RAGRequest
	if !bindJSON(c, &req) {
		return
	}
	ans, err := h.assistant.Answer(c.Request.Context(), req.Message)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ans)
}
