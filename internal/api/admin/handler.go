package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/botdock/botdock/internal/domain"
	"github.com/botdock/botdock/internal/extract"
	"github.com/botdock/botdock/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService  *service.AdminService
	ingestService *service.IngestService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService, ingestService *service.IngestService) *Handler {
	return &Handler{
		adminService:  adminService,
		ingestService: ingestService,
	}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chatbots := r.Group("/chatbots")
	{
		chatbots.POST("", h.CreateChatbot)
		chatbots.GET("", h.ListChatbots)
		chatbots.GET("/:id", h.GetChatbot)
		chatbots.PUT("/:id", h.UpdateChatbot)
		chatbots.DELETE("/:id", h.DeleteChatbot)
		chatbots.GET("/:id/analytics", h.GetAnalytics)
		chatbots.GET("/:id/conversations", h.ListConversations)

		chatbots.POST("/:id/documents/pdf", h.UploadPDF)
		chatbots.POST("/:id/documents/link", h.AddLink)
		chatbots.GET("/:id/documents", h.ListDocuments)

		chatbots.POST("/:id/qa", h.CreateQA)
		chatbots.POST("/:id/qa/bulk", h.BulkCreateQA)
		chatbots.GET("/:id/qa", h.ListQA)
	}

	documents := r.Group("/documents")
	{
		documents.GET("/:id", h.GetDocument)
		documents.POST("/:id/reprocess", h.ReprocessDocument)
		documents.DELETE("/:id", h.DeleteDocument)
	}

	qa := r.Group("/qa")
	{
		qa.PUT("/:id", h.UpdateQA)
		qa.DELETE("/:id", h.DeleteQA)
	}
}

// Chatbot handlers

func (h *Handler) CreateChatbot(c *gin.Context) {
	var req domain.CreateChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bot, err := h.adminService.CreateChatbot(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bot)
}

func (h *Handler) ListChatbots(c *gin.Context) {
	bots, err := h.adminService.ListChatbots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chatbots": bots})
}

func (h *Handler) GetChatbot(c *gin.Context) {
	bot, err := h.adminService.GetChatbot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bot)
}

func (h *Handler) UpdateChatbot(c *gin.Context) {
	var req domain.UpdateChatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bot, err := h.adminService.UpdateChatbot(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bot)
}

func (h *Handler) DeleteChatbot(c *gin.Context) {
	if err := h.adminService.DeleteChatbot(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "chatbot deleted"})
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	analytics, err := h.adminService.Analytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	conversations, err := h.adminService.ListConversations(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// Document handlers

func (h *Handler) UploadPDF(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pdf file is required"})
		return
	}

	doc, err := h.ingestService.SubmitPDF(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"document_id": doc.ID,
		"status":      doc.Status,
	})
}

func (h *Handler) AddLink(c *gin.Context) {
	var req domain.AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.ingestService.SubmitLink(c.Request.Context(), c.Param("id"), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"document_id": doc.ID,
		"status":      doc.Status,
	})
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.ingestService.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.ingestService.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) ReprocessDocument(c *gin.Context) {
	doc, err := h.ingestService.Reprocess(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"document_id": doc.ID,
		"status":      doc.Status,
	})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.ingestService.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// Q&A handlers

func (h *Handler) CreateQA(c *gin.Context) {
	var req domain.CreateQARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.adminService.CreateQA(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) BulkCreateQA(c *gin.Context) {
	var req domain.BulkCreateQARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.adminService.BulkCreateQA(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"created": len(entries),
		"entries": entries,
	})
}

func (h *Handler) ListQA(c *gin.Context) {
	entries, err := h.adminService.ListQA(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"qa": entries})
}

func (h *Handler) UpdateQA(c *gin.Context) {
	var req domain.UpdateQARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.adminService.UpdateQA(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteQA(c *gin.Context) {
	if err := h.adminService.DeleteQA(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "qa entry deleted"})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, extract.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
