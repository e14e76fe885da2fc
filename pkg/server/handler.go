package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/research-assistant/pkg/grounding"
	"github.com/mikeboe/research-assistant/pkg/render"
	"github.com/mikeboe/research-assistant/pkg/research"
)

const sessionCookie = "rs_session"

type Handler struct {
	Service *Service
	MCP     *mcp.Server
}

func NewHandler(s *Service) *Handler {
	h := &Handler{Service: s}
	h.MCP = h.newMCPServer()
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.page)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	task := r.Group("/task")
	{
		task.POST("", h.submitTask)
		task.POST("/example", h.loadExample)
		task.POST("/clear", h.clearTask)
	}

	api := r.Group("/api")
	{
		api.GET("/state", h.getState)
		api.POST("/search", h.search)
		api.GET("/example", h.getExample)
		api.GET("/session/logs", h.getSessionLogs)
	}

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return h.MCP
	}, nil)
	r.Any("/mcp", gin.WrapH(mcpHandler))
}

// session resolves the caller's session from the cookie, issuing a new one
// when the cookie is missing, malformed or expired.
func (h *Handler) session(c *gin.Context) *Session {
	id, _ := sessionID(c)
	sess, existed := h.Service.Sessions.Get(id)
	if !existed {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID.String(), 0, "/", "", false, true)
	}
	return sess
}

// sessionID reads the session cookie. It reports false when the cookie is
// missing or not a uuid.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) page(c *gin.Context) {
	sess := h.session(c)
	data := render.NewPageData(sess.Orchestrator.Snapshot(), h.Service.Model)

	var buf bytes.Buffer
	if err := render.RenderPage(&buf, data); err != nil {
		sess.Logger.Error("Failed to render page", "error", err)
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) submitTask(c *gin.Context) {
	sess := h.session(c)
	h.Service.SubmitTask(c.Request.Context(), sess, c.PostForm("query"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) loadExample(c *gin.Context) {
	h.session(c).Orchestrator.LoadExample()
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) clearTask(c *gin.Context) {
	h.session(c).Orchestrator.Clear()
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).Orchestrator.Snapshot())
}

func (h *Handler) getExample(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"task": research.ExampleTask})
}

type SearchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) search(c *gin.Context) {
	sess := h.session(c)

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.Service.Search(c.Request.Context(), sess, req.Query)
	switch {
	case errors.Is(err, ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrSearchInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusRequestTimeout, gin.H{"error": err.Error()})
		return
	}

	if snap.State.Status == research.Failed {
		c.JSON(http.StatusOK, gin.H{
			"status":       snap.State.Status,
			"error":        snap.State.Message,
			"config_error": snap.ConfigError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": snap.State.Status,
		"result": snap.State.Result,
	})
}

// getSessionLogs never creates a session. A missing, malformed or expired
// cookie reads as an empty log, matching how session() treats the same
// cookie.
func (h *Handler) getSessionLogs(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		c.JSON(http.StatusOK, []LogEntry{})
		return
	}

	sess, ok := h.Service.Sessions.Lookup(id)
	if !ok {
		c.JSON(http.StatusOK, []LogEntry{})
		return
	}
	c.JSON(http.StatusOK, sess.Log.Entries())
}

// GroundedSearchArgs is the input of the grounded_search MCP tool.
type GroundedSearchArgs struct {
	Query string `json:"query" jsonschema:"The research task or question to answer"`
}

// GroundedSearchOutput is the structured output of the grounded_search MCP tool.
type GroundedSearchOutput struct {
	Text    string             `json:"text"`
	Sources []grounding.Source `json:"sources"`
}

func (h *Handler) newMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "research-assistant-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "grounded_search",
		Description: "Answer a research task with Google Search grounding and return the answer with its web sources.",
	}, h.groundedSearchTool)

	return server
}

func (h *Handler) groundedSearchTool(ctx context.Context, req *mcp.CallToolRequest, args GroundedSearchArgs) (*mcp.CallToolResult, GroundedSearchOutput, error) {
	result, err := h.Service.GroundedSearch(ctx, args.Query)
	if err != nil {
		return nil, GroundedSearchOutput{}, errors.New(grounding.Message(err))
	}
	if result == nil {
		result = &grounding.SearchResult{}
	}
	sources := result.Sources
	if sources == nil {
		sources = []grounding.Source{}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: render.PlainText(result)}},
	}, GroundedSearchOutput{Text: result.Text, Sources: sources}, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
