package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/navai/internal/dialogue"
	"github.com/yoockh/navai/internal/extract"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/services"
	"github.com/yoockh/navai/internal/utils"
)

type InterviewHandler struct {
	svc      services.InterviewService
	maxTurns int
}

// maxInterviewerTurns must match the engine's setting; it only drives the
// derived phase reported in views.
func NewInterviewHandler(svc services.InterviewService, maxInterviewerTurns int) *InterviewHandler {
	if maxInterviewerTurns <= 0 {
		maxInterviewerTurns = dialogue.DefaultMaxInterviewerTurns
	}
	return &InterviewHandler{svc: svc, maxTurns: maxInterviewerTurns}
}

type InterviewView struct {
	ID               string               `json:"id"`
	OwnerID          string               `json:"owner_id"`
	InterviewType    models.InterviewType `json:"interview_type"`
	ResumeText       string               `json:"resume_text"`
	ResumeObject     string               `json:"resume_object,omitempty"`
	Turns            []models.Turn        `json:"turns"`
	CreatedAt        time.Time            `json:"created_at"`
	Phase            dialogue.Phase       `json:"phase"`
	InterviewerTurns int                  `json:"interviewer_turns"`
}

type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

type TurnResponse struct {
	Role       models.Role   `json:"role"`
	Content    string        `json:"content"`
	Transcript string        `json:"transcript,omitempty"`
	Interview  InterviewView `json:"interview"`
}

func (h *InterviewHandler) view(it *models.Interview) InterviewView {
	turns := it.Turns
	if turns == nil {
		turns = []models.Turn{}
	}
	return InterviewView{
		ID:               it.ID,
		OwnerID:          it.OwnerID,
		InterviewType:    it.InterviewType,
		ResumeText:       it.ResumeText,
		ResumeObject:     it.ResumeObject,
		Turns:            turns,
		CreatedAt:        it.CreatedAt,
		Phase:            dialogue.PhaseOf(it, h.maxTurns),
		InterviewerTurns: it.InterviewerTurns(),
	}
}

func (h *InterviewHandler) Start(c *gin.Context) {
	ownerID, ok := requireOwnerID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Start", "missing multipart field 'resume'", err))
		return
	}
	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "InterviewHandler.Start", "failed to open upload", err))
		return
	}
	defer file.Close()

	it, err := h.svc.Start(c.Request.Context(), ownerID, c.PostForm("interview_type"), extract.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.view(it))
}

func (h *InterviewHandler) Get(c *gin.Context) {
	it, ok := h.authorize(c, "InterviewHandler.Get")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.view(it))
}

func (h *InterviewHandler) Chat(c *gin.Context) {
	const op = "InterviewHandler.Chat"

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}
	if _, ok := h.authorize(c, op); !ok {
		return
	}

	it, reply, err := h.svc.SubmitText(c.Request.Context(), c.Param("interview_id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, TurnResponse{
		Role:      reply.Role,
		Content:   reply.Content,
		Interview: h.view(it),
	})
}

func (h *InterviewHandler) Audio(c *gin.Context) {
	const op = "InterviewHandler.Audio"

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'audio'", err))
		return
	}
	if _, ok := h.authorize(c, op); !ok {
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	it, transcript, reply, err := h.svc.SubmitAudio(c.Request.Context(), c.Param("interview_id"), file, fh.Filename)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, TurnResponse{
		Role:       reply.Role,
		Content:    reply.Content,
		Transcript: transcript,
		Interview:  h.view(it),
	})
}

// ListByOwner answers every interview of :owner_id, or the most recent
// ?limit of them. Access is enforced by middleware.RequireOwnerOrRole.
func (h *InterviewHandler) ListByOwner(c *gin.Context) {
	const op = "InterviewHandler.ListByOwner"

	var (
		list []models.Interview
		err  error
	)
	ownerID := c.Param("owner_id")
	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "limit must be a positive integer", convErr))
			return
		}
		list, err = h.svc.ListRecentByOwner(c.Request.Context(), ownerID, n)
	} else {
		list, err = h.svc.ListByOwner(c.Request.Context(), ownerID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.views(list))
}

// Recent answers the owner's latest interviews; ?n defaults to the service's
// recent limit.
func (h *InterviewHandler) Recent(c *gin.Context) {
	n, _ := strconv.Atoi(c.Query("n"))
	list, err := h.svc.ListRecentByOwner(c.Request.Context(), c.Param("owner_id"), n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.views(list))
}

func (h *InterviewHandler) views(list []models.Interview) []InterviewView {
	out := make([]InterviewView, 0, len(list))
	for i := range list {
		out = append(out, h.view(&list[i]))
	}
	return out
}

// authorize loads :interview_id and checks the caller owns it. Admins may
// read any interview but never answer on someone else's behalf.
func (h *InterviewHandler) authorize(c *gin.Context, op string) (*models.Interview, bool) {
	ownerID, ok := requireOwnerID(c)
	if !ok {
		return nil, false
	}

	it, err := h.svc.Get(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if it.OwnerID != ownerID && !(c.Request.Method == http.MethodGet && isAdmin(c)) {
		writeError(c, utils.E(utils.CodeForbidden, op, "forbidden", nil))
		return nil, false
	}
	return it, true
}
