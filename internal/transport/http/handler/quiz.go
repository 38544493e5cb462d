package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type QuizHandler struct {
	quizService *app.QuizService
}

type GenerateQuizRequest struct {
	SessionID uint `json:"session_id" binding:"required,gt=0"`
}

func NewQuizHandler(quizService *app.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (h *QuizHandler) Generate(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	turn, err := h.quizService.GenerateQuiz(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		var gatewayErr *ai.GatewayError
		switch {
		case errors.Is(err, app.ErrQuizAlreadyGenerated):
			response.Error(c, http.StatusConflict, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrNoDocument):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrChatDisabled):
			response.Error(c, http.StatusServiceUnavailable, response.CodeChatDisabled, err.Error())
		case errors.Is(err, app.ErrMessageEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
		case errors.As(err, &gatewayErr):
			response.Error(c, http.StatusBadGateway, response.CodeGatewayFailed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate quiz failed")
		}
		return
	}

	response.OK(c, turn)
}
