package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/blog/api/http/presenter"
	"github.com/artem13815/blog/pkg/comment"
)

type CommentHandler struct {
	uc comment.UseCase
}

func NewCommentHandler(uc comment.UseCase) *CommentHandler { return &CommentHandler{uc: uc} }

type createCommentRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// @Summary List comments of a post
// @Tags    comments
// @Produce json
// @Param   postId path string true "post id (UUID)"
// @Success 200 {array} comment.Comment
// @Router  /posts/{postId}/comments [get]
func (h *CommentHandler) List(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid post id")
	}
	cs, err := h.uc.ListByPost(c.UserContext(), postID)
	if err != nil {
		return presenter.Fail(c, err)
	}
	if cs == nil {
		cs = []comment.Comment{}
	}
	return presenter.JSON(c, http.StatusOK, cs)
}

// @Summary Comment on a post
// @Tags    comments
// @Accept  json
// @Produce json
// @Param   postId path string true "post id (UUID)"
// @Param   x-access-token header string true "access token"
// @Param   input body createCommentRequest true "comment"
// @Success 200 {object} comment.Comment
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /posts/{postId}/comments [post]
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid post id")
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON payload")
	}
	cm, err := h.uc.Create(c.UserContext(), postID, req.Name, req.Body)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, cm)
}
