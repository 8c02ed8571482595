package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/blog/api/http/presenter"
	"github.com/artem13815/blog/pkg/post"
)

type PostHandler struct {
	uc post.UseCase
}

func NewPostHandler(uc post.UseCase) *PostHandler { return &PostHandler{uc: uc} }

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type updatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// @Summary List posts
// @Tags    posts
// @Produce json
// @Success 200 {array} post.Post
// @Router  /posts [get]
func (h *PostHandler) List(c *fiber.Ctx) error {
	ps, err := h.uc.List(c.UserContext())
	if err != nil {
		return presenter.Fail(c, err)
	}
	if ps == nil {
		ps = []post.Post{}
	}
	return presenter.JSON(c, http.StatusOK, ps)
}

// @Summary Create post
// @Tags    posts
// @Accept  json
// @Produce json
// @Param   x-access-token header string true "access token"
// @Param   input body createPostRequest true "post"
// @Success 200 {object} post.Post
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /posts [post]
func (h *PostHandler) Create(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON payload")
	}
	p, err := h.uc.Create(c.UserContext(), req.Title, req.Body)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// @Summary Get post
// @Tags    posts
// @Produce json
// @Param   postId path string true "post id (UUID)"
// @Success 200 {object} post.Post
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /posts/{postId} [get]
func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid post id")
	}
	p, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// @Summary Update post
// @Tags    posts
// @Accept  json
// @Produce json
// @Param   id path string true "post id (UUID)"
// @Param   x-access-token header string true "access token"
// @Param   input body updatePostRequest true "fields to change"
// @Success 200 {object} post.Post
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /posts/{id} [patch]
func (h *PostHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid post id")
	}
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON payload")
	}
	if err := h.uc.Update(c.UserContext(), id, post.Patch{Title: req.Title, Body: req.Body}); err != nil {
		return presenter.Fail(c, err)
	}
	p, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// @Summary Delete post
// @Description Returns the removed post.
// @Tags    posts
// @Produce json
// @Param   id path string true "post id (UUID)"
// @Param   x-access-token header string true "access token"
// @Success 200 {object} post.Post
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /posts/{id} [delete]
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "validation_error", "invalid post id")
	}
	p, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}
