package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GetComments handles GET /api/blogs/:id/comments
// @Summary List comments
// @Description List a blog's top-level comments with replies attached, oldest first
// @Tags comments
// @Produce json
// @Param id path string true "Blog ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} object{comments=[]models.Comment,pagination=object}
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	comments, page, err := s.commentService.ListComments(c.Context(), blogID, viewerID, p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"comments":   comments,
		"pagination": page.Map("totalComments"),
	})
}

// CreateComment handles POST /api/blogs/:id/comments
// @Summary Create a comment
// @Description Comment on a blog, optionally replying to a top-level comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Param request body object{content=string,parentComment=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content       string `json:"content"`
		ParentComment string `json:"parentComment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreateCommentInput{
		AuthorID: userID,
		BlogID:   blogID,
		Content:  req.Content,
	}
	if req.ParentComment != "" {
		parentID, err := bson.ObjectIDFromHex(req.ParentComment)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid parent comment ID"))
		}
		in.ParentID = &parentID
	}

	comment, err := s.commentService.CreateComment(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Description Edit a comment's content. Only the author may edit; the comment is marked edited.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), commentID, userID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Description Soft-delete a comment. Only the author or an admin may delete.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), commentID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// ToggleCommentLike handles POST /api/comments/:id/like
// @Summary Toggle a comment like
// @Description Like the comment if not yet liked, otherwise remove the like
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.ToggleCommentLike(c.Context(), commentID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}
