package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/users
// @Summary List users
// @Description List registered users, newest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} object{users=[]models.User,pagination=object}
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, page, err := s.userService.ListUsers(c.Context(), p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": page.Map("totalUsers"),
	})
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user
// @Description Fetch one user's public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update a profile
// @Description Update profile fields. Users edit their own profile; admins may edit anyone's.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body object{username=string,firstName=string,lastName=string,avatar=string,bio=string,socialLinks=models.SocialLinks} true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	requesterID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	targetID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username    *string             `json:"username"`
		FirstName   *string             `json:"firstName"`
		LastName    *string             `json:"lastName"`
		Avatar      *string             `json:"avatar"`
		Bio         *string             `json:"bio"`
		SocialLinks *models.SocialLinks `json:"socialLinks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		RequesterID: requesterID,
		TargetID:    targetID,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Avatar:      req.Avatar,
		Bio:         req.Bio,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// ToggleFollow handles POST /api/users/:id/follow
// @Summary Toggle follow
// @Description Follow the user, or unfollow if already following
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID to follow"
// @Success 200 {object} object{following=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	followerID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	targetID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.ToggleFollow(c.Context(), followerID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary List followers
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} object{followers=[]models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	followers, err := s.userService.Followers(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers})
}

// GetFollowing handles GET /api/users/:id/following
// @Summary List followed users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} object{following=[]models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.Following(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetUserStats handles GET /api/users/:id/stats
// @Summary Get user statistics
// @Description Blog, view, like and follower counters for a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.UserStats
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/stats [get]
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	userID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	stats, err := s.userService.Stats(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin
// @Summary Promote to admin
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/promote-admin [post]
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetAdmin(c.Context(), targetID, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin
// @Summary Demote from admin
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/demote-admin [post]
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	targetID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetAdmin(c.Context(), targetID, false)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
