package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBlogs handles GET /api/blogs
// @Summary List published blogs
// @Description List public published blogs, newest first, optionally filtered by category or tag
// @Tags blogs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param category query string false "Category filter"
// @Param tag query string false "Tag filter"
// @Success 200 {object} object{blogs=[]models.Blog,pagination=object}
// @Failure 400 {object} models.ErrorResponse
// @Router /blogs [get]
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	p := parsePagination(c, 10)

	blogs, page, err := s.blogService.ListBlogs(c.Context(), service.ListBlogsInput{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"blogs":      blogs,
		"pagination": page.Map("totalBlogs"),
	})
}

// SearchBlogs handles GET /api/blogs/search
// @Summary Search blogs
// @Description Full-text search over title, content and tags of public published blogs
// @Tags blogs
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} object{blogs=[]models.Blog,pagination=object}
// @Failure 400 {object} models.ErrorResponse
// @Router /blogs/search [get]
func (s *Server) SearchBlogs(c *fiber.Ctx) error {
	p := parsePagination(c, 10)

	blogs, page, err := s.blogService.SearchBlogs(c.Context(), c.Query("q"), p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"blogs":      blogs,
		"pagination": page.Map("totalBlogs"),
	})
}

// GetBlog handles GET /api/blogs/:id
// @Summary Get a blog
// @Description Fetch one blog by ID and count the view. Owners and admins also see drafts.
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} models.Blog
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [get]
func (s *Server) GetBlog(c *fiber.Ctx) error {
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	blog, err := s.blogService.GetBlog(c.Context(), blogID, viewerID, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(blog)
}

// GetUserBlogs handles GET /api/blogs/user/:userId
// @Summary List a user's blogs
// @Description List blogs by author. The author and admins also see hidden blogs.
// @Tags blogs
// @Produce json
// @Param userId path string true "Author user ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} object{blogs=[]models.Blog,pagination=object}
// @Failure 400 {object} models.ErrorResponse
// @Router /blogs/user/{userId} [get]
func (s *Server) GetUserBlogs(c *fiber.Ctx) error {
	authorID, err := s.parseObjectID(c, "userId")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)
	p := parsePagination(c, 10)

	blogs, page, err := s.blogService.ListByUser(c.Context(), authorID, viewerID, p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"blogs":      blogs,
		"pagination": page.Map("totalBlogs"),
	})
}

// GetCategories handles GET /api/blogs/categories
// @Summary List categories in use
// @Description List categories of public published blogs with per-category counts
// @Tags blogs
// @Produce json
// @Success 200 {object} object{categories=[]repository.CategoryCount}
// @Router /blogs/categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.blogService.Categories(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GetTags handles GET /api/blogs/tags
// @Summary List tags in use
// @Description List distinct tags across public published blogs
// @Tags blogs
// @Produce json
// @Success 200 {object} object{tags=[]string}
// @Router /blogs/tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.blogService.Tags(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// blogRequest is the shared create/update request body. Pointers
// distinguish absent fields from zero values on update.
type blogRequest struct {
	Title    *string            `json:"title"`
	Content  *string            `json:"content"`
	Tags     []string           `json:"tags"`
	Category *string            `json:"category"`
	Status   *models.BlogStatus `json:"status"`
	IsPublic *bool              `json:"isPublic"`
	SEO      *models.SEO        `json:"seo"`
}

// CreateBlog handles POST /api/blogs
// @Summary Create a blog
// @Description Create a blog authored by the authenticated user
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string,tags=[]string,category=string,status=string,isPublic=bool} true "Blog"
// @Success 201 {object} models.Blog
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /blogs [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == nil || req.Content == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	in := service.CreateBlogInput{
		AuthorID: userID,
		Title:    *req.Title,
		Content:  *req.Content,
		Tags:     req.Tags,
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.IsPublic != nil {
		in.IsPublic = *req.IsPublic
	} else {
		in.IsPublic = true
	}
	if req.SEO != nil {
		in.SEO = *req.SEO
	}

	blog, err := s.blogService.CreateBlog(c.Context(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(blog)
}

// UpdateBlog handles PUT /api/blogs/:id
// @Summary Update a blog
// @Description Update a blog's mutable fields. Only the author or an admin may update; authorship never changes.
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Param request body object{title=string,content=string,tags=[]string,category=string,status=string,isPublic=bool} true "Fields to update"
// @Success 200 {object} models.Blog
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [put]
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.UpdateBlog(c.Context(), service.UpdateBlogInput{
		UserID:   userID,
		BlogID:   blogID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Category: req.Category,
		Status:   req.Status,
		IsPublic: req.IsPublic,
		SEO:      req.SEO,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(blog)
}

// DeleteBlog handles DELETE /api/blogs/:id
// @Summary Delete a blog
// @Description Delete a blog and all of its comments. Only the author or an admin may delete.
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [delete]
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blogService.DeleteBlog(c.Context(), blogID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Blog deleted"})
}

// LikeBlog handles POST /api/blogs/:id/like
// @Summary Like a blog
// @Description Add the authenticated user to the blog's like set. Liking twice is a no-op.
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Success 200 {object} models.Blog
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/like [post]
func (s *Server) LikeBlog(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogService.LikeBlog(c.Context(), blogID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(blog)
}

// UnlikeBlog handles DELETE /api/blogs/:id/like
// @Summary Unlike a blog
// @Description Remove the authenticated user from the blog's like set. Unliking twice is a no-op.
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Success 200 {object} models.Blog
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/like [delete]
func (s *Server) UnlikeBlog(c *fiber.Ctx) error {
	userID, err := s.requireUserID(c)
	if err != nil {
		return nil
	}
	blogID, err := s.parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogService.UnlikeBlog(c.Context(), blogID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(blog)
}
