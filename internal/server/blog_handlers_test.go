package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCreateBlogHandler(t *testing.T) {
	userID := bson.NewObjectID()

	tests := []struct {
		name           string
		body           map[string]any
		mockSetup      func(blogRepo *MockBlogRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]any{
				"title":    "Going Distributed",
				"content":  "A long look at consensus protocols in practice.",
				"category": "technology",
				"tags":     []string{"Go", "distributed"},
				"status":   "published",
			},
			mockSetup: func(blogRepo *MockBlogRepository) {
				blogRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Content",
			body: map[string]any{
				"title": "No body",
			},
			mockSetup:      func(*MockBlogRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Category",
			body: map[string]any{
				"title":    "Misc",
				"content":  "Content that is long enough to pass validation.",
				"category": "paranormal",
			},
			mockSetup:      func(*MockBlogRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blogRepo := new(MockBlogRepository)
			tt.mockSetup(blogRepo)
			s := newTestServer(new(MockUserRepository), blogRepo, new(MockCommentRepository))

			app := fiber.New()
			app.Post("/blogs", authed(userID), s.CreateBlog)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/blogs", tt.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var blog models.Blog
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&blog))
				assert.Equal(t, "Going Distributed", blog.Title)
				assert.NotEmpty(t, blog.Excerpt)
				assert.GreaterOrEqual(t, blog.ReadTime, 1)
			}
		})
	}
}

func TestGetBlogHandler(t *testing.T) {
	blogID := bson.NewObjectID()
	author := bson.NewObjectID()

	t.Run("fetch counts a view", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		userRepo := new(MockUserRepository)
		s := newTestServer(userRepo, blogRepo, new(MockCommentRepository))

		blogRepo.On("GetByID", mock.Anything, blogID).Return(&models.Blog{
			ID:       blogID,
			Author:   author,
			Title:    "Hello",
			Status:   models.BlogStatusPublished,
			IsPublic: true,
			Views:    9,
		}, nil)
		blogRepo.On("IncrementViews", mock.Anything, blogID).Return(nil)
		userRepo.On("GetManyByIDs", mock.Anything, []bson.ObjectID{author}).
			Return([]*models.User{{ID: author, Username: "writer"}}, nil)

		app := fiber.New()
		app.Get("/blogs/:id", s.GetBlog)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+blogID.Hex(), nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var blog models.Blog
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&blog))
		assert.Equal(t, int64(10), blog.Views)
		require.NotNil(t, blog.AuthorUser)
		assert.Equal(t, "writer", blog.AuthorUser.Username)
	})

	t.Run("invalid id", func(t *testing.T) {
		s := newTestServer(new(MockUserRepository), new(MockBlogRepository), new(MockCommentRepository))
		app := fiber.New()
		app.Get("/blogs/:id", s.GetBlog)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/not-hex", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("hidden blog is a 404 for anonymous viewers", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		s := newTestServer(new(MockUserRepository), blogRepo, new(MockCommentRepository))

		blogRepo.On("GetByID", mock.Anything, blogID).Return(&models.Blog{
			ID:     blogID,
			Author: author,
			Status: models.BlogStatusDraft,
		}, nil)

		app := fiber.New()
		app.Get("/blogs/:id", s.GetBlog)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+blogID.Hex(), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetBlogsHandler(t *testing.T) {
	blogRepo := new(MockBlogRepository)
	userRepo := new(MockUserRepository)
	s := newTestServer(userRepo, blogRepo, new(MockCommentRepository))

	author := bson.NewObjectID()
	blogRepo.On("List", mock.Anything, repository.ListBlogsOptions{
		Category: "technology",
		Limit:    10,
		Offset:   0,
	}).Return([]*models.Blog{
		{ID: bson.NewObjectID(), Author: author, Title: "One", Status: models.BlogStatusPublished, IsPublic: true},
	}, int64(1), nil)
	userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
		Return([]*models.User{{ID: author}}, nil)

	app := fiber.New()
	app.Get("/blogs", s.GetBlogs)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs?category=technology", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Blogs      []models.Blog  `json:"blogs"`
		Pagination map[string]any `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Blogs, 1)
	assert.EqualValues(t, 1, out.Pagination["totalBlogs"])
	assert.EqualValues(t, 1, out.Pagination["currentPage"])
}

func TestSearchBlogsHandler(t *testing.T) {
	t.Run("query required", func(t *testing.T) {
		s := newTestServer(new(MockUserRepository), new(MockBlogRepository), new(MockCommentRepository))
		app := fiber.New()
		app.Get("/blogs/search", s.SearchBlogs)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/search", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("matches returned", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		userRepo := new(MockUserRepository)
		s := newTestServer(userRepo, blogRepo, new(MockCommentRepository))

		author := bson.NewObjectID()
		blogRepo.On("Search", mock.Anything, "consensus", 10, 0).Return([]*models.Blog{
			{ID: bson.NewObjectID(), Author: author, Title: "Consensus", Status: models.BlogStatusPublished, IsPublic: true},
		}, int64(1), nil)
		userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
			Return([]*models.User{{ID: author}}, nil)

		app := fiber.New()
		app.Get("/blogs/search", s.SearchBlogs)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/search?q=consensus", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUpdateBlogHandler(t *testing.T) {
	author := bson.NewObjectID()
	blogID := bson.NewObjectID()

	existing := func() *models.Blog {
		return &models.Blog{
			ID:       blogID,
			Author:   author,
			Title:    "Old title",
			Content:  "Old content that passes length checks.",
			Category: "technology",
			Status:   models.BlogStatusPublished,
			IsPublic: true,
		}
	}

	t.Run("author updates title", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		userRepo := new(MockUserRepository)
		s := newTestServer(userRepo, blogRepo, new(MockCommentRepository))

		blogRepo.On("GetByID", mock.Anything, blogID).Return(existing(), nil)
		blogRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
			Return([]*models.User{{ID: author}}, nil)

		app := fiber.New()
		app.Put("/blogs/:id", authed(author), s.UpdateBlog)

		resp, err := app.Test(jsonRequest(http.MethodPut, "/blogs/"+blogID.Hex(), map[string]any{
			"title": "New title",
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var blog models.Blog
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&blog))
		assert.Equal(t, "New title", blog.Title)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		userRepo := new(MockUserRepository)
		s := newTestServer(userRepo, blogRepo, new(MockCommentRepository))

		stranger := bson.NewObjectID()
		blogRepo.On("GetByID", mock.Anything, blogID).Return(existing(), nil)
		userRepo.On("GetByID", mock.Anything, stranger).
			Return(&models.User{ID: stranger, Role: models.RoleUser}, nil)

		app := fiber.New()
		app.Put("/blogs/:id", authed(stranger), s.UpdateBlog)

		resp, err := app.Test(jsonRequest(http.MethodPut, "/blogs/"+blogID.Hex(), map[string]any{
			"title": "Hijacked",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteBlogHandler(t *testing.T) {
	author := bson.NewObjectID()
	blogID := bson.NewObjectID()

	blogRepo := new(MockBlogRepository)
	commentRepo := new(MockCommentRepository)
	s := newTestServer(new(MockUserRepository), blogRepo, commentRepo)

	blogRepo.On("GetByID", mock.Anything, blogID).Return(&models.Blog{
		ID:     blogID,
		Author: author,
	}, nil)
	commentRepo.On("DeleteByBlog", mock.Anything, blogID).Return(nil)
	blogRepo.On("Delete", mock.Anything, blogID).Return(nil)

	app := fiber.New()
	app.Delete("/blogs/:id", authed(author), s.DeleteBlog)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/blogs/"+blogID.Hex(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	commentRepo.AssertCalled(t, "DeleteByBlog", mock.Anything, blogID)
}

func TestLikeBlogHandler(t *testing.T) {
	author := bson.NewObjectID()
	liker := bson.NewObjectID()
	blogID := bson.NewObjectID()

	blogRepo := new(MockBlogRepository)
	userRepo := new(MockUserRepository)
	s := newTestServer(userRepo, blogRepo, new(MockCommentRepository))

	visible := &models.Blog{ID: blogID, Author: author, Status: models.BlogStatusPublished, IsPublic: true}
	likedCopy := &models.Blog{ID: blogID, Author: author, Status: models.BlogStatusPublished, IsPublic: true,
		Likes: []bson.ObjectID{liker}}

	userRepo.On("GetByID", mock.Anything, liker).
		Return(&models.User{ID: liker, Role: models.RoleUser}, nil)
	blogRepo.On("GetByID", mock.Anything, blogID).Return(visible, nil).Once()
	blogRepo.On("Like", mock.Anything, blogID, liker).Return(nil)
	blogRepo.On("GetByID", mock.Anything, blogID).Return(likedCopy, nil).Once()
	userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
		Return([]*models.User{{ID: author}}, nil)

	app := fiber.New()
	app.Post("/blogs/:id/like", authed(liker), s.LikeBlog)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/blogs/"+blogID.Hex()+"/like", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var blog models.Blog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&blog))
	assert.True(t, blog.Liked)
	assert.Equal(t, 1, blog.LikeCount)
}
