// Package service contains the application's business logic between handlers and repositories.
package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/attribute"
)

// BlogService implements blog use cases on top of the repositories.
type BlogService struct {
	blogRepo    repository.BlogRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	isAdmin     func(ctx context.Context, userID bson.ObjectID) (bool, error)
}

// CreateBlogInput carries the accepted fields for blog creation.
type CreateBlogInput struct {
	AuthorID bson.ObjectID
	Title    string
	Content  string
	Tags     []string
	Category string
	Status   models.BlogStatus
	IsPublic bool
	SEO      models.SEO
}

// UpdateBlogInput carries the accepted fields for a blog update. Nil
// pointers leave the corresponding field untouched.
type UpdateBlogInput struct {
	UserID   bson.ObjectID
	BlogID   bson.ObjectID
	Title    *string
	Content  *string
	Tags     []string
	Category *string
	Status   *models.BlogStatus
	IsPublic *bool
	SEO      *models.SEO
}

// ListBlogsInput narrows and paginates the public listing.
type ListBlogsInput struct {
	Category string
	Tag      string
	Page     int
	Limit    int
}

func NewBlogService(
	blogRepo repository.BlogRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID bson.ObjectID) (bool, error),
) *BlogService {
	return &BlogService{
		blogRepo:    blogRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		isAdmin:     isAdmin,
	}
}

func (s *BlogService) CreateBlog(ctx context.Context, in CreateBlogInput) (*models.Blog, error) {
	if err := validation.ValidateBlogTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBlogContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !models.ValidCategory(in.Category) {
		return nil, models.NewValidationError("Invalid category")
	}
	status := in.Status
	if status == "" {
		status = models.BlogStatusDraft
	}
	if !models.ValidStatus(status) {
		return nil, models.NewValidationError("Invalid status")
	}
	tags, err := validation.NormalizeTags(in.Tags)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	blog := &models.Blog{
		Title:    in.Title,
		Content:  in.Content,
		Excerpt:  models.DeriveExcerpt(in.Content),
		ReadTime: models.DeriveReadTime(in.Content),
		Author:   in.AuthorID,
		Tags:     tags,
		Category: in.Category,
		Status:   status,
		IsPublic: in.IsPublic,
		SEO:      in.SEO,
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}

	blog.Finalize(in.AuthorID)
	return blog, nil
}

// GetBlog fetches a blog for the given viewer, enforcing visibility and
// incrementing the view counter on successful detail fetches.
func (s *BlogService) GetBlog(ctx context.Context, blogID, viewerID bson.ObjectID, countView bool) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog", blogID.Hex())
	}

	admin := false
	if !viewerID.IsZero() && s.isAdmin != nil {
		if admin, err = s.isAdmin(ctx, viewerID); err != nil {
			return nil, err
		}
	}
	if !blog.VisibleTo(viewerID, admin) {
		// Hidden blogs are indistinguishable from absent ones to outsiders.
		return nil, models.NewNotFoundError("Blog", blogID.Hex())
	}

	if countView {
		if err := s.blogRepo.IncrementViews(ctx, blogID); err != nil {
			return nil, err
		}
		blog.Views++
	}

	if err := s.attachAuthors(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	blog.Finalize(viewerID)
	return blog, nil
}

func (s *BlogService) ListBlogs(ctx context.Context, in ListBlogsInput) ([]*models.Blog, models.PageInfo, error) {
	if in.Category != "" && !models.ValidCategory(in.Category) {
		return nil, models.PageInfo{}, models.NewValidationError("Invalid category")
	}

	blogs, total, err := s.blogRepo.List(ctx, repository.ListBlogsOptions{
		Category: in.Category,
		Tag:      in.Tag,
		Limit:    in.Limit,
		Offset:   (in.Page - 1) * in.Limit,
	})
	if err != nil {
		return nil, models.PageInfo{}, err
	}
	if err := s.finalizeList(ctx, blogs, bson.ObjectID{}); err != nil {
		return nil, models.PageInfo{}, err
	}
	return blogs, models.NewPageInfo(in.Page, in.Limit, total), nil
}

func (s *BlogService) SearchBlogs(ctx context.Context, query string, page, limit int) ([]*models.Blog, models.PageInfo, error) {
	if query == "" {
		return nil, models.PageInfo{}, models.NewValidationError("Search query is required")
	}

	span, ctx := observability.NewSpan(ctx, "blog.search")
	defer span.End()
	span.AddAttributes(attribute.String("search.query", query))

	blogs, total, err := s.blogRepo.Search(ctx, query, limit, (page-1)*limit)
	if err != nil {
		span.SetError(err)
		return nil, models.PageInfo{}, err
	}
	span.AddAttributes(attribute.Int64("search.total", total))

	if err := s.finalizeList(ctx, blogs, bson.ObjectID{}); err != nil {
		return nil, models.PageInfo{}, err
	}
	return blogs, models.NewPageInfo(page, limit, total), nil
}

// ListByUser returns a user's blogs. The author (and admins) also see
// drafts and archived blogs; everyone else sees only published public ones.
func (s *BlogService) ListByUser(ctx context.Context, authorID, viewerID bson.ObjectID, page, limit int) ([]*models.Blog, models.PageInfo, error) {
	includeHidden := authorID == viewerID
	if !includeHidden && !viewerID.IsZero() && s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, viewerID)
		if err != nil {
			return nil, models.PageInfo{}, err
		}
		includeHidden = admin
	}

	blogs, total, err := s.blogRepo.ListByAuthor(ctx, authorID, includeHidden, limit, (page-1)*limit)
	if err != nil {
		return nil, models.PageInfo{}, err
	}
	if err := s.finalizeList(ctx, blogs, viewerID); err != nil {
		return nil, models.PageInfo{}, err
	}
	return blogs, models.NewPageInfo(page, limit, total), nil
}

func (s *BlogService) UpdateBlog(ctx context.Context, in UpdateBlogInput) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, in.BlogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog", in.BlogID.Hex())
	}

	if err := s.requireOwnerOrAdmin(ctx, blog.Author, in.UserID, "update"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateBlogTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		blog.Title = *in.Title
	}
	if in.Content != nil {
		if err := validation.ValidateBlogContent(*in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		blog.Content = *in.Content
		// Derived fields follow every content change.
		blog.Excerpt = models.DeriveExcerpt(blog.Content)
		blog.ReadTime = models.DeriveReadTime(blog.Content)
	}
	if in.Tags != nil {
		tags, err := validation.NormalizeTags(in.Tags)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		blog.Tags = tags
	}
	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			return nil, models.NewValidationError("Invalid category")
		}
		blog.Category = *in.Category
	}
	if in.Status != nil {
		if !models.ValidStatus(*in.Status) {
			return nil, models.NewValidationError("Invalid status")
		}
		blog.Status = *in.Status
	}
	if in.IsPublic != nil {
		blog.IsPublic = *in.IsPublic
	}
	if in.SEO != nil {
		blog.SEO = *in.SEO
	}

	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}

	if err := s.attachAuthors(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	blog.Finalize(in.UserID)
	return blog, nil
}

// DeleteBlog removes the blog and hard-deletes its comments.
func (s *BlogService) DeleteBlog(ctx context.Context, blogID, userID bson.ObjectID) error {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return err
	}
	if blog == nil {
		return models.NewNotFoundError("Blog", blogID.Hex())
	}

	if err := s.requireOwnerOrAdmin(ctx, blog.Author, userID, "delete"); err != nil {
		return err
	}

	if err := s.commentRepo.DeleteByBlog(ctx, blogID); err != nil {
		return err
	}
	return s.blogRepo.Delete(ctx, blogID)
}

// LikeBlog adds the caller to the blog's like set. Idempotent.
func (s *BlogService) LikeBlog(ctx context.Context, blogID, userID bson.ObjectID) (*models.Blog, error) {
	return s.setLike(ctx, blogID, userID, true)
}

// UnlikeBlog removes the caller from the blog's like set. Idempotent.
func (s *BlogService) UnlikeBlog(ctx context.Context, blogID, userID bson.ObjectID) (*models.Blog, error) {
	return s.setLike(ctx, blogID, userID, false)
}

func (s *BlogService) setLike(ctx context.Context, blogID, userID bson.ObjectID, like bool) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog", blogID.Hex())
	}
	if !blog.VisibleTo(userID, false) {
		return nil, models.NewNotFoundError("Blog", blogID.Hex())
	}

	if like {
		err = s.blogRepo.Like(ctx, blogID, userID)
	} else {
		err = s.blogRepo.Unlike(ctx, blogID, userID)
	}
	if err != nil {
		return nil, err
	}

	blog, err = s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog", blogID.Hex())
	}
	if err := s.attachAuthors(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	blog.Finalize(userID)
	return blog, nil
}

func (s *BlogService) Categories(ctx context.Context) ([]repository.CategoryCount, error) {
	return s.blogRepo.Categories(ctx)
}

func (s *BlogService) Tags(ctx context.Context) ([]string, error) {
	return s.blogRepo.Tags(ctx)
}

func (s *BlogService) requireOwnerOrAdmin(ctx context.Context, owner, userID bson.ObjectID, action string) error {
	if owner == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewUnauthorizedError("You can only " + action + " your own blogs")
}

func (s *BlogService) finalizeList(ctx context.Context, blogs []*models.Blog, viewerID bson.ObjectID) error {
	if err := s.attachAuthors(ctx, blogs); err != nil {
		return err
	}
	for _, b := range blogs {
		b.Finalize(viewerID)
	}
	return nil
}

// attachAuthors resolves author documents for the response in one query.
func (s *BlogService) attachAuthors(ctx context.Context, blogs []*models.Blog) error {
	if len(blogs) == 0 {
		return nil
	}
	ids := make([]bson.ObjectID, 0, len(blogs))
	seen := map[bson.ObjectID]struct{}{}
	for _, b := range blogs {
		if _, ok := seen[b.Author]; ok {
			continue
		}
		seen[b.Author] = struct{}{}
		ids = append(ids, b.Author)
	}

	users, err := s.userRepo.GetManyByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[bson.ObjectID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, b := range blogs {
		b.AuthorUser = byID[b.Author]
	}
	return nil
}
