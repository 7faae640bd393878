package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CommentService implements comment use cases on top of the repositories.
type CommentService struct {
	commentRepo repository.CommentRepository
	blogRepo    repository.BlogRepository
	userRepo    repository.UserRepository
	isAdmin     func(ctx context.Context, userID bson.ObjectID) (bool, error)
}

// CreateCommentInput carries the accepted fields for comment creation.
type CreateCommentInput struct {
	AuthorID bson.ObjectID
	BlogID   bson.ObjectID
	ParentID *bson.ObjectID
	Content  string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	blogRepo repository.BlogRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID bson.ObjectID) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		blogRepo:    blogRepo,
		userRepo:    userRepo,
		isAdmin:     isAdmin,
	}
}

// CreateComment adds a comment or a reply. Replies attach only to
// non-deleted top-level comments on the same blog.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	blog, err := s.blogRepo.GetByID(ctx, in.BlogID)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog", in.BlogID.Hex())
	}
	if !blog.VisibleTo(in.AuthorID, false) {
		return nil, models.NewNotFoundError("Blog", in.BlogID.Hex())
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.IsDeleted {
			return nil, models.NewNotFoundError("Comment", in.ParentID.Hex())
		}
		if parent.Blog != in.BlogID {
			return nil, models.NewValidationError("Parent comment belongs to a different blog")
		}
		if parent.IsReply() {
			return nil, models.NewValidationError("Replies cannot be nested")
		}
	}

	comment := &models.Comment{
		Content:       in.Content,
		Author:        in.AuthorID,
		Blog:          in.BlogID,
		ParentComment: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.blogRepo.AddComment(ctx, in.BlogID, comment.ID); err != nil {
		return nil, err
	}

	if err := s.attachAuthors(ctx, []*models.Comment{comment}); err != nil {
		return nil, err
	}
	comment.Finalize(in.AuthorID)
	return comment, nil
}

// ListComments returns a page of top-level comments with their replies
// attached, oldest first on both levels.
func (s *CommentService) ListComments(ctx context.Context, blogID, viewerID bson.ObjectID, page, limit int) ([]*models.Comment, models.PageInfo, error) {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, models.PageInfo{}, err
	}
	if blog == nil {
		return nil, models.PageInfo{}, models.NewNotFoundError("Blog", blogID.Hex())
	}
	admin := false
	if !viewerID.IsZero() && s.isAdmin != nil {
		if admin, err = s.isAdmin(ctx, viewerID); err != nil {
			return nil, models.PageInfo{}, err
		}
	}
	if !blog.VisibleTo(viewerID, admin) {
		return nil, models.PageInfo{}, models.NewNotFoundError("Blog", blogID.Hex())
	}

	comments, total, err := s.commentRepo.ListTopLevelByBlog(ctx, blogID, limit, (page-1)*limit)
	if err != nil {
		return nil, models.PageInfo{}, err
	}

	parentIDs := make([]bson.ObjectID, len(comments))
	byID := make(map[bson.ObjectID]*models.Comment, len(comments))
	for i, c := range comments {
		parentIDs[i] = c.ID
		byID[c.ID] = c
		c.Replies = []*models.Comment{}
	}
	replies, err := s.commentRepo.ListReplies(ctx, parentIDs)
	if err != nil {
		return nil, models.PageInfo{}, err
	}

	all := append([]*models.Comment{}, comments...)
	for _, reply := range replies {
		if parent, ok := byID[*reply.ParentComment]; ok {
			parent.Replies = append(parent.Replies, reply)
			all = append(all, reply)
		}
	}

	if err := s.attachAuthors(ctx, all); err != nil {
		return nil, models.PageInfo{}, err
	}
	for _, c := range comments {
		c.Finalize(viewerID)
	}
	return comments, models.NewPageInfo(page, limit, total), nil
}

// UpdateComment edits the content. Only the author may edit; editing
// marks the comment as edited with a timestamp.
func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID bson.ObjectID, content string) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, models.NewNotFoundError("Comment", commentID.Hex())
	}
	if comment.Author != userID {
		return nil, models.NewUnauthorizedError("You can only edit your own comments")
	}

	now := time.Now().UTC()
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &now
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.attachAuthors(ctx, []*models.Comment{comment}); err != nil {
		return nil, err
	}
	comment.Finalize(userID)
	return comment, nil
}

// DeleteComment soft-deletes. The author or an admin may delete; the
// blog's comment reference is dropped so comment counts stay honest.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID bson.ObjectID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.IsDeleted {
		return models.NewNotFoundError("Comment", commentID.Hex())
	}

	if comment.Author != userID {
		admin := false
		if s.isAdmin != nil {
			if admin, err = s.isAdmin(ctx, userID); err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return err
	}
	return s.blogRepo.RemoveComment(ctx, comment.Blog, commentID)
}

// ToggleCommentLike flips the caller's membership in the comment's like
// set and returns the updated comment.
func (s *CommentService) ToggleCommentLike(ctx context.Context, commentID, userID bson.ObjectID) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted {
		return nil, models.NewNotFoundError("Comment", commentID.Hex())
	}

	if comment.LikedBy(userID) {
		err = s.commentRepo.Unlike(ctx, commentID, userID)
	} else {
		err = s.commentRepo.Like(ctx, commentID, userID)
	}
	if err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", commentID.Hex())
	}
	if err := s.attachAuthors(ctx, []*models.Comment{comment}); err != nil {
		return nil, err
	}
	comment.Finalize(userID)
	return comment, nil
}

func (s *CommentService) attachAuthors(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]bson.ObjectID, 0, len(comments))
	seen := map[bson.ObjectID]struct{}{}
	for _, c := range comments {
		if _, ok := seen[c.Author]; ok {
			continue
		}
		seen[c.Author] = struct{}{}
		ids = append(ids, c.Author)
	}

	users, err := s.userRepo.GetManyByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[bson.ObjectID]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, c := range comments {
		c.AuthorUser = byID[c.Author]
	}
	return nil
}
