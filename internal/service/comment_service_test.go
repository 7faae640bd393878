package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func publishedBlog(id, author bson.ObjectID) *models.Blog {
	return &models.Blog{
		ID:       id,
		Author:   author,
		Status:   models.BlogStatusPublished,
		IsPublic: true,
	}
}

func TestCreateComment(t *testing.T) {
	author := bson.NewObjectID()
	commenter := bson.NewObjectID()
	blogID := bson.NewObjectID()

	t.Run("top-level comment", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		commentRepo := new(MockCommentRepository)
		userRepo := new(MockUserRepository)
		svc := NewCommentService(commentRepo, blogRepo, userRepo, noAdmin)

		blogRepo.On("GetByID", mock.Anything, blogID).Return(publishedBlog(blogID, author), nil)
		commentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		blogRepo.On("AddComment", mock.Anything, blogID, mock.Anything).Return(nil)
		userRepo.On("GetManyByIDs", mock.Anything, []bson.ObjectID{commenter}).
			Return([]*models.User{{ID: commenter}}, nil)

		comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
			AuthorID: commenter,
			BlogID:   blogID,
			Content:  "Great read!",
		})
		require.NoError(t, err)
		assert.False(t, comment.IsReply())
		blogRepo.AssertCalled(t, "AddComment", mock.Anything, blogID, mock.Anything)
	})

	t.Run("reply to a top-level comment", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		commentRepo := new(MockCommentRepository)
		userRepo := new(MockUserRepository)
		svc := NewCommentService(commentRepo, blogRepo, userRepo, noAdmin)

		parentID := bson.NewObjectID()
		parent := &models.Comment{ID: parentID, Blog: blogID}

		blogRepo.On("GetByID", mock.Anything, blogID).Return(publishedBlog(blogID, author), nil)
		commentRepo.On("GetByID", mock.Anything, parentID).Return(parent, nil)
		commentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		blogRepo.On("AddComment", mock.Anything, blogID, mock.Anything).Return(nil)
		userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
			Return([]*models.User{{ID: commenter}}, nil)

		comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
			AuthorID: commenter,
			BlogID:   blogID,
			ParentID: &parentID,
			Content:  "Agreed.",
		})
		require.NoError(t, err)
		assert.True(t, comment.IsReply())
	})

	t.Run("replies cannot nest", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		commentRepo := new(MockCommentRepository)
		svc := NewCommentService(commentRepo, blogRepo, new(MockUserRepository), noAdmin)

		grandparent := bson.NewObjectID()
		parentID := bson.NewObjectID()
		reply := &models.Comment{ID: parentID, Blog: blogID, ParentComment: &grandparent}

		blogRepo.On("GetByID", mock.Anything, blogID).Return(publishedBlog(blogID, author), nil)
		commentRepo.On("GetByID", mock.Anything, parentID).Return(reply, nil)

		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			AuthorID: commenter,
			BlogID:   blogID,
			ParentID: &parentID,
			Content:  "nested",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("parent must be on the same blog", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		commentRepo := new(MockCommentRepository)
		svc := NewCommentService(commentRepo, blogRepo, new(MockUserRepository), noAdmin)

		parentID := bson.NewObjectID()
		parent := &models.Comment{ID: parentID, Blog: bson.NewObjectID()}

		blogRepo.On("GetByID", mock.Anything, blogID).Return(publishedBlog(blogID, author), nil)
		commentRepo.On("GetByID", mock.Anything, parentID).Return(parent, nil)

		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			AuthorID: commenter,
			BlogID:   blogID,
			ParentID: &parentID,
			Content:  "wrong blog",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("deleted parent rejected", func(t *testing.T) {
		blogRepo := new(MockBlogRepository)
		commentRepo := new(MockCommentRepository)
		svc := NewCommentService(commentRepo, blogRepo, new(MockUserRepository), noAdmin)

		parentID := bson.NewObjectID()
		parent := &models.Comment{ID: parentID, Blog: blogID, IsDeleted: true}

		blogRepo.On("GetByID", mock.Anything, blogID).Return(publishedBlog(blogID, author), nil)
		commentRepo.On("GetByID", mock.Anything, parentID).Return(parent, nil)

		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			AuthorID: commenter,
			BlogID:   blogID,
			ParentID: &parentID,
			Content:  "too late",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		svc := NewCommentService(new(MockCommentRepository), new(MockBlogRepository), new(MockUserRepository), noAdmin)

		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			AuthorID: commenter,
			BlogID:   blogID,
			Content:  "   ",
		})
		assert.Error(t, err)
	})
}

func TestListComments(t *testing.T) {
	author := bson.NewObjectID()
	blogID := bson.NewObjectID()

	blogRepo := new(MockBlogRepository)
	commentRepo := new(MockCommentRepository)
	userRepo := new(MockUserRepository)
	svc := NewCommentService(commentRepo, blogRepo, userRepo, noAdmin)

	top1 := &models.Comment{ID: bson.NewObjectID(), Blog: blogID, Author: author}
	top2 := &models.Comment{ID: bson.NewObjectID(), Blog: blogID, Author: author}
	reply := &models.Comment{ID: bson.NewObjectID(), Blog: blogID, Author: author, ParentComment: &top1.ID}

	blogRepo.On("GetByID", mock.Anything, blogID).Return(publishedBlog(blogID, author), nil)
	commentRepo.On("ListTopLevelByBlog", mock.Anything, blogID, 20, 0).
		Return([]*models.Comment{top1, top2}, int64(2), nil)
	commentRepo.On("ListReplies", mock.Anything, []bson.ObjectID{top1.ID, top2.ID}).
		Return([]*models.Comment{reply}, nil)
	userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
		Return([]*models.User{{ID: author, Username: "writer"}}, nil)

	comments, page, err := svc.ListComments(context.Background(), blogID, bson.ObjectID{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, reply.ID, comments[0].Replies[0].ID)
	assert.Empty(t, comments[1].Replies)
	require.NotNil(t, comments[0].AuthorUser)
	assert.Equal(t, "writer", comments[0].Replies[0].AuthorUser.Username)
}

func TestUpdateComment(t *testing.T) {
	author := bson.NewObjectID()
	commentID := bson.NewObjectID()

	t.Run("author edits and comment is marked edited", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		userRepo := new(MockUserRepository)
		svc := NewCommentService(commentRepo, new(MockBlogRepository), userRepo, noAdmin)

		commentRepo.On("GetByID", mock.Anything, commentID).
			Return(&models.Comment{ID: commentID, Author: author, Content: "old"}, nil)
		commentRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
			Return([]*models.User{{ID: author}}, nil)

		comment, err := svc.UpdateComment(context.Background(), commentID, author, "new content")
		require.NoError(t, err)
		assert.Equal(t, "new content", comment.Content)
		assert.True(t, comment.IsEdited)
		require.NotNil(t, comment.EditedAt)
	})

	t.Run("only the author may edit", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		svc := NewCommentService(commentRepo, new(MockBlogRepository), new(MockUserRepository), alwaysAdmin)

		commentRepo.On("GetByID", mock.Anything, commentID).
			Return(&models.Comment{ID: commentID, Author: author}, nil)

		_, err := svc.UpdateComment(context.Background(), commentID, bson.NewObjectID(), "hijack")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code, "even admins may not edit others' comments")
	})
}

func TestDeleteComment(t *testing.T) {
	author := bson.NewObjectID()
	blogID := bson.NewObjectID()
	commentID := bson.NewObjectID()

	existing := func() *models.Comment {
		return &models.Comment{ID: commentID, Author: author, Blog: blogID}
	}

	t.Run("author soft-deletes", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		blogRepo := new(MockBlogRepository)
		svc := NewCommentService(commentRepo, blogRepo, new(MockUserRepository), noAdmin)

		commentRepo.On("GetByID", mock.Anything, commentID).Return(existing(), nil)
		commentRepo.On("SoftDelete", mock.Anything, commentID).Return(nil)
		blogRepo.On("RemoveComment", mock.Anything, blogID, commentID).Return(nil)

		require.NoError(t, svc.DeleteComment(context.Background(), commentID, author))
		commentRepo.AssertCalled(t, "SoftDelete", mock.Anything, commentID)
		blogRepo.AssertCalled(t, "RemoveComment", mock.Anything, blogID, commentID)
	})

	t.Run("admin may delete", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		blogRepo := new(MockBlogRepository)
		svc := NewCommentService(commentRepo, blogRepo, new(MockUserRepository), alwaysAdmin)

		commentRepo.On("GetByID", mock.Anything, commentID).Return(existing(), nil)
		commentRepo.On("SoftDelete", mock.Anything, commentID).Return(nil)
		blogRepo.On("RemoveComment", mock.Anything, blogID, commentID).Return(nil)

		assert.NoError(t, svc.DeleteComment(context.Background(), commentID, bson.NewObjectID()))
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		svc := NewCommentService(commentRepo, new(MockBlogRepository), new(MockUserRepository), noAdmin)

		commentRepo.On("GetByID", mock.Anything, commentID).Return(existing(), nil)

		err := svc.DeleteComment(context.Background(), commentID, bson.NewObjectID())
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	})

	t.Run("already deleted behaves as missing", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		svc := NewCommentService(commentRepo, new(MockBlogRepository), new(MockUserRepository), noAdmin)

		gone := existing()
		gone.IsDeleted = true
		commentRepo.On("GetByID", mock.Anything, commentID).Return(gone, nil)

		err := svc.DeleteComment(context.Background(), commentID, author)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestToggleCommentLike(t *testing.T) {
	author := bson.NewObjectID()
	liker := bson.NewObjectID()
	commentID := bson.NewObjectID()

	t.Run("first toggle likes", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		userRepo := new(MockUserRepository)
		svc := NewCommentService(commentRepo, new(MockBlogRepository), userRepo, noAdmin)

		unliked := &models.Comment{ID: commentID, Author: author}
		liked := &models.Comment{ID: commentID, Author: author, Likes: []bson.ObjectID{liker}}

		commentRepo.On("GetByID", mock.Anything, commentID).Return(unliked, nil).Once()
		commentRepo.On("Like", mock.Anything, commentID, liker).Return(nil)
		commentRepo.On("GetByID", mock.Anything, commentID).Return(liked, nil).Once()
		userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
			Return([]*models.User{{ID: author}}, nil)

		comment, err := svc.ToggleCommentLike(context.Background(), commentID, liker)
		require.NoError(t, err)
		assert.True(t, comment.Liked)
		assert.Equal(t, 1, comment.LikeCount)
	})

	t.Run("second toggle unlikes", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		userRepo := new(MockUserRepository)
		svc := NewCommentService(commentRepo, new(MockBlogRepository), userRepo, noAdmin)

		liked := &models.Comment{ID: commentID, Author: author, Likes: []bson.ObjectID{liker}}
		unliked := &models.Comment{ID: commentID, Author: author, Likes: []bson.ObjectID{}}

		commentRepo.On("GetByID", mock.Anything, commentID).Return(liked, nil).Once()
		commentRepo.On("Unlike", mock.Anything, commentID, liker).Return(nil)
		commentRepo.On("GetByID", mock.Anything, commentID).Return(unliked, nil).Once()
		userRepo.On("GetManyByIDs", mock.Anything, mock.Anything).
			Return([]*models.User{{ID: author}}, nil)

		comment, err := svc.ToggleCommentLike(context.Background(), commentID, liker)
		require.NoError(t, err)
		assert.False(t, comment.Liked)
		assert.Equal(t, 0, comment.LikeCount)
	})
}
