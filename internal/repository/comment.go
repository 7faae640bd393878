// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error)
	ListTopLevelByBlog(ctx context.Context, blogID bson.ObjectID, limit, offset int) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, parentIDs []bson.ObjectID) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	SoftDelete(ctx context.Context, id bson.ObjectID) error
	DeleteByBlog(ctx context.Context, blogID bson.ObjectID) error
	Like(ctx context.Context, commentID, userID bson.ObjectID) error
	Unlike(ctx context.Context, commentID, userID bson.ObjectID) error
}

// commentRepository implements CommentRepository against the comments collection.
type commentRepository struct {
	comments *mongo.Collection
	logger   *observability.RepoLogger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{
		comments: db.Comments(),
		logger:   observability.NewRepoLogger(database.CommentsCollection),
	}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", database.CommentsCollection)()

	now := time.Now().UTC()
	comment.ID = bson.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Likes == nil {
		comment.Likes = []bson.ObjectID{}
	}

	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		r.logger.LogError(ctx, err, "create")
		return err
	}
	r.logger.LogCreate(ctx, map[string]any{
		"comment_id": comment.ID.Hex(),
		"blog_id":    comment.Blog.Hex(),
		"reply":      comment.IsReply(),
	})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error) {
	defer observability.TrackQuery("get_by_id", database.CommentsCollection)()

	var comment models.Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevelByBlog returns the non-deleted top-level comments for a blog,
// oldest first. Soft-deleted comments are excluded from both the page and
// the total count.
func (r *commentRepository) ListTopLevelByBlog(ctx context.Context, blogID bson.ObjectID, limit, offset int) ([]*models.Comment, int64, error) {
	defer observability.TrackQuery("list_top_level", database.CommentsCollection)()
	ctx, span := observability.TraceRepositoryMethod(ctx, "list_top_level", database.CommentsCollection)
	defer span.End()

	filter := bson.M{
		"blog":          blogID,
		"parentComment": bson.M{"$exists": false},
		"isDeleted":     false,
	}

	total, err := r.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	comments := []*models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListReplies returns the non-deleted direct replies to the given parents,
// oldest first. The read path attaches these to their top-level comments;
// replies do not nest further.
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []bson.ObjectID) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return []*models.Comment{}, nil
	}
	defer observability.TrackQuery("list_replies", database.CommentsCollection)()
	ctx, span := observability.TraceRepositoryMethod(ctx, "list_replies", database.CommentsCollection)
	defer span.End()

	filter := bson.M{
		"parentComment": bson.M{"$in": parentIDs},
		"isDeleted":     false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	replies := []*models.Comment{}
	if err := cursor.All(ctx, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("update", database.CommentsCollection)()

	comment.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"content":   comment.Content,
		"isEdited":  comment.IsEdited,
		"editedAt":  comment.EditedAt,
		"updatedAt": comment.UpdatedAt,
	}}

	if _, err := r.comments.UpdateByID(ctx, comment.ID, update); err != nil {
		r.logger.LogError(ctx, err, "update")
		return err
	}
	r.logger.LogUpdate(ctx, map[string]any{"comment_id": comment.ID.Hex()})
	return nil
}

// SoftDelete marks the comment deleted without removing the document, so
// existing replies keep a resolvable parent.
func (r *commentRepository) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	defer observability.TrackQuery("soft_delete", database.CommentsCollection)()

	update := bson.M{"$set": bson.M{
		"isDeleted": true,
		"updatedAt": time.Now().UTC(),
	}}
	if _, err := r.comments.UpdateByID(ctx, id, update); err != nil {
		r.logger.LogError(ctx, err, "soft_delete")
		return err
	}
	r.logger.LogDelete(ctx, map[string]any{"comment_id": id.Hex()})
	return nil
}

// DeleteByBlog hard-deletes all comments of a blog. Only used when the
// blog itself is removed.
func (r *commentRepository) DeleteByBlog(ctx context.Context, blogID bson.ObjectID) error {
	defer observability.TrackQuery("delete_by_blog", database.CommentsCollection)()

	if _, err := r.comments.DeleteMany(ctx, bson.M{"blog": blogID}); err != nil {
		r.logger.LogError(ctx, err, "delete_by_blog")
		return err
	}
	return nil
}

// Like adds the user to the comment's like set; $addToSet keeps the set
// duplicate-free under concurrent toggles.
func (r *commentRepository) Like(ctx context.Context, commentID, userID bson.ObjectID) error {
	defer observability.TrackQuery("like", database.CommentsCollection)()

	_, err := r.comments.UpdateByID(ctx, commentID, bson.M{"$addToSet": bson.M{"likes": userID}})
	return err
}

func (r *commentRepository) Unlike(ctx context.Context, commentID, userID bson.ObjectID) error {
	defer observability.TrackQuery("unlike", database.CommentsCollection)()

	_, err := r.comments.UpdateByID(ctx, commentID, bson.M{"$pull": bson.M{"likes": userID}})
	return err
}
