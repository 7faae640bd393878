// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CategoryCount is one row of the category listing.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// ListBlogsOptions narrows the public blog listing.
type ListBlogsOptions struct {
	Category string
	Tag      string
	Limit    int
	Offset   int
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error)
	IncrementViews(ctx context.Context, id bson.ObjectID) error
	List(ctx context.Context, opts ListBlogsOptions) ([]*models.Blog, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Blog, int64, error)
	ListByAuthor(ctx context.Context, authorID bson.ObjectID, includeHidden bool, limit, offset int) ([]*models.Blog, int64, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Like(ctx context.Context, blogID, userID bson.ObjectID) error
	Unlike(ctx context.Context, blogID, userID bson.ObjectID) error
	AddComment(ctx context.Context, blogID, commentID bson.ObjectID) error
	RemoveComment(ctx context.Context, blogID, commentID bson.ObjectID) error
	Categories(ctx context.Context) ([]CategoryCount, error)
	Tags(ctx context.Context) ([]string, error)
	AuthorStats(ctx context.Context, authorID bson.ObjectID) (*models.UserStats, error)
}

// blogRepository implements BlogRepository against the blogs collection.
type blogRepository struct {
	blogs  *mongo.Collection
	logger *observability.RepoLogger
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *database.DB) BlogRepository {
	return &blogRepository{
		blogs:  db.Blogs(),
		logger: observability.NewRepoLogger(database.BlogsCollection),
	}
}

// publicFilter matches blogs visible to non-owners.
func publicFilter() bson.M {
	return bson.M{"status": models.BlogStatusPublished, "isPublic": true}
}

// textScoreSort orders $text matches by relevance. Sorting on the textScore
// metadata needs no projection on MongoDB 4.4+.
var textScoreSort = bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	defer observability.TrackQuery("create", database.BlogsCollection)()

	now := time.Now().UTC()
	blog.ID = bson.NewObjectID()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	if blog.Likes == nil {
		blog.Likes = []bson.ObjectID{}
	}
	if blog.Comments == nil {
		blog.Comments = []bson.ObjectID{}
	}

	if _, err := r.blogs.InsertOne(ctx, blog); err != nil {
		r.logger.LogError(ctx, err, "create")
		return err
	}
	cache.InvalidateTaxonomy(ctx)
	r.logger.LogCreate(ctx, map[string]any{"blog_id": blog.ID.Hex(), "author": blog.Author.Hex()})
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error) {
	defer observability.TrackQuery("get_by_id", database.BlogsCollection)()

	var blog models.Blog
	err := cache.Aside(ctx, cache.BlogKey(id.Hex()), &blog, cache.BlogTTL, func() error {
		return r.blogs.FindOne(ctx, bson.M{"_id": id}).Decode(&blog)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, id bson.ObjectID) error {
	defer observability.TrackQuery("inc_views", database.BlogsCollection)()

	_, err := r.blogs.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err == nil {
		observability.BlogViews.Inc()
		cache.InvalidateBlog(ctx, id.Hex())
	}
	return err
}

func (r *blogRepository) find(ctx context.Context, filter bson.M, limit, offset int, sort bson.D) ([]*models.Blog, int64, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "find", database.BlogsCollection)
	defer span.End()

	total, err := r.blogs.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sort).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.blogs.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	blogs := []*models.Blog{}
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

func (r *blogRepository) List(ctx context.Context, opts ListBlogsOptions) ([]*models.Blog, int64, error) {
	defer observability.TrackQuery("list", database.BlogsCollection)()

	filter := publicFilter()
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.Tag != "" {
		filter["tags"] = opts.Tag
	}
	return r.find(ctx, filter, opts.Limit, opts.Offset, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *blogRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Blog, int64, error) {
	defer observability.TrackQuery("search", database.BlogsCollection)()

	filter := publicFilter()
	filter["$text"] = bson.M{"$search": query}
	return r.find(ctx, filter, limit, offset, textScoreSort)
}

func (r *blogRepository) ListByAuthor(ctx context.Context, authorID bson.ObjectID, includeHidden bool, limit, offset int) ([]*models.Blog, int64, error) {
	defer observability.TrackQuery("list_by_author", database.BlogsCollection)()

	filter := bson.M{"author": authorID}
	if !includeHidden {
		filter["status"] = models.BlogStatusPublished
		filter["isPublic"] = true
	}
	return r.find(ctx, filter, limit, offset, bson.D{{Key: "createdAt", Value: -1}})
}

// Update persists the mutable fields of the blog. Author is immutable and
// deliberately excluded from the update document.
func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	defer observability.TrackQuery("update", database.BlogsCollection)()

	blog.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":     blog.Title,
		"content":   blog.Content,
		"excerpt":   blog.Excerpt,
		"readTime":  blog.ReadTime,
		"tags":      blog.Tags,
		"category":  blog.Category,
		"status":    blog.Status,
		"isPublic":  blog.IsPublic,
		"seo":       blog.SEO,
		"updatedAt": blog.UpdatedAt,
	}}

	if _, err := r.blogs.UpdateByID(ctx, blog.ID, update); err != nil {
		r.logger.LogError(ctx, err, "update")
		return err
	}
	cache.InvalidateBlog(ctx, blog.ID.Hex())
	cache.InvalidateTaxonomy(ctx)
	r.logger.LogUpdate(ctx, map[string]any{"blog_id": blog.ID.Hex()})
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	defer observability.TrackQuery("delete", database.BlogsCollection)()

	if _, err := r.blogs.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		r.logger.LogError(ctx, err, "delete")
		return err
	}
	cache.InvalidateBlog(ctx, id.Hex())
	cache.InvalidateTaxonomy(ctx)
	r.logger.LogDelete(ctx, map[string]any{"blog_id": id.Hex()})
	return nil
}

// Like adds the user to the blog's like set. $addToSet guarantees the
// reference appears at most once regardless of concurrent toggles.
func (r *blogRepository) Like(ctx context.Context, blogID, userID bson.ObjectID) error {
	defer observability.TrackQuery("like", database.BlogsCollection)()

	_, err := r.blogs.UpdateByID(ctx, blogID, bson.M{"$addToSet": bson.M{"likes": userID}})
	if err == nil {
		cache.InvalidateBlog(ctx, blogID.Hex())
	}
	return err
}

func (r *blogRepository) Unlike(ctx context.Context, blogID, userID bson.ObjectID) error {
	defer observability.TrackQuery("unlike", database.BlogsCollection)()

	_, err := r.blogs.UpdateByID(ctx, blogID, bson.M{"$pull": bson.M{"likes": userID}})
	if err == nil {
		cache.InvalidateBlog(ctx, blogID.Hex())
	}
	return err
}

func (r *blogRepository) AddComment(ctx context.Context, blogID, commentID bson.ObjectID) error {
	defer observability.TrackQuery("add_comment", database.BlogsCollection)()

	_, err := r.blogs.UpdateByID(ctx, blogID, bson.M{"$addToSet": bson.M{"comments": commentID}})
	if err == nil {
		cache.InvalidateBlog(ctx, blogID.Hex())
	}
	return err
}

func (r *blogRepository) RemoveComment(ctx context.Context, blogID, commentID bson.ObjectID) error {
	defer observability.TrackQuery("remove_comment", database.BlogsCollection)()

	_, err := r.blogs.UpdateByID(ctx, blogID, bson.M{"$pull": bson.M{"comments": commentID}})
	if err == nil {
		cache.InvalidateBlog(ctx, blogID.Hex())
	}
	return err
}

func (r *blogRepository) Categories(ctx context.Context) ([]CategoryCount, error) {
	defer observability.TrackQuery("categories", database.BlogsCollection)()

	var counts []CategoryCount
	err := cache.Aside(ctx, cache.CategoriesKey, &counts, cache.CategoriesTTL, func() error {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: publicFilter()}},
			{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
			{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		}
		cursor, err := r.blogs.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &counts)
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *blogRepository) Tags(ctx context.Context) ([]string, error) {
	defer observability.TrackQuery("tags", database.BlogsCollection)()

	var tags []string
	err := cache.Aside(ctx, cache.TagsKey, &tags, cache.TagsTTL, func() error {
		res := r.blogs.Distinct(ctx, "tags", publicFilter())
		if res.Err() != nil {
			return res.Err()
		}
		return res.Decode(&tags)
	})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// AuthorStats sums blog counters for a user's stats endpoint. Follower
// counts are filled in by the service from the user document.
func (r *blogRepository) AuthorStats(ctx context.Context, authorID bson.ObjectID) (*models.UserStats, error) {
	defer observability.TrackQuery("author_stats", database.BlogsCollection)()
	ctx, span := observability.TraceRepositoryMethod(ctx, "author_stats", database.BlogsCollection)
	defer span.End()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"author": authorID}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalBlogs": bson.M{"$sum": 1},
			"totalViews": bson.M{"$sum": "$views"},
			"totalLikes": bson.M{"$sum": bson.M{"$size": "$likes"}},
		}}},
	}
	cursor, err := r.blogs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalBlogs int64 `bson:"totalBlogs"`
		TotalViews int64 `bson:"totalViews"`
		TotalLikes int64 `bson:"totalLikes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &models.UserStats{}
	if len(rows) > 0 {
		stats.TotalBlogs = rows[0].TotalBlogs
		stats.TotalViews = rows[0].TotalViews
		stats.TotalLikes = rows[0].TotalLikes
	}
	return stats, nil
}
