// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumBlogs    int
	MaxDays     int
	ShouldClean bool
}

// Seeder populates the collections with generated data.
type Seeder struct {
	db      *database.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *database.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(opts),
		opts:    opts,
	}
}

// ClearAll removes all seedable documents.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, coll := range []string{
		database.CommentsCollection,
		database.BlogsCollection,
		database.UsersCollection,
	} {
		if _, err := s.db.Database.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("clear %s: %w", coll, err)
		}
	}
	return nil
}

// Seed populates the database with test data
func (s *Seeder) Seed(ctx context.Context) error {
	log.Printf("Seeding %d users and %d blogs...", s.opts.NumUsers, s.opts.NumBlogs)

	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return err
		}
	}

	users, err := s.createUsers(ctx)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	blogs, err := s.createBlogs(ctx, users)
	if err != nil {
		return fmt.Errorf("create blogs: %w", err)
	}
	log.Printf("created %d blogs", len(blogs))

	comments, err := s.createComments(ctx, users, blogs)
	if err != nil {
		return fmt.Errorf("create comments: %w", err)
	}
	log.Printf("created %d comments", comments)

	if err := s.createFollowMesh(ctx, users); err != nil {
		return fmt.Errorf("create follow mesh: %w", err)
	}
	if err := s.createLikes(ctx, users, blogs); err != nil {
		return fmt.Errorf("create likes: %w", err)
	}

	log.Println("seeding complete")
	return nil
}

func (s *Seeder) createUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.NumUsers+1)

	// A known admin account for local development.
	admin := s.factory.BuildUser(0)
	admin.Username = "admin"
	admin.Email = "admin@inkwell.dev"
	admin.Role = models.RoleAdmin
	users = append(users, admin)

	for i := 1; i <= s.opts.NumUsers; i++ {
		users = append(users, s.factory.BuildUser(i))
	}

	docs := make([]any, len(users))
	for i, u := range users {
		docs[i] = u
	}
	if _, err := s.db.Users().InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) createBlogs(ctx context.Context, users []*models.User) ([]*models.Blog, error) {
	blogs := make([]*models.Blog, 0, s.opts.NumBlogs)
	docs := make([]any, 0, s.opts.NumBlogs)
	for i := 0; i < s.opts.NumBlogs; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		blog := s.factory.BuildBlog(author)
		blogs = append(blogs, blog)
		docs = append(docs, blog)
	}
	if len(docs) == 0 {
		return blogs, nil
	}
	if _, err := s.db.Blogs().InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// createComments adds a handful of comments per blog, with occasional
// replies, and keeps each blog's comment reference list in step.
func (s *Seeder) createComments(ctx context.Context, users []*models.User, blogs []*models.Blog) (int, error) {
	total := 0
	for _, blog := range blogs {
		if blog.Status != models.BlogStatusPublished {
			continue
		}

		n := s.factory.rng.Intn(6)
		if n == 0 {
			continue
		}

		docs := make([]any, 0, n*2)
		ids := make([]bson.ObjectID, 0, n*2)
		for i := 0; i < n; i++ {
			author := users[s.factory.rng.Intn(len(users))]
			comment := s.factory.BuildComment(author, blog, nil)
			docs = append(docs, comment)
			ids = append(ids, comment.ID)

			// roughly one reply per three comments
			if s.factory.rng.Intn(3) == 0 {
				replier := users[s.factory.rng.Intn(len(users))]
				reply := s.factory.BuildComment(replier, blog, comment)
				docs = append(docs, reply)
				ids = append(ids, reply.ID)
			}
		}

		if _, err := s.db.Comments().InsertMany(ctx, docs); err != nil {
			return total, err
		}
		update := bson.M{"$addToSet": bson.M{"comments": bson.M{"$each": ids}}}
		if _, err := s.db.Blogs().UpdateByID(ctx, blog.ID, update); err != nil {
			return total, err
		}
		total += len(docs)
	}
	return total, nil
}

// createFollowMesh links every user to a few random others, maintaining
// both sides of the relationship.
func (s *Seeder) createFollowMesh(ctx context.Context, users []*models.User) error {
	for _, u := range users {
		n := s.factory.rng.Intn(8)
		for i := 0; i < n; i++ {
			target := users[s.factory.rng.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			if _, err := s.db.Users().UpdateByID(ctx, u.ID,
				bson.M{"$addToSet": bson.M{"following": target.ID}}); err != nil {
				return err
			}
			if _, err := s.db.Users().UpdateByID(ctx, target.ID,
				bson.M{"$addToSet": bson.M{"followers": u.ID}}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) createLikes(ctx context.Context, users []*models.User, blogs []*models.Blog) error {
	for _, blog := range blogs {
		if blog.Status != models.BlogStatusPublished {
			continue
		}
		n := s.factory.rng.Intn(len(users))
		for i := 0; i < n; i++ {
			liker := users[s.factory.rng.Intn(len(users))]
			if _, err := s.db.Blogs().UpdateByID(ctx, blog.ID,
				bson.M{"$addToSet": bson.M{"likes": liker.ID}}); err != nil {
				return err
			}
		}
	}
	return nil
}
