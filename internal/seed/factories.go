// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// Factory builds domain entities without persisting them. The Seeder
// batches the results into the collections.
type Factory struct {
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory.
func NewFactory(opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// seededPasswordHash is the bcrypt hash shared by all seeded accounts so
// the seeder does not spend seconds per user on hashing.
var seededPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!abc"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// BuildUser constructs a user with a realistic profile.
func (f *Factory) BuildUser(i int) *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), i)

	user := &models.User{
		ID:        bson.NewObjectID(),
		Username:  username,
		Email:     fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password:  seededPasswordHash,
		FirstName: first,
		LastName:  last,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/300?u=%s", username),
		Bio:       gofakeit.Sentence(12),
		Followers: []bson.ObjectID{},
		Following: []bson.ObjectID{},
		Role:      models.RoleUser,
		CreatedAt: f.pastTime(),
	}
	user.UpdatedAt = user.CreatedAt

	if f.rng.Intn(2) == 0 {
		user.SocialLinks = models.SocialLinks{
			Website: gofakeit.URL(),
			Twitter: "https://twitter.com/" + username,
			Github:  "https://github.com/" + username,
		}
	}
	return user
}

// BuildBlog constructs a blog authored by the given user. Most seeded
// blogs are published and public so listings have content to show.
func (f *Factory) BuildBlog(author *models.User) *models.Blog {
	paragraphs := make([]string, 2+f.rng.Intn(5))
	for i := range paragraphs {
		paragraphs[i] = gofakeit.Paragraph(1, 4, 10, " ")
	}
	content := strings.Join(paragraphs, "\n\n")

	status := models.BlogStatusPublished
	switch f.rng.Intn(10) {
	case 0:
		status = models.BlogStatusDraft
	case 1:
		status = models.BlogStatusArchived
	}

	blog := &models.Blog{
		ID:        bson.NewObjectID(),
		Title:     strings.TrimSuffix(gofakeit.Sentence(6), "."),
		Content:   content,
		Excerpt:   models.DeriveExcerpt(content),
		ReadTime:  models.DeriveReadTime(content),
		Author:    author.ID,
		Tags:      f.tags(),
		Category:  models.BlogCategories[f.rng.Intn(len(models.BlogCategories))],
		Status:    status,
		IsPublic:  f.rng.Intn(10) != 0,
		Likes:     []bson.ObjectID{},
		Views:     int64(f.rng.Intn(5000)),
		Comments:  []bson.ObjectID{},
		CreatedAt: f.pastTimeAfter(author.CreatedAt),
	}
	blog.UpdatedAt = blog.CreatedAt
	blog.SEO = models.SEO{
		MetaTitle:       blog.Title,
		MetaDescription: blog.Excerpt,
		Keywords:        blog.Tags,
	}
	return blog
}

// BuildComment constructs a comment, optionally as a reply.
func (f *Factory) BuildComment(author *models.User, blog *models.Blog, parent *models.Comment) *models.Comment {
	comment := &models.Comment{
		ID:        bson.NewObjectID(),
		Content:   gofakeit.Sentence(4 + f.rng.Intn(20)),
		Author:    author.ID,
		Blog:      blog.ID,
		Likes:     []bson.ObjectID{},
		CreatedAt: f.pastTimeAfter(blog.CreatedAt),
	}
	comment.UpdatedAt = comment.CreatedAt
	if parent != nil {
		id := parent.ID
		comment.ParentComment = &id
		if comment.CreatedAt.Before(parent.CreatedAt) {
			comment.CreatedAt = parent.CreatedAt.Add(time.Duration(1+f.rng.Intn(120)) * time.Minute)
			comment.UpdatedAt = comment.CreatedAt
		}
	}
	return comment
}

func (f *Factory) tags() []string {
	pool := []string{
		"golang", "webdev", "tutorial", "opinion", "productivity", "career",
		"cloud", "databases", "testing", "design", "remote-work", "devops",
		"security", "open-source", "performance",
	}
	n := 1 + f.rng.Intn(4)
	f.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n]
}

// pastTime returns a timestamp spread over the configured window.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back)
}

func (f *Factory) pastTimeAfter(after time.Time) time.Time {
	t := f.pastTime()
	if t.Before(after) {
		return after.Add(time.Duration(1+f.rng.Intn(72)) * time.Hour)
	}
	return t
}
