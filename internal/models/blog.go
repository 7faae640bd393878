// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BlogStatus gates public visibility together with IsPublic.
type BlogStatus string

const (
	// BlogStatusDraft is the initial state; visible to the author only.
	BlogStatusDraft BlogStatus = "draft"
	// BlogStatusPublished makes a blog publicly listable when IsPublic is set.
	BlogStatusPublished BlogStatus = "published"
	// BlogStatusArchived hides a blog from public listings without deleting it.
	BlogStatusArchived BlogStatus = "archived"
)

// BlogCategories is the closed set of accepted blog categories.
var BlogCategories = []string{
	"technology",
	"lifestyle",
	"travel",
	"food",
	"health",
	"business",
	"education",
	"entertainment",
	"other",
}

// ValidCategory reports whether c is one of BlogCategories.
func ValidCategory(c string) bool {
	for _, v := range BlogCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known blog status.
func ValidStatus(s BlogStatus) bool {
	switch s {
	case BlogStatusDraft, BlogStatusPublished, BlogStatusArchived:
		return true
	}
	return false
}

// SEO holds embedded metadata fields carried alongside a blog document.
type SEO struct {
	MetaTitle       string   `bson:"metaTitle,omitempty" json:"metaTitle,omitempty"`
	MetaDescription string   `bson:"metaDescription,omitempty" json:"metaDescription,omitempty"`
	Keywords        []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
}

// Blog represents a post document in the blogs collection.
// Author is immutable after creation. Likes is a reference set (membership
// means the user liked the blog); Views is a counter incremented on each
// detail fetch. Excerpt and ReadTime are derived from Content and recomputed
// whenever the content changes.
type Blog struct {
	ID       bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title    string          `bson:"title" json:"title"`
	Content  string          `bson:"content" json:"content"`
	Excerpt  string          `bson:"excerpt" json:"excerpt"`
	ReadTime int             `bson:"readTime" json:"readTime"`
	Author   bson.ObjectID   `bson:"author" json:"author"`
	Tags     []string        `bson:"tags" json:"tags"`
	Category string          `bson:"category" json:"category"`
	Status   BlogStatus      `bson:"status" json:"status"`
	IsPublic bool            `bson:"isPublic" json:"isPublic"`
	Likes    []bson.ObjectID `bson:"likes" json:"likes"`
	Views    int64           `bson:"views" json:"views"`
	SEO      SEO             `bson:"seo,omitempty" json:"seo"`
	Comments []bson.ObjectID `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Computed per response; not persisted.
	LikeCount    int   `bson:"-" json:"likeCount"`
	CommentCount int   `bson:"-" json:"commentCount"`
	Liked        bool  `bson:"-" json:"liked"`
	AuthorUser   *User `bson:"-" json:"authorUser,omitempty"`
}

// VisibleTo reports whether the blog may be read by the given viewer.
// Non-owners only see published public blogs; the author and admins see all.
func (b *Blog) VisibleTo(viewerID bson.ObjectID, admin bool) bool {
	if admin || b.Author == viewerID {
		return true
	}
	return b.Status == BlogStatusPublished && b.IsPublic
}

// LikedBy reports whether the given user is in the blog's like set.
func (b *Blog) LikedBy(userID bson.ObjectID) bool {
	for _, l := range b.Likes {
		if l == userID {
			return true
		}
	}
	return false
}

// Finalize fills the computed response fields for the given viewer.
func (b *Blog) Finalize(viewerID bson.ObjectID) {
	b.LikeCount = len(b.Likes)
	b.CommentCount = len(b.Comments)
	if !viewerID.IsZero() {
		b.Liked = b.LikedBy(viewerID)
	}
}

const (
	excerptLength    = 150
	wordsPerMinute   = 200
	excerptEllipsis  = "..."
	minimumReadTime  = 1
	excerptSeparator = " "
)

// DeriveExcerpt returns the leading portion of content used for list views.
// It collapses whitespace and truncates at a rune boundary.
func DeriveExcerpt(content string) string {
	plain := strings.Join(strings.Fields(content), excerptSeparator)
	if utf8.RuneCountInString(plain) <= excerptLength {
		return plain
	}
	runes := []rune(plain)
	return string(runes[:excerptLength]) + excerptEllipsis
}

// DeriveReadTime estimates reading time in whole minutes at 200 wpm.
func DeriveReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < minimumReadTime {
		return minimumReadTime
	}
	return minutes
}
