// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Comment represents a comment document in the comments collection.
// ParentComment, when set, makes the comment a reply; replies nest one
// level only and must reference a comment on the same blog. Deletion is
// soft: IsDeleted hides the comment from listings without removing it.
type Comment struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content       string          `bson:"content" json:"content"`
	Author        bson.ObjectID   `bson:"author" json:"author"`
	Blog          bson.ObjectID   `bson:"blog" json:"blog"`
	ParentComment *bson.ObjectID  `bson:"parentComment,omitempty" json:"parentComment,omitempty"`
	Likes         []bson.ObjectID `bson:"likes" json:"likes"`
	IsDeleted     bool            `bson:"isDeleted" json:"isDeleted"`
	IsEdited      bool            `bson:"isEdited" json:"isEdited"`
	EditedAt      *time.Time      `bson:"editedAt,omitempty" json:"editedAt,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`

	// Computed per response; not persisted.
	Replies    []*Comment `bson:"-" json:"replies,omitempty"`
	LikeCount  int        `bson:"-" json:"likeCount"`
	Liked      bool       `bson:"-" json:"liked"`
	AuthorUser *User      `bson:"-" json:"authorUser,omitempty"`
}

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentComment != nil
}

// LikedBy reports whether the given user is in the comment's like set.
func (c *Comment) LikedBy(userID bson.ObjectID) bool {
	for _, l := range c.Likes {
		if l == userID {
			return true
		}
	}
	return false
}

// Finalize fills the computed response fields for the given viewer,
// recursing into attached replies.
func (c *Comment) Finalize(viewerID bson.ObjectID) {
	c.LikeCount = len(c.Likes)
	if !viewerID.IsZero() {
		c.Liked = c.LikedBy(viewerID)
	}
	for _, r := range c.Replies {
		r.Finalize(viewerID)
	}
}
