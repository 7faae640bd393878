// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role represents a user's authorization role.
type Role string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser Role = "user"
	// RoleAdmin grants moderation rights over all blogs and comments.
	RoleAdmin Role = "admin"
)

// SocialLinks holds optional profile links shown on a user's public page.
type SocialLinks struct {
	Website  string `bson:"website,omitempty" json:"website,omitempty"`
	Twitter  string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Github   string `bson:"github,omitempty" json:"github,omitempty"`
	Linkedin string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
}

// User represents an account document in the users collection.
// Followers and Following are reference sets maintained symmetrically:
// following A adds the caller to A.Followers.
type User struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username    string          `bson:"username" json:"username"`
	Email       string          `bson:"email" json:"email"`
	Password    string          `bson:"password" json:"-"`
	FirstName   string          `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string          `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Avatar      string          `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Bio         string          `bson:"bio,omitempty" json:"bio,omitempty"`
	SocialLinks SocialLinks     `bson:"socialLinks,omitempty" json:"socialLinks"`
	Followers   []bson.ObjectID `bson:"followers" json:"followers"`
	Following   []bson.ObjectID `bson:"following" json:"following"`
	Role        Role            `bson:"role" json:"role"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFollowing reports whether the user follows the given user ID.
func (u *User) IsFollowing(id bson.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

// UserStats aggregates public counters for a user's profile page.
type UserStats struct {
	TotalBlogs     int64 `json:"totalBlogs"`
	TotalViews     int64 `json:"totalViews"`
	TotalLikes     int64 `json:"totalLikes"`
	FollowerCount  int   `json:"followerCount"`
	FollowingCount int   `json:"followingCount"`
}
