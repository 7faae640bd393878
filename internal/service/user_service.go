package service

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserService implements profile, follow and admin use cases.
type UserService struct {
	userRepo repository.UserRepository
	blogRepo repository.BlogRepository
}

// UpdateProfileInput carries the accepted fields for a profile update.
// Nil pointers leave the corresponding field untouched.
type UpdateProfileInput struct {
	RequesterID bson.ObjectID
	TargetID    bson.ObjectID
	Username    *string
	FirstName   *string
	LastName    *string
	Avatar      *string
	Bio         *string
	SocialLinks *models.SocialLinks
}

func NewUserService(userRepo repository.UserRepository, blogRepo repository.BlogRepository) *UserService {
	return &UserService{userRepo: userRepo, blogRepo: blogRepo}
}

func (s *UserService) GetUser(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id.Hex())
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]*models.User, models.PageInfo, error) {
	users, total, err := s.userRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, models.PageInfo{}, err
	}
	return users, models.NewPageInfo(page, limit, total), nil
}

// UpdateProfile applies a whitelist of profile fields. Users edit their
// own profile; admins may edit anyone's. Email and role never change here.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.RequesterID != in.TargetID {
		requester, err := s.userRepo.GetByID(ctx, in.RequesterID)
		if err != nil {
			return nil, err
		}
		if requester == nil || !requester.IsAdmin() {
			return nil, models.NewUnauthorizedError("You can only update your own profile")
		}
	}

	fields := bson.M{}
	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["username"] = *in.Username
	}
	if in.FirstName != nil {
		fields["firstName"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["lastName"] = *in.LastName
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.SocialLinks != nil {
		fields["socialLinks"] = *in.SocialLinks
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No updatable fields provided")
	}

	user, err := s.userRepo.UpdateFields(ctx, in.TargetID, fields)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, models.NewConflictError("Username is already taken")
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", in.TargetID.Hex())
	}
	return user, nil
}

// ToggleFollow flips the follow relationship and reports the new state.
// Users cannot follow themselves.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, targetID bson.ObjectID) (bool, error) {
	if followerID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, models.NewNotFoundError("User", targetID.Hex())
	}

	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		return false, err
	}
	if follower == nil {
		return false, models.NewNotFoundError("User", followerID.Hex())
	}

	if follower.IsFollowing(targetID) {
		if err := s.userRepo.Unfollow(ctx, followerID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.userRepo.Follow(ctx, followerID, targetID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) Followers(ctx context.Context, id bson.ObjectID) ([]*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetManyByIDs(ctx, user.Followers)
}

func (s *UserService) Following(ctx context.Context, id bson.ObjectID) ([]*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetManyByIDs(ctx, user.Following)
}

// Stats combines blog aggregates with follower counters.
func (s *UserService) Stats(ctx context.Context, id bson.ObjectID) (*models.UserStats, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.blogRepo.AuthorStats(ctx, id)
	if err != nil {
		return nil, err
	}
	stats.FollowerCount = len(user.Followers)
	stats.FollowingCount = len(user.Following)
	return stats, nil
}

// SetAdmin grants or revokes the admin role.
func (s *UserService) SetAdmin(ctx context.Context, targetID bson.ObjectID, admin bool) (*models.User, error) {
	role := models.RoleUser
	if admin {
		role = models.RoleAdmin
	}
	user, err := s.userRepo.SetRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", targetID.Hex())
	}
	return user, nil
}

// IsAdmin reports whether the user holds the admin role. Services take
// this as a callback so authorization stays in one place.
func (s *UserService) IsAdmin(ctx context.Context, userID bson.ObjectID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}
