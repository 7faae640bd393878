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

// ErrDuplicate is returned when a unique index rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetManyByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
	UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.User, error)
	SetRole(ctx context.Context, id bson.ObjectID, role models.Role) (*models.User, error)
	Follow(ctx context.Context, followerID, targetID bson.ObjectID) error
	Unfollow(ctx context.Context, followerID, targetID bson.ObjectID) error
}

// userRepository implements UserRepository against the users collection.
type userRepository struct {
	db     *database.DB
	users  *mongo.Collection
	logger *observability.RepoLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{
		db:     db,
		users:  db.Users(),
		logger: observability.NewRepoLogger(database.UsersCollection),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", database.UsersCollection)()

	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Followers == nil {
		user.Followers = []bson.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []bson.ObjectID{}
	}

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		r.logger.LogError(ctx, err, "create")
		return err
	}
	r.logger.LogCreate(ctx, map[string]any{"user_id": user.ID.Hex()})
	return nil
}

// GetByID reads through the user cache. The cached copy never carries the
// password hash (it is excluded from JSON); credential checks go through
// GetByEmail, which always hits the collection.
func (r *userRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	defer observability.TrackQuery("get_by_id", database.UsersCollection)()
	ctx, span := observability.TraceRepositoryMethod(ctx, "get_by_id", database.UsersCollection)
	defer span.End()

	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id.Hex()), &user, cache.UserTTL, func() error {
		return r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observability.TrackQuery("get_by_email", database.UsersCollection)()

	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("get_by_username", database.UsersCollection)()

	var user models.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetManyByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	defer observability.TrackQuery("get_many", database.UsersCollection)()

	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	defer observability.TrackQuery("list", database.UsersCollection)()
	ctx, span := observability.TraceRepositoryMethod(ctx, "list", database.UsersCollection)
	defer span.End()

	total, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.User, error) {
	defer observability.TrackQuery("update", database.UsersCollection)()

	fields["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		r.logger.LogError(ctx, err, "update")
		return nil, err
	}

	cache.InvalidateUser(ctx, id.Hex())
	r.logger.LogUpdate(ctx, map[string]any{"user_id": id.Hex()})
	return &user, nil
}

func (r *userRepository) SetRole(ctx context.Context, id bson.ObjectID, role models.Role) (*models.User, error) {
	return r.UpdateFields(ctx, id, bson.M{"role": role})
}

// Follow adds followerID to target.followers and targetID to
// follower.following. Both updates run inside a transaction when the
// deployment supports sessions; otherwise they fall back to sequential
// $addToSet updates, which are idempotent and safe to retry.
func (r *userRepository) Follow(ctx context.Context, followerID, targetID bson.ObjectID) error {
	return r.setFollow(ctx, followerID, targetID, "$addToSet")
}

// Unfollow is the inverse of Follow with the same atomicity strategy.
func (r *userRepository) Unfollow(ctx context.Context, followerID, targetID bson.ObjectID) error {
	return r.setFollow(ctx, followerID, targetID, "$pull")
}

func (r *userRepository) setFollow(ctx context.Context, followerID, targetID bson.ObjectID, op string) error {
	defer observability.TrackQuery("follow", database.UsersCollection)()

	now := time.Now().UTC()
	followerUpdate := bson.M{op: bson.M{"following": targetID}, "$set": bson.M{"updatedAt": now}}
	targetUpdate := bson.M{op: bson.M{"followers": followerID}, "$set": bson.M{"updatedAt": now}}

	apply := func(c context.Context) error {
		if _, err := r.users.UpdateByID(c, followerID, followerUpdate); err != nil {
			return err
		}
		_, err := r.users.UpdateByID(c, targetID, targetUpdate)
		return err
	}

	if sess, err := r.db.Client.StartSession(); err == nil {
		defer sess.EndSession(ctx)
		_, txErr := sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
			return nil, apply(sc)
		})
		if txErr == nil {
			r.invalidateFollowPair(ctx, followerID, targetID)
			return nil
		}
		// Standalone deployments reject transactions; the sequential path
		// below stays correct because both updates are idempotent.
	}

	if err := apply(ctx); err != nil {
		r.logger.LogError(ctx, err, "follow")
		return err
	}
	r.invalidateFollowPair(ctx, followerID, targetID)
	return nil
}

func (r *userRepository) invalidateFollowPair(ctx context.Context, a, b bson.ObjectID) {
	cache.InvalidateUser(ctx, a.Hex())
	cache.InvalidateUser(ctx, b.Hex())
}
