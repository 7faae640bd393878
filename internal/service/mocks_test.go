package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetManyByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id bson.ObjectID, role models.Role) (*models.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Follow(ctx context.Context, followerID, targetID bson.ObjectID) error {
	args := m.Called(ctx, followerID, targetID)
	return args.Error(0)
}

func (m *MockUserRepository) Unfollow(ctx context.Context, followerID, targetID bson.ObjectID) error {
	args := m.Called(ctx, followerID, targetID)
	return args.Error(0)
}

// MockBlogRepository is a mock of the BlogRepository interface
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	args := m.Called(ctx, blog)
	return args.Error(0)
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Blog), args.Error(1)
}

func (m *MockBlogRepository) IncrementViews(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlogRepository) List(ctx context.Context, opts repository.ListBlogsOptions) ([]*models.Blog, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]*models.Blog), args.Get(1).(int64), args.Error(2)
}

func (m *MockBlogRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Blog, int64, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]*models.Blog), args.Get(1).(int64), args.Error(2)
}

func (m *MockBlogRepository) ListByAuthor(ctx context.Context, authorID bson.ObjectID, includeHidden bool, limit, offset int) ([]*models.Blog, int64, error) {
	args := m.Called(ctx, authorID, includeHidden, limit, offset)
	return args.Get(0).([]*models.Blog), args.Get(1).(int64), args.Error(2)
}

func (m *MockBlogRepository) Update(ctx context.Context, blog *models.Blog) error {
	args := m.Called(ctx, blog)
	return args.Error(0)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlogRepository) Like(ctx context.Context, blogID, userID bson.ObjectID) error {
	args := m.Called(ctx, blogID, userID)
	return args.Error(0)
}

func (m *MockBlogRepository) Unlike(ctx context.Context, blogID, userID bson.ObjectID) error {
	args := m.Called(ctx, blogID, userID)
	return args.Error(0)
}

func (m *MockBlogRepository) AddComment(ctx context.Context, blogID, commentID bson.ObjectID) error {
	args := m.Called(ctx, blogID, commentID)
	return args.Error(0)
}

func (m *MockBlogRepository) RemoveComment(ctx context.Context, blogID, commentID bson.ObjectID) error {
	args := m.Called(ctx, blogID, commentID)
	return args.Error(0)
}

func (m *MockBlogRepository) Categories(ctx context.Context) ([]repository.CategoryCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.CategoryCount), args.Error(1)
}

func (m *MockBlogRepository) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBlogRepository) AuthorStats(ctx context.Context, authorID bson.ObjectID) (*models.UserStats, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListTopLevelByBlog(ctx context.Context, blogID bson.ObjectID, limit, offset int) ([]*models.Comment, int64, error) {
	args := m.Called(ctx, blogID, limit, offset)
	return args.Get(0).([]*models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentIDs []bson.ObjectID) ([]*models.Comment, error) {
	args := m.Called(ctx, parentIDs)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) DeleteByBlog(ctx context.Context, blogID bson.ObjectID) error {
	args := m.Called(ctx, blogID)
	return args.Error(0)
}

func (m *MockCommentRepository) Like(ctx context.Context, commentID, userID bson.ObjectID) error {
	args := m.Called(ctx, commentID, userID)
	return args.Error(0)
}

func (m *MockCommentRepository) Unlike(ctx context.Context, commentID, userID bson.ObjectID) error {
	args := m.Called(ctx, commentID, userID)
	return args.Error(0)
}

// noAdmin is an isAdmin callback that always says no.
func noAdmin(context.Context, bson.ObjectID) (bool, error) { return false, nil }

// alwaysAdmin is an isAdmin callback that always says yes.
func alwaysAdmin(context.Context, bson.ObjectID) (bool, error) { return true, nil }
