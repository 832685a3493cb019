package service

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// fakeUserRepo is an in-memory UserRepository. Transactions are serialized
// and roll back to a snapshot when fn fails.
type fakeUserRepo struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.Role == "" {
			u.Role = models.RoleUser
		}
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *fakeUserRepo) byUsername(username string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return &u
		}
	}
	return nil
}

func (f *fakeUserRepo) Transaction(ctx context.Context, fn func(repo repository.UserRepository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := make(map[string]models.User, len(f.users))
	for k, v := range f.users {
		snapshot[k] = v
	}
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.users = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeUserRepo) taken(user *models.User) bool {
	for _, u := range f.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return true
		}
	}
	return false
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taken(user) {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	err := f.Create(ctx, user)
	if err == gorm.ErrDuplicatedKey {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) LockByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.FindByUsername(ctx, username)
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u := f.byUsername(username); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []models.User
	for _, u := range f.users {
		if search == "" || strings.Contains(strings.ToLower(u.Username), strings.ToLower(search)) {
			list = append(list, u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	total := int64(len(list))
	start := (page - 1) * pageSize
	if start > len(list) {
		start = len(list)
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], total, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		s := v.(string)
		switch k {
		case "username":
			u.Username = s
		case "email":
			u.Email = s
		case "role":
			u.Role = s
		case "bio":
			u.Bio = s
		case "first_name":
			u.FirstName = s
		case "last_name":
			u.LastName = s
		}
	}
	if f.taken(&u) {
		return gorm.ErrDuplicatedKey
	}
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) SetConfirmationHash(ctx context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ConfirmationHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) ConsumeConfirmationHash(ctx context.Context, id, expected string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.ConfirmationHash != expected {
		return false, nil
	}
	u.ConfirmationHash = ""
	f.users[id] = u
	return true, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

// MockSender mocks mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockTaxonomyRepository mocks repository.TaxonomyRepository
type MockTaxonomyRepository struct {
	mock.Mock
}

func (m *MockTaxonomyRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Taxon, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Taxon), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaxonomyRepository) Create(ctx context.Context, taxon *models.Taxon) error {
	args := m.Called(ctx, taxon)
	return args.Error(0)
}

func (m *MockTaxonomyRepository) FindBySlug(ctx context.Context, slug string) (*models.Taxon, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Taxon, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Taxon), args.Error(1)
}

func (m *MockTaxonomyRepository) DeleteBySlug(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockTitleRepository mocks repository.TitleRepository
type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, title *models.Title) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, id int64, fields map[string]any, genres []models.Genre) error {
	args := m.Called(ctx, id, fields, genres)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReviewRepository mocks repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, titleID, id int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository mocks repository.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	args := m.Called(ctx, reviewID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(ctx, reviewID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	admin     = Actor{UserID: "admin-id", Username: "root", Role: models.RoleAdmin}
	moderator = Actor{UserID: "mod-id", Username: "mod", Role: models.RoleModerator}
	alice     = Actor{UserID: "alice-id", Username: "alice", Role: models.RoleUser}
	bob       = Actor{UserID: "bob-id", Username: "bob", Role: models.RoleUser}
)
