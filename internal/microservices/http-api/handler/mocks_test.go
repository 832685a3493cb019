package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			panic(err)
		}
	}
}

var (
	adminActor = service.Actor{UserID: "u-admin", Username: "root", Role: models.RoleAdmin}
	aliceActor = service.Actor{UserID: "u-alice", Username: "alice", Role: models.RoleUser}
)

// stubValidator accepts the tokens "admin" and "alice"
type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*service.Claims, error) {
	var a service.Actor
	switch token {
	case "admin":
		a = adminActor
	case "alice":
		a = aliceActor
	default:
		return nil, service.ErrUnauthorized
	}
	return &service.Claims{UserID: a.UserID, Username: a.Username, Role: a.Role}, nil
}

type registrar interface {
	RegisterRoutes(public, authed *gin.RouterGroup)
}

func setupRouter(h registrar) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	api := router.Group("/api/v1")
	authed := router.Group("/api/v1", middleware.AuthMiddleware(stubValidator{}))
	h.RegisterRoutes(api, authed)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type MockSignupService struct {
	mock.Mock
}

func (m *MockSignupService) RequestCode(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	args := m.Called(username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, actor service.Actor) (*models.User, error) {
	return m.user(m.Called(actor))
}

func (m *MockUserService) UpdateMe(ctx context.Context, actor service.Actor, req dto.UpdateMeRequest) (*models.User, error) {
	return m.user(m.Called(actor, req))
}

func (m *MockUserService) List(ctx context.Context, actor service.Actor, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(actor, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Create(ctx context.Context, actor service.Actor, req dto.CreateUserRequest) (*models.User, error) {
	return m.user(m.Called(actor, req))
}

func (m *MockUserService) Get(ctx context.Context, actor service.Actor, username string) (*models.User, error) {
	return m.user(m.Called(actor, username))
}

func (m *MockUserService) Update(ctx context.Context, actor service.Actor, username string, req dto.UpdateUserRequest) (*models.User, error) {
	return m.user(m.Called(actor, username, req))
}

func (m *MockUserService) Delete(ctx context.Context, actor service.Actor, username string) error {
	return m.Called(actor, username).Error(0)
}

type MockTaxonomyService struct {
	mock.Mock
}

func (m *MockTaxonomyService) List(ctx context.Context, search string, page, pageSize int) ([]models.Taxon, int64, error) {
	args := m.Called(search, page, pageSize)
	return args.Get(0).([]models.Taxon), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaxonomyService) Create(ctx context.Context, actor service.Actor, name, slug string) (*models.Taxon, error) {
	args := m.Called(actor, name, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Taxon), args.Error(1)
}

func (m *MockTaxonomyService) Delete(ctx context.Context, actor service.Actor, slug string) error {
	return m.Called(actor, slug).Error(0)
}

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) title(args mock.Arguments) (*models.Title, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(filter, page, pageSize)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	return m.title(m.Called(id))
}

func (m *MockTitleService) Create(ctx context.Context, actor service.Actor, req dto.CreateTitleRequest) (*models.Title, error) {
	return m.title(m.Called(actor, req))
}

func (m *MockTitleService) Update(ctx context.Context, actor service.Actor, id int64, req dto.UpdateTitleRequest) (*models.Title, error) {
	return m.title(m.Called(actor, id, req))
}

func (m *MockTitleService) Delete(ctx context.Context, actor service.Actor, id int64) error {
	return m.Called(actor, id).Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) review(args mock.Arguments) (*models.Review, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(titleID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, id int64) (*models.Review, error) {
	return m.review(m.Called(titleID, id))
}

func (m *MockReviewService) Submit(ctx context.Context, actor service.Actor, titleID int64, req dto.CreateReviewRequest) (*models.Review, error) {
	return m.review(m.Called(actor, titleID, req))
}

func (m *MockReviewService) Update(ctx context.Context, actor service.Actor, titleID, id int64, req dto.UpdateReviewRequest) (*models.Review, error) {
	return m.review(m.Called(actor, titleID, id, req))
}

func (m *MockReviewService) Delete(ctx context.Context, actor service.Actor, titleID, id int64) error {
	return m.Called(actor, titleID, id).Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) comment(args mock.Arguments) (*models.Comment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	args := m.Called(titleID, reviewID, page, pageSize)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	return m.comment(m.Called(titleID, reviewID, id))
}

func (m *MockCommentService) Create(ctx context.Context, actor service.Actor, titleID, reviewID int64, text string) (*models.Comment, error) {
	return m.comment(m.Called(actor, titleID, reviewID, text))
}

func (m *MockCommentService) Update(ctx context.Context, actor service.Actor, titleID, reviewID, id int64, text string) (*models.Comment, error) {
	return m.comment(m.Called(actor, titleID, reviewID, id, text))
}

func (m *MockCommentService) Delete(ctx context.Context, actor service.Actor, titleID, reviewID, id int64) error {
	return m.Called(actor, titleID, reviewID, id).Error(0)
}
