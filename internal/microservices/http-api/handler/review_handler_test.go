package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewList(t *testing.T) {
	reviews := new(MockReviewService)
	router := setupRouter(NewReviewHandler(reviews))
	reviews.On("List", int64(3), 1, dto.DefaultPageSize).Return([]models.Review{
		{ID: 1, Text: "great", Score: 9, Author: models.User{Username: "alice"}, PubDate: time.Now()},
	}, int64(1), nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/titles/3/reviews", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "alice", data[0].(map[string]any)["author"])
}

func TestReviewCreate(t *testing.T) {
	req := dto.CreateReviewRequest{Text: "great", Score: 9}

	t.Run("created", func(t *testing.T) {
		reviews := new(MockReviewService)
		router := setupRouter(NewReviewHandler(reviews))
		reviews.On("Submit", aliceActor, int64(3), req).
			Return(&models.Review{ID: 5, Text: "great", Score: 9, Author: models.User{Username: "alice"}}, nil)

		w := doJSON(t, router, http.MethodPost, "/api/v1/titles/3/reviews", "alice", req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.EqualValues(t, 9, decode(t, w)["score"])
	})

	t.Run("second review conflicts", func(t *testing.T) {
		reviews := new(MockReviewService)
		router := setupRouter(NewReviewHandler(reviews))
		reviews.On("Submit", aliceActor, int64(3), req).
			Return(nil, fmt.Errorf("review: %w", service.ErrConflict))

		w := doJSON(t, router, http.MethodPost, "/api/v1/titles/3/reviews", "alice", req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "conflict", decode(t, w)["code"])
	})

	t.Run("unknown title", func(t *testing.T) {
		reviews := new(MockReviewService)
		router := setupRouter(NewReviewHandler(reviews))
		reviews.On("Submit", aliceActor, int64(99), req).Return(nil, service.ErrNotFound)

		w := doJSON(t, router, http.MethodPost, "/api/v1/titles/99/reviews", "alice", req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	for _, score := range []int{0, 11} {
		t.Run(fmt.Sprintf("score %d", score), func(t *testing.T) {
			reviews := new(MockReviewService)
			router := setupRouter(NewReviewHandler(reviews))

			w := doJSON(t, router, http.MethodPost, "/api/v1/titles/3/reviews", "alice",
				dto.CreateReviewRequest{Text: "x", Score: score})

			assert.Equal(t, http.StatusBadRequest, w.Code)
			reviews.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		router := setupRouter(NewReviewHandler(new(MockReviewService)))
		w := doJSON(t, router, http.MethodPost, "/api/v1/titles/3/reviews", "", req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestReviewUpdateDelete(t *testing.T) {
	reviews := new(MockReviewService)
	router := setupRouter(NewReviewHandler(reviews))
	score := 4
	reviews.On("Update", aliceActor, int64(3), int64(5), dto.UpdateReviewRequest{Score: &score}).
		Return(nil, service.ErrForbidden)
	reviews.On("Delete", adminActor, int64(3), int64(5)).Return(nil)

	w := doJSON(t, router, http.MethodPatch, "/api/v1/titles/3/reviews/5", "alice", map[string]int{"score": 4})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/titles/3/reviews/5", "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/titles/3/reviews/x", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	reviews.AssertExpectations(t)
}
