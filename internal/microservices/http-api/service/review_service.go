package service

import (
	"context"
	"fmt"
	"log/slog"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, id int64) (*models.Review, error)
	// Submit fails with ErrConflict when actor already reviewed the title.
	Submit(ctx context.Context, actor Actor, titleID int64, req dto.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, actor Actor, titleID, id int64, req dto.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, actor Actor, titleID, id int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	logger     *slog.Logger
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository, logger *slog.Logger) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		logger:     logger,
	}
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return validationf("score must be between %d and %d", models.MinScore, models.MaxScore)
	}
	return nil
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: title %d", ErrNotFound, titleID)
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, id int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, id)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("review %d", id))
	}
	return review, nil
}

func (s *reviewService) Submit(ctx context.Context, actor Actor, titleID int64, req dto.CreateReviewRequest) (*models.Review, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := checkScore(req.Score); err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, validationf("review text is required")
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     req.Text,
		Score:    req.Score,
	}
	// no pre-check: the unique index decides between concurrent submissions
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, translate(err, "review for this title by this author")
	}
	review.Author = models.User{ID: actor.UserID, Username: actor.Username}

	s.logger.InfoContext(ctx, "review submitted", "review_id", review.ID, "title_id", titleID, "author", actor.Username)
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor Actor, titleID, id int64, req dto.UpdateReviewRequest) (*models.Review, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	review, err := s.Get(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, review.AuthorID) {
		return nil, fmt.Errorf("%w: only the author or staff may edit this review", ErrForbidden)
	}

	fields := map[string]any{}
	if req.Score != nil {
		if err := checkScore(*req.Score); err != nil {
			return nil, err
		}
		fields["score"] = *req.Score
	}
	if req.Text != nil {
		if *req.Text == "" {
			return nil, validationf("review text is required")
		}
		fields["text"] = *req.Text
	}

	if err := s.reviewRepo.Update(ctx, id, fields); err != nil {
		return nil, translate(err, fmt.Sprintf("review %d", id))
	}
	return s.Get(ctx, titleID, id)
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, titleID, id int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	review, err := s.Get(ctx, titleID, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, review.AuthorID) {
		return fmt.Errorf("%w: only the author or staff may delete this review", ErrForbidden)
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return translate(err, fmt.Sprintf("review %d", id))
	}
	s.logger.InfoContext(ctx, "review deleted", "review_id", id, "title_id", titleID, "by", actor.Username)
	return nil
}
