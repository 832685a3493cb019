package service

import (
	"context"
	"fmt"
	"log/slog"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

// CommentService scopes every comment by both its title and its review.
type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error)
	Create(ctx context.Context, actor Actor, titleID, reviewID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, actor Actor, titleID, reviewID, id int64, text string) (*models.Comment, error)
	Delete(ctx context.Context, actor Actor, titleID, reviewID, id int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
	logger      *slog.Logger
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository, logger *slog.Logger) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		logger:      logger,
	}
}

func (s *commentService) ensureReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		return translate(err, fmt.Sprintf("review %d", reviewID))
	}
	return nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, id)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("comment %d", id))
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, actor Actor, titleID, reviewID int64, text string) (*models.Comment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, validationf("comment text is required")
	}
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, translate(err, "comment")
	}
	comment.Author = models.User{ID: actor.UserID, Username: actor.Username}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor Actor, titleID, reviewID, id int64, text string) (*models.Comment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	comment, err := s.Get(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, comment.AuthorID) {
		return nil, fmt.Errorf("%w: only the author or staff may edit this comment", ErrForbidden)
	}
	if text == "" {
		return nil, validationf("comment text is required")
	}
	if err := s.commentRepo.Update(ctx, id, map[string]any{"text": text}); err != nil {
		return nil, translate(err, fmt.Sprintf("comment %d", id))
	}
	return s.Get(ctx, titleID, reviewID, id)
}

func (s *commentService) Delete(ctx context.Context, actor Actor, titleID, reviewID, id int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	comment, err := s.Get(ctx, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if !CanModify(actor, comment.AuthorID) {
		return fmt.Errorf("%w: only the author or staff may delete this comment", ErrForbidden)
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return translate(err, fmt.Sprintf("comment %d", id))
	}
	s.logger.InfoContext(ctx, "comment deleted", "comment_id", id, "review_id", reviewID, "by", actor.Username)
	return nil
}
