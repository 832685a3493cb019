package importer

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// GormSink writes rows with their fixture ids. Open the connection without
// TranslateError so skipped rows keep the driver's *pgconn.PgError.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) InsertUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormSink) InsertCategory(ctx context.Context, c *models.Category) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormSink) InsertGenre(ctx context.Context, g *models.Genre) error {
	return s.db.WithContext(ctx).Create(g).Error
}

func (s *GormSink) InsertTitle(ctx context.Context, t *models.Title) error {
	return s.db.WithContext(ctx).Omit("Category", "Genres").Create(t).Error
}

func (s *GormSink) LinkGenre(ctx context.Context, titleID, genreID int64) error {
	return s.db.WithContext(ctx).
		Exec("INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)", titleID, genreID).Error
}

func (s *GormSink) InsertReview(ctx context.Context, r *models.Review) error {
	return s.db.WithContext(ctx).Omit("Author", "Title").Create(r).Error
}

func (s *GormSink) InsertComment(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Omit("Author", "Review").Create(c).Error
}

// serialTables had rows inserted with explicit ids; their sequences must move past them.
var serialTables = []string{"categories", "genres", "titles", "reviews", "comments"}

// Finish advances every id sequence so later API inserts do not collide with imported rows.
func (s *GormSink) Finish(ctx context.Context) error {
	for _, table := range serialTables {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table,
		)
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

// DryRunSink accepts every row; it validates fixture files without a database.
type DryRunSink struct{}

func (DryRunSink) InsertUser(context.Context, *models.User) error { return nil }
func (DryRunSink) InsertCategory(context.Context, *models.Category) error { return nil }
func (DryRunSink) InsertGenre(context.Context, *models.Genre) error { return nil }
func (DryRunSink) InsertTitle(context.Context, *models.Title) error { return nil }
func (DryRunSink) LinkGenre(context.Context, int64, int64) error { return nil }
func (DryRunSink) InsertReview(context.Context, *models.Review) error { return nil }
func (DryRunSink) InsertComment(context.Context, *models.Comment) error { return nil }
func (DryRunSink) Finish(context.Context) error { return nil }
