// Package importer bulk-loads the CSV fixtures (users, taxonomy, titles,
// reviews and comments) into the database. Rows that fail are logged and
// skipped; the run continues with the next row.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sink receives parsed rows. Implementations decide how they are stored.
type Sink interface {
	InsertUser(ctx context.Context, u *models.User) error
	InsertCategory(ctx context.Context, c *models.Category) error
	InsertGenre(ctx context.Context, g *models.Genre) error
	InsertTitle(ctx context.Context, t *models.Title) error
	LinkGenre(ctx context.Context, titleID, genreID int64) error
	InsertReview(ctx context.Context, r *models.Review) error
	InsertComment(ctx context.Context, c *models.Comment) error
	// Finish runs once after every file has been loaded.
	Finish(ctx context.Context) error
}

// Report summarizes one file.
type Report struct {
	File     string
	Inserted int
	Skipped  int
	Missing  bool
}

type loader struct {
	file string
	load func(ctx context.Context, s Sink, row map[string]string) error
}

// loaders run in this order; later files reference rows from earlier ones.
var loaders = []loader{
	{"users.csv", loadUser},
	{"category.csv", loadCategory},
	{"genre.csv", loadGenre},
	{"titles.csv", loadTitle},
	{"genre_title.csv", loadGenreTitle},
	{"review.csv", loadReview},
	{"comments.csv", loadComment},
}

// Files returns the fixture names in load order.
func Files() []string {
	names := make([]string, 0, len(loaders))
	for _, l := range loaders {
		names = append(names, l.file)
	}
	return names
}

type Importer struct {
	sink   Sink
	logger *slog.Logger
}

func New(sink Sink, logger *slog.Logger) *Importer {
	return &Importer{sink: sink, logger: logger}
}

// Run loads every known file found in dir. A missing file is reported and skipped.
func (im *Importer) Run(ctx context.Context, dir string) ([]Report, error) {
	reports := make([]Report, 0, len(loaders))
	for _, l := range loaders {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		path := filepath.Join(dir, l.file)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			im.logger.Warn("import_file_missing", "file", l.file, "path", path)
			reports = append(reports, Report{File: l.file, Missing: true})
			continue
		}
		if err != nil {
			return reports, fmt.Errorf("failed to open %s: %w", path, err)
		}

		report, err := im.LoadFile(ctx, l.file, f)
		f.Close()
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}

	if err := im.sink.Finish(ctx); err != nil {
		return reports, fmt.Errorf("failed to finish import: %w", err)
	}
	return reports, nil
}

// LoadFile reads one CSV stream with a header row. name selects the row loader.
func (im *Importer) LoadFile(ctx context.Context, name string, r io.Reader) (Report, error) {
	report := Report{File: name}

	var load func(context.Context, Sink, map[string]string) error
	for _, l := range loaders {
		if l.file == name {
			load = l.load
		}
	}
	if load == nil {
		return report, fmt.Errorf("unknown import file %q", name)
	}

	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("%s: failed to read header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			im.skip(ctx, &report, line, err)
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}

		if err := load(ctx, im.sink, row); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			im.skip(ctx, &report, line, err)
			continue
		}
		report.Inserted++
		metrics.ImportRows.WithLabelValues(name, "inserted").Inc()
	}

	im.logger.Info("import_file_done", "file", name, "inserted", report.Inserted, "skipped", report.Skipped)
	return report, nil
}

func (im *Importer) skip(ctx context.Context, report *Report, line int, err error) {
	report.Skipped++
	metrics.ImportRows.WithLabelValues(report.File, "skipped").Inc()

	attrs := []any{"file", report.File, "line", line, "error", err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		attrs = append(attrs, "sqlstate", pgErr.Code, "constraint", pgErr.ConstraintName, "detail", pgErr.Detail)
	}
	im.logger.WarnContext(ctx, "import_row_skipped", attrs...)
}

// stripBOM drops a leading UTF-8 byte order mark, which spreadsheet exports often carry.
func stripBOM(r io.Reader) io.Reader {
	bom := []byte{0xEF, 0xBB, 0xBF}
	buf := make([]byte, len(bom))
	n, err := io.ReadFull(r, buf)
	if err != nil || !bytes.Equal(buf, bom) {
		return io.MultiReader(bytes.NewReader(buf[:n]), r)
	}
	return r
}

var userNamespace = uuid.MustParse("6f1d2e1a-5b0c-4c3e-9a77-0d6c2f6b9a10")

// UserID maps a fixture user id onto a stable uuid, so reruns and the
// review/comment author columns agree on the same account.
func UserID(fixtureID string) string {
	return uuid.NewSHA1(userNamespace, []byte(strings.TrimSpace(fixtureID))).String()
}

func required(row map[string]string, col string) (string, error) {
	v := strings.TrimSpace(row[col])
	if v == "" {
		return "", fmt.Errorf("column %q is empty", col)
	}
	return v, nil
}

func requiredID(row map[string]string, col string) (int64, error) {
	v, err := required(row, col)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("column %q: invalid id %q", col, v)
	}
	return id, nil
}

func pubDate(row map[string]string) (time.Time, error) {
	v := strings.TrimSpace(row["pub_date"])
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("column \"pub_date\": %w", err)
	}
	return t, nil
}

func loadUser(ctx context.Context, s Sink, row map[string]string) error {
	id, err := required(row, "id")
	if err != nil {
		return err
	}
	username, err := required(row, "username")
	if err != nil {
		return err
	}
	if username == models.ReservedUsername || !models.ValidUsername(username) {
		return fmt.Errorf("invalid username %q", username)
	}
	email, err := required(row, "email")
	if err != nil {
		return err
	}

	role := strings.TrimSpace(row["role"])
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}

	return s.InsertUser(ctx, &models.User{
		ID:        UserID(id),
		Username:  username,
		Email:     email,
		Role:      role,
		Bio:       row["bio"],
		FirstName: row["first_name"],
		LastName:  row["last_name"],
	})
}

func taxon(row map[string]string) (models.Taxon, error) {
	id, err := requiredID(row, "id")
	if err != nil {
		return models.Taxon{}, err
	}
	name, err := required(row, "name")
	if err != nil {
		return models.Taxon{}, err
	}
	slug, err := required(row, "slug")
	if err != nil {
		return models.Taxon{}, err
	}
	if !models.ValidSlug(slug) {
		return models.Taxon{}, fmt.Errorf("invalid slug %q", slug)
	}
	return models.Taxon{ID: id, Name: name, Slug: slug}, nil
}

func loadCategory(ctx context.Context, s Sink, row map[string]string) error {
	t, err := taxon(row)
	if err != nil {
		return err
	}
	return s.InsertCategory(ctx, &models.Category{Taxon: t})
}

func loadGenre(ctx context.Context, s Sink, row map[string]string) error {
	t, err := taxon(row)
	if err != nil {
		return err
	}
	return s.InsertGenre(ctx, &models.Genre{Taxon: t})
}

func loadTitle(ctx context.Context, s Sink, row map[string]string) error {
	id, err := requiredID(row, "id")
	if err != nil {
		return err
	}
	name, err := required(row, "name")
	if err != nil {
		return err
	}
	yearStr, err := required(row, "year")
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return fmt.Errorf("column \"year\": %w", err)
	}
	if year > time.Now().Year() {
		return fmt.Errorf("year %d is in the future", year)
	}

	title := &models.Title{ID: id, Name: name, Year: year, Description: row["description"]}
	if strings.TrimSpace(row["category"]) != "" {
		categoryID, err := requiredID(row, "category")
		if err != nil {
			return err
		}
		title.CategoryID = &categoryID
	}
	return s.InsertTitle(ctx, title)
}

func loadGenreTitle(ctx context.Context, s Sink, row map[string]string) error {
	titleID, err := requiredID(row, "title_id")
	if err != nil {
		return err
	}
	genreID, err := requiredID(row, "genre_id")
	if err != nil {
		return err
	}
	return s.LinkGenre(ctx, titleID, genreID)
}

func loadReview(ctx context.Context, s Sink, row map[string]string) error {
	id, err := requiredID(row, "id")
	if err != nil {
		return err
	}
	titleID, err := requiredID(row, "title_id")
	if err != nil {
		return err
	}
	author, err := required(row, "author")
	if err != nil {
		return err
	}
	text, err := required(row, "text")
	if err != nil {
		return err
	}
	scoreStr, err := required(row, "score")
	if err != nil {
		return err
	}
	score, err := strconv.Atoi(scoreStr)
	if err != nil || score < models.MinScore || score > models.MaxScore {
		return fmt.Errorf("score %q out of range %d..%d", scoreStr, models.MinScore, models.MaxScore)
	}
	date, err := pubDate(row)
	if err != nil {
		return err
	}

	return s.InsertReview(ctx, &models.Review{
		ID:       id,
		TitleID:  titleID,
		AuthorID: UserID(author),
		Text:     text,
		Score:    score,
		PubDate:  date,
	})
}

func loadComment(ctx context.Context, s Sink, row map[string]string) error {
	id, err := requiredID(row, "id")
	if err != nil {
		return err
	}
	reviewID, err := requiredID(row, "review_id")
	if err != nil {
		return err
	}
	author, err := required(row, "author")
	if err != nil {
		return err
	}
	text, err := required(row, "text")
	if err != nil {
		return err
	}
	date, err := pubDate(row)
	if err != nil {
		return err
	}

	return s.InsertComment(ctx, &models.Comment{
		ID:       id,
		ReviewID: reviewID,
		AuthorID: UserID(author),
		Text:     text,
		PubDate:  date,
	})
}
