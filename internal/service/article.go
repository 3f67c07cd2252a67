package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"fabr-admin/internal/constants"
	"fabr-admin/internal/domain"
	"fabr-admin/internal/events"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// form values without an offset ("2025-03-01T18:30") are local to Brazil
var naiveLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

type ArticleService struct {
	api       LeagueAPI
	publisher events.Publisher
	clock     clockwork.Clock
	location  *time.Location
	logger    zerolog.Logger
}

func NewArticleService(api LeagueAPI, publisher events.Publisher, clock clockwork.Clock, logger zerolog.Logger) (*ArticleService, error) {
	loc, err := time.LoadLocation(constants.SaoPauloTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s timezone: %w", constants.SaoPauloTimezone, err)
	}
	return &ArticleService{
		api:       api,
		publisher: publisher,
		clock:     clock,
		location:  loc,
		logger:    logger.With().Str("component", "articles").Logger(),
	}, nil
}

func (s *ArticleService) ListArticles(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.api.GetArticles(ctx)
	if err != nil {
		return nil, upstream("Falha ao buscar matérias", err)
	}
	return articles, nil
}

func (s *ArticleService) CreateArticle(ctx context.Context, in domain.ArticleInput) (*domain.Article, error) {
	now := s.clock.Now()
	article, err := s.build(in, now, now)
	if err != nil {
		return nil, err
	}

	created, err := s.api.CreateArticle(ctx, article)
	if err != nil {
		return nil, upstream("Falha ao criar matéria", err)
	}
	if created == nil {
		created = &article
	}

	s.logger.Info().Str("titulo", article.Title).Str("autor", article.Author).Msg("article created")
	s.publisher.Publish(ctx, events.SubjectArticleCreated, events.ArticleCreated{
		ID:        created.ID,
		Title:     created.Title,
		Author:    created.Author,
		CreatedAt: article.CreatedAt,
	})
	return created, nil
}

// UpdateArticle refreshes updatedAt unless the form sets it. A missing
// createdAt is left for the API to keep.
func (s *ArticleService) UpdateArticle(ctx context.Context, in domain.ArticleInput) (*domain.Article, error) {
	if in.ID <= 0 {
		return nil, invalid("id", "ID da matéria é obrigatório")
	}
	article, err := s.build(in, time.Time{}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateArticle(ctx, in.ID, article)
	if err != nil {
		return nil, upstream("Falha ao atualizar matéria", err)
	}
	return updated, nil
}

func (s *ArticleService) DeleteArticle(ctx context.Context, id int) error {
	if id <= 0 {
		return invalid("id", "ID da matéria é obrigatório")
	}
	if err := s.api.DeleteArticle(ctx, id); err != nil {
		return upstream("Falha ao excluir matéria", err)
	}
	s.logger.Info().Int("id", id).Msg("article deleted")
	return nil
}

func (s *ArticleService) build(in domain.ArticleInput, createdDefault, updatedDefault time.Time) (domain.Article, error) {
	trimAll(&in.Title, &in.Subtitle, &in.Caption, &in.Author, &in.CreatedAt, &in.UpdatedAt)

	required := []struct {
		field, value, label string
	}{
		{"titulo", in.Title, "Título"},
		{"subtitulo", in.Subtitle, "Subtítulo"},
		{"imagem", strings.TrimSpace(in.Image), "Imagem"},
		{"texto", strings.TrimSpace(in.Body), "Texto"},
		{"autor", in.Author, "Autor"},
		{"autorImage", strings.TrimSpace(in.AuthorImage), "Imagem do autor"},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.Article{}, invalid(r.field, r.label+" é obrigatório")
		}
	}
	if n := DataURLSize(in.Image); n > constants.MaxArticleImage {
		return domain.Article{}, invalid("imagem", "A imagem deve ter no máximo 5MB")
	}
	if n := DataURLSize(in.AuthorImage); n > constants.MaxAuthorImage {
		return domain.Article{}, invalid("autorImage", "A imagem do autor deve ter no máximo 2MB")
	}

	createdAt, err := s.parseTimestamp(in.CreatedAt, createdDefault)
	if err != nil {
		return domain.Article{}, invalid("createdAt", err.Error())
	}
	updatedAt, err := s.parseTimestamp(in.UpdatedAt, updatedDefault)
	if err != nil {
		return domain.Article{}, invalid("updatedAt", err.Error())
	}

	return domain.Article{
		ID:          in.ID,
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Image:       in.Image,
		Caption:     in.Caption,
		Body:        in.Body,
		Author:      in.Author,
		AuthorImage: in.AuthorImage,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (s *ArticleService) parseTimestamp(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, v, s.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("data inválida: %q", v)
}

// DataURLSize returns the decoded size of a base64 data URL, or 0 when v is
// not one.
func DataURLSize(v string) int {
	if !strings.HasPrefix(v, "data:") {
		return 0
	}
	i := strings.Index(v, ";base64,")
	if i < 0 {
		return 0
	}
	payload := v[i+len(";base64,"):]
	n := len(payload) / 4 * 3
	switch {
	case strings.HasSuffix(payload, "=="):
		n -= 2
	case strings.HasSuffix(payload, "="):
		n--
	}
	return n
}
