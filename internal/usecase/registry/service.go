// Package registry is the caller-facing registration surface.
//
// Every Register* call is get-or-create on the entity's natural key and may be
// retried freely: repeating a successful creation reports created=false with the
// same identifier. The returned record is the caller's candidate with its ID set
// to the resolved identifier; when created is false the stored attributes may differ.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/observability/logging"
	"catchup-registry/internal/observability/tracing"
	"catchup-registry/internal/repository"
)

// CompanyPublisher announces newly created companies.
type CompanyPublisher interface {
	PublishCreated(ctx context.Context, company *entity.Company) error
}

// Service registers sources, feeds, news items and companies.
// Repositories are required for the kinds that are used; the other fields are optional.
type Service struct {
	SourceTypes repository.SourceTypeRepository
	Sources     repository.SourceRepository
	Feeds       repository.FeedRepository
	NewsItems   repository.NewsItemRepository
	Companies   repository.CompanyRepository

	// Publisher receives every company whose registration created a row. nil disables events.
	Publisher CompanyPublisher

	// NewID generates provisional identifiers. nil means entity.NewID.
	NewID entity.IDGenerator

	// Now stamps create/update timestamps. nil means time.Now in UTC.
	Now func() time.Time

	// RegisterTimeout bounds each store round trip. Zero leaves the caller's deadline alone.
	RegisterTimeout time.Duration

	Logger *slog.Logger
}

// RegisterSourceInput is the candidate source. Name and URL are trimmed before validation.
type RegisterSourceInput struct {
	Name string
	URL  string
	// TypeID references a source type. When zero, TypeName is registered and used instead.
	TypeID        int32
	TypeName      string
	Paywall       *bool
	FeedAvailable *bool
	Description   *string
	ShortName     *string
	State         *string
	City          *string
}

// RegisterFeedInput is the candidate feed. SourceID must reference a registered source.
type RegisterFeedInput struct {
	SourceID uuid.UUID
	URL      string
	Title    *string
	FeedType *string
	TTL      *int32
}

// RegisterNewsItemInput is the candidate news item, keyed on GUID. FeedID must reference a registered feed.
type RegisterNewsItemInput struct {
	FeedID          uuid.UUID
	GUID            string
	Title           string
	URL             string
	PublishedAt     time.Time
	RawContentPath  *string
	TextContentPath *string
}

// RegisterCompanyInput is the candidate company, keyed on (Name, URL). The pointer fields are optional.
type RegisterCompanyInput struct {
	Name            string
	URL             string
	Ticker          *string
	IndeedRating    *string
	GlassdoorRating *string
	Sector          *string
	Industry        *string
	Address         *string
	Exchange        *string
	NumEmployeesMin *int32
	NumEmployeesMax *int32
}

// RegisterSourceType returns the id of the named source type, creating it if needed.
func (s *Service) RegisterSourceType(ctx context.Context, name string) (id int32, err error) {
	name = strings.TrimSpace(name)
	ctx, span := tracing.StartSpan(ctx, "registry.RegisterSourceType", attribute.String("source_type.name", name))
	defer func() { tracing.EndSpan(span, err) }()

	if name == "" {
		return 0, &entity.ValidationError{Field: "type_name", Message: "is required"}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err = s.SourceTypes.Register(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("register source type: %w", err)
	}
	return id, nil
}

// RegisterSource registers a source keyed on its URL.
func (s *Service) RegisterSource(ctx context.Context, in RegisterSourceInput) (_ *entity.Source, created bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "registry.RegisterSource", attribute.String("source.url", in.URL))
	defer func() { tracing.EndSpan(span, err) }()

	src := &entity.Source{
		ID:            s.newID(),
		Name:          strings.TrimSpace(in.Name),
		URL:           strings.TrimSpace(in.URL),
		TypeID:        in.TypeID,
		Paywall:       in.Paywall,
		FeedAvailable: in.FeedAvailable,
		Description:   in.Description,
		ShortName:     in.ShortName,
		State:         in.State,
		City:          in.City,
		CreatedAt:     s.now(),
	}
	// reject before a type name can create a source_type row
	if err := src.ValidateAttributes(); err != nil {
		return nil, false, err
	}
	if src.TypeID == 0 && strings.TrimSpace(in.TypeName) != "" {
		if src.TypeID, err = s.RegisterSourceType(ctx, in.TypeName); err != nil {
			return nil, false, err
		}
	}
	if err := src.Validate(); err != nil {
		return nil, false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	reg, err := s.Sources.Register(ctx, src)
	if err != nil {
		return nil, false, fmt.Errorf("register source: %w", err)
	}
	src.ID = reg.ID
	s.logResult(entity.KindSource, src.NaturalKey(), reg)
	return src, reg.Created, nil
}

// RegisterFeed registers a feed keyed on its URL. An unknown SourceID is a validation failure.
func (s *Service) RegisterFeed(ctx context.Context, in RegisterFeedInput) (_ *entity.Feed, created bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "registry.RegisterFeed", attribute.String("feed.url", in.URL))
	defer func() { tracing.EndSpan(span, err) }()

	feed := &entity.Feed{
		ID:        s.newID(),
		SourceID:  in.SourceID,
		URL:       strings.TrimSpace(in.URL),
		Title:     in.Title,
		FeedType:  in.FeedType,
		TTL:       in.TTL,
		CreatedAt: s.now(),
	}
	if err := feed.Validate(); err != nil {
		return nil, false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	reg, err := s.Feeds.Register(ctx, feed)
	if err != nil {
		return nil, false, fmt.Errorf("register feed: %w", err)
	}
	feed.ID = reg.ID
	s.logResult(entity.KindFeed, feed.NaturalKey(), reg)
	return feed, reg.Created, nil
}

// RegisterNewsItem registers a news item keyed on its GUID. An unknown FeedID is a
// validation failure and leaves no row behind.
func (s *Service) RegisterNewsItem(ctx context.Context, in RegisterNewsItemInput) (_ *entity.NewsItem, created bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "registry.RegisterNewsItem", attribute.String("news.guid", in.GUID))
	defer func() { tracing.EndSpan(span, err) }()

	item := &entity.NewsItem{
		ID:              s.newID(),
		FeedID:          in.FeedID,
		GUID:            strings.TrimSpace(in.GUID),
		Title:           strings.TrimSpace(in.Title),
		URL:             strings.TrimSpace(in.URL),
		PublishedAt:     in.PublishedAt.UTC(),
		CreatedAt:       s.now(),
		RawContentPath:  in.RawContentPath,
		TextContentPath: in.TextContentPath,
	}
	if err := item.Validate(); err != nil {
		return nil, false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	reg, err := s.NewsItems.Register(ctx, item)
	if err != nil {
		return nil, false, fmt.Errorf("register news item: %w", err)
	}
	item.ID = reg.ID
	s.logResult(entity.KindNewsItem, item.NaturalKey(), reg)
	return item, reg.Created, nil
}

// RegisterCompany registers a company keyed on (name, url). url may be empty.
func (s *Service) RegisterCompany(ctx context.Context, name, url string) (*entity.Company, bool, error) {
	return s.RegisterCompanyWith(ctx, RegisterCompanyInput{Name: name, URL: url})
}

// RegisterCompanyWith registers a company with its optional attributes. When the
// call creates the row, a company_created event is published; publish failures are
// logged and do not affect the result.
func (s *Service) RegisterCompanyWith(ctx context.Context, in RegisterCompanyInput) (_ *entity.Company, created bool, err error) {
	now := s.now()
	company := &entity.Company{
		ID:              s.newID(),
		Name:            strings.TrimSpace(in.Name),
		URL:             strings.TrimSpace(in.URL),
		Ticker:          in.Ticker,
		IndeedRating:    in.IndeedRating,
		GlassdoorRating: in.GlassdoorRating,
		Sector:          in.Sector,
		Industry:        in.Industry,
		Address:         in.Address,
		Exchange:        in.Exchange,
		NumEmployeesMin: in.NumEmployeesMin,
		NumEmployeesMax: in.NumEmployeesMax,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	ctx, span := tracing.StartSpan(ctx, "registry.RegisterCompany", attribute.String("company.name", company.Name))
	defer func() { tracing.EndSpan(span, err) }()

	if err := company.Validate(); err != nil {
		return nil, false, err
	}

	regCtx, cancel := s.withTimeout(ctx)
	reg, err := s.Companies.Register(regCtx, company)
	cancel()
	if err != nil {
		return nil, false, fmt.Errorf("register company: %w", err)
	}
	company.ID = reg.ID
	s.logResult(entity.KindCompany, company.NaturalKey(), reg)

	if reg.Created {
		s.publish(ctx, company)
	}
	return company, reg.Created, nil
}

// publish runs detached from the caller's cancellation: the row is committed
// and its event should go out even if the caller has stopped waiting.
func (s *Service) publish(ctx context.Context, company *entity.Company) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishCreated(context.WithoutCancel(ctx), company); err != nil {
		logging.WithRegistration(s.logger(ctx), entity.KindCompany.String(), company.NaturalKey()).
			Warn("company registered but creation event not published",
				slog.String("company_id", company.ID.String()),
				slog.Any("error", err))
	}
}

func (s *Service) logResult(kind entity.Kind, key string, reg repository.Registration) {
	logging.WithRegistration(s.logger(context.Background()), kind.String(), key).
		Debug("registered",
			slog.String("id", reg.ID.String()),
			slog.Bool("created", reg.Created))
}

func (s *Service) newID() uuid.UUID {
	if s.NewID != nil {
		return s.NewID()
	}
	return entity.NewID()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.RegisterTimeout > 0 {
		return context.WithTimeout(ctx, s.RegisterTimeout)
	}
	return ctx, func() {}
}

func (s *Service) logger(ctx context.Context) *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.FromContext(ctx)
}
