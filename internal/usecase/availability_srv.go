package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"
	"phone-repair/pkg/cache"
	"phone-repair/pkg/metrics"
	"phone-repair/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const availabilityCacheKey = "availability"

type AvailabilityService interface {
	// GetAvailability never fails: on storage errors it answers an empty, degraded result.
	GetAvailability(ctx context.Context) *response.AvailabilityResponse
	ListUpcomingDays(ctx context.Context) *response.AvailableDaysResponse
	GetHours(ctx context.Context) *response.AvailableHoursResponse
	CheckBookable(ctx context.Context, date time.Time, timeSlot string) error

	ListAllDays(ctx context.Context) (*response.AvailableDaysResponse, error)
	UpsertDay(ctx context.Context, req *request.AvailableDayRequest) (*response.AvailableDayResponse, error)
	UpdateDay(ctx context.Context, id string, req *request.AvailableDayRequest) (*response.AvailableDayResponse, error)
	DeleteDay(ctx context.Context, id string) error
	ReplaceHours(ctx context.Context, req *request.AvailableHoursRequest) (*response.AvailableHoursResponse, error)
}

type availabilityService struct {
	days    repository.AvailableDayRepository
	slots   repository.SlotCatalogRepository
	cache   *cache.JSONStore
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, deps Deps, loc *time.Location, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		days:    repo.AvailableDay,
		slots:   repo.SlotCatalog,
		cache:   deps.Cache,
		metrics: deps.Metrics,
		loc:     loc,
		now:     deps.clock(),
		log:     log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) today() time.Time {
	return utils.DayOf(s.now(), s.loc)
}

func (s *availabilityService) GetAvailability(ctx context.Context) *response.AvailabilityResponse {
	today := s.today()

	var cached response.AvailabilityResponse
	hit, err := s.cache.Get(ctx, availabilityCacheKey, &cached)
	if err != nil {
		s.log.Warn("Availability cache read failed", zap.Error(err))
	}
	if s.cache != nil {
		s.metrics.CacheLookup(availabilityCacheKey, hit)
	}
	if hit {
		cached.Days = dropPastDays(cached.Days, today)
		return &cached
	}

	days, err := s.days.FindActiveFrom(ctx, today)
	if err != nil {
		s.log.Error("Availability degraded, days unavailable", zap.Error(err))
		return &response.AvailabilityResponse{Days: []response.DayAvailability{}, Degraded: true}
	}

	hours, err := s.loadHours(ctx)
	if err != nil {
		s.log.Error("Availability degraded, slot catalog unavailable", zap.Error(err))
		return &response.AvailabilityResponse{Days: []response.DayAvailability{}, Degraded: true}
	}

	result := &response.AvailabilityResponse{Days: make([]response.DayAvailability, 0, len(days))}
	for _, day := range days {
		result.Days = append(result.Days, response.DayAvailability{
			AvailableDayResponse: response.AvailableDayToResponse(day),
			Slots:                hours,
		})
	}

	if err := s.cache.Set(ctx, availabilityCacheKey, result); err != nil {
		s.log.Warn("Availability cache write failed", zap.Error(err))
	}

	return result
}

// dropPastDays removes entries that went stale while cached.
func dropPastDays(days []response.DayAvailability, today time.Time) []response.DayAvailability {
	cutoff := today.Format(time.DateOnly)
	out := make([]response.DayAvailability, 0, len(days))
	for _, d := range days {
		if d.Date >= cutoff {
			out = append(out, d)
		}
	}
	return out
}

// ListUpcomingDays never fails; a store error yields an empty degraded list.
func (s *availabilityService) ListUpcomingDays(ctx context.Context) *response.AvailableDaysResponse {
	days, err := s.days.FindActiveFrom(ctx, s.today())
	if err != nil {
		s.log.Error("Available days degraded, days unavailable", zap.Error(err))
		return &response.AvailableDaysResponse{Days: []response.AvailableDayResponse{}, Degraded: true}
	}
	return &response.AvailableDaysResponse{Days: response.MapSlice(days, response.AvailableDayToResponse)}
}

func (s *availabilityService) loadHours(ctx context.Context) ([]string, error) {
	catalog, err := s.slots.Get(ctx)
	if err != nil {
		return nil, err
	}
	if catalog == nil || len(catalog.Hours) == 0 {
		return slices.Clone(entity.DefaultSlotHours), nil
	}
	return catalog.Hours, nil
}

func (s *availabilityService) GetHours(ctx context.Context) *response.AvailableHoursResponse {
	hours, err := s.loadHours(ctx)
	if err != nil {
		s.log.Error("Failed to load slot catalog, serving defaults", zap.Error(err))
		hours = slices.Clone(entity.DefaultSlotHours)
	}
	return &response.AvailableHoursResponse{Hours: hours}
}

func (s *availabilityService) CheckBookable(ctx context.Context, date time.Time, timeSlot string) error {
	if date.Before(s.today()) {
		return invalid("date is not available", map[string]string{"bookingData.date": "Date is in the past"})
	}

	ok, err := s.days.IsBookable(ctx, date)
	if err != nil {
		return fmt.Errorf("check day: %w", err)
	}
	if !ok {
		return invalid("date is not available", map[string]string{"bookingData.date": "Date is not open for bookings"})
	}

	hours, err := s.loadHours(ctx)
	if err != nil {
		return fmt.Errorf("load slot catalog: %w", err)
	}
	if !slices.Contains(hours, timeSlot) {
		return invalid("time slot is not available", map[string]string{"bookingData.timeSlot": "Time slot is not offered"})
	}

	return nil
}

func (s *availabilityService) ListAllDays(ctx context.Context) (*response.AvailableDaysResponse, error) {
	days, err := s.days.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return &response.AvailableDaysResponse{Days: response.MapSlice(days, response.AvailableDayToResponse)}, nil
}

func (s *availabilityService) dayFromRequest(req *request.AvailableDayRequest) (*entity.AvailableDay, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	date, err := utils.ParseDay(req.Date)
	if err != nil {
		return nil, invalid("validation failed", map[string]string{"date": "Must be a date in YYYY-MM-DD format"})
	}

	now := s.now()
	return &entity.AvailableDay{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Date:         date,
		IsFullDay:    boolOr(req.FullDay, true),
		Note:         req.Note,
		IsActive:     boolOr(req.IsActive, true),
	}, nil
}

func (s *availabilityService) UpsertDay(ctx context.Context, req *request.AvailableDayRequest) (*response.AvailableDayResponse, error) {
	day, err := s.dayFromRequest(req)
	if err != nil {
		return nil, err
	}

	saved, err := s.days.Upsert(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("save day: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("Available day saved",
		zap.String("day_id", saved.ID.String()),
		zap.String("date", saved.Date.Format(time.DateOnly)),
	)

	resp := response.AvailableDayToResponse(saved)
	return &resp, nil
}

func (s *availabilityService) UpdateDay(ctx context.Context, id string, req *request.AvailableDayRequest) (*response.AvailableDayResponse, error) {
	dayID, err := parseID(id, "day")
	if err != nil {
		return nil, err
	}

	existing, err := s.days.FindByID(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("find day: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("day %s: %w", id, ErrNotFound)
	}

	day, err := s.dayFromRequest(req)
	if err != nil {
		return nil, err
	}
	day.ID = existing.ID
	day.CreatedAt = existing.CreatedAt

	if err := s.days.Update(ctx, day); err != nil {
		return nil, mapRepoError(err, "update day")
	}

	s.invalidate(ctx)

	resp := response.AvailableDayToResponse(day)
	return &resp, nil
}

func (s *availabilityService) DeleteDay(ctx context.Context, id string) error {
	dayID, err := parseID(id, "day")
	if err != nil {
		return err
	}

	if err := s.days.Delete(ctx, dayID); err != nil {
		return mapRepoError(err, "delete day")
	}

	s.invalidate(ctx)
	return nil
}

func (s *availabilityService) ReplaceHours(ctx context.Context, req *request.AvailableHoursRequest) (*response.AvailableHoursResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	hours := slices.Clone(req.Hours)
	if err := s.slots.Replace(ctx, hours, s.now()); err != nil {
		return nil, fmt.Errorf("replace hours: %w", err)
	}

	s.invalidate(ctx)
	return &response.AvailableHoursResponse{Hours: hours}, nil
}

func (s *availabilityService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, availabilityCacheKey); err != nil {
		s.log.Warn("Failed to invalidate availability cache", zap.Error(err))
	}
}

// ==================== HELPERS ====================

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func parseID(id, what string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalidf("invalid %s ID", what)
	}
	return parsed, nil
}

// mapRepoError translates repository sentinels into service errors.
func mapRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
