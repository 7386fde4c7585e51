package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PhoneService interface {
	ListAvailablePhones(ctx context.Context, req *request.PhoneListRequest) (*response.PaginatedResponse[response.PhoneResponse], error)
	GetPhone(ctx context.Context, id string) (*response.PhoneResponse, error)

	ListPhones(ctx context.Context, req *request.PhoneListRequest) (*response.PaginatedResponse[response.PhoneResponse], error)
	CreatePhone(ctx context.Context, req *request.PhoneRequest) (*response.PhoneResponse, error)
	UpdatePhone(ctx context.Context, id string, req *request.PhoneRequest) (*response.PhoneResponse, error)
	SetPhoneStatus(ctx context.Context, id string, req *request.PhoneStatusRequest) (*response.PhoneResponse, error)
	DeletePhone(ctx context.Context, id string) error
}

type phoneService struct {
	phones repository.PhoneRepository
	now    func() time.Time
	log    *zap.Logger
}

func NewPhoneService(phones repository.PhoneRepository, deps Deps, log *zap.Logger) PhoneService {
	return &phoneService{
		phones: phones,
		now:    deps.clock(),
		log:    log.With(zap.String("service", "phone")),
	}
}

func (s *phoneService) ListAvailablePhones(ctx context.Context, req *request.PhoneListRequest) (*response.PaginatedResponse[response.PhoneResponse], error) {
	req.Normalize()
	return s.list(ctx, repository.PhoneFilter{Status: entity.PhoneStatusAvailable, Brand: req.Brand}, req.PaginatedRequest)
}

func (s *phoneService) ListPhones(ctx context.Context, req *request.PhoneListRequest) (*response.PaginatedResponse[response.PhoneResponse], error) {
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.PhoneFilter{Status: entity.PhoneStatus(req.Status), Brand: req.Brand}, req.PaginatedRequest)
}

func (s *phoneService) list(ctx context.Context, filter repository.PhoneFilter, page request.PaginatedRequest) (*response.PaginatedResponse[response.PhoneResponse], error) {
	phones, err := s.phones.FindAll(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list phones: %w", err)
	}

	total, err := s.phones.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count phones: %w", err)
	}

	return response.NewPaginatedResponse(response.MapSlice(phones, response.PhoneToResponse), page.Page, page.Limit(), total), nil
}

func (s *phoneService) GetPhone(ctx context.Context, id string) (*response.PhoneResponse, error) {
	phone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := response.PhoneToResponse(phone)
	return &resp, nil
}

func (s *phoneService) CreatePhone(ctx context.Context, req *request.PhoneRequest) (*response.PhoneResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	phone := &entity.PhoneForSale{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Status:       entity.PhoneStatusAvailable,
	}
	applyPhoneRequest(phone, req)

	if err := s.phones.Create(ctx, phone); err != nil {
		return nil, fmt.Errorf("create phone: %w", err)
	}

	s.log.Info("Phone added to stock",
		zap.String("phone_id", phone.ID.String()),
		zap.String("model", phone.Brand+" "+phone.Model),
	)

	resp := response.PhoneToResponse(phone)
	return &resp, nil
}

func (s *phoneService) UpdatePhone(ctx context.Context, id string, req *request.PhoneRequest) (*response.PhoneResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	phone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPhoneRequest(phone, req)
	phone.UpdatedAt = s.now()

	if err := s.phones.Update(ctx, phone); err != nil {
		return nil, mapRepoError(err, "update phone")
	}

	resp := response.PhoneToResponse(phone)
	return &resp, nil
}

func (s *phoneService) SetPhoneStatus(ctx context.Context, id string, req *request.PhoneStatusRequest) (*response.PhoneResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	phoneID, err := parseID(id, "phone")
	if err != nil {
		return nil, err
	}

	if err := s.phones.UpdateStatus(ctx, phoneID, entity.PhoneStatus(req.Status)); err != nil {
		return nil, mapRepoError(err, "set phone status")
	}

	return s.GetPhone(ctx, id)
}

func (s *phoneService) DeletePhone(ctx context.Context, id string) error {
	phoneID, err := parseID(id, "phone")
	if err != nil {
		return err
	}

	if err := s.phones.Delete(ctx, phoneID); err != nil {
		return mapRepoError(err, "delete phone")
	}
	return nil
}

func (s *phoneService) find(ctx context.Context, id string) (*entity.PhoneForSale, error) {
	phoneID, err := parseID(id, "phone")
	if err != nil {
		return nil, err
	}

	phone, err := s.phones.FindByID(ctx, phoneID)
	if err != nil {
		return nil, fmt.Errorf("get phone: %w", err)
	}
	if phone == nil {
		return nil, fmt.Errorf("phone %s: %w", id, ErrNotFound)
	}
	return phone, nil
}

func applyPhoneRequest(phone *entity.PhoneForSale, req *request.PhoneRequest) {
	phone.Brand = strings.TrimSpace(req.Brand)
	phone.Model = strings.TrimSpace(req.Model)
	phone.Storage = strings.TrimSpace(req.Storage)
	phone.Color = req.Color
	phone.Condition = entity.PhoneCondition(req.Condition)
	phone.Price = req.Price
	phone.Description = req.Description
	phone.Images = nonNil(req.Images)
}
