package service

import (
	"context"
	"encoding/json"
	"fmt"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
)

// DTOs
type CreateLocationRequest struct {
	City  string `json:"city" binding:"required"`
	State string `json:"state" binding:"required"`
}

type LocationResponse struct {
	ID    string `json:"id"`
	City  string `json:"city"`
	State string `json:"state"`
}

type LocationService interface {
	List(ctx context.Context) ([]LocationResponse, error)
	Create(ctx context.Context, adminID uuid.UUID, req CreateLocationRequest) (LocationResponse, error)
}

type locationService struct {
	locationRepo repository.LocationRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewLocationService(
	locationRepo repository.LocationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *locationService) List(ctx context.Context) ([]LocationResponse, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	res := make([]LocationResponse, 0, len(locations))
	for _, l := range locations {
		res = append(res, LocationResponse{ID: l.ID.String(), City: l.City, State: l.State})
	}
	return res, nil
}

func (s *locationService) Create(ctx context.Context, adminID uuid.UUID, req CreateLocationRequest) (LocationResponse, error) {
	location := model.Location{
		City:  req.City,
		State: req.State,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.locationRepo.Create(txCtx, &location); createErr != nil {
			return fmt.Errorf("failed to create location: %w", createErr)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     &adminID,
			Action:     model.ActionCreateLocation,
			EntityID:   location.ID.String(),
			EntityName: location.City,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})

	if err != nil {
		return LocationResponse{}, err
	}
	return LocationResponse{ID: location.ID.String(), City: location.City, State: location.State}, nil
}
