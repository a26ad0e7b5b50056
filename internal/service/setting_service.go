package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"german-butchery/internal/domain"
	"german-butchery/internal/repository"
)

// SettingService exposes site settings as a key to JSON value map
type SettingService interface {
	List(ctx context.Context) (map[string]json.RawMessage, error)
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Put(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error)
	Delete(ctx context.Context, key string) error
	StoreInfo(ctx context.Context) (domain.StoreInfo, error)
}

type settingService struct {
	settingRepo repository.SettingRepository
	storeName   string
}

// NewSettingService creates a SettingService. storeName is used when the
// store_info setting does not name the shop.
func NewSettingService(settingRepo repository.SettingRepository, storeName string) SettingService {
	return &settingService{settingRepo: settingRepo, storeName: storeName}
}

func (s *settingService) List(ctx context.Context) (map[string]json.RawMessage, error) {
	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	out := make(map[string]json.RawMessage, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func (s *settingService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return setting, nil
}

// Put upserts the value. store_info must decode into the StoreInfo shape.
func (s *settingService) Put(ctx context.Context, key string, value json.RawMessage) (*domain.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, validationError("key is required")
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, validationError("value must be valid JSON")
	}
	if key == domain.SettingStoreInfo {
		var info domain.StoreInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return nil, validationError("store_info must be an object: %v", err)
		}
	}

	setting, err := s.settingRepo.Upsert(ctx, key, value)
	if err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	return setting, nil
}

func (s *settingService) Delete(ctx context.Context, key string) error {
	if err := s.settingRepo.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}

// StoreInfo returns the store_info setting, falling back to the configured
// store name when it is missing.
func (s *settingService) StoreInfo(ctx context.Context) (domain.StoreInfo, error) {
	info := domain.StoreInfo{Name: s.storeName}

	setting, err := s.settingRepo.Get(ctx, domain.SettingStoreInfo)
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return info, nil
		}
		return info, fmt.Errorf("failed to load store info: %w", err)
	}

	if err := json.Unmarshal(setting.Value, &info); err != nil {
		return domain.StoreInfo{Name: s.storeName}, fmt.Errorf("failed to decode store info: %w", err)
	}
	if info.Name == "" {
		info.Name = s.storeName
	}
	return info, nil
}
