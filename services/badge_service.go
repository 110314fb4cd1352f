package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/pinclub/pin-engine/models"
	"github.com/pinclub/pin-engine/storage"
)

// RewardProvider hands out the current reward table. Season close reads it
// through this interface so icon updates show up in later closes.
type RewardProvider interface {
	RewardTable() models.RewardTable
}

// StaticRewards is a fixed RewardProvider for wiring without a badge service.
type StaticRewards models.RewardTable

func (s StaticRewards) RewardTable() models.RewardTable {
	return models.RewardTable(s)
}

// BadgeService owns the reward table and its badge icon assets.
type BadgeService interface {
	RewardProvider
	// UploadIcon stores a badge icon in the object store and points the
	// tier's badge at its public URL. Returns that URL.
	UploadIcon(ctx context.Context, role models.ResultRole, tier models.TierName, filename, contentType string, reader io.Reader) (string, error)
}

type badgeService struct {
	uploader storage.FileUploader

	mu    sync.RWMutex
	table models.RewardTable
}

func NewBadgeService(uploader storage.FileUploader, table models.RewardTable) BadgeService {
	return &badgeService{uploader: uploader, table: table}
}

func (s *badgeService) RewardTable() models.RewardTable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.RewardTable{
		Players:  copyTiers(s.table.Players),
		Referees: copyTiers(s.table.Referees),
	}
}

func (s *badgeService) UploadIcon(ctx context.Context, role models.ResultRole, tier models.TierName, filename, contentType string, reader io.Reader) (string, error) {
	if s.uploader == nil {
		return "", errors.New("no file uploader configured")
	}

	s.mu.RLock()
	tiers, err := s.tiersForRole(role)
	if err == nil {
		if reward, ok := tiers[tier]; !ok || reward.Badge == nil {
			err = fmt.Errorf("tier %q has no badge for role %q", tier, role)
		}
	}
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext != ".png" && ext != ".svg" && ext != ".webp" {
		return "", errors.New("badge icon must be a png, svg or webp file")
	}

	key := fmt.Sprintf("badges/%s/%s%s", role, tier, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reward := tiers[tier]
	badge := *reward.Badge
	badge.IconURL = result.Location
	reward.Badge = &badge
	tiers[tier] = reward

	return result.Location, nil
}

func (s *badgeService) tiersForRole(role models.ResultRole) (map[models.TierName]models.RewardTier, error) {
	switch role {
	case models.ResultRolePlayer:
		return s.table.Players, nil
	case models.ResultRoleReferee:
		return s.table.Referees, nil
	default:
		return nil, fmt.Errorf("unknown result role %q", role)
	}
}

func copyTiers(src map[models.TierName]models.RewardTier) map[models.TierName]models.RewardTier {
	dst := make(map[models.TierName]models.RewardTier, len(src))
	for name, tier := range src {
		dst[name] = tier
	}
	return dst
}
