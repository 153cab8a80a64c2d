package user

import (
	"context"
	"io"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	userDto "ramplog.app/backend/internal/modules/user/dto"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
	"ramplog.app/backend/pkg/apperror"
	"ramplog.app/backend/pkg/storage"
)

type ProfileService interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req userDto.UpdateProfileRequest) error
	UpdateAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (string, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	imageStorage storage.ImageStorage
}

func NewProfileService(repo userRepo.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
	}
}

func (s *profileService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func (s *profileService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req userDto.UpdateProfileRequest) error {
	profile := &entity.Profile{
		UserID:   userID,
		FullName: req.FullName,
		Stance:   req.Stance,
		Bio:      req.Bio,
	}
	return s.repo.SaveProfile(ctx, profile)
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperror.ErrNotFound
	}

	url, err := s.imageStorage.UploadImage(ctx, r, "avatars", fileName)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}

	// Old avatar cleanup is best effort.
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		_ = s.imageStorage.DeleteImage(ctx, *user.AvatarURL)
	}

	return url, nil
}
