package service

import (
	"context"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/repository"
)

type directoryService struct {
	userRepo repository.UserRepository
}

func NewDirectoryService(userRepo repository.UserRepository) DirectoryService {
	return &directoryService{userRepo: userRepo}
}

func (s *directoryService) Upsert(ctx context.Context, info domain.UserInfo) (*domain.User, error) {
	user := &domain.User{
		TelegramID: info.TelegramID,
		Username:   info.Username,
		FirstName:  info.FirstName,
		LastName:   info.LastName,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
