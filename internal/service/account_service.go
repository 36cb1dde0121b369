package service

import (
	"context"
	"fmt"

	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/crosspost-app/composer-api/internal/models"
	"github.com/crosspost-app/composer-api/internal/repository"
)

// AccountService exposes the read-only connected accounts list.
type AccountService interface {
	List(ctx context.Context) ([]*models.SocialAccount, error)
	ComposerAccounts(ctx context.Context) ([]composer.Account, error)
}

type accountService struct {
	sa repository.SocialAccountRepository
}

func NewAccountService(sa repository.SocialAccountRepository) AccountService {
	return &accountService{sa: sa}
}

func (s *accountService) List(ctx context.Context) ([]*models.SocialAccount, error) {
	accounts, err := s.sa.ListInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting social accounts")
	}
	return accounts, nil
}

// ComposerAccounts maps stored accounts into the composer's account value.
func (s *accountService) ComposerAccounts(ctx context.Context) ([]composer.Account, error) {
	accounts, err := s.sa.ListInfo(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]composer.Account, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, composer.Account{
			ID:          acc.ID,
			PlatformID:  acc.Platform,
			DisplayName: acc.AccountName,
			Connected:   acc.AccountStatus == models.AccountStatusConnected,
		})
	}
	return out, nil
}
