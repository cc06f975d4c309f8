package postgres

import (
	"context"

	"foodbridge/internal/domain/repository"
	"foodbridge/internal/errors"

	"gorm.io/gorm"
)

type gormTransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager is the constructor for gormTransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute delegates to gorm's Transaction, which rolls back on error or panic.
// The callback's error is returned unwrapped so AppErrors keep their HTTP code.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	var fnErr error
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(txRepositories{tx: tx})

		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}

	return errors.Wrap(err, "transaction failed")
}

// txRepositories builds repositories that share one *gorm.DB transaction.
type txRepositories struct {
	tx *gorm.DB
}

func (f txRepositories) NewAccountRepository() repository.AccountRepository {
	return NewAccountRepository(f.tx)
}

func (f txRepositories) NewProfileRepository() repository.ProfileRepository {
	return NewProfileRepository(f.tx)
}

func (f txRepositories) NewDonationRepository() repository.DonationRepository {
	return NewDonationRepository(f.tx)
}

func (f txRepositories) NewChatRepository() repository.ChatRepository {
	return NewChatRepository(f.tx)
}
