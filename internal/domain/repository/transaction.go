package repository

import "context"

// TransactionManager runs a unit of work atomically. A donation transition and
// the writes it fans out to (profiles, chat threads) commit or roll back together.
type TransactionManager interface {
	// Execute commits when fn returns nil and rolls back otherwise, including on panic.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to the running transaction.
type RepositoryFactory interface {
	NewAccountRepository() AccountRepository
	NewProfileRepository() ProfileRepository
	NewDonationRepository() DonationRepository
	NewChatRepository() ChatRepository
}
