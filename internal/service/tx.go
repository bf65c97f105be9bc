package service

import "context"

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Plants() PlantRepositoryInterface
	RecommendationRequests() RecommendationRequestRepositoryInterface
}

// TxRunner executes a function within a transaction. The transaction is
// rolled back when fn returns an error.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
