package service

import "context"

type testTxRepos struct {
	plants   PlantRepositoryInterface
	requests RecommendationRequestRepositoryInterface
}

func (t *testTxRepos) Plants() PlantRepositoryInterface {
	return t.plants
}

func (t *testTxRepos) RecommendationRequests() RecommendationRequestRepositoryInterface {
	return t.requests
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
