package repository

import (
	"time"

	"github.com/tnqbao/gau-object-gallery/infra"
)

type Repository struct {
	ObjectRepo *CachedObjectRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra, cacheTTL time.Duration) *Repository {
	repository = &Repository{
		ObjectRepo: NewCachedObjectRepository(
			NewObjectRepository(infra.Postgres.DB),
			infra.Redis,
			cacheTTL,
			infra.Logger,
		),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
