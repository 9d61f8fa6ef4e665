package assets

import (
	"context"

	"grveyardapp/pkg/paging"
)

// Paging defaults used by the scrolling screens: the first load fetches two
// pages' worth so the list renders past the fold immediately.
const (
	DefaultPageSize    = 20
	DefaultInitialLoad = 40
)

func assetKey(a Asset) int64 { return a.ID }

// assetSource bridges the remote repository to the pager and opportunistically
// feeds every fetched page into the recency cache.
type assetSource struct {
	repo      AssetRepository
	cache     *AssetCache
	ownerUUID string
}

func (s assetSource) LoadPage(ctx context.Context, page, pageSize int) ([]Asset, error) {
	var (
		items []Asset
		err   error
	)
	if s.ownerUUID != "" {
		items, err = s.repo.ListAssetsByUser(ctx, s.ownerUUID, page, pageSize)
	} else {
		items, err = s.repo.ListAssets(ctx, page, pageSize)
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.PutAll(items)
	}
	return items, nil
}

// NewAssetsPager pages through the global asset listing.
func NewAssetsPager(cfg paging.Config, repo AssetRepository, cache *AssetCache) *paging.Pager[Asset] {
	return paging.New(cfg, assetKey, assetSource{repo: repo, cache: cache})
}

// NewUserAssetsPager pages through one seller's listings.
func NewUserAssetsPager(cfg paging.Config, repo AssetRepository, cache *AssetCache, ownerUUID string) *paging.Pager[Asset] {
	return paging.New(cfg, assetKey, assetSource{repo: repo, cache: cache, ownerUUID: ownerUUID})
}
