package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"grveyardapp/pkg/auth"
	"grveyardapp/pkg/paging"
	"grveyardapp/pkg/result"
)

// Service bundles the asset flows around one repository, one recency cache
// and the active session.
type Service struct {
	repo       AssetRepository
	cache      *AssetCache
	provider   auth.Provider
	log        *logrus.Logger
	pagingCfg  paging.Config
	postCreate func(Asset)
}

type Option func(*Service)

// WithPostCreate installs a hook invoked with the created asset after a
// successful create, before Success is emitted. The original client never
// touched the cache on create, so the default is no hook; install
// cache.Put to merge fresh listings immediately.
func WithPostCreate(hook func(Asset)) Option {
	return func(s *Service) { s.postCreate = hook }
}

// WithPagingConfig overrides the pager defaults (page size 20, initial load 40).
func WithPagingConfig(cfg paging.Config) Option {
	return func(s *Service) { s.pagingCfg = cfg }
}

func NewService(repo AssetRepository, cache *AssetCache, provider auth.Provider, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cache:    cache,
		provider: provider,
		log:      log,
		pagingCfg: paging.Config{
			PageSize:    DefaultPageSize,
			InitialLoad: DefaultInitialLoad,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Cache() *AssetCache { return s.cache }

// AssetsPager returns a fresh pager over the global listing.
func (s *Service) AssetsPager() *paging.Pager[Asset] {
	return NewAssetsPager(s.pagingCfg, s.repo, s.cache)
}

// OwnAssetsPager returns a pager over the signed-in seller's listings.
func (s *Service) OwnAssetsPager() (*paging.Pager[Asset], error) {
	ident, ok := s.provider.Current()
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}
	return NewUserAssetsPager(s.pagingCfg, s.repo, s.cache, ident.UID), nil
}

// AssetDetails fetches one asset, serving a cached snapshot immediately when
// available and revalidating over the network. Emission rules:
//   - cache hit: Success(cached) first, no Loading, fresh Success supersedes,
//     a network error is swallowed (the stale value stands);
//   - cache miss: Loading, then Success(fresh) or Error.
func (s *Service) AssetDetails(ctx context.Context, id int64) <-chan result.State[Asset] {
	out := make(chan result.State[Asset], 3)
	go func() {
		defer close(out)

		cached, hasCached := s.cache.Get(id)
		if hasCached {
			if !result.Emit(ctx, out, result.Success(cached)) {
				return
			}
		} else if !result.Emit(ctx, out, result.Loading[Asset]()) {
			return
		}

		fresh, err := s.repo.GetAssetByID(ctx, id)
		if err != nil {
			if hasCached {
				s.log.WithError(err).WithField("id", id).Debug("revalidation failed, keeping cached asset")
				return
			}
			result.Emit(ctx, out, result.Error[Asset](err.Error()))
			return
		}

		s.cache.Put(fresh)
		result.Emit(ctx, out, result.Success(fresh))
	}()
	return out
}

// CreateAsset submits a new listing. The owner uuid is taken from the active
// session right before transmission; the request's own value is discarded.
// Emits Loading, then exactly one Success or Error.
func (s *Service) CreateAsset(ctx context.Context, req CreateAssetRequest) <-chan result.State[Asset] {
	out := make(chan result.State[Asset], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[Asset]()) {
			return
		}

		if err := validateCreateRequest(req); err != nil {
			result.Emit(ctx, out, result.Error[Asset](err.Error()))
			return
		}

		ident, ok := s.provider.Current()
		if !ok {
			result.Emit(ctx, out, result.Error[Asset](auth.ErrNotAuthenticated.Error()))
			return
		}
		req.UserUUID = ident.UID

		created, err := s.repo.CreateAsset(ctx, req)
		if err != nil {
			s.log.WithError(err).Warn("asset creation failed")
			result.Emit(ctx, out, result.Error[Asset](err.Error()))
			return
		}

		if s.postCreate != nil {
			s.postCreate(created)
		}
		s.log.WithField("id", created.ID).Info("asset created")
		result.Emit(ctx, out, result.Success(created))
	}()
	return out
}

func validateCreateRequest(req CreateAssetRequest) error {
	if req.Title == "" {
		return errors.New("title is required")
	}
	if !IsValidAssetType(req.AssetType) {
		return fmt.Errorf("invalid asset_type %q", req.AssetType)
	}
	if req.Price < 0 {
		return errors.New("price cannot be negative")
	}
	return nil
}
