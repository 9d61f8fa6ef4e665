package devserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"grveyardapp/pkg/api"
	"grveyardapp/pkg/assets"
	"grveyardapp/pkg/auth"
	"grveyardapp/pkg/logging"
	"grveyardapp/pkg/paging"
	"grveyardapp/pkg/result"
	"grveyardapp/pkg/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stack struct {
	backend  *Backend
	provider auth.Provider
	assets   *assets.Service
	auth     *auth.Service
	cache    *assets.AssetCache
}

func newStack(t *testing.T) *stack {
	t.Helper()

	backend := NewBackend()
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	log := logging.NewNopLogger()
	client := api.NewClient(srv.URL, 5*time.Second, log)
	provider := auth.NewMemoryProvider()
	cache := assets.NewAssetCache()

	return &stack{
		backend:  backend,
		provider: provider,
		assets:   assets.NewService(assets.NewRESTAssetRepository(client), cache, provider, log),
		auth:     auth.NewService(auth.NewRESTAccountAPI(client), provider, log),
		cache:    cache,
	}
}

func TestIntegration_PagerWalksSeededDataset(t *testing.T) {
	s := newStack(t)
	seeded := s.backend.SeedAssets(45, "owner-1")

	pager := s.assets.AssetsPager()
	ctx := context.Background()

	var got []assets.Asset
	for {
		items, err := pager.LoadNext(ctx)
		if err == paging.ErrExhausted {
			break
		}
		require.NoError(t, err)
		got = append(got, items...)
	}

	require.Len(t, got, len(seeded))
	for i, a := range got {
		require.Equal(t, seeded[i].ID, a.ID)
	}

	// Pages flow through the recency cache; the newest 50 fetched stay.
	cached, ok := s.cache.Get(got[len(got)-1].ID)
	require.True(t, ok)
	require.Equal(t, got[len(got)-1].Title, cached.Title)
}

func TestIntegration_PagerFailureThenRetry(t *testing.T) {
	s := newStack(t)
	s.backend.SeedAssets(60, "owner-1")
	s.backend.FailListPage = 3

	pager := s.assets.AssetsPager()
	ctx := context.Background()

	_, err := pager.LoadNext(ctx) // oversized first request covers rows 1-40
	require.NoError(t, err)
	_, err = pager.LoadNext(ctx) // page 2 overlaps the first request, fully deduped
	require.NoError(t, err)
	_, err = pager.LoadNext(ctx) // page 3 fails
	require.Error(t, err)
	require.Contains(t, err.Error(), "list temporarily unavailable")

	// Still failed until an explicit retry.
	_, err = pager.LoadNext(ctx)
	require.ErrorIs(t, err, paging.ErrPageFailed)

	s.backend.FailListPage = 0
	items, err := pager.Retry(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, items)
}

func TestIntegration_DetailRevalidatesCachedAsset(t *testing.T) {
	s := newStack(t)
	seeded := s.backend.SeedAssets(1, "owner-1")
	target := seeded[0]

	// Prime the cache via a miss fetch, then change the row server-side.
	testhelpers.RequireSuccess(t, s.assets.AssetDetails(context.Background(), target.ID))
	target.Title = "renamed"
	s.backend.PutAsset(target)

	states := testhelpers.CollectStates(t, s.assets.AssetDetails(context.Background(), target.ID))

	require.Len(t, states, 2)
	require.Equal(t, result.KindSuccess, states[0].Kind)
	require.Equal(t, "asset-1", states[0].Data.Title, "stale snapshot is shown first")
	require.Equal(t, "renamed", states[1].Data.Title, "then the revalidated row")
}

func TestIntegration_SignupCreateAndListOwnAssets(t *testing.T) {
	s := newStack(t)

	acct := testhelpers.RequireSuccess(t, s.auth.CreateAccount(context.Background(), auth.CreateAccountRequest{
		Name:     "Seller",
		Email:    "seller@x.dev",
		Password: "pw123456",
		Role:     "founder",
	}))
	require.NotEmpty(t, acct.UUID)

	created := testhelpers.RequireSuccess(t, s.assets.CreateAsset(context.Background(), assets.CreateAssetRequest{
		Title:     "failed saas",
		AssetType: "codebase",
		Price:     1200,
	}))
	require.Equal(t, acct.UUID, created.UserUUID)

	pager, err := s.assets.OwnAssetsPager()
	require.NoError(t, err)
	items, err := pager.LoadNext(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, created.ID, items[0].ID)
}

func TestIntegration_SignupRollbackOnBackendFailure(t *testing.T) {
	s := newStack(t)
	s.backend.FailNextCreateUser = true

	msg := testhelpers.RequireError(t, s.auth.CreateAccount(context.Background(), auth.CreateAccountRequest{
		Name:     "Seller",
		Email:    "seller@x.dev",
		Password: "pw123456",
		Role:     "founder",
	}))
	require.Equal(t, "account creation failed", msg)

	_, signed := s.provider.Current()
	require.False(t, signed)

	// The identity was rolled back, so the same email signs up cleanly.
	testhelpers.RequireSuccess(t, s.auth.CreateAccount(context.Background(), auth.CreateAccountRequest{
		Name:     "Seller",
		Email:    "seller@x.dev",
		Password: "pw123456",
		Role:     "founder",
	}))
}

func TestIntegration_DeleteAccountEndsSession(t *testing.T) {
	s := newStack(t)

	acct := testhelpers.RequireSuccess(t, s.auth.CreateAccount(context.Background(), auth.CreateAccountRequest{
		Name:     "Seller",
		Email:    "seller@x.dev",
		Password: "pw123456",
		Role:     "founder",
	}))
	require.NotEmpty(t, acct.UUID)

	testhelpers.RequireSuccess(t, s.auth.DeleteAccount(context.Background()))

	_, signed := s.provider.Current()
	require.False(t, signed)

	// Backend record is gone too.
	msg := testhelpers.RequireError(t, s.auth.Login(context.Background(), "seller@x.dev", "pw123456"))
	require.NotEmpty(t, msg)
}

func TestIntegration_OTPRoundTrip(t *testing.T) {
	s := newStack(t)

	testhelpers.RequireSuccess(t, s.auth.CreateAccount(context.Background(), auth.CreateAccountRequest{
		Name:     "Seller",
		Email:    "seller@x.dev",
		Password: "pw123456",
		Role:     "founder",
	}))

	verified := testhelpers.RequireSuccess(t, s.auth.VerificationStatus(context.Background(), "seller@x.dev"))
	require.False(t, verified)

	testhelpers.RequireSuccess(t, s.auth.RequestOTP(context.Background()))
	code := s.backend.OTPFor("seller@x.dev")
	require.Len(t, code, 6)

	msg := testhelpers.RequireError(t, s.auth.VerifyOTP(context.Background(), "000000"))
	require.Equal(t, "Invalid OTP", msg)

	ok := testhelpers.RequireSuccess(t, s.auth.VerifyOTP(context.Background(), code))
	require.True(t, ok)

	verified = testhelpers.RequireSuccess(t, s.auth.VerificationStatus(context.Background(), "seller@x.dev"))
	require.True(t, verified)
}
