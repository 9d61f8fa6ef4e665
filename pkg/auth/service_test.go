package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grveyardapp/pkg/logging"
	"grveyardapp/pkg/result"
	"grveyardapp/pkg/testhelpers"
)

type mockAccountAPI struct {
	mock.Mock
}

func (m *mockAccountAPI) CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error) {
	args := m.Called(ctx, req)
	acct, _ := args.Get(0).(Account)
	return acct, args.Error(1)
}

func (m *mockAccountAPI) GetAccount(ctx context.Context, uuid string) (Account, error) {
	args := m.Called(ctx, uuid)
	acct, _ := args.Get(0).(Account)
	return acct, args.Error(1)
}

func (m *mockAccountAPI) UpdateAccount(ctx context.Context, uuid string, req UpdateAccountRequest) (Account, error) {
	args := m.Called(ctx, uuid, req)
	acct, _ := args.Get(0).(Account)
	return acct, args.Error(1)
}

func (m *mockAccountAPI) DeleteAccount(ctx context.Context, uuid string) error {
	args := m.Called(ctx, uuid)
	return args.Error(0)
}

func (m *mockAccountAPI) Login(ctx context.Context, email, password string) (Account, error) {
	args := m.Called(ctx, email, password)
	acct, _ := args.Get(0).(Account)
	return acct, args.Error(1)
}

func (m *mockAccountAPI) RequestOTP(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockAccountAPI) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountAPI) CheckVerification(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newTestAuthService(api AccountAPI) (*Service, Provider) {
	provider := NewMemoryProvider()
	return NewService(api, provider, logging.NewNopLogger()), provider
}

func TestCreateAccount_Success(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	api.On("CreateAccount", mock.Anything, mock.MatchedBy(func(req CreateAccountRequest) bool {
		return req.UUID != "" && req.Email == "f@startup.dev"
	})).Return(Account{ID: 1, Email: "f@startup.dev", UUID: "set-by-matcher"}, nil)

	states := testhelpers.CollectStates(t, svc.CreateAccount(context.Background(), CreateAccountRequest{
		Name:     "Founder",
		Email:    "f@startup.dev",
		Password: "hunter22",
		Role:     "founder",
	}))

	require.Len(t, states, 2)
	require.Equal(t, result.KindLoading, states[0].Kind)
	require.Equal(t, result.KindSuccess, states[1].Kind)

	_, signed := provider.Current()
	require.True(t, signed, "successful signup leaves the user signed in")
	api.AssertExpectations(t)
}

func TestCreateAccount_BackendFailureRollsBackIdentity(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	api.On("CreateAccount", mock.Anything, mock.Anything).Return(Account{}, errors.New("account creation failed"))

	msg := testhelpers.RequireError(t, svc.CreateAccount(context.Background(), CreateAccountRequest{
		Name:     "Founder",
		Email:    "f@startup.dev",
		Password: "hunter22",
		Role:     "founder",
	}))
	require.Equal(t, "account creation failed", msg)

	// The identity created in this invocation must be gone: no session, and
	// the email is free to sign up again.
	_, signed := provider.Current()
	require.False(t, signed)
	_, err := provider.SignUp(context.Background(), "f@startup.dev", "hunter22")
	require.NoError(t, err)
}

func TestCreateAccount_IdentityFailureSkipsBackend(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	_, err := provider.SignUp(context.Background(), "taken@x.dev", "pw")
	require.NoError(t, err)
	provider.SignOut()

	msg := testhelpers.RequireError(t, svc.CreateAccount(context.Background(), CreateAccountRequest{
		Email:    "taken@x.dev",
		Password: "pw",
	}))
	require.Equal(t, ErrEmailTaken.Error(), msg)
	api.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	_, err := provider.SignUp(context.Background(), "b@x.dev", "pw")
	require.NoError(t, err)
	provider.SignOut()

	api.On("Login", mock.Anything, "b@x.dev", "pw").Return(Account{ID: 2, Email: "b@x.dev"}, nil)

	acct := testhelpers.RequireSuccess(t, svc.Login(context.Background(), "b@x.dev", "pw"))
	require.Equal(t, int64(2), acct.ID)

	_, signed := provider.Current()
	require.True(t, signed)
}

func TestLogin_BadCredentials(t *testing.T) {
	api := new(mockAccountAPI)
	svc, _ := newTestAuthService(api)

	msg := testhelpers.RequireError(t, svc.Login(context.Background(), "ghost@x.dev", "pw"))
	require.Equal(t, ErrInvalidCredentials.Error(), msg)
	api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountDetails_RequiresSession(t *testing.T) {
	api := new(mockAccountAPI)
	svc, _ := newTestAuthService(api)

	msg := testhelpers.RequireError(t, svc.AccountDetails(context.Background()))
	require.Equal(t, ErrNotAuthenticated.Error(), msg)
}

func TestUpdateAccount_InjectsSessionUUID(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	ident, err := provider.SignUp(context.Background(), "u@x.dev", "pw")
	require.NoError(t, err)

	api.On("UpdateAccount", mock.Anything, ident.UID, mock.MatchedBy(func(req UpdateAccountRequest) bool {
		return req.UUID == ident.UID && req.Name == "New Name"
	})).Return(Account{UUID: ident.UID, Name: "New Name"}, nil)

	acct := testhelpers.RequireSuccess(t, svc.UpdateAccount(context.Background(), UpdateAccountRequest{
		Name: "New Name",
		UUID: "spoofed",
	}))
	require.Equal(t, "New Name", acct.Name)
	api.AssertExpectations(t)
}

func TestDeleteAccount_BackendFirstThenIdentity(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	ident, err := provider.SignUp(context.Background(), "d@x.dev", "pw")
	require.NoError(t, err)

	api.On("DeleteAccount", mock.Anything, ident.UID).Return(nil)

	msg := testhelpers.RequireSuccess(t, svc.DeleteAccount(context.Background()))
	require.Equal(t, "account deleted", msg)

	_, signed := provider.Current()
	require.False(t, signed)
	_, err = provider.SignIn(context.Background(), "d@x.dev", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteAccount_BackendFailureKeepsIdentity(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	_, err := provider.SignUp(context.Background(), "d@x.dev", "pw")
	require.NoError(t, err)

	api.On("DeleteAccount", mock.Anything, mock.Anything).Return(errors.New("server says no"))

	testhelpers.RequireError(t, svc.DeleteAccount(context.Background()))

	_, signed := provider.Current()
	require.True(t, signed, "identity must survive a failed backend delete")
}

func TestRequestOTP_UsesSessionEmail(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	_, err := provider.SignUp(context.Background(), "otp@x.dev", "pw")
	require.NoError(t, err)

	api.On("RequestOTP", mock.Anything, "otp@x.dev").Return(nil)

	msg := testhelpers.RequireSuccess(t, svc.RequestOTP(context.Background()))
	require.Contains(t, msg, "otp@x.dev")
	api.AssertExpectations(t)
}

func TestVerifyOTP(t *testing.T) {
	api := new(mockAccountAPI)
	svc, provider := newTestAuthService(api)

	_, err := provider.SignUp(context.Background(), "otp@x.dev", "pw")
	require.NoError(t, err)

	api.On("VerifyOTP", mock.Anything, "otp@x.dev", "123456").Return(true, nil)

	verified := testhelpers.RequireSuccess(t, svc.VerifyOTP(context.Background(), "123456"))
	require.True(t, verified)
}

func TestVerificationStatus(t *testing.T) {
	api := new(mockAccountAPI)
	svc, _ := newTestAuthService(api)

	api.On("CheckVerification", mock.Anything, "v@x.dev").Return(false, nil)

	verified := testhelpers.RequireSuccess(t, svc.VerificationStatus(context.Background(), "v@x.dev"))
	require.False(t, verified)
}

func TestFlows_LoadingAlwaysFirst(t *testing.T) {
	api := new(mockAccountAPI)
	svc, _ := newTestAuthService(api)

	api.On("CheckVerification", mock.Anything, mock.Anything).Return(true, nil)

	states := testhelpers.CollectStates(t, svc.VerificationStatus(context.Background(), "v@x.dev"))
	require.NotEmpty(t, states)
	require.Equal(t, result.KindLoading, states[0].Kind)
}
