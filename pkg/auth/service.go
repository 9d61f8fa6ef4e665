package auth

import (
	"context"

	"github.com/sirupsen/logrus"

	"grveyardapp/pkg/result"
)

// Service owns the account flows: every method returns a channel that emits
// Loading, then exactly one Success or Error, and is closed afterwards. No
// flow retries internally; callers re-invoke on user-initiated retry.
type Service struct {
	api      AccountAPI
	provider Provider
	log      *logrus.Logger
}

func NewService(api AccountAPI, provider Provider, log *logrus.Logger) *Service {
	return &Service{api: api, provider: provider, log: log}
}

// CreateAccount signs the user up with the identity provider, then creates
// the backend account record carrying the issued UID. If the backend rejects
// the record, the just-created identity is deleted before the error is
// emitted so no orphaned identity is left behind.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) <-chan result.State[Account] {
	out := make(chan result.State[Account], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[Account]()) {
			return
		}

		ident, err := s.provider.SignUp(ctx, req.Email, req.Password)
		if err != nil {
			s.log.WithError(err).Warn("identity sign-up failed")
			result.Emit(ctx, out, result.Error[Account](err.Error()))
			return
		}
		req.UUID = ident.UID

		acct, err := s.api.CreateAccount(ctx, req)
		if err != nil {
			s.log.WithError(err).Warn("backend account creation failed, rolling back identity")
			if rbErr := s.provider.DeleteCurrent(ctx); rbErr != nil {
				s.log.WithError(rbErr).Error("identity rollback failed")
			}
			result.Emit(ctx, out, result.Error[Account](err.Error()))
			return
		}

		s.log.WithField("uuid", acct.UUID).Info("account created")
		result.Emit(ctx, out, result.Success(acct))
	}()
	return out
}

// Login signs in with the identity provider, then fetches the backend account
// record through the supplementary login endpoint.
func (s *Service) Login(ctx context.Context, email, password string) <-chan result.State[Account] {
	out := make(chan result.State[Account], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[Account]()) {
			return
		}

		if _, err := s.provider.SignIn(ctx, email, password); err != nil {
			result.Emit(ctx, out, result.Error[Account](err.Error()))
			return
		}

		acct, err := s.api.Login(ctx, email, password)
		if err != nil {
			result.Emit(ctx, out, result.Error[Account](err.Error()))
			return
		}
		result.Emit(ctx, out, result.Success(acct))
	}()
	return out
}

// AccountDetails fetches the signed-in user's backend account record.
func (s *Service) AccountDetails(ctx context.Context) <-chan result.State[Account] {
	out := make(chan result.State[Account], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[Account]()) {
			return
		}

		ident, ok := s.provider.Current()
		if !ok {
			result.Emit(ctx, out, result.Error[Account](ErrNotAuthenticated.Error()))
			return
		}

		acct, err := s.api.GetAccount(ctx, ident.UID)
		if err != nil {
			result.Emit(ctx, out, result.Error[Account](err.Error()))
			return
		}
		result.Emit(ctx, out, result.Success(acct))
	}()
	return out
}

// UpdateAccount updates the signed-in user's backend record. The request's
// UUID is always replaced with the session's UID.
func (s *Service) UpdateAccount(ctx context.Context, req UpdateAccountRequest) <-chan result.State[Account] {
	out := make(chan result.State[Account], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[Account]()) {
			return
		}

		ident, ok := s.provider.Current()
		if !ok {
			result.Emit(ctx, out, result.Error[Account](ErrNotAuthenticated.Error()))
			return
		}
		req.UUID = ident.UID

		acct, err := s.api.UpdateAccount(ctx, ident.UID, req)
		if err != nil {
			result.Emit(ctx, out, result.Error[Account](err.Error()))
			return
		}
		result.Emit(ctx, out, result.Success(acct))
	}()
	return out
}

// DeleteAccount removes the backend record first; only when that succeeds is
// the identity-provider account deleted and the session ended. A backend
// failure therefore leaves the identity intact and signed in.
func (s *Service) DeleteAccount(ctx context.Context) <-chan result.State[string] {
	out := make(chan result.State[string], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[string]()) {
			return
		}

		ident, ok := s.provider.Current()
		if !ok {
			result.Emit(ctx, out, result.Error[string](ErrNotAuthenticated.Error()))
			return
		}

		if err := s.api.DeleteAccount(ctx, ident.UID); err != nil {
			result.Emit(ctx, out, result.Error[string](err.Error()))
			return
		}

		if err := s.provider.DeleteCurrent(ctx); err != nil {
			s.log.WithError(err).Error("identity deletion failed after backend delete")
			result.Emit(ctx, out, result.Error[string](err.Error()))
			return
		}
		s.provider.SignOut()

		result.Emit(ctx, out, result.Success("account deleted"))
	}()
	return out
}

// RequestOTP asks the backend to mail a verification code to the signed-in
// user's email.
func (s *Service) RequestOTP(ctx context.Context) <-chan result.State[string] {
	out := make(chan result.State[string], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[string]()) {
			return
		}

		ident, ok := s.provider.Current()
		if !ok {
			result.Emit(ctx, out, result.Error[string](ErrNotAuthenticated.Error()))
			return
		}

		if err := s.api.RequestOTP(ctx, ident.Email); err != nil {
			result.Emit(ctx, out, result.Error[string](err.Error()))
			return
		}
		result.Emit(ctx, out, result.Success("OTP sent to "+ident.Email))
	}()
	return out
}

// VerifyOTP submits the code for the signed-in user's email.
func (s *Service) VerifyOTP(ctx context.Context, code string) <-chan result.State[bool] {
	out := make(chan result.State[bool], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[bool]()) {
			return
		}

		ident, ok := s.provider.Current()
		if !ok {
			result.Emit(ctx, out, result.Error[bool](ErrNotAuthenticated.Error()))
			return
		}

		verified, err := s.api.VerifyOTP(ctx, ident.Email, code)
		if err != nil {
			result.Emit(ctx, out, result.Error[bool](err.Error()))
			return
		}
		result.Emit(ctx, out, result.Success(verified))
	}()
	return out
}

// VerificationStatus queries whether the given email passed verification
// within the backend's validity window.
func (s *Service) VerificationStatus(ctx context.Context, email string) <-chan result.State[bool] {
	out := make(chan result.State[bool], 3)
	go func() {
		defer close(out)

		if !result.Emit(ctx, out, result.Loading[bool]()) {
			return
		}

		verified, err := s.api.CheckVerification(ctx, email)
		if err != nil {
			result.Emit(ctx, out, result.Error[bool](err.Error()))
			return
		}
		result.Emit(ctx, out, result.Success(verified))
	}()
	return out
}
