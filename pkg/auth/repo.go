package auth

import (
	"context"
	"net/url"

	"grveyardapp/pkg/api"
)

// AccountAPI is the backend's account surface as seen from the client.
type AccountAPI interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error)
	GetAccount(ctx context.Context, uuid string) (Account, error)
	UpdateAccount(ctx context.Context, uuid string, req UpdateAccountRequest) (Account, error)
	DeleteAccount(ctx context.Context, uuid string) error
	Login(ctx context.Context, email, password string) (Account, error)
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (bool, error)
	CheckVerification(ctx context.Context, email string) (bool, error)
}

type restAccountAPI struct {
	client *api.Client
}

func NewRESTAccountAPI(client *api.Client) AccountAPI {
	return &restAccountAPI{client: client}
}

func (r *restAccountAPI) CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error) {
	var acct Account
	if err := r.client.Post(ctx, "/users", req, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (r *restAccountAPI) GetAccount(ctx context.Context, uuid string) (Account, error) {
	var acct Account
	if err := r.client.Get(ctx, "/users/"+url.PathEscape(uuid), nil, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (r *restAccountAPI) UpdateAccount(ctx context.Context, uuid string, req UpdateAccountRequest) (Account, error) {
	var acct Account
	if err := r.client.Put(ctx, "/users/"+url.PathEscape(uuid), req, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (r *restAccountAPI) DeleteAccount(ctx context.Context, uuid string) error {
	return r.client.Delete(ctx, "/users/"+url.PathEscape(uuid), nil)
}

func (r *restAccountAPI) Login(ctx context.Context, email, password string) (Account, error) {
	var acct Account
	if err := r.client.Post(ctx, "/users/login", loginRequest{Email: email, Password: password}, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (r *restAccountAPI) RequestOTP(ctx context.Context, email string) error {
	return r.client.Post(ctx, "/getOTP", otpRequest{Email: email}, nil)
}

func (r *restAccountAPI) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	var payload verifiedPayload
	if err := r.client.Post(ctx, "/verifyOTP", verifyOTPRequest{Email: email, Code: code}, &payload); err != nil {
		return false, err
	}
	return payload.Verified, nil
}

func (r *restAccountAPI) CheckVerification(ctx context.Context, email string) (bool, error) {
	q := url.Values{}
	q.Set("email", email)

	var payload verifiedPayload
	if err := r.client.Get(ctx, "/users/checkVerification", q, &payload); err != nil {
		return false, err
	}
	return payload.Verified, nil
}
