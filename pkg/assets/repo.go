package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"grveyardapp/pkg/api"
)

// AssetRepository is the remote data source for assets. Every method maps a
// single backend call; page and limit must be positive.
type AssetRepository interface {
	ListAssets(ctx context.Context, page, limit int) ([]Asset, error)
	ListAssetsByUser(ctx context.Context, userUUID string, page, limit int) ([]Asset, error)
	GetAssetByID(ctx context.Context, id int64) (Asset, error)
	CreateAsset(ctx context.Context, req CreateAssetRequest) (Asset, error)
}

type restAssetRepository struct {
	client *api.Client
}

func NewRESTAssetRepository(client *api.Client) AssetRepository {
	return &restAssetRepository{client: client}
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

func (r *restAssetRepository) ListAssets(ctx context.Context, page, limit int) ([]Asset, error) {
	if page < 1 || limit <= 0 {
		return nil, fmt.Errorf("invalid page request: page=%d limit=%d", page, limit)
	}

	var data AssetPage
	if err := r.client.Get(ctx, "/assets", pageQuery(page, limit), &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

func (r *restAssetRepository) ListAssetsByUser(ctx context.Context, userUUID string, page, limit int) ([]Asset, error) {
	if page < 1 || limit <= 0 {
		return nil, fmt.Errorf("invalid page request: page=%d limit=%d", page, limit)
	}
	if userUUID == "" {
		return nil, errors.New("user uuid is required")
	}

	var data AssetPage
	path := "/users/" + url.PathEscape(userUUID) + "/assets"
	if err := r.client.Get(ctx, path, pageQuery(page, limit), &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

func (r *restAssetRepository) GetAssetByID(ctx context.Context, id int64) (Asset, error) {
	var a Asset
	err := r.client.Get(ctx, "/assets/"+strconv.FormatInt(id, 10), nil, &a)
	if err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (r *restAssetRepository) CreateAsset(ctx context.Context, req CreateAssetRequest) (Asset, error) {
	var created Asset
	if err := r.client.Post(ctx, "/assets", req, &created); err != nil {
		return Asset{}, err
	}
	return created, nil
}
