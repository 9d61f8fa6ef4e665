package assets

// Asset is one listed item for sale. Field values mirror the backend wire
// records one to one; the client derives nothing. CreatedAt stays the wire
// string since the client only ever displays it.
type Asset struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssetType    string `json:"asset_type"`
	Price        int64  `json:"price"`
	ImageURL     string `json:"image_url"`
	IsSold       bool   `json:"is_sold"`
	IsActive     bool   `json:"is_active"`
	IsNegotiable bool   `json:"is_negotiable"`
	UserUUID     string `json:"user_uuid"`
	CreatedAt    string `json:"created_at"`
}

// CreateAssetRequest is the body of POST /assets. UserUUID is overwritten
// from the active session right before transmission, whatever the caller put
// there.
type CreateAssetRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssetType    string `json:"asset_type"`
	ImageURL     string `json:"image_url"`
	Price        int64  `json:"price"`
	IsNegotiable bool   `json:"is_negotiable"`
	IsSold       bool   `json:"is_sold"`
	UserUUID     string `json:"user_uuid"`
}

// AssetPage is the payload of the paginated list endpoints.
type AssetPage struct {
	Items []Asset `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

func IsValidAssetType(assetType string) bool {
	switch assetType {
	case "research", "codebase", "domain", "product", "data", "other":
		return true
	default:
		return false
	}
}
