package devserver

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"grveyardapp/pkg/assets"
)

// Backend is an in-memory stand-in for the grveyard REST backend. It serves
// the same endpoint contract and response envelope, backs the integration
// tests, and powers the `graveyard dev-server` command. Failure toggles let
// tests force specific error paths.
type Backend struct {
	mu       sync.Mutex
	assets   map[int64]assets.Asset
	users    map[string]userRow // keyed by uuid
	otps     map[string]string
	verified map[string]bool

	nextAssetID int64
	nextUserID  int64
	otpCounter  int

	// FailNextCreateUser makes the next POST /users return 500. Used to
	// exercise the signup rollback path.
	FailNextCreateUser bool
	// FailListPage makes list requests for that page number return 500.
	// Zero disables the toggle.
	FailListPage int
}

type userRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	ProfilePicURL string `json:"profile_pic_url"`
	UUID          string `json:"uuid"`
	CreatedAt     string `json:"created_at"`

	password string
}

func NewBackend() *Backend {
	return &Backend{
		assets:   make(map[int64]assets.Asset),
		users:    make(map[string]userRow),
		otps:     make(map[string]string),
		verified: make(map[string]bool),
	}
}

type apiEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func send(c *gin.Context, code int, success bool, message string, data any) {
	c.JSON(code, apiEnvelope{
		Success:   success,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Router builds the gin engine serving the backend contract.
func (b *Backend) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), cors.Default())

	router.POST("/assets", b.createAsset)
	router.GET("/assets", b.listAssets)
	router.GET("/assets/:id", b.getAssetByID)
	router.GET("/users/:uuid/assets", b.listUserAssets)

	router.POST("/users", b.createUser)
	router.GET("/users/checkVerification", b.checkVerification)
	router.GET("/users/:uuid", b.getUser)
	router.PUT("/users/:uuid", b.updateUser)
	router.DELETE("/users/:uuid", b.deleteUser)
	router.POST("/users/login", b.login)

	router.POST("/getOTP", b.getOTP)
	router.POST("/verifyOTP", b.verifyOTP)

	return router
}

// SeedAssets inserts n sequential active assets owned by ownerUUID and
// returns them in id order.
func (b *Backend) SeedAssets(n int, ownerUUID string) []assets.Asset {
	b.mu.Lock()
	defer b.mu.Unlock()

	seeded := make([]assets.Asset, 0, n)
	for i := 0; i < n; i++ {
		b.nextAssetID++
		a := assets.Asset{
			ID:          b.nextAssetID,
			Title:       fmt.Sprintf("asset-%d", b.nextAssetID),
			Description: "seeded",
			AssetType:   "research",
			Price:       100 * b.nextAssetID,
			IsActive:    true,
			UserUUID:    ownerUUID,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		b.assets[a.ID] = a
		seeded = append(seeded, a)
	}
	return seeded
}

// PutAsset overwrites one asset row, for tests that mutate server state
// between fetches.
func (b *Backend) PutAsset(a assets.Asset) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assets[a.ID] = a
	if a.ID > b.nextAssetID {
		b.nextAssetID = a.ID
	}
}

// OTPFor returns the last code issued for email.
func (b *Backend) OTPFor(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.otps[email]
}

func (b *Backend) sortedAssets(ownerUUID string) []assets.Asset {
	rows := make([]assets.Asset, 0, len(b.assets))
	for _, a := range b.assets {
		if !a.IsActive {
			continue
		}
		if ownerUUID != "" && a.UserUUID != ownerUUID {
			continue
		}
		rows = append(rows, a)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func (b *Backend) listPage(c *gin.Context, ownerUUID string) {
	page, limit := pageParams(c)

	b.mu.Lock()
	failPage := b.FailListPage
	rows := b.sortedAssets(ownerUUID)
	b.mu.Unlock()

	if failPage != 0 && failPage == page {
		send(c, http.StatusInternalServerError, false, "list temporarily unavailable", nil)
		return
	}

	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}

	send(c, http.StatusOK, true, "assets listed", assets.AssetPage{
		Items: rows[start:end],
		Total: int64(len(rows)),
		Page:  page,
		Limit: limit,
	})
}

func (b *Backend) listAssets(c *gin.Context) {
	b.listPage(c, "")
}

func (b *Backend) listUserAssets(c *gin.Context) {
	b.listPage(c, c.Param("uuid"))
}

func (b *Backend) getAssetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		send(c, http.StatusBadRequest, false, "invalid asset id", nil)
		return
	}

	b.mu.Lock()
	a, ok := b.assets[id]
	b.mu.Unlock()

	if !ok {
		send(c, http.StatusNotFound, false, "asset not found", nil)
		return
	}
	send(c, http.StatusOK, true, "asset fetched", a)
}

func (b *Backend) createAsset(c *gin.Context) {
	var req assets.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}
	if !assets.IsValidAssetType(req.AssetType) {
		send(c, http.StatusBadRequest, false, "invalid asset_type", nil)
		return
	}
	if req.Price < 0 {
		send(c, http.StatusBadRequest, false, "price cannot be negative", nil)
		return
	}
	if req.UserUUID == "" {
		send(c, http.StatusUnauthorized, false, "missing owner", nil)
		return
	}

	b.mu.Lock()
	b.nextAssetID++
	created := assets.Asset{
		ID:           b.nextAssetID,
		Title:        req.Title,
		Description:  req.Description,
		AssetType:    req.AssetType,
		ImageURL:     req.ImageURL,
		Price:        req.Price,
		IsNegotiable: req.IsNegotiable,
		IsSold:       req.IsSold,
		IsActive:     true,
		UserUUID:     req.UserUUID,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	b.assets[created.ID] = created
	b.mu.Unlock()

	send(c, http.StatusCreated, true, "asset created", created)
}

type createUserRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Role          string `json:"role" binding:"required"`
	Password      string `json:"password" binding:"required"`
	ProfilePicURL string `json:"profile_pic_url"`
	UUID          string `json:"uuid"`
}

func (b *Backend) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	b.mu.Lock()
	if b.FailNextCreateUser {
		b.FailNextCreateUser = false
		b.mu.Unlock()
		send(c, http.StatusInternalServerError, false, "account creation failed", nil)
		return
	}
	for _, u := range b.users {
		if u.Email == req.Email {
			b.mu.Unlock()
			send(c, http.StatusBadRequest, false, "user exists with that email", nil)
			return
		}
	}
	b.nextUserID++
	row := userRow{
		ID:            b.nextUserID,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		ProfilePicURL: req.ProfilePicURL,
		UUID:          req.UUID,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		password:      req.Password,
	}
	b.users[row.UUID] = row
	b.mu.Unlock()

	send(c, http.StatusCreated, true, "user created", row)
}

func (b *Backend) getUser(c *gin.Context) {
	b.mu.Lock()
	row, ok := b.users[c.Param("uuid")]
	b.mu.Unlock()

	if !ok {
		send(c, http.StatusNotFound, false, "user not found", nil)
		return
	}
	send(c, http.StatusOK, true, "user fetched", row)
}

type updateUserRequest struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	ProfilePicURL string `json:"profile_pic_url"`
	UUID          string `json:"uuid"`
}

func (b *Backend) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	b.mu.Lock()
	row, ok := b.users[c.Param("uuid")]
	if ok {
		if req.Name != "" {
			row.Name = req.Name
		}
		if req.Role != "" {
			row.Role = req.Role
		}
		if req.ProfilePicURL != "" {
			row.ProfilePicURL = req.ProfilePicURL
		}
		b.users[row.UUID] = row
	}
	b.mu.Unlock()

	if !ok {
		send(c, http.StatusNotFound, false, "user not found", nil)
		return
	}
	send(c, http.StatusOK, true, "user updated", row)
}

func (b *Backend) deleteUser(c *gin.Context) {
	b.mu.Lock()
	row, ok := b.users[c.Param("uuid")]
	if ok {
		delete(b.users, row.UUID)
	}
	b.mu.Unlock()

	if !ok {
		send(c, http.StatusNotFound, false, "user not found", nil)
		return
	}
	send(c, http.StatusOK, true, "user deleted", nil)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (b *Backend) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(c, http.StatusBadRequest, false, "invalid request payload", nil)
		return
	}

	b.mu.Lock()
	var found *userRow
	for _, u := range b.users {
		if u.Email == req.Email {
			row := u
			found = &row
			break
		}
	}
	b.mu.Unlock()

	if found == nil || found.password != req.Password {
		send(c, http.StatusUnauthorized, false, "invalid credentials", nil)
		return
	}
	send(c, http.StatusOK, true, "login successful", found)
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (b *Backend) getOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		send(c, http.StatusBadRequest, false, "Invalid request: "+err.Error(), nil)
		return
	}

	b.mu.Lock()
	b.otpCounter++
	code := fmt.Sprintf("%06d", 100000+b.otpCounter)
	b.otps[req.Email] = code
	b.mu.Unlock()

	send(c, http.StatusOK, true, "OTP sent successfully to "+req.Email, nil)
}

type verifyOTPBody struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (b *Backend) verifyOTP(c *gin.Context) {
	var req verifyOTPBody
	if err := c.ShouldBindJSON(&req); err != nil {
		send(c, http.StatusBadRequest, false, "Invalid request: "+err.Error(), nil)
		return
	}

	b.mu.Lock()
	code, ok := b.otps[req.Email]
	valid := ok && code == req.Code
	if valid {
		delete(b.otps, req.Email)
		b.verified[req.Email] = true
	}
	b.mu.Unlock()

	if !valid {
		send(c, http.StatusUnauthorized, false, "Invalid OTP", nil)
		return
	}
	send(c, http.StatusOK, true, "OTP verified successfully", gin.H{"verified": true})
}

func (b *Backend) checkVerification(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		send(c, http.StatusBadRequest, false, "email is required", nil)
		return
	}

	b.mu.Lock()
	verified := b.verified[email]
	b.mu.Unlock()

	send(c, http.StatusOK, true, "verification status", gin.H{"verified": verified})
}
