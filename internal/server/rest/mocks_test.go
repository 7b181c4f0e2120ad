package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errNotImplemented = errors.New("not implemented")

var (
	adminAccount = &models.Account{ID: 1, Username: "root", Email: "root@example.com", PasswordHash: "secret-hash", IsAdmin: true}
	userAccount  = &models.Account{ID: 2, Username: "alice", Email: "alice@example.com", PasswordHash: "secret-hash"}
)

// mockGuard accepts the tokens "admin" and "user".
type mockGuard struct{}

func (mockGuard) RequireUser(_ context.Context, token string) (*services.Session, error) {
	switch token {
	case "admin":
		return &services.Session{Account: adminAccount, Claims: &auth.Claims{Name: "root"}}, nil
	case "user":
		return &services.Session{Account: userAccount, Claims: &auth.Claims{Name: "alice"}}, nil
	}
	return nil, common.ErrUnauthenticated
}

func (g mockGuard) RequireAdmin(ctx context.Context, token string) (*services.Session, error) {
	s, err := g.RequireUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.Account.IsAdmin {
		return nil, common.ErrForbidden
	}
	return s, nil
}

type mockAccounts struct {
	registerFunc      func(ctx context.Context, r services.Registration) (*models.Account, error)
	loginFunc         func(ctx context.Context, login, password string) (string, error)
	logoutFunc        func(ctx context.Context, claims *auth.Claims) error
	listFunc          func(ctx context.Context) ([]*models.Account, error)
	promoteFunc       func(ctx context.Context, username string) error
	demoteFunc        func(ctx context.Context, username string) error
	deleteSelfFunc    func(ctx context.Context, caller *models.Account) error
	deleteAccountFunc func(ctx context.Context, caller *models.Account, targetID int64) error
}

func (m *mockAccounts) Register(ctx context.Context, r services.Registration) (*models.Account, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, r)
	}
	return nil, errNotImplemented
}

func (m *mockAccounts) Login(ctx context.Context, login, password string) (string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, login, password)
	}
	return "", errNotImplemented
}

func (m *mockAccounts) Logout(ctx context.Context, claims *auth.Claims) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, claims)
	}
	return errNotImplemented
}

func (m *mockAccounts) List(ctx context.Context) ([]*models.Account, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockAccounts) Promote(ctx context.Context, username string) error {
	if m.promoteFunc != nil {
		return m.promoteFunc(ctx, username)
	}
	return errNotImplemented
}

func (m *mockAccounts) Demote(ctx context.Context, username string) error {
	if m.demoteFunc != nil {
		return m.demoteFunc(ctx, username)
	}
	return errNotImplemented
}

func (m *mockAccounts) DeleteSelf(ctx context.Context, caller *models.Account) error {
	if m.deleteSelfFunc != nil {
		return m.deleteSelfFunc(ctx, caller)
	}
	return errNotImplemented
}

func (m *mockAccounts) DeleteAccount(ctx context.Context, caller *models.Account, targetID int64) error {
	if m.deleteAccountFunc != nil {
		return m.deleteAccountFunc(ctx, caller, targetID)
	}
	return errNotImplemented
}

type mockJobs struct {
	claimFunc        func(ctx context.Context, caller *models.Account, job *models.Job) (*services.ClaimResult, error)
	listAllFunc      func(ctx context.Context) ([]*models.Job, error)
	listMineFunc     func(ctx context.Context, caller *models.Account) ([]*models.Job, error)
	updateFunc       func(ctx context.Context, caller *models.Account, patch *models.JobPatch) (*models.Job, error)
	updateRatingFunc func(ctx context.Context, caller *models.Account, jobID int64, patch *models.RatingPatch) (*models.Rating, error)
	deleteFunc       func(ctx context.Context, caller *models.Account, jobID int64) error
}

func (m *mockJobs) Claim(ctx context.Context, caller *models.Account, job *models.Job) (*services.ClaimResult, error) {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, caller, job)
	}
	return nil, errNotImplemented
}

func (m *mockJobs) ListAll(ctx context.Context) ([]*models.Job, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockJobs) ListMine(ctx context.Context, caller *models.Account) ([]*models.Job, error) {
	if m.listMineFunc != nil {
		return m.listMineFunc(ctx, caller)
	}
	return nil, errNotImplemented
}

func (m *mockJobs) Update(ctx context.Context, caller *models.Account, patch *models.JobPatch) (*models.Job, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, caller, patch)
	}
	return nil, errNotImplemented
}

func (m *mockJobs) UpdateRating(ctx context.Context, caller *models.Account, jobID int64, patch *models.RatingPatch) (*models.Rating, error) {
	if m.updateRatingFunc != nil {
		return m.updateRatingFunc(ctx, caller, jobID, patch)
	}
	return nil, errNotImplemented
}

func (m *mockJobs) Delete(ctx context.Context, caller *models.Account, jobID int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, caller, jobID)
	}
	return errNotImplemented
}

type mockSearches struct {
	listAllFunc  func(ctx context.Context) ([]*models.Search, error)
	listMineFunc func(ctx context.Context, caller *models.Account) ([]*models.Search, error)
	upsertFunc   func(ctx context.Context, caller *models.Account, search *models.Search) (*models.Search, error)
}

func (m *mockSearches) ListAll(ctx context.Context) ([]*models.Search, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockSearches) ListMine(ctx context.Context, caller *models.Account) ([]*models.Search, error) {
	if m.listMineFunc != nil {
		return m.listMineFunc(ctx, caller)
	}
	return nil, errNotImplemented
}

func (m *mockSearches) Upsert(ctx context.Context, caller *models.Account, search *models.Search) (*models.Search, error) {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, caller, search)
	}
	return nil, errNotImplemented
}

type testAPI struct {
	router   *gin.Engine
	accounts *mockAccounts
	jobs     *mockJobs
	searches *mockSearches
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &testAPI{accounts: &mockAccounts{}, jobs: &mockJobs{}, searches: &mockSearches{}}
	h := NewHandler(mockGuard{}, api.accounts, api.jobs, api.searches, logging.Nop{})
	api.router = NewRouter(h, NewMetrics())
	return api
}

// do sends a request with an optional JSON body and bearer token.
func (a *testAPI) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equalf(t, want, w.Code, "body: %s", w.Body.String())
}
