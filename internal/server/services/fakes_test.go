package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/accounts"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/jobs"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/ratings"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/searches"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type ratingKey struct{ job, account int64 }

// memStore is an in-memory stand-in for all four repositories. errs injects a
// failure by method name, e.g. "accounts.LockAdmins".
type memStore struct {
	accounts map[int64]*models.Account
	jobs     map[int64]*models.Job
	ratings  map[ratingKey]*models.Rating
	searches map[int64]*models.Search
	nextID   int64

	errs     map[string]error
	failOnce map[string]error

	// beforeJobCreate runs before a job insert; returning an error aborts it.
	beforeJobCreate func(job *models.Job) error

	calls []string
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[int64]*models.Account{},
		jobs:     map[int64]*models.Job{},
		ratings:  map[ratingKey]*models.Rating{},
		searches: map[int64]*models.Search{},
		errs:     map[string]error{},
		failOnce: map[string]error{},
	}
}

func (m *memStore) call(name string) error {
	m.calls = append(m.calls, name)
	if err, ok := m.failOnce[name]; ok {
		delete(m.failOnce, name)
		return err
	}
	return m.errs[name]
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addAccount(username string, admin bool) *models.Account {
	a := &models.Account{ID: m.id(), Username: username, Email: username + "@example.com", PasswordHash: "hash:Password123!", IsAdmin: admin}
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) addJob(iid string) *models.Job {
	j := &models.Job{ID: m.id(), Description: "d"}
	if iid != "" {
		j.IID = &iid
	}
	m.jobs[j.ID] = j
	return j
}

func (m *memStore) link(jobID, accountID int64) {
	m.ratings[ratingKey{jobID, accountID}] = &models.Rating{JobID: jobID, AccountID: accountID}
}

type fakeRepoManager struct{ s *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository         { return (*memAccounts)(f.s) }
func (f *fakeRepoManager) Jobs(dbx.DBTX) jobs.Repository                 { return (*memJobs)(f.s) }
func (f *fakeRepoManager) Ratings(dbx.DBTX) ratings.Repository           { return (*memRatings)(f.s) }
func (f *fakeRepoManager) Searches(dbx.DBTX) searches.Repository         { return (*memSearches)(f.s) }

// --- accounts ---

type memAccounts memStore

func (r *memAccounts) s() *memStore { return (*memStore)(r) }

func (r *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	if err := r.s().call("accounts.Create"); err != nil {
		return nil, err
	}
	for _, x := range r.accounts {
		if x.Username == a.Username || x.Email == a.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	a.ID = r.s().id()
	a.CreatedAt = time.Now()
	r.accounts[a.ID] = a
	return a, nil
}

func (r *memAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	if err := r.s().call("accounts.GetByID"); err != nil {
		return nil, err
	}
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memAccounts) find(match func(*models.Account) bool) (*models.Account, error) {
	for _, a := range r.accounts {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	if err := r.s().call("accounts.GetByUsername"); err != nil {
		return nil, err
	}
	return r.find(func(a *models.Account) bool { return a.Username == username })
}

func (r *memAccounts) GetByLogin(_ context.Context, login string) (*models.Account, error) {
	if err := r.s().call("accounts.GetByLogin"); err != nil {
		return nil, err
	}
	return r.find(func(a *models.Account) bool { return a.Username == login || a.Email == login })
}

func (r *memAccounts) FindConflicts(_ context.Context, username, email string) (bool, bool, error) {
	if err := r.s().call("accounts.FindConflicts"); err != nil {
		return false, false, err
	}
	var u, e bool
	for _, a := range r.accounts {
		u = u || a.Username == username
		e = e || a.Email == email
	}
	return u, e, nil
}

func (r *memAccounts) List(context.Context) ([]*models.Account, error) {
	if err := r.s().call("accounts.List"); err != nil {
		return nil, err
	}
	out := []*models.Account{}
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAccounts) LockAdmins(context.Context) ([]int64, error) {
	if err := r.s().call("accounts.LockAdmins"); err != nil {
		return nil, err
	}
	var ids []int64
	for _, a := range r.accounts {
		if a.IsAdmin {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

func (r *memAccounts) SetAdmin(_ context.Context, id int64, admin bool) error {
	if err := r.s().call("accounts.SetAdmin"); err != nil {
		return err
	}
	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.IsAdmin = admin
	return nil
}

func (r *memAccounts) Delete(_ context.Context, id int64) error {
	if err := r.s().call("accounts.Delete"); err != nil {
		return err
	}
	if _, ok := r.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.accounts, id)
	for k := range r.ratings {
		if k.account == id {
			delete(r.ratings, k)
		}
	}
	return nil
}

// --- jobs ---

type memJobs memStore

func (r *memJobs) s() *memStore { return (*memStore)(r) }

func (r *memJobs) Create(_ context.Context, j *models.Job) (*models.Job, error) {
	if err := r.s().call("jobs.Create"); err != nil {
		return nil, err
	}
	if r.beforeJobCreate != nil {
		if err := r.beforeJobCreate(j); err != nil {
			return nil, err
		}
	}
	for _, x := range r.jobs {
		if x.IID != nil && j.IID != nil && *x.IID == *j.IID {
			return nil, common.ErrAlreadyExists
		}
	}
	j.ID = r.s().id()
	cp := *j
	r.jobs[j.ID] = &cp
	return j, nil
}

func (r *memJobs) GetByID(_ context.Context, id int64) (*models.Job, error) {
	if err := r.s().call("jobs.GetByID"); err != nil {
		return nil, err
	}
	if j, ok := r.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memJobs) GetByIID(_ context.Context, iid string) (*models.Job, error) {
	if err := r.s().call("jobs.GetByIID"); err != nil {
		return nil, err
	}
	for _, j := range r.jobs {
		if j.IID != nil && *j.IID == iid {
			cp := *j
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memJobs) sorted(keep func(*models.Job) bool) []*models.Job {
	out := []*models.Job{}
	for _, j := range r.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (r *memJobs) List(context.Context) ([]*models.Job, error) {
	if err := r.s().call("jobs.List"); err != nil {
		return nil, err
	}
	return r.sorted(func(*models.Job) bool { return true }), nil
}

func (r *memJobs) ListByAccount(_ context.Context, accountID int64) ([]*models.Job, error) {
	if err := r.s().call("jobs.ListByAccount"); err != nil {
		return nil, err
	}
	return r.sorted(func(j *models.Job) bool {
		_, ok := r.ratings[ratingKey{j.ID, accountID}]
		return ok
	}), nil
}

func (r *memJobs) Update(_ context.Context, j *models.Job) error {
	if err := r.s().call("jobs.Update"); err != nil {
		return err
	}
	if _, ok := r.jobs[j.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *memJobs) Delete(_ context.Context, id int64) error {
	if err := r.s().call("jobs.Delete"); err != nil {
		return err
	}
	if _, ok := r.jobs[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.jobs, id)
	for k := range r.ratings {
		if k.job == id {
			delete(r.ratings, k)
		}
	}
	return nil
}

// --- ratings ---

type memRatings memStore

func (r *memRatings) s() *memStore { return (*memStore)(r) }

func (r *memRatings) Create(_ context.Context, x *models.Rating) (*models.Rating, error) {
	if err := r.s().call("ratings.Create"); err != nil {
		return nil, err
	}
	k := ratingKey{x.JobID, x.AccountID}
	if _, ok := r.ratings[k]; ok {
		return nil, common.ErrAlreadyExists
	}
	cp := *x
	r.ratings[k] = &cp
	return x, nil
}

func (r *memRatings) Get(_ context.Context, jobID, accountID int64) (*models.Rating, error) {
	if err := r.s().call("ratings.Get"); err != nil {
		return nil, err
	}
	if x, ok := r.ratings[ratingKey{jobID, accountID}]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memRatings) UpdateUserRating(_ context.Context, x *models.Rating) error {
	if err := r.s().call("ratings.UpdateUserRating"); err != nil {
		return err
	}
	k := ratingKey{x.JobID, x.AccountID}
	if _, ok := r.ratings[k]; !ok {
		return common.ErrorNotFound
	}
	cp := *x
	r.ratings[k] = &cp
	return nil
}

func (r *memRatings) Delete(_ context.Context, jobID, accountID int64) error {
	if err := r.s().call("ratings.Delete"); err != nil {
		return err
	}
	k := ratingKey{jobID, accountID}
	if _, ok := r.ratings[k]; !ok {
		return common.ErrorNotFound
	}
	delete(r.ratings, k)
	return nil
}

func (r *memRatings) CountForJob(_ context.Context, jobID int64) (int, error) {
	if err := r.s().call("ratings.CountForJob"); err != nil {
		return 0, err
	}
	n := 0
	for k := range r.ratings {
		if k.job == jobID {
			n++
		}
	}
	return n, nil
}

// --- searches ---

type memSearches memStore

func (r *memSearches) s() *memStore { return (*memStore)(r) }

func (r *memSearches) Create(_ context.Context, x *models.Search) (*models.Search, error) {
	if err := r.s().call("searches.Create"); err != nil {
		return nil, err
	}
	x.ID = r.s().id()
	cp := *x
	r.searches[x.ID] = &cp
	return x, nil
}

func (r *memSearches) Update(_ context.Context, x *models.Search) (*models.Search, error) {
	if err := r.s().call("searches.Update"); err != nil {
		return nil, err
	}
	if _, ok := r.searches[x.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *x
	r.searches[x.ID] = &cp
	return x, nil
}

func (r *memSearches) GetByID(_ context.Context, id int64) (*models.Search, error) {
	if err := r.s().call("searches.GetByID"); err != nil {
		return nil, err
	}
	if x, ok := r.searches[id]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (r *memSearches) List(context.Context) ([]*models.Search, error) {
	if err := r.s().call("searches.List"); err != nil {
		return nil, err
	}
	out := []*models.Search{}
	for _, x := range r.searches {
		out = append(out, x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memSearches) ListByAccount(_ context.Context, accountID int64) ([]*models.Search, error) {
	all, err := r.List(context.Background())
	if err != nil {
		return nil, err
	}
	out := []*models.Search{}
	for _, x := range all {
		if x.AccountID == accountID {
			out = append(out, x)
		}
	}
	return out, nil
}

// --- collaborators ---

// fakeHasher "hashes" by prefixing, which keeps tests fast and readable.
type fakeHasher struct {
	hashErr    error
	dummyCalls int
}

func (h *fakeHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hash:" + p, nil
}

func (h *fakeHasher) Verify(p, cred string) bool { return cred == "hash:"+p }
func (h *fakeHasher) VerifyDummy(string)        { h.dummyCalls++ }

type fakeTokens struct {
	issued      []string
	validateOut *auth.Claims
	validateErr error
	revoked     []*auth.Claims
	issueErr    error
}

func (f *fakeTokens) Issue(id int64, username string, tier auth.Tier) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	tok := username + ":" + string(tier)
	f.issued = append(f.issued, tok)
	return tok, nil
}

func (f *fakeTokens) Validate(context.Context, string) (*auth.Claims, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.validateOut, nil
}

func (f *fakeTokens) Revoke(_ context.Context, c *auth.Claims) error {
	f.revoked = append(f.revoked, c)
	return nil
}
