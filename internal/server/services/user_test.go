package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/verifications"
)

// ---- fakes ----

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	created       []*models.User
	updatedTokens map[string]string
	cleared       []string

	createErr error
	updateErr error
	clearErr  error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail:       map[string]*models.User{},
		byID:          map[string]*models.User{},
		updatedTokens: map[string]string{},
	}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, u)
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdateRefreshToken(ctx context.Context, userID string, token string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedTokens[userID] = token
	return nil
}

func (f *fakeUsersRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type pendingRecord struct {
	userID    string
	code      int64
	expiresAt time.Time
}

type fakeVerificationsRepo struct {
	pending  []pendingRecord
	verified []string

	setPendingErr   error
	markVerifiedErr error
}

func (f *fakeVerificationsRepo) SetPending(ctx context.Context, userID string, code int64, expiresAt time.Time) error {
	if f.setPendingErr != nil {
		return f.setPendingErr
	}
	f.pending = append(f.pending, pendingRecord{userID: userID, code: code, expiresAt: expiresAt})
	return nil
}

func (f *fakeVerificationsRepo) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	if f.markVerifiedErr != nil {
		return f.markVerifiedErr
	}
	f.verified = append(f.verified, userID)
	return nil
}

type fakeRepoManager struct {
	users  *fakeUsersRepo
	verifs *fakeVerificationsRepo
}

func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return f.users }
func (f *fakeRepoManager) Verifications(db dbx.DBTX) verifications.Repository  { return f.verifs }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

type sentMail struct {
	code int64
	to   string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendVerificationEmail(ctx context.Context, code int64, to string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{code: code, to: to})
	return nil
}

// fakeHasher makes hashing deterministic and records verify calls.
type fakeHasher struct {
	verifyCalls []string
}

func (f *fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (f *fakeHasher) Verify(hash string, plaintext string) bool {
	f.verifyCalls = append(f.verifyCalls, hash)
	return hash == "hashed:"+plaintext
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

type fixture struct {
	svc    *Service
	repos  *fakeRepoManager
	mailer *fakeMailer
	hasher *fakeHasher
	signer *auth.Signer
	db     *sql.DB
	mock   sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repos := &fakeRepoManager{users: newFakeUsersRepo(), verifs: &fakeVerificationsRepo{}}
	mailer := &fakeMailer{}
	hasher := &fakeHasher{}
	signer := auth.NewSigner([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 3*24*time.Hour)
	logger := testLogger()

	vm := NewVerificationManager(db, repos, mailer, 2*time.Hour, logger)
	svc := NewService(db, repos, hasher, signer, vm, logger)

	return &fixture{svc: svc, repos: repos, mailer: mailer, hasher: hasher, signer: signer, db: db, mock: mock}
}

func verifiedUser(id, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		UserName:     "u-" + id,
		PasswordHash: "hashed:pw",
		CreatedAt:    now,
		UpdatedAt:    now,
		Verification: &models.EmailVerification{UserID: id, Verified: true, VerifiedAt: &now},
	}
}

// ---- Register ----

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	got, err := f.svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "a@x.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if got.Email != "a@x.com" || got.UserName != "alice" || got.ID == "" {
		t.Fatalf("unexpected public user: %+v", got)
	}

	if len(f.mailer.sent) != 1 || f.mailer.sent[0].to != "a@x.com" {
		t.Fatalf("expected one verification email, got %+v", f.mailer.sent)
	}

	if len(f.repos.users.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(f.repos.users.created))
	}
	created := f.repos.users.created[0]
	if created.PasswordHash != "hashed:pw" {
		t.Errorf("password stored unhashed: %q", created.PasswordHash)
	}

	if len(f.repos.verifs.pending) != 1 {
		t.Fatalf("expected one pending code, got %d", len(f.repos.verifs.pending))
	}
	p := f.repos.verifs.pending[0]
	if p.userID != created.ID {
		t.Errorf("pending code user mismatch: %q vs %q", p.userID, created.ID)
	}
	if p.code != f.mailer.sent[0].code {
		t.Errorf("persisted code %d differs from emailed code %d", p.code, f.mailer.sent[0].code)
	}

	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sqlmock expectations: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.repos.users.add(verifiedUser("u-1", "a@x.com"))

	_, err := f.svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "a@x.com", Password: "pw",
	})
	if !errors.Is(err, common.ErrorEmailExists) {
		t.Fatalf("expected common.ErrorEmailExists, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Errorf("no mail should be sent for a duplicate email")
	}
}

func TestRegister_DeliveryFailure_NoStateChange(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "a@x.com", Password: "pw",
	})
	if !errors.Is(err, common.ErrorDeliveryFailure) {
		t.Fatalf("expected common.ErrorDeliveryFailure, got %v", err)
	}
	if len(f.repos.users.created) != 0 {
		t.Errorf("no user may be created when delivery fails")
	}
	if len(f.repos.verifs.pending) != 0 {
		t.Errorf("no pending code may be stored when delivery fails")
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no transaction should be opened: %v", err)
	}
}

func TestRegister_TxFailure_RollsUpAsInternal(t *testing.T) {
	f := newFixture(t)
	f.repos.users.createErr = errors.New("db down")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Register(context.Background(), RegisterInput{
		UserName: "alice", Email: "a@x.com", Password: "pw",
	})
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("expected common.ErrorInternal, got %v", err)
	}
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sqlmock expectations: %v", err)
	}
}

// ---- Login ----

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), "ghost@x.com", "pw")
	if !errors.Is(err, common.ErrorInvalidCredentials) {
		t.Fatalf("expected common.ErrorInvalidCredentials, got %v", err)
	}

	// The dummy compare keeps the miss path doing hash work.
	if len(f.hasher.verifyCalls) != 1 || f.hasher.verifyCalls[0] != dummyPasswordHash {
		t.Errorf("expected one dummy verify call, got %v", f.hasher.verifyCalls)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.repos.users.add(verifiedUser("u-1", "a@x.com"))

	_, err := f.svc.Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, common.ErrorInvalidCredentials) {
		t.Fatalf("expected common.ErrorInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnverifiedAccount_ReissuesCode(t *testing.T) {
	f := newFixture(t)
	code := int64(123456)
	expired := time.Now().Add(-time.Minute)
	u := verifiedUser("u-1", "a@x.com")
	u.Verification = &models.EmailVerification{UserID: "u-1", Code: &code, ExpiresAt: &expired}
	f.repos.users.add(u)

	_, err := f.svc.Login(context.Background(), "a@x.com", "pw")
	if !errors.Is(err, common.ErrorEmailNotVerified) {
		t.Fatalf("expected common.ErrorEmailNotVerified, got %v", err)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected a fresh code to be emailed, got %d sends", len(f.mailer.sent))
	}
	if len(f.repos.verifs.pending) != 1 || f.repos.verifs.pending[0].code != f.mailer.sent[0].code {
		t.Fatalf("emailed and persisted codes must match: %+v vs %+v", f.mailer.sent, f.repos.verifs.pending)
	}
}

func TestLogin_UnverifiedAccount_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	u := verifiedUser("u-1", "a@x.com")
	u.Verification = nil
	f.repos.users.add(u)
	f.mailer.err = errors.New("smtp down")

	_, err := f.svc.Login(context.Background(), "a@x.com", "pw")
	if !errors.Is(err, common.ErrorDeliveryFailure) {
		t.Fatalf("expected common.ErrorDeliveryFailure, got %v", err)
	}
	if len(f.repos.verifs.pending) != 0 {
		t.Errorf("no pending code may be stored when delivery fails")
	}
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.repos.users.add(verifiedUser("u-1", "a@x.com"))

	res, err := f.svc.Login(context.Background(), "a@x.com", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.User.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	userID, err := f.signer.Verify(res.Tokens.AccessToken, auth.AccessToken)
	if err != nil || userID != "u-1" {
		t.Fatalf("access token does not verify: %v / %q", err, userID)
	}

	stored, ok := f.repos.users.updatedTokens["u-1"]
	if !ok || stored != res.Tokens.RefreshToken {
		t.Fatalf("refresh token not stored on the user row")
	}
}

// ---- RefreshAccess ----

func TestRefreshAccess_Success(t *testing.T) {
	f := newFixture(t)
	refresh := "stored-refresh-token"
	u := verifiedUser("u-1", "a@x.com")
	u.RefreshToken = &refresh
	f.repos.users.add(u)

	access, err := f.svc.RefreshAccess(context.Background(), "u-1", refresh)
	if err != nil {
		t.Fatalf("RefreshAccess error: %v", err)
	}

	userID, err := f.signer.Verify(access, auth.AccessToken)
	if err != nil || userID != "u-1" {
		t.Fatalf("new access token does not verify: %v / %q", err, userID)
	}

	// The stored refresh token is left untouched.
	if u.RefreshToken == nil || *u.RefreshToken != refresh {
		t.Errorf("refresh token must not be rotated on refresh")
	}
}

func TestRefreshAccess_Mismatch(t *testing.T) {
	f := newFixture(t)
	refresh := "stored-refresh-token"
	u := verifiedUser("u-1", "a@x.com")
	u.RefreshToken = &refresh
	f.repos.users.add(u)

	_, err := f.svc.RefreshAccess(context.Background(), "u-1", "some-other-token")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected common.ErrorUnauthorized, got %v", err)
	}
}

func TestRefreshAccess_NoStoredToken(t *testing.T) {
	f := newFixture(t)
	f.repos.users.add(verifiedUser("u-1", "a@x.com"))

	_, err := f.svc.RefreshAccess(context.Background(), "u-1", "anything")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected common.ErrorUnauthorized, got %v", err)
	}
}

func TestRefreshAccess_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RefreshAccess(context.Background(), "ghost", "anything")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected common.ErrorUnauthorized, got %v", err)
	}
}

// ---- Logout ----

func TestLogout_ClearsToken(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.Logout(context.Background(), "u-1"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if len(f.repos.users.cleared) != 1 || f.repos.users.cleared[0] != "u-1" {
		t.Fatalf("expected ClearRefreshToken for u-1, got %v", f.repos.users.cleared)
	}
}

func TestLogout_StorageErrorSwallowed(t *testing.T) {
	f := newFixture(t)
	f.repos.users.clearErr = errors.New("db down")

	if err := f.svc.Logout(context.Background(), "u-1"); err != nil {
		t.Fatalf("Logout must not fail, got %v", err)
	}
}

// ---- ResendVerification ----

func TestResendVerification_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ResendVerification(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	f := newFixture(t)
	f.repos.users.add(verifiedUser("u-1", "a@x.com"))

	err := f.svc.ResendVerification(context.Background(), "a@x.com")
	if !errors.Is(err, common.ErrorAlreadyVerified) {
		t.Fatalf("expected common.ErrorAlreadyVerified, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Errorf("no mail should be sent for a verified account")
	}
}

func TestResendVerification_Success(t *testing.T) {
	f := newFixture(t)
	u := verifiedUser("u-1", "a@x.com")
	u.Verification = nil
	f.repos.users.add(u)

	if err := f.svc.ResendVerification(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("ResendVerification error: %v", err)
	}
	if len(f.mailer.sent) != 1 || len(f.repos.verifs.pending) != 1 {
		t.Fatalf("expected one send and one persisted code, got %d/%d", len(f.mailer.sent), len(f.repos.verifs.pending))
	}
}

// ---- GetUser ----

func TestGetUser_Success(t *testing.T) {
	f := newFixture(t)
	refresh := "secret-refresh"
	u := verifiedUser("u-1", "a@x.com")
	u.RefreshToken = &refresh
	f.repos.users.add(u)

	got, err := f.svc.GetUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if strings.Contains(got.UserName, "hashed:") {
		t.Errorf("public user leaks hash material")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetUser(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}
