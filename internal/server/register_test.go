package server

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("p")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if hash == "p" {
		t.Fatal("hash must not equal the password")
	}
	if !verifyPassword("p", hash) {
		t.Fatal("expected password to verify")
	}
	if verifyPassword("wrong", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  A@X.Com "); got != "a@x.com" {
		t.Fatalf("normalizeEmail = %q", got)
	}
}

func TestRegisterHandler_MissingFields(t *testing.T) {
	// No DB expectations: validation must reject before any store access.
	cfg := Config{}

	bodies := []string{
		`{"email":"a@x.com","password":"p"}`,
		`{"nom":"A","password":"p"}`,
		`{"nom":"A","email":"a@x.com"}`,
		`not json`,
	}
	for _, body := range bodies {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		cfg.RegisterHandler(rr, r)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	cfg := Config{DB: db}
	rr := httptest.NewRecorder()
	// Email case differs from stored form; normalization must still hit the duplicate.
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"nom":"A","email":"A@X.com","password":"p"}`))
	cfg.RegisterHandler(rr, r)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rr.Code)
	}
	// No INSERT may have been issued.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db activity: %v", err)
	}
}

func TestRegisterHandler_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "A", "a@x.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := Config{DB: db}
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"nom":"A","email":"a@x.com","password":"p"}`))
	cfg.RegisterHandler(rr, r)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "p\"") && strings.Contains(rr.Body.String(), "password") {
		t.Fatal("response must not echo credentials")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db expectations: %v", err)
	}
}

func TestRegisterHandler_MethodNotAllowed(t *testing.T) {
	cfg := Config{}
	rr := httptest.NewRecorder()
	cfg.RegisterHandler(rr, httptest.NewRequest(http.MethodGet, "/api/auth/register", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
