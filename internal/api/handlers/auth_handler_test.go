package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerve-health/referral/backend/internal/api/handlers"
	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/pkg/auth"
)

type stubUserRepo struct {
	users []*entities.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.ID == id })
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.Email == email })
}

func (r *stubUserRepo) GetByHospitalCode(ctx context.Context, code string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.HospitalCode == code })
}

func (r *stubUserRepo) GetByHospitalID(ctx context.Context, hospitalID string) (*entities.User, error) {
	return r.find(func(u *entities.User) bool { return u.HospitalID == hospitalID })
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func (r *stubUserRepo) find(match func(*entities.User) bool) (*entities.User, error) {
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func newAuthHandler(users *stubUserRepo, hospitals *stubHospitalRepo) *handlers.AuthHandler {
	svc := services.NewAuthService(
		users,
		hospitals,
		auth.NewPasswordManager(),
		auth.NewTokenManager("test-secret", 24*time.Hour),
	)
	return handlers.NewAuthHandler(svc)
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	users := &stubUserRepo{}
	handler := newAuthHandler(users, &stubHospitalRepo{hospitals: fixtureHospitals()})

	body := `{"email":"admin@cardiac.example","password":"str0ng-pass","name":"Dr. Mensah","hospital_id":"cardiac","hospital_code":"CARD-01"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, users.users, 1)
	assert.Equal(t, entities.RoleHospitalAdmin, users.users[0].Role)

	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&registered))
	assert.NotEmpty(t, registered.Token)

	loginBody := `{"hospital_code":"CARD-01","password":"str0ng-pass"}`
	loginReq := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(loginBody))
	loginW := httptest.NewRecorder()

	handler.Login(loginW, loginReq)

	assert.Equal(t, http.StatusOK, loginW.Code)
	assert.Contains(t, loginW.Body.String(), "token")
}

func TestAuthHandler_Register_GeneratesHospitalCode(t *testing.T) {
	users := &stubUserRepo{}
	handler := newAuthHandler(users, &stubHospitalRepo{hospitals: fixtureHospitals()})

	body := `{"email":"admin@cardiac.example","password":"str0ng-pass","name":"Dr. Mensah","hospital_id":"cardiac"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, users.users, 1)
	assert.Regexp(t, `^[A-Z0-9-]{4,20}$`, users.users[0].HospitalCode)
}

func TestAuthHandler_Register_RejectsBadHospitalCode(t *testing.T) {
	handler := newAuthHandler(&stubUserRepo{}, &stubHospitalRepo{hospitals: fixtureHospitals()})

	body := `{"email":"admin@cardiac.example","password":"str0ng-pass","name":"Dr. Mensah","hospital_id":"cardiac","hospital_code":"bad code!"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "hospital code")
}

func TestAuthHandler_Register_SingleAdminPerHospital(t *testing.T) {
	users := &stubUserRepo{users: []*entities.User{{
		ID: "u-1", HospitalID: "cardiac", HospitalCode: "CARD-01", Email: "first@cardiac.example",
	}}}
	handler := newAuthHandler(users, &stubHospitalRepo{hospitals: fixtureHospitals()})

	body := `{"email":"second@cardiac.example","password":"str0ng-pass","name":"Second Admin","hospital_id":"cardiac","hospital_code":"CARD-02"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	users := &stubUserRepo{}
	handler := newAuthHandler(users, &stubHospitalRepo{hospitals: fixtureHospitals()})

	body := `{"email":"admin@cardiac.example","password":"str0ng-pass","name":"Dr. Mensah","hospital_id":"cardiac","hospital_code":"CARD-01"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	handler.Register(httptest.NewRecorder(), req)

	loginBody := `{"hospital_code":"CARD-01","password":"wrong-pass"}`
	loginReq := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(loginBody))
	w := httptest.NewRecorder()

	handler.Login(w, loginReq)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
