package sandbox

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

type claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

type registerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	AccountName string `json:"accountName" validate:"required"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.createAdmin(req); err != nil {
		if errors.Is(err, errConflict) {
			fail(w, r, http.StatusConflict, err.Error())
			return
		}
		fail(w, r, http.StatusInternalServerError, "could not register user")
		return
	}

	ok(w, r, http.StatusCreated, "Registration successful. Please log in.", nil)
}

var errConflict = errors.New("conflict")

type conflictError string

func (e conflictError) Error() string { return string(e) }
func (e conflictError) Is(target error) bool { return target == errConflict }

// createAdmin создаёт аккаунт на тарифе free и его администратора. Вызывается под s.mu.
func (s *Server) createAdmin(req registerRequest) (*account, error) {
	if s.userByEmail(req.Email) != nil {
		return nil, conflictError("User with this email already exists")
	}
	slug := slugify(req.AccountName)
	if s.accountBySlug(slug) != nil {
		return nil, conflictError("Account name is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	acc := &account{Account: models.Account{
		AccountID:     uuid.NewString(),
		Slug:          slug,
		Plan:          models.PlanFree,
		Limit:         FreeNoteLimit,
		AccountActive: true,
		CreatedAt:     now,
	}}
	u := &user{
		User: models.User{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Email:     req.Email,
			Role:      models.RoleAdmin,
			CreatedAt: now,
		},
		accountID:    acc.AccountID,
		passwordHash: string(hash),
	}
	s.accounts[acc.AccountID] = acc
	s.users[u.ID] = u
	return acc, nil
}

// Seed регистрирует администратора с аккаунтом и возвращает slug аккаунта (для тестов).
func (s *Server) Seed(name, email, password, accountName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.createAdmin(registerRequest{Name: name, Email: email, Password: password, AccountName: accountName})
	if err != nil {
		return "", err
	}
	return acc.Slug, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByEmail(req.Email)
	if u == nil || u.passwordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.Password)) != nil {
		fail(w, r, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "could not issue token")
		return
	}
	now := s.now()
	u.LastLogin = &now
	u.IsActive = true

	ok(w, r, http.StatusOK, "Login successful", map[string]string{"token": token})
}

func (s *Server) issueToken(u *user) (string, error) {
	now := s.now()
	c := claims{
		AccountID: u.accountID,
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.jwtSecret)
}

// IssueToken выдаёт токен пользователю с указанным email (для тестов).
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByEmail(email)
	if u == nil {
		return "", errors.New("sandbox: unknown user")
	}
	return s.issueToken(u)
}

// authenticate проверяет bearer-токен и кладёт пользователя в контекст.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(w, r, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		var c claims
		_, err := jwt.ParseWithClaims(raw, &c, func(_ *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			fail(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		_, revoked := s.revoked[c.ID]
		u := s.users[c.Subject]
		s.mu.Unlock()

		if revoked || u == nil {
			fail(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, principal{userID: u.ID, accountID: u.accountID, role: u.Role, tokenID: c.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type principal struct {
	userID    string
	accountID string
	role      string
	tokenID   string
}

func current(r *http.Request) principal {
	p, _ := r.Context().Value(userKey).(principal)
	return p
}

func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if current(r).role != models.RoleAdmin {
			fail(w, r, http.StatusForbidden, "Access denied. Admin role required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p := current(r)
	s.mu.Lock()
	u := s.users[p.userID].User
	acc := s.accounts[p.accountID].Account
	s.mu.Unlock()

	ok(w, r, http.StatusOK, "", map[string]any{"user": u, "account": acc})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	p := current(r)
	page, limit := pageQuery(r)

	s.mu.Lock()
	var members []models.User
	stats := models.MemberStats{}
	for _, u := range s.users {
		if u.accountID != p.accountID {
			continue
		}
		members = append(members, u.User)
		stats.TotalUsers++
		if u.IsActive {
			stats.TotalActiveUsers++
		}
	}
	s.mu.Unlock()

	sortUsers(members)
	items, pg := paginate(members, page, limit)
	ok(w, r, http.StatusOK, "", map[string]any{"users": items, "pagination": pg, "stats": stats})
}

type inviteRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.userByEmail(req.Email); existing != nil {
		if existing.accountID == p.accountID && !existing.IsActive {
			ok(w, r, http.StatusOK, "Invitation resent to "+req.Email, nil)
			return
		}
		fail(w, r, http.StatusConflict, "User with this email already exists")
		return
	}
	u := &user{
		User: models.User{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Email:     req.Email,
			Role:      models.RoleMember,
			CreatedAt: s.now(),
		},
		accountID: p.accountID,
	}
	s.users[u.ID] = u
	ok(w, r, http.StatusCreated, "Invitation sent to "+req.Email, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := current(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[p.userID]
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.CurrentPassword)) != nil {
		fail(w, r, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "could not change password")
		return
	}
	u.passwordHash = string(hash)
	ok(w, r, http.StatusOK, "Password changed successfully. Please log in again.", nil)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	p := current(r)
	s.mu.Lock()
	s.revoked[p.tokenID] = struct{}{}
	s.mu.Unlock()
	ok(w, r, http.StatusOK, "Logged out", nil)
}

// SetPassword задаёт пароль приглашённому пользователю, позволяя ему войти (для тестов).
func (s *Server) SetPassword(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByEmail(email)
	if u == nil {
		return errors.New("sandbox: unknown user")
	}
	u.passwordHash = string(hash)
	return nil
}

// SetClock подменяет источник времени песочницы.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Server) userByEmail(email string) *user {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *Server) accountBySlug(slug string) *account {
	for _, a := range s.accounts {
		if a.Slug == slug {
			return a
		}
	}
	return nil
}
