package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/respond"
	"github.com/jakubkanna/labguy-manager/internal/auth/jwt"
	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/dto"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
	"github.com/jakubkanna/labguy-manager/internal/form"
	"github.com/jakubkanna/labguy-manager/internal/middleware"
	"github.com/jakubkanna/labguy-manager/internal/ratelimit"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AuthHeaderKey is header key to match auth token
	AuthHeaderKey = "Authorization"
)

type ctxKey struct{}

// Server issues and checks admin tokens.
type Server struct {
	adminRepository dependency.Admin
	limiter         *ratelimit.MultiKeyLimiter
	JwtAuth         *jwtauth.JWTAuth
	jwtTTL          time.Duration
	cost            int
	masterHash      []byte
}

// Config contains the configuration for the auth server.
type Config struct {
	JWTSecret      string `mapstructure:"jwtSecret"`
	MasterPassword string `mapstructure:"masterPassword"`
	JWTTTL         string `mapstructure:"jwtttl"`
	BcryptCost     int    `mapstructure:"bcryptCost"`
}

// New creates a new auth server.
func New(c *Config, ar dependency.Admin, limiter *ratelimit.MultiKeyLimiter) (*Server, error) {
	if c.JWTSecret == "" || c.MasterPassword == "" {
		return nil, errors.New("jwt secret and master password are required")
	}
	cost := c.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.MasterPassword), cost)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, err
	}
	return &Server{
		adminRepository: ar,
		limiter:         limiter,
		JwtAuth:         jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		jwtTTL:          ttl,
		cost:            cost,
		masterHash:      hash,
	}, nil
}

func validPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login get auth token for provided username and password.
func (s *Server) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := (&form.LoginRequest{LoginRequest: req}).Validate(); err != nil {
		return nil, err
	}
	username := strings.ToLower(req.Username)

	pwHash, err := s.adminRepository.PasswordHashByUsername(ctx, username)
	if err != nil || !validPassword(pwHash, req.Password) {
		return nil, gerr.InvalidCredentials
	}

	token, err := jwt.NewToken(s.JwtAuth, s.jwtTTL, username)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AuthToken: token}, nil
}

// Create creates a new admin, requires the master password.
func (s *Server) Create(ctx context.Context, req *dto.CreateAdminRequest) (*dto.LoginResponse, error) {
	if err := (&form.CreateAdminRequest{CreateAdminRequest: req}).Validate(); err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(s.masterHash, []byte(req.MasterPassword)) != nil {
		return nil, gerr.InvalidCredentials
	}

	username := strings.ToLower(req.Username)
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	if err := s.adminRepository.AddAdmin(ctx, username, string(pwHash)); err != nil {
		return nil, err
	}

	token, err := jwt.NewToken(s.JwtAuth, s.jwtTTL, username)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AuthToken: token}, nil
}

// ChangePassword changes the password of the admin. It requires the current
// password or the master password.
func (s *Server) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) (*dto.LoginResponse, error) {
	if req.NewPassword == "" {
		return nil, gerr.BadRequest("new password is required")
	}
	username := strings.ToLower(req.Username)

	currentPwdHash, err := s.adminRepository.PasswordHashByUsername(ctx, username)
	if err != nil {
		return nil, gerr.InvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(s.masterHash, []byte(req.CurrentPassword)) != nil &&
		!validPassword(currentPwdHash, req.CurrentPassword) {
		return nil, gerr.InvalidCredentials
	}

	pwHashNew, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return nil, err
	}
	if err := s.adminRepository.ChangePassword(ctx, username, string(pwHashNew)); err != nil {
		return nil, err
	}

	token, err := jwt.NewToken(s.JwtAuth, s.jwtTTL, username)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{AuthToken: token}, nil
}

// Verify returns the admin a token belongs to.
func (s *Server) Verify(token string) (string, error) {
	return jwt.VerifyToken(s.JwtAuth, token)
}

// Routes mounts the public auth endpoints.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", s.handleLogin)
	r.Post("/users", s.handleCreate)
	r.Put("/password", s.handleChangePassword)
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil {
		if err := s.limiter.CheckLogin(middleware.GetClientIP(r.Context())); err != nil {
			respond.Error(w, r, gerr.TooManyRequests)
			return
		}
	}
	var req dto.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := s.Login(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdminRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := s.Create(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := s.ChangePassword(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// WithAuth middleware checks if the admin is authenticated.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get(AuthHeaderKey), "Bearer ")
		sub, err := s.Verify(token)
		if err != nil {
			respond.Error(w, r, gerr.Unauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sub)))
	})
}

// AdminFromContext returns the admin set by WithAuth.
func AdminFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(ctxKey{}).(string)
	return sub
}
