// Package rest exposes the backend over HTTP. The surface is a flat
// /api/v1 route set: account endpoints (register, login, reset, profile,
// logout) and channel endpoints (catalog CRUD plus favorites).
package rest

import (
	"context"
	"net/http"

	"github.com/stream254/backend/internal/logging"
	"github.com/stream254/backend/internal/server/models"
	"github.com/stream254/backend/internal/server/services"
)

// UserService is the slice of account behavior the handlers need.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, userID string) error
	SendResetLink(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch *models.UserPatch) (*models.User, error)
}

// ChannelService is the slice of catalog/favorites behavior the handlers
// need.
type ChannelService interface {
	Create(ctx context.Context, name string, number int64, category []string, logoKey string) (*models.Channel, error)
	Get(ctx context.Context, id string) (*models.Channel, error)
	List(ctx context.Context) ([]*models.Channel, error)
	Update(ctx context.Context, id string, patch *models.ChannelPatch) (*models.Channel, error)
	Delete(ctx context.Context, id string) error
	AddFavorite(ctx context.Context, userID, channelID string) error
	ListFavorites(ctx context.Context, userID string) ([]*models.Channel, error)
}

// Server wires the services to the HTTP route table.
type Server struct {
	logger   logging.Logger
	users    UserService
	channels ChannelService
	files    services.FileStore
}

func NewServer(logger logging.Logger, users UserService, channels ChannelService, files services.FileStore) *Server {
	return &Server{
		logger:   logger,
		users:    users,
		channels: channels,
		files:    files,
	}
}

// Handler builds the route table. Literal segments win over the channel
// {id} wildcard, so /api/v1/channels and /api/v1/favorites stay reachable.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/{$}", s.handleServerStatus)
	mux.HandleFunc("POST /api/v1/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/reset", s.handleSendResetLink)
	mux.HandleFunc("POST /api/v1/reset/new_password", s.handleResetPassword)

	mux.HandleFunc("GET /api/v1/profile", s.requireAuth(s.handleGetProfile))
	mux.HandleFunc("POST /api/v1/profile", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/v1/logout", s.requireAuth(s.handleLogout))

	mux.HandleFunc("POST /api/v1/create", s.requireAuth(s.handleCreateChannel))
	mux.HandleFunc("DELETE /api/v1/delete/{id}", s.requireAuth(s.handleDeleteChannel))
	mux.HandleFunc("PUT /api/v1/update/{id}", s.requireAuth(s.handleUpdateChannel))
	mux.HandleFunc("GET /api/v1/channels", s.requireAuth(s.handleListChannels))
	mux.HandleFunc("GET /api/v1/favorites", s.requireAuth(s.handleListFavorites))
	mux.HandleFunc("POST /api/v1/add/{id}", s.requireAuth(s.handleAddFavorite))
	mux.HandleFunc("GET /api/v1/{id}", s.requireAuth(s.handleGetChannel))

	return mux
}

func (s *Server) handleServerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Server condition is okay")
}
