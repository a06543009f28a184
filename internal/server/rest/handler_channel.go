package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/server/models"
)

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}
	form := r.MultipartForm.Value

	var number int64
	if values, ok := form["channel_number"]; ok && len(values) > 0 {
		n, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid data")
			return
		}
		number = n
	}

	category, err := parseStringList(form["category"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	var logoKey string
	if file, header, err := r.FormFile("logo"); err == nil {
		defer file.Close()
		key, err := s.files.Save(r.Context(), "logos", header.Header.Get("Content-Type"), file)
		if err != nil {
			s.logger.Error(r.Context(), "logo upload failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Unable to create channel.")
			return
		}
		logoKey = key
	}

	channel, err := s.channels.Create(r.Context(), r.FormValue("name"), number, category, logoKey)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			writeError(w, http.StatusBadRequest, "Invalid data")
		case errors.Is(err, common.ErrConflict):
			writeError(w, http.StatusBadRequest, "Channel already exists.")
		default:
			s.logger.Error(r.Context(), "channel create failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Unable to create channel.")
		}
		return
	}

	s.resolveLogo(r, channel)
	writeJSON(w, http.StatusCreated, channel)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Channel not found.")
		return
	}

	if err := s.channels.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Channel not found.")
			return
		}
		s.logger.Error(r.Context(), "channel delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to delete channel.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Channel deleted successfully."})
}

func (s *Server) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Channel not found.")
		return
	}

	var req struct {
		Name          *string  `json:"name"`
		ChannelNumber *int64   `json:"channel_number"`
		Category      []string `json:"category"`
		Logo          *string  `json:"logo"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	channel, err := s.channels.Update(r.Context(), id, &models.ChannelPatch{
		Name:          req.Name,
		ChannelNumber: req.ChannelNumber,
		Category:      req.Category,
		Logo:          req.Logo,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "Channel not found.")
		case errors.Is(err, common.ErrConflict):
			writeError(w, http.StatusBadRequest, "Channel already exists.")
		default:
			s.logger.Error(r.Context(), "channel update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Unable to update channel.")
		}
		return
	}

	s.resolveLogo(r, channel)
	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Channel not found.")
		return
	}

	channel, err := s.channels.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Channel not found.")
			return
		}
		s.logger.Error(r.Context(), "channel fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to fetch channel.")
		return
	}

	s.resolveLogo(r, channel)
	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.channels.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "channel list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to fetch channels.")
		return
	}

	for _, channel := range channels {
		s.resolveLogo(r, channel)
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := channelID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Channel not found.")
		return
	}

	if err := s.channels.AddFavorite(r.Context(), UserIDFromContext(r.Context()), id); err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			writeError(w, http.StatusBadRequest, "Channel already in favorites.")
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "Channel not found.")
		default:
			s.logger.Error(r.Context(), "add favorite failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Unable to add channel to favorites.")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Channel added to favorites."})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	channels, err := s.channels.ListFavorites(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		s.logger.Error(r.Context(), "favorites list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to fetch favorite channels.")
		return
	}

	for _, channel := range channels {
		s.resolveLogo(r, channel)
	}
	writeJSON(w, http.StatusOK, channels)
}

// channelID validates the {id} path segment. A value that cannot be a
// channel ID behaves like a channel that does not exist.
func channelID(r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (s *Server) resolveLogo(r *http.Request, channel *models.Channel) {
	if channel.Logo == "" {
		return
	}
	url, err := s.files.ResolveURL(r.Context(), channel.Logo)
	if err != nil {
		s.logger.Warn(r.Context(), "logo url resolve failed", "error", err)
		return
	}
	channel.Logo = url
}
