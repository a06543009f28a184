package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/server/models"
)

const maxMultipartBody = 10 << 20 // 10 MiB

const passwordPolicyMessage = "Password must be at least 8 characters long and include at least one letter, one number, and one special character."

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data")
		return
	}

	res, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			writeMessage(w, http.StatusBadRequest, "User Already Exists")
		case errors.Is(err, common.ErrWeakPassword):
			writeMessage(w, http.StatusBadRequest, passwordPolicyMessage)
		case errors.Is(err, common.ErrValidation):
			writeMessage(w, http.StatusBadRequest, "Invalid data")
		default:
			s.logger.Error(r.Context(), "register failed", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"token":    res.Token,
		"_id":      res.User.ID,
		"username": res.User.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data")
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"_id":      res.User.ID,
		"token":    res.Token,
		"username": res.User.Username,
		"email":    res.User.Email,
	})
}

func (s *Server) handleSendResetLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data")
		return
	}

	if err := s.users.SendResetLink(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found.")
			return
		}
		s.logger.Error(r.Context(), "reset link failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred while processing your request.")
		return
	}

	writeMessage(w, http.StatusOK, "Password reset link sent successfully.")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"resetToken"`
		NewPassword string `json:"newPassword"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data")
		return
	}

	if err := s.users.ResetPassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token.")
		case errors.Is(err, common.ErrWeakPassword):
			writeMessage(w, http.StatusBadRequest, passwordPolicyMessage)
		default:
			s.logger.Error(r.Context(), "password reset failed", "error", err)
			writeMessage(w, http.StatusInternalServerError, "An error occurred while processing your request.")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successfully.")
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetProfile(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User Not Found")
			return
		}
		s.logger.Error(r.Context(), "get profile failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	s.resolveAvatar(r, user)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data")
		return
	}

	patch, err := profilePatchFromForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data")
		return
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		key, err := s.files.Save(r.Context(), "avatars", header.Header.Get("Content-Type"), file)
		if err != nil {
			s.logger.Error(r.Context(), "avatar upload failed", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
			return
		}
		patch.Avatar = &key
	}

	user, err := s.users.UpdateProfile(r.Context(), UserIDFromContext(r.Context()), patch)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "User Not Found, Login")
		case errors.Is(err, common.ErrValidation):
			writeMessage(w, http.StatusBadRequest, "Invalid data")
		default:
			s.logger.Error(r.Context(), "profile update failed", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	s.resolveAvatar(r, user)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), UserIDFromContext(r.Context())); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// profilePatchFromForm reads the multipart fields into a patch. Absent
// fields stay nil and leave the stored value untouched. List fields accept
// either repeated form values or a single JSON array.
func profilePatchFromForm(r *http.Request) (*models.UserPatch, error) {
	patch := &models.UserPatch{}
	form := r.MultipartForm.Value

	if values, ok := form["sports"]; ok {
		list, err := parseStringList(values)
		if err != nil {
			return nil, err
		}
		patch.Sports = list
	}
	if values, ok := form["interests"]; ok {
		list, err := parseStringList(values)
		if err != nil {
			return nil, err
		}
		patch.Interests = list
	}
	if values, ok := form["location"]; ok && len(values) > 0 {
		patch.Location = &values[0]
	}
	if values, ok := form["phone_number"]; ok && len(values) > 0 {
		patch.PhoneNumber = &values[0]
	}
	if values, ok := form["terms"]; ok && len(values) > 0 {
		var terms bool
		if err := json.Unmarshal([]byte(values[0]), &terms); err != nil {
			return nil, err
		}
		patch.Terms = &terms
	}

	return patch, nil
}

func parseStringList(values []string) ([]string, error) {
	if len(values) == 1 && len(values[0]) > 0 && values[0][0] == '[' {
		var list []string
		if err := json.Unmarshal([]byte(values[0]), &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	return values, nil
}

// resolveAvatar swaps the stored avatar key for a fetchable presigned URL.
// A failed resolve keeps the raw key rather than failing the request.
func (s *Server) resolveAvatar(r *http.Request, user *models.User) {
	if user.Avatar == "" {
		return
	}
	url, err := s.files.ResolveURL(r.Context(), user.Avatar)
	if err != nil {
		s.logger.Warn(r.Context(), "avatar url resolve failed", "error", err)
		return
	}
	user.Avatar = url
}
