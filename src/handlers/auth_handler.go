package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"budgetbox-server/src/models"
	"budgetbox-server/src/store"
	"budgetbox-server/src/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidity = time.Hour * 168

func issueToken(userID int64, email, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(tokenValidity).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func Register(st store.Store, secret string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error().Err(err).Msg("Failed to decode register request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		if !util.ValidateEmail(req.Email) {
			logger.Error().Str("email", req.Email).Msg("Email validation failed during registration")
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}
		if !util.ValidatePassword(req.Password) {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error().Err(err).Str("email", req.Email).Msg("Failed to hash password")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		user, err := st.CreateUser(r.Context(), req.Email, hashedPassword)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			logger.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		tokenString, err := issueToken(user.ID, user.Email, secret)
		if err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("Failed to generate token")
			http.Error(w, "error generating token", http.StatusInternalServerError)
			return
		}

		logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("Successful registration")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.AuthResponse{UserID: user.ID, Token: tokenString})
	}
}

func Login(st store.Store, secret string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error().Err(err).Msg("Failed to decode login request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}

		user, err := st.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			logger.Error().Str("email", req.Email).Str("remote_addr", r.RemoteAddr).Msg("Login attempt for unknown user")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
			logger.Error().Str("email", req.Email).Str("remote_addr", r.RemoteAddr).Msg("Invalid password attempt")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tokenString, err := issueToken(user.ID, user.Email, secret)
		if err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("Failed to generate token")
			http.Error(w, "error generating token", http.StatusInternalServerError)
			return
		}

		logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("Successful login")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.AuthResponse{UserID: user.ID, Token: tokenString})
	}
}
