package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/audora-app/backend/internal/middleware"
	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
)

const accessTokenTTL = 24 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.GET("/check", h.Check)
	g.POST("/logout", h.Logout)
}

// Signup handles user registration. Identifiers are lowercased before the
// existence check and the insert, so uniqueness is case-insensitive. The
// pre-check picks the friendly message; the unique constraints are the
// source of truth when a concurrent signup wins the race.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	username := strings.ToLower(req.Username)
	email := strings.ToLower(req.Email)

	existing, err := h.userRepository.FindByEmailOrUsername(email, username)
	if err == nil {
		message := "Username is already taken."
		if existing.Email == email {
			message = "User with this email already exists."
		}
		return echo.NewHTTPError(http.StatusConflict, message)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating user.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email or username already exists.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating user.")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully.",
		"user":    user,
	})
}

// Login authenticates by email and password. Both "no such user" and
// "wrong password" collapse into the same generic 401 so accounts cannot
// be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(strings.ToLower(req.Email))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials.")
	}

	token, err := h.generateToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	c.SetCookie(accessCookie(token, time.Now().Add(accessTokenTTL)))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful.",
		"user":    user,
	})
}

// Check reports whether the accessToken cookie identifies a live user.
// The user row is re-fetched so a deleted account fails even with a
// syntactically valid token; any failure clears the cookie.
func (h *AuthHandler) Check(c echo.Context) error {
	cookie, err := c.Cookie(middleware.AccessTokenCookie)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"authenticated": false, "user": nil, "message": "No token provided",
		})
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.SetCookie(expiredAccessCookie())
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"authenticated": false, "user": nil, "message": "Invalid or expired token",
		})
	}

	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		c.SetCookie(expiredAccessCookie())
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"authenticated": false, "user": nil, "message": "User not found",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "user": user})
}

// Logout overwrites the cookie with an already-expired one carrying the
// same attributes as the one set at login; browsers only drop the cookie
// when the attributes match.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(expiredAccessCookie())
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful."})
}

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

func accessCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func expiredAccessCookie() *http.Cookie {
	return accessCookie("", time.Unix(0, 0))
}
