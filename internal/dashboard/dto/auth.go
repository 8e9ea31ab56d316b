package dto

// LoginRequest is the login form. The password is required but never checked.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the signup form.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// PasswordResetRequest is the forgot-password form.
type PasswordResetRequest struct {
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// UserResponse mirrors the profile fields kept for a session.
type UserResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// AuthResponse is returned after a successful login or signup.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
