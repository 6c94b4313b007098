package transport

import "github.com/Skotchmaster/adminpanel/internal/tokens"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SwitchRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type HasPermissionRequest struct {
	Name string `json:"name"`
}

type RolePermissionsRequest struct {
	RoleID        uint   `json:"role_id"`
	PermissionIDs []uint `json:"permission_id"`
}

type TokenData struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"`
	User         *tokens.Identity `json:"user,omitempty"`
}

// HasPermissionData answers a permission check. Permission is null when the
// caller is not authorized.
type HasPermissionData struct {
	Authorized bool    `json:"authorized"`
	Permission *string `json:"permission"`
}

type RolePermissionsData struct {
	RoleID      uint     `json:"role_id"`
	Permissions []string `json:"permissions"`
}

// Envelope wraps every successful response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Message    string `json:"message"`
	Resolution string `json:"resolution,omitempty"`
	ErrorCode  string `json:"error_code"`
}
