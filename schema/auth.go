package schema

import "time"

// LoginRequest carries the interactive login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

// LoginResponse is returned by the identity service on successful login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType,omitempty"`
	ExpiresIn   int64  `json:"expiresIn,omitempty"` //seconds
	Scope       string `json:"scope,omitempty"`
}

// UserInfo describes the authenticated principal.
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// MFAEnrollment is returned when a TOTP enrollment is started.
type MFAEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpAuthURL"`
}

// MFAVerifyRequest confirms an enrollment or challenge with a TOTP code.
type MFAVerifyRequest struct {
	Code string `json:"code"`
}

// APIKey describes a machine-to-machine key; the secret is only returned
// once, at creation time.
type APIKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// CreateAPIKeyRequest creates a new API key.
type CreateAPIKeyRequest struct {
	Name      string `json:"name"`
	ExpiresIn int64  `json:"expiresIn,omitempty"` //seconds
}

// CreateAPIKeyResponse carries the created key and its one-time secret.
type CreateAPIKeyResponse struct {
	Key    APIKey `json:"key"`
	Secret string `json:"secret"`
}
