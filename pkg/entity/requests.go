package entity

import (
	"io"
	"regexp"
)

// SendOTPRequest is the body of POST /auth/send-otp.
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	PhoneNumber     string `json:"phone_number"`
	OTPCode         string `json:"otp_code"`
	HasGivenConsent bool   `json:"has_given_consent"`
}

// UserCreate is the body of POST /users/.
type UserCreate struct {
	Phone           string `json:"phone"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"date_of_birth"`
	Place           string `json:"place"`
	Password        string `json:"password"`
	RoleIDs         []int  `json:"role_ids"`
	HasGivenConsent bool   `json:"has_given_consent"`
}

// UserUpdate is the body of PUT /users/{id}.
type UserUpdate struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"date_of_birth"`
	Place           string `json:"place"`
	IsActive        bool   `json:"is_active"`
	HasGivenConsent bool   `json:"has_given_consent"`
}

// CategoryCreate is the body of POST /categories/. The client assigns the ID
// and timestamps.
type CategoryCreate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
	Rank        int    `json:"rank"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CategoryUpdate is the body of PUT /categories/{id}.
type CategoryUpdate struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
	Rank        int    `json:"rank"`
}

// RecordUpdate is the body of PUT /records/{id}.
type RecordUpdate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaType   string `json:"media_type"`
	UserID      string `json:"user_id"`
	CategoryID  string `json:"category_id"`
}

// RecordUpload describes a multipart upload to POST /records/upload.
type RecordUpload struct {
	Title       string
	Description string
	MediaType   string
	UserID      string
	CategoryID  string
	Filename    string
	ContentType string
	File        io.Reader
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SafeFilename replaces every character outside [A-Za-z0-9_.-] with '_'.
func SafeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
