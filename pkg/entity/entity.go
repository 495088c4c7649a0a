// Package entity defines the typed resources returned by the corpus backend.
//
// Every field is optional on the wire. Missing fields and JSON null decode to
// the Go zero value ("" for strings, 0 for numbers, false for booleans), so
// consumers never need per-field defaulting.
package entity

// User is an account on the corpus backend.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"date_of_birth"`
	Place           string `json:"place"`
	IsActive        bool   `json:"is_active"`
	HasGivenConsent bool   `json:"has_given_consent"`
	CreatedAt       string `json:"created_at"`
	LastLoginAt     string `json:"last_login_at"`
}

// Category groups records by topic.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
	Rank        int    `json:"rank"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Location is the optional capture location of a record.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is an uploaded media item. The backend identifies records by uid.
type Record struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaType   string    `json:"media_type"`
	Status      string    `json:"status"`
	Reviewed    bool      `json:"reviewed"`
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	Location    *Location `json:"location"`
	CreatedAt   string    `json:"created_at"`
}

// ID returns the record uid.
func (r Record) ID() string { return r.UID }

// Media types accepted by the contributions and upload endpoints.
const (
	MediaText  = "text"
	MediaAudio = "audio"
	MediaVideo = "video"
	MediaImage = "image"
)

// MediaTypes lists the media types in display order.
var MediaTypes = []string{MediaText, MediaAudio, MediaVideo, MediaImage}

// Contribution is one item in a user's contribution listing.
type Contribution struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id"`
	Status      string  `json:"status"`
	Size        int64   `json:"size"`
	Duration    float64 `json:"duration"`
	CreatedAt   string  `json:"created_at"`
}

// ContributionSummary is the body of GET /users/{id}/contributions.
type ContributionSummary struct {
	UserID                   string         `json:"user_id"`
	TotalContributions       int            `json:"total_contributions"`
	ContributionsByMediaType map[string]int `json:"contributions_by_media_type"`
	TextContributions        []Contribution `json:"text_contributions"`
	AudioContributions       []Contribution `json:"audio_contributions"`
	VideoContributions       []Contribution `json:"video_contributions"`
	ImageContributions       []Contribution `json:"image_contributions"`
}

// Normalize replaces missing lists and maps with empty ones and fills in
// userID when the backend omitted it.
func (s *ContributionSummary) Normalize(userID string) {
	if s.UserID == "" {
		s.UserID = userID
	}
	if s.ContributionsByMediaType == nil {
		s.ContributionsByMediaType = map[string]int{}
	}
	for _, list := range []*[]Contribution{
		&s.TextContributions, &s.AudioContributions, &s.VideoContributions, &s.ImageContributions,
	} {
		if *list == nil {
			*list = []Contribution{}
		}
	}
}

// MediaContributions is the body of GET /users/{id}/contributions/{media_type}.
type MediaContributions struct {
	UserID             string         `json:"user_id"`
	MediaType          string         `json:"media_type"`
	TotalContributions int            `json:"total_contributions"`
	Contributions      []Contribution `json:"contributions"`
}

// Role is a named permission set attached to an operator.
type Role struct {
	Name string `json:"name"`
}

// AuthSession is the body returned by a successful OTP verification.
type AuthSession struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Roles       []Role `json:"roles"`
}

// RoleNames returns the names of the session roles.
func (a AuthSession) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the session carries the named role.
func (a AuthSession) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Me is the body of GET /auth/me.
type Me struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
