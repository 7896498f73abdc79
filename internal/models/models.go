package models

import "time"

// Role is the authorization level of a user
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// CanModerate reports whether the role may use moderation endpoints
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// UserStatus is the account state of a user
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

// User represents a registered account
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	Bio          string     `json:"bio"`
	Birthdate    time.Time  `json:"birthdate"`
	Gender       string     `json:"gender"`
	City         string     `json:"city"`
	Code         string     `json:"code"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	Verified     bool       `json:"verified"`
	PushToken    *string    `json:"push_token,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Age returns the user's age in whole years at the given moment
func (u *User) Age(now time.Time) int {
	return AgeAt(u.Birthdate, now)
}

// AgeAt returns the number of full years between birthdate and now
func AgeAt(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		years--
	}
	return years
}

// PublicProfile is what other users can see about a user
type PublicProfile struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Bio         string      `json:"bio"`
	Age         int         `json:"age"`
	Gender      string      `json:"gender"`
	City        string      `json:"city"`
	Verified    bool        `json:"verified"`
	Photos      []PhotoView `json:"photos,omitempty"`
}

// Public builds the public card of a user without photos
func (u *User) Public(now time.Time) PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		Age:         u.Age(now),
		Gender:      u.Gender,
		City:        u.City,
		Verified:    u.Verified,
	}
}

// PhotoKind distinguishes profile pictures from verification selfies
type PhotoKind string

const (
	PhotoProfile      PhotoKind = "profile"
	PhotoVerification PhotoKind = "verification"
)

// PhotoStatus tracks a photo through upload and moderation
type PhotoStatus string

const (
	PhotoUploading PhotoStatus = "uploading"
	PhotoPending   PhotoStatus = "pending"
	PhotoApproved  PhotoStatus = "approved"
	PhotoRejected  PhotoStatus = "rejected"
)

// Photo represents an image uploaded by a user
type Photo struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Kind            PhotoKind   `json:"kind"`
	ObjectKey       string      `json:"object_key"`
	ContentType     string      `json:"content_type"`
	Status          PhotoStatus `json:"status"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	ModeratedBy     *string     `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time  `json:"moderated_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// PhotoView is a photo together with a short-lived download URL
type PhotoView struct {
	Photo
	URL string `json:"url"`
}

// Game identifies the kind of party game played in a room
type Game string

const (
	GameTruthOrDare    Game = "truth_or_dare"
	GameWouldYouRather Game = "would_you_rather"
	GameQuiz           Game = "quiz"
)

// RoomStatus is the lifecycle state of a game room
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// Room represents a game room
type Room struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	HostID     string       `json:"host_id"`
	Game       Game         `json:"game"`
	MaxPlayers int          `json:"max_players"`
	Status     RoomStatus   `json:"status"`
	Round      int          `json:"round"`
	Prompt     string       `json:"prompt,omitempty"`
	Players    int          `json:"players"`
	Members    []RoomMember `json:"members,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// IsMember reports whether the user has a seat in the room
func (r *Room) IsMember(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the ids of all seated users
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// RoomMember is a seat in a room
type RoomMember struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// TeamRole is the role of a member within a team
type TeamRole string

const (
	TeamOwner  TeamRole = "owner"
	TeamMember TeamRole = "member"
)

// Team represents a group of users
type Team struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	OwnerID    string           `json:"owner_id"`
	JoinCode   string           `json:"join_code"`
	Locked     bool             `json:"locked"`
	MaxMembers int              `json:"max_members"`
	Members    []TeamMembership `json:"members,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// IsMember reports whether the user belongs to the team
func (t *Team) IsMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// TeamMembership links a user to a team
type TeamMembership struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        TeamRole  `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ContactStatus is the state of a relationship between two users
type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactAccepted ContactStatus = "accepted"
	ContactBlocked  ContactStatus = "blocked"
)

// Contact represents a relationship between two users
type Contact struct {
	ID                 string        `json:"id"`
	RequesterID        string        `json:"requester_id"`
	AddresseeID        string        `json:"addressee_id"`
	Status             ContactStatus `json:"status"`
	BlockedByRequester bool          `json:"-"`
	BlockedByAddressee bool          `json:"-"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// BlockedBy reports whether userID placed a block on this pair
func (c *Contact) BlockedBy(userID string) bool {
	switch userID {
	case c.RequesterID:
		return c.BlockedByRequester
	case c.AddresseeID:
		return c.BlockedByAddressee
	}
	return false
}

// ViewedBy returns a copy carrying only userID's own block
func (c *Contact) ViewedBy(userID string) *Contact {
	v := *c
	if v.RequesterID != userID {
		v.BlockedByRequester = false
	}
	if v.AddresseeID != userID {
		v.BlockedByAddressee = false
	}
	return &v
}

// Other returns the id of the participant that is not userID
func (c *Contact) Other(userID string) string {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

// Involves reports whether userID is one of the participants
func (c *Contact) Involves(userID string) bool {
	return c.RequesterID == userID || c.AddresseeID == userID
}

// ContactView is a contact as listed to one of its participants
type ContactView struct {
	Contact
	User PublicProfile `json:"user"`
}

// ReportReason categorizes a user report
type ReportReason string

const (
	ReportSpam        ReportReason = "spam"
	ReportHarassment  ReportReason = "harassment"
	ReportFakeProfile ReportReason = "fake_profile"
	ReportUnderage    ReportReason = "underage"
	ReportOther       ReportReason = "other"
)

// Report is a complaint filed by one user against another
type Report struct {
	ID         string       `json:"id"`
	ReporterID string       `json:"reporter_id"`
	TargetID   string       `json:"target_id"`
	Reason     ReportReason `json:"reason"`
	Details    string       `json:"details,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ReviewStatus is the state of a verification request
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Verification is a request to mark a user as verified using a selfie
type Verification struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	PhotoID    string       `json:"photo_id"`
	Status     ReviewStatus `json:"status"`
	ReviewedBy *string      `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// RiskSignals are the raw counters used to assess a user
type RiskSignals struct {
	AccountCreatedAt time.Time
	Verified         bool
	RejectedPhotos   int
	RecentReporters  int
	BlockedBy        int
}
