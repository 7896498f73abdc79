package services

import "errors"

// Lookup errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPhotoNotFound        = errors.New("photo not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrContactNotFound      = errors.New("contact not found")
	ErrVerificationNotFound = errors.New("verification request not found")
)

// Access errors
var (
	ErrForbidden        = errors.New("forbidden")
	ErrAccountSuspended = errors.New("account is suspended")
	ErrNotMember        = errors.New("not a member")
	ErrNotHost          = errors.New("only the host can do this")
	ErrNotOwner         = errors.New("only the team owner can do this")
)

// Validation errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnderage         = errors.New("users must be at least 18 years old")
	ErrContactDetails   = errors.New("text must not contain contact details or social handles")
	ErrUnsupportedMedia = errors.New("unsupported content type")
	ErrReasonRequired   = errors.New("a reason is required to reject")
)

// State conflicts
var (
	ErrEmailTaken       = errors.New("email is already registered")
	ErrPhotoLimit       = errors.New("photo limit reached")
	ErrUploadMissing    = errors.New("photo has not been uploaded")
	ErrPhotoNotPending  = errors.New("photo is not awaiting moderation")
	ErrAlreadyReviewed  = errors.New("verification request was already reviewed")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomNotWaiting   = errors.New("room is not accepting players")
	ErrRoomNotPlaying   = errors.New("room is not playing")
	ErrNotEnoughPlayers = errors.New("at least 2 players are required")
	ErrAlreadyMember    = errors.New("already a member")
	ErrTeamLocked       = errors.New("team is locked")
	ErrTeamFull         = errors.New("team is full")
	ErrCannotKickSelf   = errors.New("owner cannot remove themselves")
	ErrSelfContact      = errors.New("cannot add yourself")
	ErrContactExists    = errors.New("contact already exists")
	ErrNotPendingInvite = errors.New("contact request is not pending")
	ErrSelfReport       = errors.New("cannot report yourself")
	ErrDuplicateReport  = errors.New("user already reported for this reason")
)
