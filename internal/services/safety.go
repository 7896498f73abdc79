package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Moderation decisions
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

const (
	reportWindow = 7 * 24 * time.Hour
	riskWindow   = 30 * 24 * time.Hour
	newAccount   = 24 * time.Hour
)

var (
	emailPattern  = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?\d(?:[\s\-().]*\d){6,}`)
	urlPattern    = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+|\b[a-z0-9\-]+\.(?:com|net|org|io|me|app|co|ly|gg)\b`)
	handlePattern = regexp.MustCompile(`(?:^|\s)@[A-Za-z0-9_.]{2,}`)
	socialPattern = regexp.MustCompile(`(?i)\b(?:snap(?:chat)?|insta(?:gram)?|telegram|whatsapp)\b`)
)

// ScreenText returns the kinds of contact details found in s.
// An empty result means the text is clean.
func ScreenText(s string) []string {
	var found []string
	if emailPattern.MatchString(s) {
		found = append(found, "email")
	}
	if phonePattern.MatchString(s) {
		found = append(found, "phone")
	}
	if urlPattern.MatchString(emailPattern.ReplaceAllString(s, "")) {
		found = append(found, "url")
	}
	if handlePattern.MatchString(s) {
		found = append(found, "handle")
	}
	if socialPattern.MatchString(s) {
		found = append(found, "social")
	}
	return found
}

// CheckText returns ErrContactDetails when s fails the screen
func CheckText(s string) error {
	if found := ScreenText(s); len(found) > 0 {
		return fmt.Errorf("%w (%s)", ErrContactDetails, strings.Join(found, ", "))
	}
	return nil
}

// RiskLevel buckets a risk score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskSignal is one contribution to a risk score
type RiskSignal struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// RiskAssessment is the moderator view of a user's risk
type RiskAssessment struct {
	UserID  string       `json:"user_id"`
	Score   int          `json:"score"`
	Level   RiskLevel    `json:"level"`
	Signals []RiskSignal `json:"signals"`
}

// AssessRisk scores raw signals on a 0..100 scale
func AssessRisk(s models.RiskSignals, now time.Time) RiskAssessment {
	var signals []RiskSignal
	add := func(name string, points int) {
		if points > 0 {
			signals = append(signals, RiskSignal{Name: name, Points: points})
		}
	}

	if now.Sub(s.AccountCreatedAt) < newAccount {
		add("new_account", 15)
	}
	if !s.Verified {
		add("unverified", 10)
	}
	add("rejected_photos", min(10*s.RejectedPhotos, 30))
	add("recent_reports", min(15*s.RecentReporters, 45))
	add("blocked_by_others", min(5*s.BlockedBy, 20))

	score := 0
	for _, sig := range signals {
		score += sig.Points
	}
	score = min(score, 100)

	level := RiskHigh
	switch {
	case score < 30:
		level = RiskLow
	case score < 60:
		level = RiskMedium
	}

	if signals == nil {
		signals = []RiskSignal{}
	}
	return RiskAssessment{Score: score, Level: level, Signals: signals}
}

// ReportInput is a user report as submitted
type ReportInput struct {
	TargetID string
	Reason   models.ReportReason
	Details  string
}

// SafetyService handles reports, risk scoring, verification review and suspension
type SafetyService struct {
	users       UserStore
	photos      PhotoStore
	contacts    ContactStore
	safety      SafetyStore
	notifier    Notifier
	autoSuspend int
	now         func() time.Time
}

// NewSafetyService creates a new safety service
func NewSafetyService(
	users UserStore,
	photos PhotoStore,
	contacts ContactStore,
	safety SafetyStore,
	notifier Notifier,
	autoSuspendReports int,
) *SafetyService {
	return &SafetyService{
		users:       users,
		photos:      photos,
		contacts:    contacts,
		safety:      safety,
		notifier:    notifier,
		autoSuspend: autoSuspendReports,
		now:         time.Now,
	}
}

// Report files a report and suspends the target once enough distinct users
// reported it within a week.
func (s *SafetyService) Report(ctx context.Context, reporterID string, in ReportInput) (*models.Report, error) {
	if in.TargetID == reporterID {
		return nil, ErrSelfReport
	}

	target, err := s.users.GetByID(ctx, in.TargetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	report := &models.Report{
		ID:         uuid.New().String(),
		ReporterID: reporterID,
		TargetID:   target.ID,
		Reason:     in.Reason,
		Details:    strings.TrimSpace(in.Details),
		CreatedAt:  s.now(),
	}
	if err := s.safety.CreateReport(ctx, report); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReport
		}
		return nil, err
	}

	log.Info().
		Str("reporter_id", reporterID).
		Str("target_id", target.ID).
		Str("reason", string(in.Reason)).
		Msg("User reported")

	if target.Status == models.UserSuspended || s.autoSuspend <= 0 {
		return report, nil
	}

	reporters, err := s.safety.CountReporters(ctx, target.ID, s.now().Add(-reportWindow))
	if err != nil {
		return nil, err
	}
	if reporters >= s.autoSuspend {
		if err := s.users.SetStatus(ctx, target.ID, models.UserSuspended); err != nil {
			return nil, fmt.Errorf("failed to auto-suspend user: %w", err)
		}
		log.Warn().
			Str("user_id", target.ID).
			Int("reporters", reporters).
			Msg("User auto-suspended after reports")
	}

	return report, nil
}

// Risk computes the risk assessment for a user
func (s *SafetyService) Risk(ctx context.Context, userID string) (*RiskAssessment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now()
	rejected, err := s.photos.CountRejected(ctx, userID)
	if err != nil {
		return nil, err
	}
	reporters, err := s.safety.CountReporters(ctx, userID, now.Add(-riskWindow))
	if err != nil {
		return nil, err
	}
	blocked, err := s.contacts.CountBlockedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	assessment := AssessRisk(models.RiskSignals{
		AccountCreatedAt: user.CreatedAt,
		Verified:         user.Verified,
		RejectedPhotos:   rejected,
		RecentReporters:  reporters,
		BlockedBy:        blocked,
	}, now)
	assessment.UserID = userID
	return &assessment, nil
}

// ListPendingVerifications returns open verification requests
func (s *SafetyService) ListPendingVerifications(ctx context.Context, limit, offset int) ([]*models.Verification, error) {
	limit, offset = pageBounds(limit, offset)
	return s.safety.ListPendingVerifications(ctx, limit, offset)
}

// ReviewVerification approves or rejects a verification request
func (s *SafetyService) ReviewVerification(ctx context.Context, moderatorID, id, decision string) (*models.Verification, error) {
	var status models.ReviewStatus
	switch decision {
	case DecisionApprove:
		status = models.ReviewApproved
	case DecisionReject:
		status = models.ReviewRejected
	default:
		return nil, ErrInvalidInput
	}

	v, err := s.safety.GetVerification(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	if v.Status != models.ReviewPending {
		return nil, ErrAlreadyReviewed
	}

	if err := s.safety.ReviewVerification(ctx, id, moderatorID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	if status == models.ReviewApproved {
		if err := s.users.SetVerified(ctx, v.UserID, true); err != nil {
			return nil, err
		}
	}

	now := s.now()
	v.Status = status
	v.ReviewedBy = &moderatorID
	v.ReviewedAt = &now

	s.notifier.Notify(ctx, v.UserID, WSMessage{
		Type:    MsgVerificationReviewed,
		Message: "Your verification was " + string(status),
		Data:    map[string]string{"verification_id": v.ID, "status": string(status)},
	})

	log.Info().
		Str("moderator_id", moderatorID).
		Str("verification_id", v.ID).
		Str("status", string(status)).
		Msg("Verification reviewed")

	return v, nil
}

// SetSuspended suspends or reinstates a user
func (s *SafetyService) SetSuspended(ctx context.Context, moderatorID, userID string, suspended bool) error {
	status := models.UserActive
	if suspended {
		status = models.UserSuspended
	}
	if err := s.users.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Info().
		Str("moderator_id", moderatorID).
		Str("user_id", userID).
		Str("status", string(status)).
		Msg("User status changed")
	return nil
}
