package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

// TrackableStartup is a startup row offered to staff for tracking.
type TrackableStartup struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Industry string      `json:"industry"`
	Location string      `json:"location"`
	Tier     models.Tier `json:"tier"`
}

var trackingStaff = []models.Tier{models.TierVentureAnalyst, models.TierExpert, models.TierAdmin}

// transitions lists the allowed next statuses in strict mode.
var transitions = map[models.TrackingStatus][]models.TrackingStatus{
	models.StatusDraft:    {models.StatusApplied, models.StatusRejected},
	models.StatusApplied:  {models.StatusApproved, models.StatusRejected},
	models.StatusApproved: {models.StatusDisbursed, models.StatusRejected},
}

// CanTransition reports whether from may move to to under strict rules.
func CanTransition(from, to models.TrackingStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type trackingService struct {
	entries       db.TrackingRepository
	startups      db.StartupRepository
	accounts      db.AccountRepository
	catalog       CatalogService
	notifications NotificationService
	strict        bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewTrackingService creates a TrackingService. strict enables transition
// checking between statuses.
func NewTrackingService(
	entries db.TrackingRepository,
	startups db.StartupRepository,
	accounts db.AccountRepository,
	catalog CatalogService,
	notifications NotificationService,
	strict bool,
	logger *zap.Logger,
) TrackingService {
	return &trackingService{
		entries:       entries,
		startups:      startups,
		accounts:      accounts,
		catalog:       catalog,
		notifications: notifications,
		strict:        strict,
		logger:        logger,
		now:           time.Now,
	}
}

func parseStatus(s string) (models.TrackingStatus, error) {
	status := models.TrackingStatus(strings.TrimSpace(s))
	if !status.Valid() {
		return "", validationErrorf("invalid status %q", s)
	}
	return status, nil
}

// stampMilestone sets the milestone of status to at unless already set.
func stampMilestone(e *models.TrackingEntry, status models.TrackingStatus, at string) {
	var field *string
	switch status {
	case models.StatusApplied:
		field = &e.AppliedDate
	case models.StatusApproved:
		field = &e.ApprovedDate
	case models.StatusDisbursed:
		field = &e.DisbursedDate
	case models.StatusRejected:
		field = &e.RejectedDate
	default:
		return
	}
	if strings.TrimSpace(*field) == "" {
		*field = at
	}
}

// canMutate reports whether actor may change e. Analysts only touch their own.
func canMutate(actor *models.Account, e *models.TrackingEntry) bool {
	if !actor.Tier.In(trackingStaff...) {
		return false
	}
	return actor.Tier != models.TierVentureAnalyst || e.UserID == actor.ID
}

func (s *trackingService) Create(ctx context.Context, actor *models.Account, req models.CreateTrackingRequest) (*models.TrackingEntry, error) {
	if !actor.Tier.In(trackingStaff...) {
		return nil, ErrAccessDenied
	}
	startupID := strings.TrimSpace(req.StartupID)
	grantID := strings.TrimSpace(req.GrantID)
	if startupID == "" || grantID == "" {
		return nil, validationErrorf("startup_id and grant_id are required")
	}
	status := models.StatusDraft
	if req.Status != "" {
		parsed, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	now := s.now().UTC()
	entry := &models.TrackingEntry{
		UserID:    actor.ID,
		StartupID: startupID,
		GrantID:   grantID,
		Status:    status,
		Progress:  req.Progress,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stampMilestone(entry, status, now.Format(time.RFC3339))

	if err := s.entries.Create(ctx, entry); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("grant tracking already exists for this startup: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create tracking entry: %w", err)
	}

	s.notifyOwner(ctx, entry, models.NotificationTrackingCreated, "New grant application tracked",
		fmt.Sprintf("%s is now tracking your application for %s.", actor.Name, s.grantName(ctx, grantID)))
	s.logger.Info("Tracking entry created", zap.String("tracking_id", entry.ID), zap.String("startup_id", startupID), zap.String("grant_id", grantID))
	return entry, nil
}

func (s *trackingService) Update(ctx context.Context, actor *models.Account, id string, req models.UpdateTrackingRequest) (*models.TrackingEntry, error) {
	if !actor.Tier.In(trackingStaff...) {
		return nil, ErrAccessDenied
	}
	var newStatus models.TrackingStatus
	if req.Status != nil {
		parsed, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		newStatus = parsed
	}

	var previous models.TrackingStatus
	updated, err := s.entries.Update(ctx, id, func(e *models.TrackingEntry) error {
		if !canMutate(actor, e) {
			return ErrAccessDenied
		}
		previous = e.Status
		if newStatus != "" && s.strict && !CanTransition(e.Status, newStatus) {
			return validationErrorf("transition from %s to %s is not allowed", e.Status, newStatus)
		}
		applyTrackingUpdate(e, req)

		now := s.now().UTC()
		if newStatus != "" {
			e.Status = newStatus
			stampMilestone(e, newStatus, now.Format(time.RFC3339))
		}
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("tracking entry '%s'", id))
	}

	if newStatus != "" && newStatus != previous {
		s.notifyOwner(ctx, updated, models.NotificationTrackingStatus, "Application status updated",
			fmt.Sprintf("Your application for %s moved from %s to %s.", s.grantName(ctx, updated.GrantID), previous, newStatus))
	}
	return updated, nil
}

func applyTrackingUpdate(e *models.TrackingEntry, req models.UpdateTrackingRequest) {
	if req.Progress != nil {
		e.Progress = *req.Progress
	}
	if req.AppliedDate != nil {
		e.AppliedDate = *req.AppliedDate
	}
	if req.ApprovedDate != nil {
		e.ApprovedDate = *req.ApprovedDate
	}
	if req.DisbursedDate != nil {
		e.DisbursedDate = *req.DisbursedDate
	}
	if req.RejectedDate != nil {
		e.RejectedDate = *req.RejectedDate
	}
	if req.DisbursedAmount != nil {
		amount := *req.DisbursedAmount
		e.DisbursedAmount = &amount
	}
	if req.ScreenshotPath != nil {
		e.ScreenshotPath = *req.ScreenshotPath
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}
}

func (s *trackingService) Authorize(ctx context.Context, actor *models.Account, id string) (*models.TrackingEntry, error) {
	if !actor.Tier.In(trackingStaff...) {
		return nil, ErrAccessDenied
	}
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("tracking entry '%s'", id))
	}
	if !canMutate(actor, entry) {
		return nil, ErrAccessDenied
	}
	return entry, nil
}

func (s *trackingService) Delete(ctx context.Context, actor *models.Account, id string) error {
	if _, err := s.Authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return repoError(err, fmt.Sprintf("tracking entry '%s'", id))
	}
	s.logger.Info("Tracking entry deleted", zap.String("tracking_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *trackingService) AttachScreenshot(ctx context.Context, actor *models.Account, id, path string) (*models.TrackingEntry, error) {
	return s.Update(ctx, actor, id, models.UpdateTrackingRequest{ScreenshotPath: &path})
}

func (s *trackingService) List(ctx context.Context, actor *models.Account) ([]models.TrackingView, error) {
	if !actor.Tier.In(trackingStaff...) {
		return nil, ErrAccessDenied
	}
	var filter db.TrackingFilter
	if actor.Tier == models.TierVentureAnalyst {
		filter.UserID = actor.ID
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking entries: %w", err)
	}

	ix, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	startupNames := make(map[string]string)
	views := make([]models.TrackingView, 0, len(entries))
	for _, e := range entries {
		name, ok := startupNames[e.StartupID]
		if !ok {
			name = "Unknown Startup"
			if st, err := s.startups.GetByID(ctx, e.StartupID); err == nil {
				name = st.Name
			}
			startupNames[e.StartupID] = name
		}
		views = append(views, models.TrackingView{TrackingEntry: *e, GrantName: ix.name(e.GrantID), StartupName: name})
	}
	return views, nil
}

func (s *trackingService) ListForStartup(ctx context.Context, actor *models.Account, startupID string) ([]models.TrackingView, error) {
	if !actor.Tier.In(trackingStaff...) {
		return nil, ErrAccessDenied
	}
	filter := db.TrackingFilter{StartupID: startupID}
	if actor.Tier == models.TierVentureAnalyst {
		filter.UserID = actor.ID
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking entries: %w", err)
	}
	ix, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.TrackingView, 0, len(entries))
	for _, e := range entries {
		views = append(views, models.TrackingView{TrackingEntry: *e, GrantName: ix.name(e.GrantID)})
	}
	return views, nil
}

func (s *trackingService) ListForOwner(ctx context.Context, actor *models.Account, startupID string) ([]models.TrackingView, error) {
	if !actor.Tier.In(models.TierFree, models.TierPremium, models.TierExpert, models.TierAdmin) {
		return nil, ErrAccessDenied
	}
	startup, err := s.startups.GetByID(ctx, startupID)
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("startup '%s'", startupID))
	}
	if actor.Tier != models.TierAdmin && startup.AccountID != actor.ID &&
		models.NormalizeEmail(startup.Email) != models.NormalizeEmail(actor.Email) {
		return nil, fmt.Errorf("not your startup: %w", ErrAccessDenied)
	}

	entries, err := s.entries.List(ctx, db.TrackingFilter{StartupID: startupID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking entries: %w", err)
	}
	ix, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	analystNames := make(map[string]string)
	views := make([]models.TrackingView, 0, len(entries))
	for _, e := range entries {
		name, ok := analystNames[e.UserID]
		if !ok {
			name = "Unknown Analyst"
			if a, err := s.accounts.GetByID(ctx, e.UserID); err == nil {
				name = a.Name
			}
			analystNames[e.UserID] = name
		}
		views = append(views, models.TrackingView{TrackingEntry: *e, GrantName: ix.name(e.GrantID), AnalystName: name})
	}
	return views, nil
}

func (s *trackingService) TrackableStartups(ctx context.Context, actor *models.Account) ([]TrackableStartup, error) {
	if !actor.Tier.In(trackingStaff...) {
		return nil, ErrAccessDenied
	}
	startups, err := s.startups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}

	out := make([]TrackableStartup, 0, len(startups))
	for _, st := range startups {
		tier := models.TierFree
		if a, err := s.accounts.GetByEmail(ctx, st.Email); err == nil {
			tier = a.Tier
		}
		if actor.Tier == models.TierVentureAnalyst && !tier.In(models.TierPremium, models.TierExpert) {
			continue
		}
		out = append(out, TrackableStartup{
			ID:       st.ID,
			Name:     st.Name,
			Email:    st.Email,
			Industry: st.Industry,
			Location: st.Location,
			Tier:     tier,
		})
	}
	return out, nil
}

func (s *trackingService) index(ctx context.Context) (grantIndex, error) {
	grants, err := s.catalog.Grants(ctx)
	if err != nil {
		return grantIndex{}, err
	}
	return newGrantIndex(grants), nil
}

func (s *trackingService) grantName(ctx context.Context, grantID string) string {
	if g, err := s.catalog.GetGrant(ctx, grantID); err == nil {
		return g.Name
	}
	return "Grant " + grantID
}

// notifyOwner notifies the account that owns the entry's startup.
func (s *trackingService) notifyOwner(ctx context.Context, e *models.TrackingEntry, kind, title, message string) {
	startup, err := s.startups.GetByID(ctx, e.StartupID)
	if err != nil {
		s.logger.Debug("No startup owner to notify", zap.String("startup_id", e.StartupID))
		return
	}
	notify(ctx, s.notifications, s.logger, models.Notification{
		AccountID: startup.AccountID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Details:   map[string]string{"tracking_id": e.ID, "grant_id": e.GrantID, "status": string(e.Status)},
	}, startup.Email)
}
