package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/db"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/provider"
	"github.com/AnhAnhii/veterans-verify-system/internal/storage"
)

// Messages returned to callers in submit and upload responses.
const (
	MsgSubmitted        = "Verification submitted successfully"
	MsgApproved         = "Verification approved!"
	MsgDocumentRequired = "Document upload required"
	MsgProcessing       = "Processing verification"
	MsgDocumentUploaded = "Document uploaded successfully"
	MsgDocumentInReview = "Document uploaded, verification in progress"
)

// StatusRefreshScheduler queues a later provider poll for a processing verification.
type StatusRefreshScheduler interface {
	ScheduleStatusRefresh(ctx context.Context, verificationID string, attempt int) error
}

// IVerificationService drives a verification from creation to a terminal status.
type IVerificationService interface {
	Create(ctx context.Context, profileID string, req models.CreateVerificationRequest) (*models.CreateVerificationResponse, error)
	Submit(ctx context.Context, profileID string, req models.SubmitVerificationRequest) (*models.SubmitVerificationResponse, error)
	GetStatus(ctx context.Context, profileID, verificationID string) (*models.Verification, error)
	UploadDocument(ctx context.Context, profileID, verificationID string, doc DocumentUpload) (*models.UploadDocumentResponse, error)
	RefreshStatus(ctx context.Context, verificationID string) (models.VerificationStatus, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type verificationService struct {
	db        *mongo.Database
	cfg       *config.Config
	provider  provider.IVerificationProvider
	storage   storage.IDocumentStorage
	scheduler StatusRefreshScheduler
	log       *zap.Logger
}

func NewVerificationService(
	database *mongo.Database,
	cfg *config.Config,
	verificationProvider provider.IVerificationProvider,
	documentStorage storage.IDocumentStorage,
	scheduler StatusRefreshScheduler,
	log *zap.Logger,
) IVerificationService {
	return &verificationService{
		db:        database,
		cfg:       cfg,
		provider:  verificationProvider,
		storage:   documentStorage,
		scheduler: scheduler,
		log:       logger.Named(log, "verifications"),
	}
}

func (s *verificationService) verifications() *mongo.Collection {
	return s.db.Collection(db.VerificationsCollection)
}

func (s *verificationService) Create(ctx context.Context, profileID string, req models.CreateVerificationRequest) (*models.CreateVerificationResponse, error) {
	if !req.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: service type %q", models.ErrInvalidEnum, req.ServiceType)
	}

	now := time.Now().UTC()
	rec := &models.VerificationRecord{
		ID:          uuid.NewString(),
		ProfileID:   profileID,
		ServiceType: req.ServiceType,
		ProgramID:   req.ProgramID,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.ServiceType == models.ServiceChatGPT && s.provider.Enabled() {
		programID := req.ProgramID
		if programID == "" {
			programID = s.cfg.ProviderProgramID
		}
		res, err := s.provider.CreateVerification(ctx, programID)
		if err != nil {
			s.log.Warn("provider verification not created", zap.String("verification_id", rec.ID), zap.Error(err))
		} else {
			rec.SheerIDVerificationID = res.VerificationID
			rec.ProviderStep = res.CurrentStep
		}
	}

	if _, err := s.verifications().InsertOne(ctx, rec); err != nil {
		return nil, fmt.Errorf("error inserting verification: %w", err)
	}

	s.log.Info("verification created",
		zap.String("verification_id", rec.ID),
		zap.String("service_type", string(rec.ServiceType)),
		zap.Bool("provider", rec.SheerIDVerificationID != ""))

	return &models.CreateVerificationResponse{
		VerificationID:        rec.ID,
		SheerIDVerificationID: rec.SheerIDVerificationID,
		Status:                rec.Status,
		CreatedAt:             rec.CreatedAt,
	}, nil
}

func (s *verificationService) Submit(ctx context.Context, profileID string, req models.SubmitVerificationRequest) (*models.SubmitVerificationResponse, error) {
	rec, err := s.loadOwned(ctx, profileID, req.VerificationID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: verification is %s", ErrInvalidState, rec.Status)
	}

	now := time.Now().UTC()
	veteran := &models.VeteranRecord{
		ID:             uuid.NewString(),
		ProfileID:      profileID,
		FirstName:      req.Veteran.FirstName,
		LastName:       req.Veteran.LastName,
		BirthDate:      req.Veteran.BirthDate.TimePtr(),
		Branch:         req.Veteran.Branch,
		MilitaryStatus: req.Veteran.Status(),
		DischargeDate:  req.Veteran.DischargeDate.TimePtr(),
		Source:         models.VeteranSourceManual,
		CreatedAt:      now,
	}
	if err := s.claimPending(ctx, rec.ID, veteran.ID, now); err != nil {
		return nil, err
	}
	if _, err := s.db.Collection(db.VeteransCollection).InsertOne(ctx, veteran); err != nil {
		s.releaseClaim(ctx, rec.ID, veteran.ID)
		return nil, fmt.Errorf("error inserting veteran: %w", err)
	}

	resp := &models.SubmitVerificationResponse{
		VerificationID: rec.ID,
		Status:         models.StatusProcessing,
		Message:        MsgSubmitted,
	}
	if rec.SheerIDVerificationID == "" || !s.provider.Enabled() {
		return resp, nil
	}

	step, err := s.submitToProvider(ctx, rec.SheerIDVerificationID, req)
	if err != nil {
		s.log.Warn("provider rejected submission", zap.String("verification_id", rec.ID), zap.Error(err))
		msg := "Verification failed: " + err.Error()
		if uerr := s.update(ctx, rec.ID, bson.M{
			"status":        models.StatusError,
			"error_message": err.Error(),
			"completed_at":  time.Now().UTC(),
		}); uerr != nil {
			return nil, uerr
		}
		resp.Status = models.StatusError
		resp.Message = msg
		return resp, nil
	}

	status := provider.StatusForStep(step)
	set := bson.M{"status": status, "provider_step": step}
	switch status {
	case models.StatusApproved:
		resp.Message = MsgApproved
		set["completed_at"] = time.Now().UTC()
	case models.StatusRejected:
		resp.Message = "Verification rejected"
		set["completed_at"] = time.Now().UTC()
	case models.StatusDocumentRequired:
		resp.Message = MsgDocumentRequired
		resp.NextStep = models.NextStepDocumentUpload
	default:
		resp.Message = MsgProcessing
	}
	if err := s.update(ctx, rec.ID, set); err != nil {
		return nil, err
	}
	if status == models.StatusApproved {
		s.markVeteranVerified(ctx, veteran.ID)
	}
	if status == models.StatusProcessing {
		s.scheduleRefresh(ctx, rec.ID)
	}

	resp.Status = status
	return resp, nil
}

func (s *verificationService) submitToProvider(ctx context.Context, providerID string, req models.SubmitVerificationRequest) (string, error) {
	if _, err := s.provider.CollectMilitaryStatus(ctx, providerID, req.Veteran.Status()); err != nil {
		return "", err
	}

	info := provider.PersonalInfo{
		FirstName:    req.Veteran.FirstName,
		LastName:     req.Veteran.LastName,
		Email:        req.Email,
		Organization: models.BranchOrganization(req.Veteran.Branch),
	}
	if req.Veteran.BirthDate != nil {
		info.BirthDate = req.Veteran.BirthDate.String()
	}
	if req.Veteran.DischargeDate != nil {
		info.DischargeDate = req.Veteran.DischargeDate.String()
	}

	res, err := s.provider.CollectPersonalInfo(ctx, providerID, info)
	if err != nil {
		return "", err
	}
	if res.CurrentStep == provider.StepError {
		return "", fmt.Errorf("provider reported errors %v", res.ErrorIDs)
	}
	return res.CurrentStep, nil
}

// GetStatus returns the verification, polling the provider first while it is processing.
func (s *verificationService) GetStatus(ctx context.Context, profileID, verificationID string) (*models.Verification, error) {
	rec, err := s.loadOwned(ctx, profileID, verificationID)
	if err != nil {
		return nil, err
	}

	if rec.Status == models.StatusProcessing && rec.SheerIDVerificationID != "" && s.provider.Enabled() {
		if _, err := s.RefreshStatus(ctx, rec.ID); err != nil {
			s.log.Warn("status poll failed", zap.String("verification_id", rec.ID), zap.Error(err))
		} else if rec, err = s.load(ctx, rec.ID); err != nil {
			return nil, err
		}
	}

	var veteran *models.VeteranRecord
	if rec.VeteranID != "" {
		var v models.VeteranRecord
		err := s.db.Collection(db.VeteransCollection).FindOne(ctx, bson.M{"_id": rec.VeteranID}).Decode(&v)
		switch {
		case err == nil:
			veteran = &v
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("error finding veteran %s: %w", rec.VeteranID, err)
		}
	}
	return rec.ToAPI(veteran), nil
}

func (s *verificationService) UploadDocument(ctx context.Context, profileID, verificationID string, doc DocumentUpload) (*models.UploadDocumentResponse, error) {
	rec, err := s.loadOwned(ctx, profileID, verificationID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.StatusDocumentRequired {
		return nil, fmt.Errorf("%w: verification is %s", ErrInvalidState, rec.Status)
	}

	maxSize := int64(s.cfg.DocumentMaxSizeMB) * 1024 * 1024
	normalized, err := normalizeDocument(doc, maxSize, s.cfg.DocumentMaxDimension)
	if err != nil {
		return nil, err
	}

	key, err := s.storage.PutDocument(ctx, rec.ID, normalized.filename, normalized.contentType, normalized.data)
	if err != nil {
		return nil, err
	}

	resp := &models.UploadDocumentResponse{
		VerificationID: rec.ID,
		Status:         models.StatusProcessing,
		Message:        MsgDocumentUploaded,
	}
	set := bson.M{
		"status":        models.StatusProcessing,
		"document_key":  key,
		"document_type": doc.DocumentType,
	}

	if rec.SheerIDVerificationID != "" && s.provider.Enabled() {
		res, err := s.provider.UploadDocument(ctx, rec.SheerIDVerificationID, normalized.filename, normalized.contentType, normalized.data)
		if err != nil {
			s.log.Warn("provider rejected document", zap.String("verification_id", rec.ID), zap.Error(err))
			resp.Status = models.StatusError
			resp.Message = "Failed to upload document: " + err.Error()
			set["status"] = models.StatusError
			set["error_message"] = err.Error()
			set["completed_at"] = time.Now().UTC()
		} else {
			resp.Message = MsgDocumentInReview
			set["provider_step"] = res.CurrentStep
		}
	}

	if err := s.update(ctx, rec.ID, set); err != nil {
		return nil, err
	}
	if resp.Status == models.StatusProcessing && rec.SheerIDVerificationID != "" && s.provider.Enabled() {
		s.scheduleRefresh(ctx, rec.ID)
	}

	if resp.DocumentURL, err = s.storage.PresignGetURL(ctx, key); err != nil {
		s.log.Warn("document url not presigned", zap.String("key", key), zap.Error(err))
		resp.DocumentURL = ""
	}
	return resp, nil
}

// RefreshStatus polls the provider for a processing verification and persists any change.
// Verifications that are not processing are returned unchanged.
func (s *verificationService) RefreshStatus(ctx context.Context, verificationID string) (models.VerificationStatus, error) {
	rec, err := s.load(ctx, verificationID)
	if err != nil {
		return "", err
	}
	if rec.Status != models.StatusProcessing || rec.SheerIDVerificationID == "" {
		return rec.Status, nil
	}

	res, err := s.provider.GetVerification(ctx, rec.SheerIDVerificationID)
	if err != nil {
		return rec.Status, err
	}

	status := provider.StatusForStep(res.CurrentStep)
	if status == rec.Status {
		return status, nil
	}

	set := bson.M{"status": status, "provider_step": res.CurrentStep}
	if status.IsTerminal() {
		set["completed_at"] = time.Now().UTC()
	}
	if err := s.update(ctx, rec.ID, set); err != nil {
		return rec.Status, err
	}
	if status == models.StatusApproved && rec.VeteranID != "" {
		s.markVeteranVerified(ctx, rec.VeteranID)
	}

	s.log.Info("verification status changed",
		zap.String("verification_id", rec.ID),
		zap.String("from", string(rec.Status)),
		zap.String("to", string(status)))
	return status, nil
}

// ExpireStale marks non-terminal verifications created before now-olderThan as expired.
func (s *verificationService) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := time.Now().UTC()
	res, err := s.verifications().UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$in": nonTerminalStatuses()},
			"created_at": bson.M{"$lt": now.Add(-olderThan)},
		},
		bson.M{"$set": bson.M{
			"status":       models.StatusExpired,
			"updated_at":   now,
			"completed_at": now,
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("error expiring verifications: %w", err)
	}
	if res.ModifiedCount > 0 {
		s.log.Info("expired stale verifications", zap.Int64("count", res.ModifiedCount))
	}
	return res.ModifiedCount, nil
}

func nonTerminalStatuses() []models.VerificationStatus {
	return []models.VerificationStatus{models.StatusPending, models.StatusProcessing, models.StatusDocumentRequired}
}

func (s *verificationService) load(ctx context.Context, verificationID string) (*models.VerificationRecord, error) {
	var rec models.VerificationRecord
	err := s.verifications().FindOne(ctx, bson.M{"_id": verificationID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding verification %s: %w", verificationID, err)
	}
	return &rec, nil
}

func (s *verificationService) loadOwned(ctx context.Context, profileID, verificationID string) (*models.VerificationRecord, error) {
	rec, err := s.load(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	if rec.ProfileID != profileID {
		return nil, ErrForbidden
	}
	return rec, nil
}

// update applies set to a verification unless it has already reached a terminal status.
func (s *verificationService) update(ctx context.Context, verificationID string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.verifications().UpdateOne(ctx,
		bson.M{"_id": verificationID, "status": bson.M{"$in": nonTerminalStatuses()}},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("error updating verification %s: %w", verificationID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: verification %s is no longer active", ErrInvalidState, verificationID)
	}
	return nil
}

// claimPending moves a pending verification to processing. Only one of
// several concurrent submits can match the pending filter.
func (s *verificationService) claimPending(ctx context.Context, verificationID, veteranID string, now time.Time) error {
	res, err := s.verifications().UpdateOne(ctx,
		bson.M{"_id": verificationID, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"veteran_id":   veteranID,
			"status":       models.StatusProcessing,
			"submitted_at": now,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return fmt.Errorf("error updating verification %s: %w", verificationID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: verification %s was already submitted", ErrInvalidState, verificationID)
	}
	return nil
}

// releaseClaim returns a claimed verification to pending.
func (s *verificationService) releaseClaim(ctx context.Context, verificationID, veteranID string) {
	_, err := s.verifications().UpdateOne(ctx,
		bson.M{"_id": verificationID, "veteran_id": veteranID, "status": models.StatusProcessing},
		bson.M{
			"$set":   bson.M{"status": models.StatusPending, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"veteran_id": "", "submitted_at": ""},
		},
	)
	if err != nil {
		s.log.Error("verification claim not released", zap.String("verification_id", verificationID), zap.Error(err))
	}
}

func (s *verificationService) markVeteranVerified(ctx context.Context, veteranID string) {
	_, err := s.db.Collection(db.VeteransCollection).UpdateByID(ctx, veteranID, bson.M{"$set": bson.M{"is_verified": true}})
	if err != nil {
		s.log.Warn("veteran not marked verified", zap.String("veteran_id", veteranID), zap.Error(err))
	}
}

func (s *verificationService) scheduleRefresh(ctx context.Context, verificationID string) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.ScheduleStatusRefresh(ctx, verificationID, 0); err != nil {
		s.log.Warn("status refresh not scheduled", zap.String("verification_id", verificationID), zap.Error(err))
	}
}
