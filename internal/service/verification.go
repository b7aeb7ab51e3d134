package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatreport/internal/ai"
	"chatreport/internal/fingerprint"
	"chatreport/internal/model"
	"chatreport/internal/repository"
	"chatreport/internal/storage"
)

// ocrInstruction is the fixed prompt sent with the image. The closing
// sentence makes the model answer with the sentinel for text-free images,
// so that case is distinguishable from a failed call.
const ocrInstruction = "Extract all text from this image. Provide the text in a structured format, " +
	"including any labels, values, and relevant information you can identify. " +
	"If there's no text, say 'No text detected'."

// presignExpiry bounds how long the gateway can dereference the image URL.
const presignExpiry = 15 * time.Minute

// VerificationService runs the file verification pipeline: fingerprint the
// stored bytes, extract text for images, derive the chain fingerprint, and
// commit the record together with the file's verification fields.
type VerificationService interface {
	// Verify runs the pipeline for one file and returns the new record.
	// A gateway failure aborts with no record written. Verifying the same
	// file again appends to its chain; distinct files verify independently
	// and may run in parallel.
	Verify(ctx context.Context, fileID string) (*model.Verification, error)

	// Latest returns the file's most recent verification record.
	Latest(ctx context.Context, fileID string) (*model.Verification, error)

	// History returns all verification records for the file, newest first.
	History(ctx context.Context, fileID string) ([]model.Verification, error)
}

type verificationService struct {
	store         storage.Storage
	files         repository.FileRepository
	verifications repository.VerificationRepository
	gateway       ai.Client
	ocrModel      string
}

// NewVerificationService constructs a new VerificationService.
func NewVerificationService(store storage.Storage, files repository.FileRepository, verifications repository.VerificationRepository, gateway ai.Client, ocrModel string) VerificationService {
	return &verificationService{
		store:         store,
		files:         files,
		verifications: verifications,
		gateway:       gateway,
		ocrModel:      ocrModel,
	}
}

func (s *verificationService) Verify(ctx context.Context, fileID string) (*model.Verification, error) {
	if fileID == "" {
		return nil, ErrIDRequired
	}
	start := time.Now()

	f, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Fingerprint the bytes actually in storage, not what the upload
	// claimed: the digest shown to the user must match the stored object.
	obj, _, err := s.store.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}
	contentFP, err := fingerprint.Sum(obj)
	obj.Close()
	if err != nil {
		return nil, fmt.Errorf("fingerprint file: %w", err)
	}

	// Text extraction only applies to images; the adapter itself does not
	// inspect MIME types.
	ocrText := ""
	if strings.HasPrefix(f.MimeType, "image/") {
		url, err := s.store.PresignGet(ctx, f.StoragePath, presignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign file url: %w", err)
		}
		ocrText, err = s.gateway.Complete(ctx, ai.CompletionRequest{
			Model:    s.ocrModel,
			Messages: []ai.ChatMessage{ai.ImageMessage(model.RoleUser, ocrInstruction, url)},
		})
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
	}

	prevChain := ""
	if prev, err := s.verifications.LatestByFileID(ctx, fileID); err == nil {
		prevChain = prev.ChainFingerprint
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	chainFP, err := fingerprint.Chain(prevChain, contentFP, now)
	if err != nil {
		return nil, err
	}

	rec := &model.Verification{
		ID:                 uuid.New().String(),
		FileID:             fileID,
		ContentFingerprint: contentFP,
		ChainFingerprint:   chainFP,
		VerifiedBy:         f.UserID,
		Status:             model.VerificationVerified,
		Metadata: map[string]any{
			"ocr_length":    len(ocrText),
			"processing_ms": time.Since(start).Milliseconds(),
		},
		CreatedAt: now,
	}
	return s.verifications.RecordVerification(ctx, rec, ocrText, prevChain)
}

func (s *verificationService) Latest(ctx context.Context, fileID string) (*model.Verification, error) {
	if fileID == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.verifications.LatestByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *verificationService) History(ctx context.Context, fileID string) ([]model.Verification, error) {
	if fileID == "" {
		return nil, ErrIDRequired
	}
	return s.verifications.ListByFileID(ctx, fileID)
}
