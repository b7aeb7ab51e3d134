package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"chatreport/internal/ai"
	aiMocks "chatreport/internal/ai/mocks"
	"chatreport/internal/fingerprint"
	"chatreport/internal/model"
	repoMocks "chatreport/internal/repository/mocks"
	"chatreport/internal/storage"
	storeMocks "chatreport/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const ocrModel = "google/gemini-2.5-flash"

func imageFile() *model.File {
	return &model.File{
		ID:          "file-1",
		ChatID:      "chat-1",
		UserID:      "user-1",
		Filename:    "receipt.png",
		MimeType:    "image/png",
		StoragePath: "files/a.png",
	}
}

func TestVerificationService_Verify(t *testing.T) {
	ctx := context.Background()
	content := "stored bytes"
	wantFP := func() string {
		h := sha256.Sum256([]byte(content))
		return hex.EncodeToString(h[:])
	}()

	tests := []struct {
		name       string
		fileID     string
		setupMocks func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient)
		checkRec   func(t *testing.T, rec *model.Verification)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:   "happy path for an image runs OCR and records",
			fileID: "file-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				mFiles.On("FindByID", ctx, "file-1").Return(imageFile(), nil)
				mStore.On("Get", ctx, "files/a.png").
					Return(io.NopCloser(strings.NewReader(content)), storage.ObjectInfo{}, nil)
				mStore.On("PresignGet", ctx, "files/a.png", presignExpiry).
					Return("https://minio/files/a.png?sig", nil)
				mAI.On("Complete", ctx, mock.MatchedBy(func(req ai.CompletionRequest) bool {
					if req.Model != ocrModel || len(req.Messages) != 1 {
						return false
					}
					parts := req.Messages[0].Content
					return len(parts) == 2 &&
						strings.Contains(parts[0].Text, "Extract all text from this image") &&
						parts[1].ImageURL != nil &&
						parts[1].ImageURL.URL == "https://minio/files/a.png?sig"
				})).Return("Total: $42.00", nil)
				mVers.On("LatestByFileID", ctx, "file-1").Return(nil, sql.ErrNoRows)
				mVers.On("RecordVerification", ctx, mock.MatchedBy(func(rec *model.Verification) bool {
					chained, err := fingerprint.Chain("", rec.ContentFingerprint, rec.CreatedAt)
					return err == nil &&
						rec.ContentFingerprint == wantFP &&
						rec.ChainFingerprint == chained &&
						rec.VerifiedBy == "user-1" &&
						rec.Status == model.VerificationVerified &&
						rec.Metadata["ocr_length"] == len("Total: $42.00")
				}), "Total: $42.00", "").
					Return(func(ctx context.Context, rec *model.Verification, ocrText, prev string) *model.Verification {
						return rec
					}, nil)
			},
			checkRec: func(t *testing.T, rec *model.Verification) {
				assert.Equal(t, wantFP, rec.ContentFingerprint)
				assert.NotEmpty(t, rec.ChainFingerprint)
			},
		},
		{
			name:   "text-free image stores the sentinel verbatim",
			fileID: "file-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				mFiles.On("FindByID", ctx, "file-1").Return(imageFile(), nil)
				mStore.On("Get", ctx, "files/a.png").
					Return(io.NopCloser(strings.NewReader(content)), storage.ObjectInfo{}, nil)
				mStore.On("PresignGet", ctx, "files/a.png", presignExpiry).
					Return("https://minio/files/a.png?sig", nil)
				mAI.On("Complete", ctx, mock.Anything).
					Return(model.OCRNoTextSentinel, nil)
				mVers.On("LatestByFileID", ctx, "file-1").Return(nil, sql.ErrNoRows)
				mVers.On("RecordVerification", ctx, mock.MatchedBy(func(rec *model.Verification) bool {
					return rec.Status == model.VerificationVerified &&
						rec.Metadata["ocr_length"] == len(model.OCRNoTextSentinel)
				}), model.OCRNoTextSentinel, "").
					Return(&model.Verification{ID: "rec-1", Status: model.VerificationVerified}, nil)
			},
		},
		{
			name:   "non-image skips OCR",
			fileID: "file-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				f := imageFile()
				f.MimeType = "application/pdf"
				mFiles.On("FindByID", ctx, "file-1").Return(f, nil)
				mStore.On("Get", ctx, "files/a.png").
					Return(io.NopCloser(strings.NewReader(content)), storage.ObjectInfo{}, nil)
				mVers.On("LatestByFileID", ctx, "file-1").Return(nil, sql.ErrNoRows)
				mVers.On("RecordVerification", ctx, mock.Anything, "", "").
					Return(&model.Verification{ID: "rec-1"}, nil)
			},
		},
		{
			name:   "re-verification chains onto the previous record",
			fileID: "file-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				f := imageFile()
				f.MimeType = "text/plain"
				mFiles.On("FindByID", ctx, "file-1").Return(f, nil)
				mStore.On("Get", ctx, "files/a.png").
					Return(io.NopCloser(strings.NewReader(content)), storage.ObjectInfo{}, nil)
				mVers.On("LatestByFileID", ctx, "file-1").
					Return(&model.Verification{ChainFingerprint: "prevchain"}, nil)
				mVers.On("RecordVerification", ctx, mock.MatchedBy(func(rec *model.Verification) bool {
					chained, err := fingerprint.Chain("prevchain", rec.ContentFingerprint, rec.CreatedAt)
					return err == nil && rec.ChainFingerprint == chained
				}), "", "prevchain").
					Return(&model.Verification{ID: "rec-2"}, nil)
			},
		},
		{
			name:       "validation error - empty id",
			fileID:     "",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:   "file not found",
			fileID: "missing",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				mFiles.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "gateway failure writes nothing",
			fileID: "file-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				mFiles.On("FindByID", ctx, "file-1").Return(imageFile(), nil)
				mStore.On("Get", ctx, "files/a.png").
					Return(io.NopCloser(strings.NewReader(content)), storage.ObjectInfo{}, nil)
				mStore.On("PresignGet", ctx, "files/a.png", presignExpiry).
					Return("https://minio/files/a.png?sig", nil)
				mAI.On("Complete", ctx, mock.Anything).
					Return("", &ai.StatusError{StatusCode: http.StatusInternalServerError})
			},
			wantErrMsg: "extract text",
		},
		{
			name:   "storage read failure",
			fileID: "file-1",
			setupMocks: func(mStore *storeMocks.MockStorage, mFiles *repoMocks.MockFileRepository, mVers *repoMocks.MockVerificationRepository, mAI *aiMocks.MockClient) {
				mFiles.On("FindByID", ctx, "file-1").Return(imageFile(), nil)
				mStore.On("Get", ctx, "files/a.png").
					Return(nil, storage.ObjectInfo{}, errors.New("object gone"))
			},
			wantErrMsg: "read stored file: object gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mFiles := new(repoMocks.MockFileRepository)
			mVers := new(repoMocks.MockVerificationRepository)
			mAI := new(aiMocks.MockClient)
			svc := NewVerificationService(mStore, mFiles, mVers, mAI, ocrModel)

			tt.setupMocks(mStore, mFiles, mVers, mAI)

			rec, err := svc.Verify(ctx, tt.fileID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, rec)
				if tt.checkRec != nil {
					tt.checkRec(t, rec)
				}
			}

			mStore.AssertExpectations(t)
			mFiles.AssertExpectations(t)
			mVers.AssertExpectations(t)
			mAI.AssertExpectations(t)
		})
	}
}

func TestVerificationService_Latest(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mVers := new(repoMocks.MockVerificationRepository)
		mVers.On("LatestByFileID", ctx, "file-1").
			Return(&model.Verification{ID: "rec-1"}, nil)
		svc := NewVerificationService(nil, nil, mVers, nil, ocrModel)

		rec, err := svc.Latest(ctx, "file-1")

		assert.NoError(t, err)
		assert.Equal(t, "rec-1", rec.ID)
		mVers.AssertExpectations(t)
	})

	t.Run("never verified maps to not found", func(t *testing.T) {
		mVers := new(repoMocks.MockVerificationRepository)
		mVers.On("LatestByFileID", ctx, "file-1").Return(nil, sql.ErrNoRows)
		svc := NewVerificationService(nil, nil, mVers, nil, ocrModel)

		_, err := svc.Latest(ctx, "file-1")

		assert.ErrorIs(t, err, ErrNotFound)
		mVers.AssertExpectations(t)
	})
}
