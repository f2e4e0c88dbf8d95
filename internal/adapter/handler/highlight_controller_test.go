package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardcut/boardcut/internal/domain/entities"
	pkgvalidator "github.com/boardcut/boardcut/pkg/validator"
)

// stubService records calls and returns canned values
type stubService struct {
	createdJob *entities.HighlightJob
}

func (s *stubService) CreateJob(_ context.Context, targetSpeaker, recordingURL string, policy entities.SegmentPolicy) (*entities.HighlightJob, error) {
	s.createdJob = entities.NewHighlightJob(targetSpeaker, recordingURL, policy)
	return s.createdJob, nil
}

func (s *stubService) GetJob(context.Context, uuid.UUID) (*entities.HighlightJob, error) {
	return s.createdJob, nil
}

func (s *stubService) ListJobs(context.Context, int) ([]entities.HighlightJob, error) {
	return nil, nil
}

func (s *stubService) GetSegmentSet(context.Context, uuid.UUID) (*entities.SegmentSet, error) {
	return nil, nil
}

func (s *stubService) OpenSegmentsFile(context.Context, uuid.UUID) (io.ReadCloser, error) {
	return nil, nil
}

func (s *stubService) AlignAndProcess(context.Context, uuid.UUID, []entities.TranscriptLine, []entities.Caption) (*entities.SegmentSet, error) {
	return nil, nil
}

func (s *stubService) SubmitJob(context.Context, uuid.UUID) error { return nil }

func (s *stubService) HandleTranscriptWebhook(context.Context, []byte, string) error { return nil }

func (s *stubService) StartWorkerPool(context.Context, int) error { return nil }

func (s *stubService) StopWorkerPool() error { return nil }

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateJob_ReturnsAccepted(t *testing.T) {
	svc := &stubService{}
	h := NewHighlightHandler(svc, zap.NewNop())

	body := `{"target_speaker":"Pat Quinn","recording_url":"https://example.com/rec.mp4"}`
	c, rec := newTestContext(http.MethodPost, "/v1/jobs", body)

	if err := h.CreateJob(c); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if svc.createdJob == nil {
		t.Fatal("service CreateJob was not called")
	}
	if svc.createdJob.TargetSpeaker != "Pat Quinn" {
		t.Errorf("target speaker = %q", svc.createdJob.TargetSpeaker)
	}
}

func TestCreateJob_RejectsInvalidBody(t *testing.T) {
	h := NewHighlightHandler(&stubService{}, zap.NewNop())

	// missing recording_url
	c, rec := newTestContext(http.MethodPost, "/v1/jobs", `{"target_speaker":"Pat Quinn"}`)

	if err := h.CreateJob(c); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetJob_RejectsNonUUID(t *testing.T) {
	h := NewHighlightHandler(&stubService{}, zap.NewNop())

	c, rec := newTestContext(http.MethodGet, "/v1/jobs/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.GetJob(c); err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
