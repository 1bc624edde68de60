package api_test

import (
	"net/http"
	"testing"

	"github.com/garnizeh/fairway/internal/models"
)

type errResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func TestCreateJob(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	course := signup(t, srv, "Course", "c@c.test", "course")

	var job models.Job
	status := doJSON(t, srv, http.MethodPost, "/v1/jobs", course, validJobPayload(), &job)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 got %d", status)
	}
	if job.Status != models.JobStatusOpen || job.ID == 0 {
		t.Fatalf("unexpected job: %#v", job)
	}
}

func TestCreateJobSchemaValidation(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	course := signup(t, srv, "Course", "c@c.test", "course")

	payload := validJobPayload()
	delete(payload, "title")
	payload["hourly_rate"] = "forty-five" // wrong type

	var er errResponse
	status := doJSON(t, srv, http.MethodPost, "/v1/jobs", course, payload, &er)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
	if er.Error.Code != "validation" {
		t.Fatalf("expected validation code got %q", er.Error.Code)
	}
}

func TestCreateJobRequiresCourseAccount(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	pro := signup(t, srv, "Pro", "p@p.test", "professional")

	var er errResponse
	status := doJSON(t, srv, http.MethodPost, "/v1/jobs", pro, validJobPayload(), &er)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", status)
	}
}

func TestListJobsWithFilter(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	course := signup(t, srv, "Course", "c@c.test", "course")
	pro := signup(t, srv, "Pro", "p@p.test", "professional")

	if status := doJSON(t, srv, http.MethodPost, "/v1/jobs", course, validJobPayload(), nil); status != http.StatusCreated {
		t.Fatalf("seed job failed: %d", status)
	}
	irrigation := validJobPayload()
	irrigation["job_type"] = "irrigation"
	if status := doJSON(t, srv, http.MethodPost, "/v1/jobs", course, irrigation, nil); status != http.StatusCreated {
		t.Fatalf("seed irrigation job failed: %d", status)
	}

	var page struct {
		Total int          `json:"total"`
		Items []models.Job `json:"items"`
	}
	status := doJSON(t, srv, http.MethodGet, "/v1/jobs?job_type=irrigation", pro, nil, &page)
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].JobType != "irrigation" {
		t.Fatalf("unexpected page: %#v", page)
	}
}

func TestUpdateJob(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	course := signup(t, srv, "Course", "c@c.test", "course")

	var job models.Job
	doJSON(t, srv, http.MethodPost, "/v1/jobs", course, validJobPayload(), &job)

	var updated models.Job
	status := doJSON(t, srv, http.MethodPut, jobPath(job.ID), course, map[string]any{"hourly_rate": 60}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if updated.HourlyRate != 60 {
		t.Fatalf("expected rate 60 got %v", updated.HourlyRate)
	}
}

func TestDeleteJobCancels(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	course := signup(t, srv, "Course", "c@c.test", "course")

	var job models.Job
	doJSON(t, srv, http.MethodPost, "/v1/jobs", course, validJobPayload(), &job)

	if status := doJSON(t, srv, http.MethodDelete, jobPath(job.ID), course, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}

	// the owner still sees the cancelled job
	var after models.Job
	if status := doJSON(t, srv, http.MethodGet, jobPath(job.ID), course, nil, &after); status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if after.Status != models.JobStatusCancelled {
		t.Fatalf("expected cancelled got %s", after.Status)
	}

	// cancelling again conflicts
	var er errResponse
	if status := doJSON(t, srv, http.MethodDelete, jobPath(job.ID), course, nil, &er); status != http.StatusConflict {
		t.Fatalf("expected 409 got %d", status)
	}
}

func TestListMyJobs(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	course := signup(t, srv, "Course", "c@c.test", "course")
	doJSON(t, srv, http.MethodPost, "/v1/jobs", course, validJobPayload(), nil)

	var page struct {
		Items []models.Job `json:"items"`
	}
	status := doJSON(t, srv, http.MethodGet, "/v1/jobs/mine", course, nil, &page)
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 job got %d", len(page.Items))
	}
}
