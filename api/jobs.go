package api

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/garnizeh/fairway/internal/app"
	"github.com/garnizeh/fairway/internal/fault"
	"github.com/garnizeh/fairway/internal/models"
	"github.com/garnizeh/fairway/pkg/repository"
	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"
)

//go:embed schema/job.json
var jobSchemaJSON []byte

type JobsHandler struct {
	jobs      *app.JobService
	jobSchema *jsonschema.Schema
}

func NewJobsHandler(jobs *app.JobService) *JobsHandler {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(jobSchemaJSON, rs); err != nil {
		// the schema is embedded; a parse failure is a build defect
		panic(err)
	}
	return &JobsHandler{jobs: jobs, jobSchema: rs}
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fault.New(fault.CodeValidation, "unreadable body"))
		return
	}

	// structural check first; semantic rules live in the service
	keyErrs, err := h.jobSchema.ValidateBytes(r.Context(), body)
	if err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}
	if len(keyErrs) > 0 {
		fields := map[string]string{}
		for _, ke := range keyErrs {
			fields[ke.PropertyPath] = ke.Message
		}
		writeError(w, fault.Validation("invalid job payload", fields))
		return
	}

	var in app.JobInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}

	job, err := h.jobs.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, job, http.StatusCreated)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var patch app.JobPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, fault.New(fault.CodeValidation, "invalid json"))
		return
	}

	job, err := h.jobs.Update(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.jobs.Cancel(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "cancelled"}, http.StatusOK)
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	_, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}

	q := r.URL.Query()
	f := repository.JobFilter{
		JobType:      q.Get("job_type"),
		UrgencyLevel: q.Get("urgency_level"),
		Limit:        queryInt(q.Get("limit"), 50, 500),
		Offset:       queryInt(q.Get("offset"), 0, 1<<30),
	}
	if lat, lng, radius, ok := geoParams(q.Get("lat"), q.Get("lng"), q.Get("radius_km")); ok {
		f.Lat, f.Lng, f.RadiusKm = lat, lng, radius
	}

	items, total, err := h.jobs.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Job{}
	}
	writeJSON(w, map[string]any{
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
		"items":  items,
	}, http.StatusOK)
}

func (h *JobsHandler) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, fault.New(fault.CodeUnauthenticated, "no verified account"))
		return
	}

	q := r.URL.Query()
	items, err := h.jobs.ListMine(r.Context(), actor, queryInt(q.Get("limit"), 50, 500), queryInt(q.Get("offset"), 0, 1<<30))
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Job{}
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := mux.Vars(r)[key]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fault.New(fault.CodeValidation, "invalid id")
	}
	return id, nil
}

func queryInt(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > max {
		return def
	}
	return v
}

func geoParams(latRaw, lngRaw, radiusRaw string) (lat, lng, radius float64, ok bool) {
	if latRaw == "" || lngRaw == "" || radiusRaw == "" {
		return 0, 0, 0, false
	}
	var err error
	if lat, err = strconv.ParseFloat(latRaw, 64); err != nil {
		return 0, 0, 0, false
	}
	if lng, err = strconv.ParseFloat(lngRaw, 64); err != nil {
		return 0, 0, 0, false
	}
	if radius, err = strconv.ParseFloat(radiusRaw, 64); err != nil || radius <= 0 {
		return 0, 0, 0, false
	}
	return lat, lng, radius, true
}
