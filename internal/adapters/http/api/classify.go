package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/cardiocare/internal/domain/classify"
	"github.com/okian/cardiocare/pkg/metrics"
)

// classificationResponse is returned by the /classify endpoints.
type classificationResponse struct {
	BMI      float64           `json:"bmi,omitempty"`
	Category classify.Category `json:"category"`
}

// ClassifyHandler serves the stateless classifiers.
type ClassifyHandler struct{}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler() *ClassifyHandler {
	return &ClassifyHandler{}
}

// HandleBMI handles GET /classify/bmi?weight=&height= or ?bmi=.
func (h *ClassifyHandler) HandleBMI(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify_bmi"
	q := r.URL.Query()

	var bmi float64
	if raw := q.Get("bmi"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		bmi = v
	} else {
		weight, werr := strconv.ParseFloat(q.Get("weight"), 64)
		height, herr := strconv.ParseFloat(q.Get("height"), 64)
		if err := errors.Join(werr, herr); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		v, ok := classify.BMI(weight, height)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("weight and height must be positive")))
			return
		}
		bmi = v
	}

	cat, ok := classify.ClassifyBMI(bmi)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("bmi must be a positive number")))
		return
	}
	metrics.RecordClassification("bmi", cat.Label)
	writeJSON(w, http.StatusOK, classificationResponse{BMI: bmi, Category: cat})
}

// HandleBloodPressure handles GET /classify/blood-pressure?systolic=&diastolic=.
func (h *ClassifyHandler) HandleBloodPressure(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify_bp"
	q := r.URL.Query()
	sys, serr := strconv.Atoi(q.Get("systolic"))
	dia, derr := strconv.Atoi(q.Get("diastolic"))
	if err := errors.Join(serr, derr); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	cat := classify.ClassifyBloodPressure(sys, dia)
	metrics.RecordClassification("blood-pressure", cat.Label)
	writeJSON(w, http.StatusOK, classificationResponse{Category: cat})
}

// HandleHeartRate handles GET /classify/heart-rate?bpm=.
func (h *ClassifyHandler) HandleHeartRate(w http.ResponseWriter, r *http.Request) {
	const op = "api.classify_hr"
	bpm, err := strconv.Atoi(r.URL.Query().Get("bpm"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	cat := classify.ClassifyHeartRate(bpm)
	metrics.RecordClassification("heart-rate", cat.Label)
	writeJSON(w, http.StatusOK, classificationResponse{Category: cat})
}
