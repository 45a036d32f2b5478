package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/compression"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/form"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/formats"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/json"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/logger"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/metrics"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/predict"
)

// BatchFileName is the download name of scored batch output
const BatchFileName = "ames_housing_predictions.csv"

// Summary headers on batch responses
const (
	HeaderCount = "X-Prediction-Count"
	HeaderMean  = "X-Prediction-Mean"
	HeaderMin   = "X-Prediction-Min"
	HeaderMax   = "X-Prediction-Max"
)

type featuresResponse struct {
	Fields      []form.Field `json:"fields"`
	TopFeatures []string     `json:"top_features"`
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, featuresResponse{
		Fields:      form.Fields(),
		TopFeatures: s.bundle.TopFeatures,
	})
}

// PredictRequest is the body of POST /v1/predict
type PredictRequest struct {
	Features map[string]float64 `json:"features"`
}

// PredictResponse is a priced single property
type PredictResponse struct {
	Price      float64            `json:"price"`
	Range      predict.Range      `json:"range"`
	Confidence float64            `json:"confidence"`
	Inputs     map[string]float64 `json:"inputs"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	price, inputs, err := s.predictSingle(w, r)
	metrics.RecordPrediction(metrics.ModeSingle, err, 1)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorStatus(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrorTypeValidation),
				errors.Newf(errors.ErrorTypeValidation, "body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, PredictResponse{
		Price:      price,
		Range:      predict.PriceRange(price),
		Confidence: predict.ModelConfidence,
		Inputs:     inputs,
	})
}

func (s *Server) predictSingle(w http.ResponseWriter, r *http.Request) (float64, map[string]float64, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "read request body")
	}
	var req PredictRequest
	if err := json.UnmarshalStrict(data, &req); err != nil {
		return 0, nil, errors.Wrap(err, errors.ErrorTypeMalformedInput, "decode request body")
	}

	inputs, err := form.Resolve(req.Features)
	if err != nil {
		return 0, nil, err
	}

	row := form.BuildRow(inputs)
	price, err := s.predictor.PredictRow(r.Context(), row)
	if err != nil {
		return 0, nil, err
	}

	id, _ := s.sessionID(w, r, true)
	s.sessions.record(id, inputs, price)
	ctx := context.WithValue(r.Context(), logger.SessionIDKey, id)
	s.requestLogger(r.WithContext(ctx)).Debug("single prediction", zap.Float64("price", price))
	return price, inputs, nil
}

// LastResponse is the caller's most recent single prediction
type LastResponse struct {
	Price     float64            `json:"price"`
	Inputs    map[string]float64 `json:"inputs"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r, false)
	if !ok {
		s.writeErrorStatus(w, r, http.StatusNotFound, "not_found", errors.New(errors.ErrorTypeValidation, "no prediction in this session"))
		return
	}
	sess, ok := s.sessions.get(id)
	inputs, price, has := sess.Last()
	if !ok || !has {
		s.writeErrorStatus(w, r, http.StatusNotFound, "not_found", errors.New(errors.ErrorTypeValidation, "no prediction in this session"))
		return
	}
	s.writeJSON(w, http.StatusOK, LastResponse{Price: price, Inputs: inputs, UpdatedAt: sess.UpdatedAt})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	format, err := formats.FromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		s.writeErrorStatus(w, r, http.StatusUnsupportedMediaType, string(errors.TypeOf(err)), err)
		return
	}
	alg, err := compression.Parse(r.URL.Query().Get("compress"))
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, errors.ErrorTypeValidation, "compress parameter"))
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	f, err := formats.Read(r.Context(), body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorStatus(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrorTypeValidation),
				errors.Newf(errors.ErrorTypeValidation, "body exceeds %d bytes", tooLarge.Limit))
			return
		}
		metrics.RecordPrediction(metrics.ModeBatch, err, 0)
		s.writeError(w, r, err)
		return
	}

	if limit := s.cfg.Batch.MaxRows; limit > 0 && f.Len() > limit {
		err := errors.Newf(errors.ErrorTypeValidation, "batch has %d rows, limit is %d", f.Len(), limit).
			WithDetail("rows", f.Len())
		metrics.RecordPrediction(metrics.ModeBatch, err, 0)
		s.writeErrorStatus(w, r, http.StatusRequestEntityTooLarge, string(err.Type), err)
		return
	}

	prices, err := s.predictor.Predict(r.Context(), f)
	metrics.RecordPrediction(metrics.ModeBatch, err, f.Len())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var out bytes.Buffer
	if err := formats.Encode(&out, f, prices, s.cfg.Batch.OutputColumn, alg); err != nil {
		s.writeError(w, r, err)
		return
	}

	sum := predict.Summarize(prices)
	h := w.Header()
	h.Set(HeaderCount, strconv.Itoa(sum.Count))
	h.Set(HeaderMean, formats.FormatPrice(sum.Mean))
	h.Set(HeaderMin, formats.FormatPrice(sum.Min))
	h.Set(HeaderMax, formats.FormatPrice(sum.Max))

	name := BatchFileName + compression.Extension(alg)
	if alg == compression.None {
		h.Set("Content-Type", formats.ContentTypeCSV)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	h.Set("Content-Length", strconv.Itoa(out.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := out.WriteTo(w); err != nil {
		s.requestLogger(r).Warn("write batch response", zap.Error(err))
	}

	s.requestLogger(r).Info("batch scored",
		zap.Int("rows", sum.Count),
		zap.Float64("mean", sum.Mean),
		zap.String("format", string(format)))
}

// HealthResponse reports bundle and process state
type HealthResponse struct {
	Status  string       `json:"status"`
	Uptime  string       `json:"uptime"`
	Bundle  bundleHealth `json:"bundle"`
	Process processInfo  `json:"process"`
}

type bundleHealth struct {
	Loaded        bool              `json:"loaded"`
	Error         string            `json:"error,omitempty"`
	Source        string            `json:"source,omitempty"`
	Version       string            `json:"version,omitempty"`
	LoadedAt      time.Time         `json:"loaded_at,omitempty"`
	Features      int               `json:"features"`
	ModelFeatures int               `json:"model_features"`
	Files         map[string]string `json:"files,omitempty"`
}

type processInfo struct {
	RSSBytes   uint64 `json:"rss_bytes"`
	VMSBytes   uint64 `json:"vms_bytes"`
	Goroutines int    `json:"goroutines"`
	Sessions   int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Process: processInfo{
			Goroutines: runtime.NumGoroutine(),
			Sessions:   s.sessions.len(),
		},
	}

	loaded, err := s.provider.Loaded()
	resp.Bundle.Loaded = loaded
	if err != nil {
		resp.Bundle.Error = err.Error()
	}
	if b := s.bundle; b != nil {
		resp.Bundle.Source = b.Source
		resp.Bundle.Version = b.Version
		resp.Bundle.LoadedAt = b.LoadedAt
		resp.Bundle.Features = len(b.FullFeatures)
		resp.Bundle.ModelFeatures = len(b.Model.FeatureNames)
		resp.Bundle.Files = b.Files
	}

	if p, err := process.NewProcessWithContext(r.Context(), int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfoWithContext(r.Context()); err == nil {
			resp.Process.RSSBytes = mem.RSS
			resp.Process.VMSBytes = mem.VMS
		}
	}

	status := http.StatusOK
	if !loaded {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}
