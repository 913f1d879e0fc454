package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bmateuszideas/DPF-CALC/internal/db"
	"github.com/bmateuszideas/DPF-CALC/internal/dpf"
	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/logging"
	"github.com/bmateuszideas/DPF-CALC/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the API server
type Server struct {
	db     *db.Database
	router *mux.Router
}

// NewServer creates a new API server
func NewServer(database *db.Database) *Server {
	s := &Server{
		db:     database,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Specification databases
	s.router.HandleFunc("/api/v1/oils", s.handleListOils).Methods("GET")
	s.router.HandleFunc("/api/v1/oils/{id}", s.handleGetOil).Methods("GET")
	s.router.HandleFunc("/api/v1/fuels", s.handleListFuels).Methods("GET")
	s.router.HandleFunc("/api/v1/fuels/{id}", s.handleGetFuel).Methods("GET")

	// Calculations
	s.router.HandleFunc("/api/v1/estimate", s.handleEstimate).Methods("POST")
	s.router.HandleFunc("/api/v1/simulate", s.handleSimulate).Methods("POST")

	// History and stats
	s.router.HandleFunc("/api/v1/estimates", s.handleListEstimates).Methods("GET")
	s.router.HandleFunc("/api/v1/stats", s.handleStats).Methods("GET")

	// Add middleware
	s.router.Use(loggingMiddleware)
	s.router.Use(jsonMiddleware)
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

// Middleware
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Response helpers
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type meta struct {
	Total   int   `json:"total,omitempty"`
	Limit   int   `json:"limit,omitempty"`
	QueryMs int64 `json:"query_ms,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

func respondWithMeta(w http.ResponseWriter, data interface{}, m *meta) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Meta: m})
}

// statusFor maps domain error types to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.IsType(err, errors.TypeInvalidInput), errors.IsType(err, errors.TypeDataFormat):
		return http.StatusBadRequest
	case errors.IsType(err, errors.TypeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListOils(w http.ResponseWriter, r *http.Request) {
	oils, err := s.db.ListOils()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, oils)
}

func (s *Server) handleGetOil(w http.ResponseWriter, r *http.Request) {
	oil, err := s.db.GetOil(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, oil)
}

func (s *Server) handleListFuels(w http.ResponseWriter, r *http.Request) {
	fuels, err := s.db.ListFuels()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, fuels)
}

func (s *Server) handleGetFuel(w http.ResponseWriter, r *http.Request) {
	fuel, err := s.db.GetFuel(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, fuel)
}

// estimateRequest selects specs by identifier and carries the usage profile
type estimateRequest struct {
	VehicleID         string              `json:"vehicle_id,omitempty"`
	OilID             string              `json:"oil_id"`
	FuelID            string              `json:"fuel_id"`
	Profile           models.UsageProfile `json:"profile"`
	DPFCapacityAshG   *float64            `json:"dpf_capacity_ash_g,omitempty"`
	SulfurToAshFactor *float64            `json:"sulfur_to_ash_factor,omitempty"`
	Save              bool                `json:"save,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.OilID == "" || req.FuelID == "" {
		respondError(w, http.StatusBadRequest, "oil_id and fuel_id are required")
		return
	}

	oil, err := s.db.GetOil(req.OilID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	fuel, err := s.db.GetFuel(req.FuelID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	cfg := dpf.DefaultAshFillConfig()
	if req.DPFCapacityAshG != nil {
		cfg.DPFCapacityAshG = *req.DPFCapacityAshG
	}
	if req.SulfurToAshFactor != nil {
		cfg.SulfurToAshFactor = *req.SulfurToAshFactor
	}

	result, err := dpf.AshFill(req.Profile, *oil, *fuel, cfg)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	record := models.EstimateRecord{
		VehicleID: req.VehicleID,
		OilID:     req.OilID,
		FuelID:    req.FuelID,
		Profile:   req.Profile,
		Result:    result,
	}
	if req.Save {
		if err := s.db.SaveEstimate(&record); err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
	}

	respondWithMeta(w, record, &meta{QueryMs: time.Since(start).Milliseconds()})
}

// simulateRequest carries driving-profile inputs and the mileage range
type simulateRequest struct {
	Inputs       models.DPFInputs  `json:"inputs"`
	Params       *models.DPFParams `json:"params,omitempty"`
	MileageStart float64           `json:"mileage_start"`
	MileageEnd   float64           `json:"mileage_end"`
	StepKM       float64           `json:"step_km"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	params := dpf.DefaultParams()
	if req.Params != nil {
		params = *req.Params
	}

	states, err := dpf.SimulateLifecycle(req.Inputs, params, req.MileageStart, req.MileageEnd, req.StepKM)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondWithMeta(w, states, &meta{
		Total:   len(states),
		QueryMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	vehicleID := r.URL.Query().Get("vehicle_id")

	estimates, err := s.db.ListEstimates(vehicleID, limit)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondWithMeta(w, estimates, &meta{Total: len(estimates), Limit: limit})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
