package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placecache/internal/domain/search/filter"
	"github.com/kailas-cloud/placecache/internal/domain/search/request"
	"github.com/kailas-cloud/placecache/internal/domain/search/result"
	"github.com/kailas-cloud/placecache/internal/domain/search/sortkey"
	healthuc "github.com/kailas-cloud/placecache/internal/usecase/health"
	resolveuc "github.com/kailas-cloud/placecache/internal/usecase/resolve"
)

const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers.
type Server struct {
	resolver  Resolver
	nearby    NearbySearcher
	moderator Moderator
	authz     Authorizer
	health    HealthChecker
	limits    request.Limits
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	resolver Resolver,
	nearby NearbySearcher,
	moderator Moderator,
	authz Authorizer,
	health HealthChecker,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		resolver:  resolver,
		nearby:    nearby,
		moderator: moderator,
		authz:     authz,
		health:    health,
		limits:    limits,
		logger:    logger,
	}
}

// ResolvePlace handles POST /v1/places/resolve.
func (s *Server) ResolvePlace(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.resolve(w, r, resolveuc.Request{
		PlaceID:      req.PlaceID,
		ForceRefresh: req.ForceRefresh,
		Language:     req.Language,
	})
}

// GetPlace handles GET /v1/places/{placeId}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	placeID, ok := bindPlaceID(w, r)
	if !ok {
		return
	}

	var forceRefresh *bool
	if err := runtime.BindQueryParameter("form", true, false, "forceRefresh", r.URL.Query(), &forceRefresh); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid forceRefresh")
		return
	}
	var language *string
	if err := runtime.BindQueryParameter("form", true, false, "language", r.URL.Query(), &language); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid language")
		return
	}

	req := resolveuc.Request{PlaceID: placeID}
	if forceRefresh != nil {
		req.ForceRefresh = *forceRefresh
	}
	if language != nil {
		req.Language = *language
	}
	s.resolve(w, r, req)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request, req resolveuc.Request) {
	ctx := r.Context()
	req.CallerID = CallerFromContext(ctx)
	if err := s.authz.Authorize(ctx, req.CallerID); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{
		Place:     res.Record,
		FromCache: res.FromCache,
		Meta: ResolveMeta{
			FromCache:  res.FromCache,
			Degraded:   res.Degraded,
			LastUpdate: res.Record.Sync.LastSyncedAt,
			Language:   res.Language,
		},
	})
}

// SearchNearby handles POST /v1/places/nearby.
func (s *Server) SearchNearby(w http.ResponseWriter, r *http.Request) {
	var req NearbyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := s.authz.Authorize(ctx, CallerFromContext(ctx)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	q, err := nearbyFromRequest(&req, s.limits)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, err.Error())
		return
	}

	page, err := s.nearby.Search(ctx, &q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nearbyToResponse(&q, page))
}

// SetPlaceActive handles PUT /v1/admin/places/{placeId}/active.
func (s *Server) SetPlaceActive(w http.ResponseWriter, r *http.Request) {
	placeID, ok := bindPlaceID(w, r)
	if !ok {
		return
	}
	var req SetActiveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "active is required")
		return
	}

	ctx := r.Context()
	if err := s.authz.AuthorizeAdmin(ctx, CallerFromContext(ctx)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.moderator.SetActive(ctx, placeID, *req.Active)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func bindPlaceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var placeID string
	err := runtime.BindStyledParameterWithOptions("simple", "placeId", chirouter.URLParam(r, "placeId"), &placeID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid placeId")
		return "", false
	}
	return placeID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, msg)
		return false
	}
	return true
}

func nearbyFromRequest(req *NearbyRequest, lim request.Limits) (request.Nearby, error) {
	if req.Center == nil {
		return request.Nearby{}, errors.New("center is required")
	}

	var nf NearbyFilters
	if req.Filters != nil {
		nf = *req.Filters
	}
	key, err := sortkey.Parse(nf.SortBy)
	if err != nil {
		return request.Nearby{}, err //nolint:wrapcheck // validation message is caller-facing
	}
	f, err := filter.New(nf.Category, nf.MinRating, nf.Tags, req.Bounds, nf.IncludeReviews, key, nf.Active)
	if err != nil {
		return request.Nearby{}, err //nolint:wrapcheck // validation message is caller-facing
	}

	var p Pagination
	if req.Pagination != nil {
		p = *req.Pagination
	}
	q, err := request.New(*req.Center, req.RadiusKm, f, p.Limit, p.Offset, lim)
	if err != nil {
		return request.Nearby{}, err //nolint:wrapcheck // validation message is caller-facing
	}
	return q, nil
}

func nearbyToResponse(q *request.Nearby, page result.Page) NearbyResponse {
	places := make([]NearbyPlace, len(page.Results))
	for i := range page.Results {
		places[i] = NearbyPlace{
			Place:      page.Results[i].Record(),
			DistanceKm: page.Results[i].DistanceKm(),
		}
	}
	f := q.Filters()
	return NearbyResponse{
		Places:   places,
		Total:    page.Total,
		HasMore:  page.HasMore,
		Center:   q.Center(),
		RadiusKm: q.RadiusKm(),
		AppliedFilters: AppliedFilters{
			Category:       f.Category(),
			MinRating:      f.MinRating(),
			Tags:           f.Tags(),
			Bounds:         f.Bounds(),
			IncludeReviews: f.IncludeReviews(),
			SortBy:         string(f.SortBy()),
			Active:         f.Active(),
			Limit:          q.Limit(),
			Offset:         q.Offset(),
		},
	}
}
