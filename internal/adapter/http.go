package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs the REST implementation of [ServerAdapter].
// The base URL comes from adapterCfg.HTTPAddress ("localhost:8080" is
// accepted and gets an http scheme).
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpServerAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the credentials to
// /api/user/register and reads the bearer token from the Authorization
// response header.
func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.Session, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/user/register")
	if err != nil {
		return models.Session{}, mapRequestError("register request", err)
	}
	if resp.StatusCode() == http.StatusConflict {
		return models.Session{}, ErrLoginTaken
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	return h.sessionFromResponse(resp, user.Login)
}

// Login implements [ServerAdapter]. It POSTs the credentials to
// /api/user/login and reads the bearer token from the Authorization response
// header.
func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.Session, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/user/login")
	if err != nil {
		return models.Session{}, mapRequestError("login request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	return h.sessionFromResponse(resp, user.Login)
}

func (h *httpServerAdapter) sessionFromResponse(resp *resty.Response, login string) (models.Session, error) {
	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Session{}, fmt.Errorf("parse bearer token: %w", err)
	}

	userID, err := utils.ParseUserIDFromJWT(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("parse token subject: %w", err)
	}

	h.SetToken(token)
	return models.Session{UserID: userID, Login: login, Token: token}, nil
}

// FetchPage implements [ServerAdapter]. It GETs /api/records/page/{page},
// sending the filter as "q" and the watermark as If-Modified-Since.
func (h *httpServerAdapter) FetchPage(ctx context.Context, req models.PageRequest) (models.Page, error) {
	var page models.Page

	r := h.authedRequest(ctx).
		SetPathParam("page", strconv.Itoa(req.Page)).
		SetResult(&page)
	if req.Filter != "" {
		r.SetQueryParam("q", req.Filter)
	}
	if req.Watermark != nil {
		r.SetHeader(utils.IfModifiedSinceHeader, utils.FormatWatermark(*req.Watermark))
	}

	resp, err := r.Get("/api/records/page/{page}")
	if err != nil {
		return models.Page{}, mapRequestError("fetch page request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Page{}, err
	}

	if page.Items == nil {
		page.Items = []models.Record{}
	}
	return page, nil
}

// ListRecords implements [ServerAdapter].
func (h *httpServerAdapter) ListRecords(ctx context.Context) ([]models.Record, error) {
	resp, err := h.authedRequest(ctx).Get("/api/records")
	if err != nil {
		return nil, mapRequestError("list records request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0)
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// CreateRecord implements [ServerAdapter]. Client-side markers are stripped
// before sending.
func (h *httpServerAdapter) CreateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	var created models.Record

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record.Submission()).
		SetResult(&created).
		Post("/api/records")
	if err != nil {
		return models.Record{}, mapRequestError("create record request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}
	if created.ID == "" {
		return models.Record{}, errors.New("server returned a record without id")
	}

	return created, nil
}

// UpdateRecord implements [ServerAdapter]. It PUTs to /api/records/{id}; the
// body carries the same id.
func (h *httpServerAdapter) UpdateRecord(ctx context.Context, record models.Record) (models.Record, error) {
	if !record.HasServerID() {
		return models.Record{}, fmt.Errorf("%w: record has no server id", ErrBadRequest)
	}

	var updated models.Record
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", record.ID).
		SetBody(record.Submission()).
		SetResult(&updated).
		Put("/api/records/{id}")
	if err != nil {
		return models.Record{}, mapRequestError("update record request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	if updated.ID == "" {
		updated = record.Submission()
	}
	return updated, nil
}

// DeleteRecord implements [ServerAdapter].
func (h *httpServerAdapter) DeleteRecord(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", id).
		Delete("/api/records/{id}")
	if err != nil {
		return mapRequestError("delete record request", err)
	}

	return mapHTTPError(resp)
}

// ServerInfo implements [ServerAdapter].
func (h *httpServerAdapter) ServerInfo(ctx context.Context) (models.ServerInfo, error) {
	var info models.ServerInfo

	resp, err := h.client.R().SetContext(ctx).SetResult(&info).Get("/api/info")
	if err != nil {
		return models.ServerInfo{}, mapRequestError("info request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ServerInfo{}, err
	}
	return info, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok {
		req.SetHeader(utils.TraceIDHeader, traceID)
	}
	return req
}
