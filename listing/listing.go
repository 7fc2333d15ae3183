package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/brokerage/core/apiclient"
	"github.com/dmitrymomot/brokerage/core/logger"
)

// Caller performs API calls. *apiclient.Client satisfies it.
type Caller interface {
	WithToken(ctx context.Context, endpoint string, opts apiclient.Options) (*apiclient.Response, error)
	WithoutToken(ctx context.Context, endpoint string, opts apiclient.Options) (*apiclient.Response, error)
}

// UploadField is the multipart field carrying an uploaded image.
const UploadField = "file"

// Service exposes the property, enquiry and visit endpoints of the backend.
// List and create calls return the results.data member of the response
// envelope as raw JSON; exports return the whole response.
type Service struct {
	api    Caller
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a service on top of api.
func New(api Caller, opts ...Option) *Service {
	s := &Service{
		api:    api,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type envelope struct {
	Results *struct {
		Data json.RawMessage `json:"data"`
	} `json:"results"`
	Message string `json:"message"`
}

// data returns results.data, or nil when the envelope has none.
func (e envelope) data() json.RawMessage {
	if e.Results == nil || len(e.Results.Data) == 0 || string(e.Results.Data) == "null" {
		return nil
	}
	return e.Results.Data
}

// Properties

// CreateProperty posts a new property. body is encoded as JSON.
func (s *Service) CreateProperty(ctx context.Context, body any) (json.RawMessage, error) {
	return s.send(ctx, true, http.MethodPost, "/property/add", body)
}

// Properties lists properties.
func (s *Service) Properties(ctx context.Context, page Page) (json.RawMessage, error) {
	return s.data(ctx, false, "/property/getAll?"+page.query())
}

// Property fetches a single property.
func (s *Service) Property(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.data(ctx, false, "/property/"+url.PathEscape(id))
}

// UpdateProperty edits a property owned by the session user. body carries the
// property id.
func (s *Service) UpdateProperty(ctx context.Context, body any) (json.RawMessage, error) {
	return s.send(ctx, true, http.MethodPut, "/user/properties/edit", body)
}

// DeleteProperty removes a property owned by the session user.
func (s *Service) DeleteProperty(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	resp, err := s.api.WithToken(ctx, "/user/properties/delete/"+url.PathEscape(id), apiclient.Options{Method: http.MethodDelete})
	if err != nil {
		return nil, err
	}
	return unwrapData(resp)
}

// FilterProperties searches properties.
func (s *Service) FilterProperties(ctx context.Context, f Filter) (json.RawMessage, error) {
	return s.data(ctx, false, "/property/getAll/filter?"+f.Values().Encode())
}

// UploadPropertyImage uploads one image as multipart form data and returns
// the results member of the response.
func (s *Service) UploadPropertyImage(ctx context.Context, filename string, r io.Reader) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	resp, err := s.api.WithToken(ctx, "/property/upload/file", apiclient.Options{
		Method:        http.MethodPost,
		Headers:       map[string]string{"Content-Type": mw.FormDataContentType()},
		Body:          buf.Bytes(),
		NoContentType: true,
	})
	if err != nil {
		return nil, err
	}

	var env struct {
		Results json.RawMessage `json:"results"`
	}
	if err := resp.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return env.Results, nil
}

// Website enquiries

// CreateWebsiteEnquiry submits a general enquiry.
func (s *Service) CreateWebsiteEnquiry(ctx context.Context, e Enquiry) (json.RawMessage, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return s.send(ctx, false, http.MethodPost, "/enquiry/website/add", e)
}

// WebsiteEnquiries lists general enquiries.
func (s *Service) WebsiteEnquiries(ctx context.Context, page Page) (json.RawMessage, error) {
	return s.data(ctx, true, "/enquiry/website/getAll?"+page.query())
}

// ExportWebsiteEnquiries downloads general enquiries within r.
func (s *Service) ExportWebsiteEnquiries(ctx context.Context, r DateRange) (*apiclient.Response, error) {
	return s.export(ctx, "/enquiry/website/export?"+r.query())
}

// Property enquiries

// CreatePropertyEnquiry submits an enquiry about one property.
func (s *Service) CreatePropertyEnquiry(ctx context.Context, id string, e Enquiry) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return s.send(ctx, false, http.MethodPost, "/enquiry/property/add/"+url.PathEscape(id), e)
}

// PropertyEnquiries lists the enquiries of one property.
func (s *Service) PropertyEnquiries(ctx context.Context, id string, page Page) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.data(ctx, true, "/enquiry/property/getAll/"+url.PathEscape(id)+"?"+page.query())
}

// ExportPropertyEnquiries downloads the enquiries of one property within r.
func (s *Service) ExportPropertyEnquiries(ctx context.Context, id string, r DateRange) (*apiclient.Response, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.export(ctx, "/enquiry/property/export/"+url.PathEscape(id)+"?"+r.query())
}

// Property visits

// CreatePropertyVisit books a site visit for one property.
func (s *Service) CreatePropertyVisit(ctx context.Context, id string, v Visit) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return s.send(ctx, false, http.MethodPost, "/enquiry/property/add/visit/"+url.PathEscape(id), v)
}

// PropertyVisits lists the visits booked for one property.
func (s *Service) PropertyVisits(ctx context.Context, id string, page Page) (json.RawMessage, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.data(ctx, true, "/enquiry/property/getAll/visit/"+url.PathEscape(id)+"?"+page.query())
}

// ExportPropertyVisits downloads the visits of one property within r.
func (s *Service) ExportPropertyVisits(ctx context.Context, id string, r DateRange) (*apiclient.Response, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.export(ctx, "/enquiry/property/export/visit/"+url.PathEscape(id)+"?"+r.query())
}

func (s *Service) call(ctx context.Context, auth bool, endpoint string, opts apiclient.Options) (*apiclient.Response, error) {
	if auth {
		return s.api.WithToken(ctx, endpoint, opts)
	}
	return s.api.WithoutToken(ctx, endpoint, opts)
}

func (s *Service) data(ctx context.Context, auth bool, endpoint string) (json.RawMessage, error) {
	resp, err := s.call(ctx, auth, endpoint, apiclient.Options{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	return unwrapData(resp)
}

func (s *Service) send(ctx context.Context, auth bool, method, endpoint string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	resp, err := s.call(ctx, auth, endpoint, apiclient.Options{Method: method, Body: payload})
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if env.Message != "" {
		s.logger.InfoContext(ctx, "api accepted request",
			logger.Component("listing"),
			logger.Method(method),
			logger.Path(endpoint),
			slog.String("message", env.Message),
		)
	}
	return env.data(), nil
}

func (s *Service) export(ctx context.Context, endpoint string) (*apiclient.Response, error) {
	return s.api.WithToken(ctx, endpoint, apiclient.Options{Method: http.MethodGet})
}

func decodeEnvelope(resp *apiclient.Response) (envelope, error) {
	var env envelope
	if err := resp.Decode(&env); err != nil {
		return env, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return env, nil
}

func unwrapData(resp *apiclient.Response) (json.RawMessage, error) {
	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	return env.data(), nil
}
