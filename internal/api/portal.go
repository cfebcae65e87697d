package api

import (
	"context"
	"strings"
	"time"

	"bordtennis-ranking/internal/config"
	"bordtennis-ranking/internal/constants"
	"bordtennis-ranking/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// PortalClient talks to the bordtennisportalen.dk web service. Both endpoints
// answer with a JSON envelope wrapping an HTML fragment.
type PortalClient struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *fasthttp.Client
	logger    zerolog.Logger
}

func NewPortalClient(cfg *config.Config, logger zerolog.Logger) *PortalClient {
	return &PortalClient{
		baseURL:   strings.TrimRight(cfg.PortalBaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.RequestTimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         cfg.RequestTimeout,
			WriteTimeout:        cfg.RequestTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "portal").Logger(),
	}
}

// envelope is the ASP.NET web service wrapper: {"d": {"Html": "..."}}.
type envelope struct {
	D *struct {
		HTML *string `json:"Html"`
	} `json:"d"`
}

func (c *PortalClient) GetPlayerProfile(ctx context.Context, req domain.ProfileRequest) (string, error) {
	return c.postFragment(ctx, constants.PlayerProfilePath, req)
}

func (c *PortalClient) GetRankingListPoints(ctx context.Context, params domain.RankingQueryParams) (string, error) {
	return c.postFragment(ctx, constants.RankingListPath, params)
}

// GetHomePage returns the raw portal front page, which embeds the current
// callback context key in an inline script.
func (c *PortalClient) GetHomePage(ctx context.Context) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)

	if err := c.do(ctx, req, resp); err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

func (c *PortalClient) postFragment(ctx context.Context, path string, payload any) (string, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal request payload")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.SetContentType(constants.JSONContentType)
	req.SetBody(body)

	c.logger.Debug().Str("path", path).Int("body_bytes", len(body)).Msg("posting to portal")

	if err := c.do(ctx, req, resp); err != nil {
		return "", err
	}
	return decodeFragment(resp.Body())
}

func (c *PortalClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return errors.Mark(errors.Wrap(err, "request cancelled"), domain.ErrNetwork)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return errors.Mark(errors.Wrapf(err, "request %s", req.URI().Path()), domain.ErrNetwork)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return errors.Mark(
			errors.Newf("portal responded %d for %s", resp.StatusCode(), req.URI().Path()),
			domain.ErrNetwork,
		)
	}
	return nil
}

func decodeFragment(body []byte) (string, error) {
	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		return "", errors.Mark(errors.Wrap(err, "decode response envelope"), domain.ErrMalformedResponse)
	}
	if env.D == nil || env.D.HTML == nil {
		return "", errors.Wrap(domain.ErrMalformedResponse, "response has no d.Html")
	}
	return *env.D.HTML, nil
}
