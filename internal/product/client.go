package product

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/product/domain"
	"go.uber.org/zap"
)

const tokenExpiryMargin = 60

type ClientConfig struct {
	BaseURL   string
	UserAgent string
	ClientID  string
}

// Client talks to the retailer's public catalog API. Catalog endpoints
// only need an anonymous token, so no user credentials are involved.
type Client struct {
	cfg   ClientConfig
	http  *http.Client
	clock clock.Clock
	log   *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry int64
}

func NewClient(cfg ClientConfig, clk clock.Clock, log *zap.Logger) *Client {
	if strings.TrimSpace(cfg.ClientID) == "" {
		cfg.ClientID = "bonny"
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 30 * time.Second},
		clock: clk,
		log:   log.Named("bonny.product"),
	}
}

func (c *Client) baseHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-Application", "BONNYWEBSHOP")
	return h
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now().Unix()
	if c.accessToken != "" && now <= c.tokenExpiry-tokenExpiryMargin {
		return c.accessToken, nil
	}

	body, err := json.Marshal(map[string]string{"clientId": c.cfg.ClientID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/mobile-auth/v1/auth/token/anonymous", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header = c.baseHeaders()

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("anonymous token request failed with status %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	if token.ExpiresIn == 0 {
		token.ExpiresIn = 3600
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = now + token.ExpiresIn
	c.log.Debug("anonymous token refreshed", zap.Int64("expires_in", token.ExpiresIn))
	return c.accessToken, nil
}

// getJSON performs an authenticated GET. A 404 returns (nil, nil) so
// callers can distinguish missing products from transport failures.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header = c.baseHeaders()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("catalog request %s failed with status %d: %s", path, resp.StatusCode, string(raw))
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// Product fetches catalog details by the numeric product id that
// appears on receipt lines. Returns nil when the product is unknown.
func (c *Client) Product(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	data, err := c.getJSON(ctx, "/mobile-services/product/detail/v4/fir/"+url.PathEscape(productID), nil)
	if err != nil || data == nil {
		return nil, err
	}
	detail := parseProductDetail(data)
	return &detail, nil
}

func (c *Client) Search(ctx context.Context, query string, page, size int, sort string) (domain.ProductSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	params.Set("sortOn", sort)

	data, err := c.getJSON(ctx, "/mobile-services/product/search/v2", params)
	if err != nil {
		return domain.ProductSearchResponse{}, err
	}
	return parseSearchResponse(data, query, page, size), nil
}

// ProductByBarcode resolves an EAN/GTIN. The endpoint sometimes answers
// with a search-result envelope instead of a product, in which case the
// first hit is re-fetched by its webshop id for the full record.
func (c *Client) ProductByBarcode(ctx context.Context, barcode string) (*domain.ProductDetail, error) {
	data, err := c.getJSON(ctx, "/mobile-services/product/search/v1/gtin/"+url.PathEscape(barcode), nil)
	if err != nil || data == nil {
		return nil, err
	}

	if products, ok := data["products"].([]any); ok && len(products) > 0 {
		if first, ok := products[0].(map[string]any); ok {
			if webshopID := idString(first["webshopId"]); webshopID != "" {
				return c.Product(ctx, webshopID)
			}
		}
	}

	detail := parseProductDetail(data)
	return &detail, nil
}
