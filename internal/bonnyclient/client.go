package bonnyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pantrysense/pantrysense/internal/clock"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("bonnyclient: not authenticated")
	ErrNoRefreshToken   = errors.New("bonnyclient: no refresh token available")
)

// RemoteError carries GraphQL-level errors returned by the upstream API.
type RemoteError struct {
	Messages []string
}

func (e *RemoteError) Error() string {
	return "bonnyclient: remote error: " + strings.Join(e.Messages, "; ")
}

// Config configures the retail API client.
type Config struct {
	BaseURL   string
	UserAgent string
	ClientID  string
}

// Client talks to the retailer's mobile API. Credentials live in the
// injected TokenStore, never on the client itself.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens *TokenStore
	clock  clock.Clock
	log    *zap.Logger
}

func New(cfg Config, tokens *TokenStore, clk clock.Clock, log *zap.Logger) *Client {
	if strings.TrimSpace(cfg.ClientID) == "" {
		cfg.ClientID = "bonny"
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		tokens: tokens,
		clock:  clk,
		log:    log.Named("bonny.client"),
	}
}

func (c *Client) baseHeaders() http.Header {
	headers := http.Header{}
	headers.Set("User-Agent", c.cfg.UserAgent)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	return headers
}

// IsAuthenticated reports whether an access token is stored.
func (c *Client) IsAuthenticated() bool {
	return c.tokens.Authenticated()
}

// ClearTokens removes stored credentials.
func (c *Client) ClearTokens() error {
	return c.tokens.Clear()
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode exchanges an authorization code for tokens and persists them.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	body := map[string]string{"clientId": c.cfg.ClientID, "code": code}
	var resp TokenResponse
	if err := c.postJSON(ctx, "/mobile-auth/v1/auth/token", c.baseHeaders(), body, &resp); err != nil {
		return nil, err
	}
	if err := c.storeTokens(resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh rotates the access token using the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (*TokenResponse, error) {
	refreshToken := c.tokens.Get().RefreshToken
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	body := map[string]string{"clientId": c.cfg.ClientID, "refreshToken": refreshToken}
	var resp TokenResponse
	if err := c.postJSON(ctx, "/mobile-auth/v1/auth/token/refresh", c.baseHeaders(), body, &resp); err != nil {
		return nil, err
	}
	if err := c.storeTokens(resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) storeTokens(resp TokenResponse) error {
	expiresIn := resp.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 7200
	}
	return c.tokens.Set(Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       float64(c.clock.Now().Unix()) + float64(expiresIn),
	})
}

func (c *Client) ensureValidToken(ctx context.Context) error {
	if c.tokens.Expired(c.clock.Now()) && c.tokens.Get().RefreshToken != "" {
		if _, err := c.Refresh(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, headers http.Header, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header = headers

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("bonnyclient: request %s failed with status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) graphql(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	if !c.tokens.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := c.ensureValidToken(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	resp, err := c.doGraphQL(ctx, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens.Get().RefreshToken != "" {
		resp.Body.Close()
		if _, err := c.Refresh(ctx); err != nil {
			return err
		}
		resp, err = c.doGraphQL(ctx, payload)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("bonnyclient: graphql request failed with status %d", resp.StatusCode)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return &RemoteError{Messages: messages}
	}
	if out == nil || decoded.Data == nil {
		return nil
	}
	return json.Unmarshal(decoded.Data, out)
}

func (c *Client) doGraphQL(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/graphql", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header = c.baseHeaders()
	if token := c.tokens.Get().AccessToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

const receiptsQuery = `
query GetReceipts($pagination: OffsetLimitPagination!) {
    posReceiptsPage(pagination: $pagination) {
        pagination {
            offset
            limit
            totalElements
        }
        posReceipts {
            id
            dateTime
            totalAmount {
                amount
                formatted
            }
            storeAddress {
                city
                street
            }
        }
    }
}`

// Receipts lists receipt summaries with offset/limit paging.
func (c *Client) Receipts(ctx context.Context, offset, limit int) (*ReceiptsPage, error) {
	variables := map[string]interface{}{
		"pagination": map[string]interface{}{"offset": offset, "limit": limit},
	}
	var data struct {
		Page ReceiptsPage `json:"posReceiptsPage"`
	}
	if err := c.graphql(ctx, receiptsQuery, variables, &data); err != nil {
		return nil, err
	}
	return &data.Page, nil
}

const receiptQuery = `
query GetReceipt($id: String!) {
    posReceiptDetails(id: $id) {
        id
        memberId
        storeInfo
        products {
            id
            name
            quantity
            price { amount formatted }
            amount { amount formatted }
        }
        subtotalProducts {
            amount { amount formatted }
        }
        discounts {
            type
            name
            amount { amount formatted }
        }
        discountTotal { amount formatted }
        total { amount formatted }
        payments {
            method
            amount { amount formatted }
        }
        transaction {
            dateTime
            store
            lane
            id
        }
        address {
            street
            city
            postalCode
        }
        vat {
            levels {
                percentage
                amount { amount formatted }
            }
            total {
                amount { amount formatted }
            }
        }
    }
}`

// Receipt fetches a single receipt with line items, discounts and VAT.
func (c *Client) Receipt(ctx context.Context, receiptID string) (*ReceiptDetail, error) {
	variables := map[string]interface{}{"id": receiptID}
	var data struct {
		Detail *ReceiptDetail `json:"posReceiptDetails"`
	}
	if err := c.graphql(ctx, receiptQuery, variables, &data); err != nil {
		return nil, err
	}
	return data.Detail, nil
}

const receiptPDFQuery = `
query GetReceiptPdf($id: String!) {
    posReceiptPdf(id: $id) {
        url
    }
}`

// ReceiptPDF returns a download URL for the receipt PDF.
func (c *Client) ReceiptPDF(ctx context.Context, receiptID string) (string, error) {
	variables := map[string]interface{}{"id": receiptID}
	var data struct {
		PDF struct {
			URL string `json:"url"`
		} `json:"posReceiptPdf"`
	}
	if err := c.graphql(ctx, receiptPDFQuery, variables, &data); err != nil {
		return "", err
	}
	return data.PDF.URL, nil
}
