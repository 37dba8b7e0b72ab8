package marketplace

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/cache"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// tokenExpirySlack is subtracted from the provider's expires_in so a token
// is never used within a minute of its expiry
const tokenExpirySlack = 60 * time.Second

// serviceName is sent as WM_SVC.NAME on every Walmart request
const serviceName = "Walmart Marketplace"

// tokenResponse is the OAuth token payload both providers return
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenBroker implements integration.TokenSource for both marketplaces.
// Tokens are cached in process memory per credential-set fingerprint until
// one minute before expiry; tokens are secrets, so the cache is never
// externalized to Redis.
type TokenBroker struct {
	amazonAuthURL  string
	walmartBaseURL string
	httpClient     *http.Client
	store          *cache.MemoryStore[string]
	logger         *zap.Logger
}

// NewTokenBroker creates a token broker for the configured endpoints
func NewTokenBroker(amazonCfg config.AmazonConfig, walmartCfg config.WalmartConfig, clock cache.Clock, logger *zap.Logger) *TokenBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(amazonCfg.TimeoutSeconds) * time.Second
	if wt := time.Duration(walmartCfg.TimeoutSeconds) * time.Second; wt > timeout {
		timeout = wt
	}
	return &TokenBroker{
		amazonAuthURL:  amazonCfg.AuthURL,
		walmartBaseURL: strings.TrimRight(walmartCfg.APIBaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		store:          cache.NewMemoryStore[string](clock),
		logger:         logger,
	}
}

// AccessToken returns a valid bearer token for the credential set, exchanging
// credentials with the provider only when no unexpired token is cached
func (b *TokenBroker) AccessToken(ctx context.Context, creds *integration.CredentialSet) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	key := creds.Fingerprint()
	if token, ok, _ := b.store.Get(ctx, key); ok {
		return token, nil
	}

	var (
		resp *tokenResponse
		err  error
	)
	switch creds.Marketplace {
	case integration.MarketplaceAmazon:
		resp, err = b.exchangeAmazon(ctx, creds)
	case integration.MarketplaceWalmart:
		resp, err = b.exchangeWalmart(ctx, creds)
	default:
		return "", fmt.Errorf("%w: %q", integration.ErrInvalidMarketplace, creds.Marketplace)
	}
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: token response without access_token", integration.ErrInvalidResponse)
	}

	ttl := time.Duration(resp.ExpiresIn)*time.Second - tokenExpirySlack
	if ttl > 0 {
		if cacheErr := b.store.Set(ctx, key, resp.AccessToken, ttl); cacheErr != nil {
			b.logger.Warn("token cache write failed", zap.Error(cacheErr))
		}
	}

	b.logger.Debug("exchanged marketplace token",
		zap.String("marketplace", creds.Marketplace.String()),
		zap.Int64("expires_in", resp.ExpiresIn),
	)
	return resp.AccessToken, nil
}

// Invalidate drops the cached token for one credential set
func (b *TokenBroker) Invalidate(ctx context.Context, creds *integration.CredentialSet) {
	_ = b.store.Delete(ctx, creds.Fingerprint())
}

// exchangeAmazon performs the LWA refresh-token grant
func (b *TokenBroker) exchangeAmazon(ctx context.Context, creds *integration.CredentialSet) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.Fields.RefreshToken)
	form.Set("client_id", creds.Fields.ClientID)
	form.Set("client_secret", creds.Fields.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.amazonAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("amazon: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return b.doTokenRequest(req, integration.MarketplaceAmazon)
}

// exchangeWalmart performs the client-credentials grant with Basic auth
func (b *TokenBroker) exchangeWalmart(ctx context.Context, creds *integration.CredentialSet) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.walmartBaseURL+"/v3/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("walmart: failed to create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(creds.Fields.ClientID + ":" + creds.Fields.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("WM_SVC.NAME", serviceName)
	req.Header.Set("WM_QOS.CORRELATION_ID", uuid.NewString())

	return b.doTokenRequest(req, integration.MarketplaceWalmart)
}

func (b *TokenBroker) doTokenRequest(req *http.Request, marketplace integration.Marketplace) (*tokenResponse, error) {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read token response: %w", marketplace, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s token endpoint returned HTTP %d", integration.ErrAuthFailed, marketplace, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to parse token response: %v", integration.ErrInvalidResponse, err)
	}
	return &token, nil
}

// Ensure TokenBroker implements TokenSource interface
var _ integration.TokenSource = (*TokenBroker)(nil)
