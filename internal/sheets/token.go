package sheets

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"orderdesk/internal/apperr"
)

const (
	TokenURL      = "https://oauth2.googleapis.com/token"
	ReadOnlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

	grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL       = 55 * time.Minute
	defaultExpiresIn   = 3600
	minTokenTTL        = 60
	requestTimeout     = 10 * time.Second
)

// TokenCache stores access tokens by credentials identity. Expiry is checked
// by the provider, not the cache.
type TokenCache interface {
	Get(key string) (*oauth2.Token, bool)
	Set(key string, token *oauth2.Token)
}

type MemoryTokenCache struct {
	mu     sync.Mutex
	tokens map[string]*oauth2.Token
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{tokens: make(map[string]*oauth2.Token)}
}

func (c *MemoryTokenCache) Get(key string) (*oauth2.Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[key]
	return tok, ok
}

func (c *MemoryTokenCache) Set(key string, token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = token
}

type serviceAccountCredentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   *int64 `json:"expires_in"`
}

// TokenProvider exchanges a service-account assertion for a bearer token and
// keeps it until its cached expiry.
type TokenProvider struct {
	credentialsPath string
	tokenURL        string
	cache           TokenCache
	client          *http.Client
	logger          *zap.Logger
	now             func() time.Time
}

type TokenProviderOption func(*TokenProvider)

func WithTokenURL(u string) TokenProviderOption {
	return func(p *TokenProvider) {
		if strings.TrimSpace(u) != "" {
			p.tokenURL = strings.TrimSpace(u)
		}
	}
}

func WithTokenCache(cache TokenCache) TokenProviderOption {
	return func(p *TokenProvider) { p.cache = cache }
}

func WithTokenHTTPClient(client *http.Client) TokenProviderOption {
	return func(p *TokenProvider) { p.client = client }
}

func WithClock(now func() time.Time) TokenProviderOption {
	return func(p *TokenProvider) { p.now = now }
}

func NewTokenProvider(credentialsPath string, logger *zap.Logger, opts ...TokenProviderOption) *TokenProvider {
	p := &TokenProvider{
		credentialsPath: strings.TrimSpace(credentialsPath),
		tokenURL:        TokenURL,
		cache:           NewMemoryTokenCache(),
		client:          &http.Client{Timeout: requestTimeout},
		logger:          logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	key := p.cacheKey()
	if tok, ok := p.cache.Get(key); ok && tok.AccessToken != "" && p.now().Before(tok.Expiry) {
		return tok, nil
	}

	creds, err := loadCredentials(p.credentialsPath)
	if err != nil {
		return nil, err
	}

	assertion, err := p.buildAssertion(creds)
	if err != nil {
		return nil, err
	}

	tok, err := p.exchange(ctx, assertion)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, tok)
	return tok, nil
}

// TokenSource binds the provider to ctx so it can back an oauth2.Transport.
func (p *TokenProvider) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &boundTokenSource{ctx: ctx, provider: p}
}

type boundTokenSource struct {
	ctx      context.Context
	provider *TokenProvider
}

func (s *boundTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}

func (p *TokenProvider) buildAssertion(creds serviceAccountCredentials) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.PrivateKey))
	if err != nil {
		return "", &apperr.AuthError{Message: "unable to parse service account private key", Err: err}
	}

	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   creds.ClientEmail,
		"scope": ReadOnlyScope,
		"aud":   TokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", &apperr.AuthError{Message: "unable to sign service account assertion", Err: err}
	}
	return signed, nil
}

func (p *TokenProvider) exchange(ctx context.Context, assertion string) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {grantTypeJWTBearer},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &apperr.AuthError{Message: "create token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &apperr.AuthError{Message: "token request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &apperr.AuthError{Message: "read token response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Error("failed to exchange service account token",
			zap.Int("status", resp.StatusCode),
			zap.String("message", errorDescription(body)),
		)
		return nil, &apperr.AuthError{Message: "unable to obtain Google Sheets access token"}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &apperr.AuthError{Message: "decode token response", Err: err}
	}
	if payload.AccessToken == "" {
		return nil, &apperr.AuthError{Message: "access token missing in response"}
	}

	expiresIn := int64(defaultExpiresIn)
	if payload.ExpiresIn != nil {
		expiresIn = *payload.ExpiresIn
	}
	ttl := max(minTokenTTL, expiresIn-60)

	tokenType := payload.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   tokenType,
		Expiry:      p.now().Add(time.Duration(ttl) * time.Second),
	}, nil
}

func (p *TokenProvider) cacheKey() string {
	sum := md5.Sum([]byte(p.credentialsPath))
	return "google-sheets-token-" + hex.EncodeToString(sum[:])
}

func loadCredentials(path string) (serviceAccountCredentials, error) {
	var creds serviceAccountCredentials
	if path == "" {
		return creds, &apperr.ConfigurationError{Message: "Google Sheets credentials path not configured"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return creds, &apperr.ConfigurationError{Message: fmt.Sprintf("Google Sheets credentials file not found at %s", path)}
		}
		return creds, &apperr.ConfigurationError{Message: "unable to read Google Sheets credentials file", Err: err}
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, &apperr.ConfigurationError{Message: "Google Sheets credentials file is not valid JSON", Err: err}
	}

	if strings.TrimSpace(creds.ClientEmail) == "" {
		return creds, &apperr.ConfigurationError{Message: "Google Sheets credentials missing [client_email]"}
	}
	if strings.TrimSpace(creds.PrivateKey) == "" {
		return creds, &apperr.ConfigurationError{Message: "Google Sheets credentials missing [private_key]"}
	}
	return creds, nil
}

func errorDescription(body []byte) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}
	return string(body)
}
