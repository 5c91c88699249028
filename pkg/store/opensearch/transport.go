package opensearch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// newTransport returns the connection pool shared by every driver.
func newTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxConns,
		MaxIdleConnsPerHost: cfg.MaxConns,
		MaxConnsPerHost:     cfg.MaxConns,
		IdleConnTimeout:     90 * time.Second,
	}
}

// newRequest builds a JSON request. target is an absolute URL for the HTTP
// driver and a path for the SDK drivers.
func newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// setCredentials applies API key or basic auth. SigV4 requests are signed by
// sigV4Transport instead.
func setCredentials(req *http.Request, cfg Config) {
	switch {
	case cfg.AWSAuthEnabled:
	case strings.TrimSpace(cfg.APIKey) != "":
		req.Header.Set("Authorization", "ApiKey "+strings.TrimSpace(cfg.APIKey))
	case strings.TrimSpace(cfg.Username) != "":
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}
}

func collectAddresses(cfg Config) ([]string, error) {
	parsed, err := parseBaseURLs(cfg)
	if err != nil {
		return nil, err
	}
	addresses := make([]string, 0, len(parsed))
	for _, u := range parsed {
		addresses = append(addresses, u.String())
	}
	return addresses, nil
}

// credentialsProvider uses the configured static keys, or the default AWS chain
// (environment, shared config, instance role) when none are set.
func credentialsProvider(ctx context.Context, cfg Config) (aws.CredentialsProvider, error) {
	keyID, secret := strings.TrimSpace(cfg.AWSAccessKeyID), strings.TrimSpace(cfg.AWSSecretKey)
	if keyID != "" || secret != "" {
		if keyID == "" || secret == "" {
			return nil, fmt.Errorf("both AWS access key id and secret access key are required when using static AWS credentials")
		}
		return credentials.NewStaticCredentialsProvider(keyID, secret, cfg.AWSSessionToken), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS default config: %w", err)
	}
	if awsCfg.Credentials == nil {
		return nil, fmt.Errorf("failed to resolve AWS credentials provider")
	}
	return awsCfg.Credentials, nil
}

// sigV4Transport signs every request for Amazon OpenSearch Service.
type sigV4Transport struct {
	next    http.RoundTripper
	signer  *v4.Signer
	creds   aws.CredentialsProvider
	region  string
	service string
	now     func() time.Time
}

func newSigV4Transport(ctx context.Context, cfg Config, next http.RoundTripper) (*sigV4Transport, error) {
	creds, err := credentialsProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &sigV4Transport{
		next:    next,
		signer:  v4.NewSigner(),
		creds:   creds,
		region:  cfg.AWSRegion,
		service: cfg.AWSService,
		now:     time.Now,
	}, nil
}

func (t *sigV4Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	signed := req.Clone(req.Context())
	payload, err := bufferBody(signed)
	if err != nil {
		return nil, err
	}

	creds, err := t.creds.Retrieve(signed.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}
	sum := sha256.Sum256(payload)
	if err := t.signer.SignHTTP(signed.Context(), creds, signed, hex.EncodeToString(sum[:]), t.service, t.region, t.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to sign request with AWS SigV4: %w", err)
	}
	return t.next.RoundTrip(signed)
}

// bufferBody reads the body so it can be hashed, then restores it.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return []byte{}, nil
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.ContentLength = int64(len(data))
	return data, nil
}
