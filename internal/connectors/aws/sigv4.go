package aws

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// ServiceES is the signing name for Amazon OpenSearch / Elasticsearch domains.
const ServiceES = "es"

// SigningTransport signs every request with AWS SigV4 before sending it.
type SigningTransport struct {
	base        http.RoundTripper
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	region      string
	service     string
	now         func() time.Time
}

// NewSigningTransport wraps base (http.DefaultTransport when nil).
func NewSigningTransport(base http.RoundTripper, cfg aws.Config, service string) *SigningTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &SigningTransport{
		base:        base,
		credentials: cfg.Credentials,
		signer:      v4.NewSigner(),
		region:      cfg.Region,
		service:     service,
		now:         time.Now,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *SigningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	signed := req.Clone(ctx)

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("sigv4: read body: %w", err)
		}
		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.ContentLength = int64(len(body))
	}
	sum := sha256.Sum256(body)

	if t.credentials == nil {
		return nil, fmt.Errorf("sigv4: no credentials configured")
	}
	creds, err := t.credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("sigv4: retrieve credentials: %w", err)
	}
	if err := t.signer.SignHTTP(ctx, creds, signed, hex.EncodeToString(sum[:]), t.service, t.region, t.now()); err != nil {
		return nil, fmt.Errorf("sigv4: sign request: %w", err)
	}
	return t.base.RoundTrip(signed)
}
