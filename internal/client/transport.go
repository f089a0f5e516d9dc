package client

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dcache-admin/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Options describes how to reach and authenticate against the frontend.
type Options struct {
	URL string

	// Username and Password enable HTTP basic authentication. The admin
	// role is requested by suffixing the username with "#admin".
	Username string
	Password string

	// Certificate and PrivateKey enable X.509 client authentication.
	Certificate string
	PrivateKey  string
	// X509Proxy is a grid proxy holding certificate chain and key in one
	// file. It takes precedence over Certificate/PrivateKey.
	X509Proxy string

	CACertificate      string
	CADirectory        string
	NoCheckCertificate bool

	// AccessToken is sent as a bearer token.
	AccessToken string
	// OIDCAgentAccount obtains bearer tokens from oidc-agent.
	OIDCAgentAccount string

	// Timeout bounds every API call. The event stream is not subject to it.
	Timeout time.Duration
}

// oidcTokenCommand is the oidc-agent helper printing an access token for
// an account.
var oidcTokenCommand = "oidc-token"

// New builds a client with an authenticated transport. The returned client
// must be closed to release the certificate watcher.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("service url is required")
	}

	tlsCfg, watcher, err := tlsConfig(opts)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	var rt http.RoundTripper = transport
	if src := tokenSource(opts); src != nil {
		logger.Log.Debug("bearer token authentication")
		rt = &oauth2.Transport{Source: src, Base: rt}
	} else if opts.Username != "" && opts.Password != "" {
		logger.Log.Debug("basic authentication",
			zap.String("user", opts.Username))
		rt = &basicAuthTransport{
			username: opts.Username + "#admin",
			password: opts.Password,
			base:     rt,
		}
	}

	c := &Client{
		base:    strings.TrimSuffix(opts.URL, "/"),
		http:    &http.Client{Transport: rt, Timeout: opts.Timeout},
		stream:  &http.Client{Transport: rt},
		watcher: watcher,
	}
	c.init()

	return c, nil
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(r)
}

func tokenSource(opts Options) oauth2.TokenSource {
	switch {
	case opts.AccessToken != "":
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.AccessToken,
			TokenType:   "Bearer",
		})
	case opts.OIDCAgentAccount != "":
		return oauth2.ReuseTokenSource(nil, &oidcAgentSource{account: opts.OIDCAgentAccount})
	default:
		return nil
	}
}

// oidcAgentSource asks oidc-agent for a fresh access token.
type oidcAgentSource struct {
	account string
}

func (s *oidcAgentSource) Token() (*oauth2.Token, error) {
	out, err := exec.Command(oidcTokenCommand, s.account).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to get token for oidc-agent account %s: %w", s.account, err)
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return nil, fmt.Errorf("oidc-agent returned an empty token for account %s", s.account)
	}

	return &oauth2.Token{
		AccessToken: tok,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Minute),
	}, nil
}

func tlsConfig(opts Options) (*tls.Config, *certWatcher, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	switch {
	case opts.NoCheckCertificate:
		logger.Log.Debug("server certificate is not verified")
		cfg.InsecureSkipVerify = true
	case opts.CACertificate != "":
		pool, err := certPool([]string{ExpandPath(opts.CACertificate)})
		if err != nil {
			return nil, nil, err
		}
		cfg.RootCAs = pool
	case opts.CADirectory != "":
		files, err := caDirectoryFiles(ExpandPath(opts.CADirectory))
		if err != nil {
			return nil, nil, err
		}
		if len(files) > 0 {
			pool, err := certPool(files)
			if err != nil {
				return nil, nil, err
			}
			cfg.RootCAs = pool
		}
	}

	certFile, keyFile := opts.Certificate, opts.PrivateKey
	if opts.X509Proxy != "" {
		certFile, keyFile = opts.X509Proxy, opts.X509Proxy
	}
	if certFile == "" || keyFile == "" {
		return cfg, nil, nil
	}

	w, err := newCertWatcher(ExpandPath(certFile), ExpandPath(keyFile))
	if err != nil {
		return nil, nil, err
	}
	cfg.GetClientCertificate = w.GetClientCertificate

	return cfg, w, nil
}

func certPool(files []string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	for _, f := range files {
		pem, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			logger.Log.Debug("no certificate found in CA file",
				zap.String("file", f))
		}
	}

	return pool, nil
}

// caDirectoryFiles lists the hashed CA files of an OpenSSL style
// certificate directory. A missing directory yields no files.
func caDirectoryFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Log.Debug("CA directory not found, using system roots",
				zap.String("dir", dir))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CA directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".pem") || strings.HasSuffix(name, ".crt") || strings.HasSuffix(name, ".0") {
			files = append(files, filepath.Join(dir, name))
		}
	}

	return files, nil
}

// ExpandPath resolves a leading ~ and makes p absolute.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~") {
		if _, err := os.Stat(p); err != nil {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, strings.TrimPrefix(p, "~"))
			}
		}
	}

	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
