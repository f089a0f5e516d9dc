package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dcache-admin/internal/client"
	"dcache-admin/internal/config"
	"dcache-admin/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:           "dcache-admin",
	Short:         "dCache REST API client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newClient builds an API client from the merged flags and configuration.
func newClient() (*client.Client, error) {
	d := cfg.Default
	return client.New(client.Options{
		URL:                d.URL,
		Username:           d.Username,
		Password:           d.Password,
		Certificate:        d.Certificate,
		PrivateKey:         d.PrivateKey,
		X509Proxy:          d.X509Proxy,
		CACertificate:      d.CACertificate,
		CADirectory:        d.CADirectory,
		NoCheckCertificate: d.NoCheckCertificate,
		AccessToken:        d.AccessToken,
		OIDCAgentAccount:   d.OIDCAgentAccount,
		Timeout:            time.Duration(d.Timeout) * time.Second,
	})
}

// apiRun wraps an API call: it builds the client, runs fn and prints what it
// returns as indented JSON.
func apiRun(fn func(ctx context.Context, c *client.Client) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close()

		out, err := fn(cmd.Context(), c)
		if err != nil {
			return err
		}

		return printJSON(out)
	}
}

func printJSON(v any) error {
	if v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok && len(raw) == 0 {
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// parseBody checks that a --body argument holds a JSON document.
func parseBody(s string) (json.RawMessage, error) {
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("body is not valid JSON: %s", s)
	}
	return json.RawMessage(s), nil
}

func statusURL(path string) (string, error) {
	if cfg.Sync.StatusPort == 0 {
		return "", fmt.Errorf("no status port configured, pass --status-port or set status_port in [sync]")
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Sync.StatusPort, path), nil
}

func defaultProxy() string {
	if p := os.Getenv("X509_USER_PROXY"); p != "" {
		return p
	}
	return fmt.Sprintf("/tmp/x509up_u%d", os.Getuid())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&debug, "debug", "d", false, "print debug messages to stderr")
	pf.String("url", config.Default.Default.URL, "the service url")
	pf.IntP("timeout", "t", 0, "timeout in seconds")
	pf.StringP("user", "u", "", "username")
	pf.String("password", "", "password")
	pf.String("ca-certificate", "", "CA certificate to verify peer against")
	pf.String("ca-directory", config.Default.Default.CADirectory, "CA directory to verify peer against")
	pf.Bool("no-check-certificate", false, "don't validate the server's certificate")
	pf.String("certificate", "", "client certificate file")
	pf.String("private-key", "", "private key file")
	pf.String("x509_proxy", "", "client X509 proxy file")
	pf.Lookup("x509_proxy").NoOptDefVal = defaultProxy()
	pf.String("access-token", "", "bearer token to authenticate with")
	pf.String("oidc-agent-account", "", "the name of the oidc-agent account to use when authenticating with dCache")
	pf.Int("status-port", config.Default.Sync.StatusPort, "port of the sync status server")
}
