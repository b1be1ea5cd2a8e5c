package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/apimanager"
	"github.com/GriffinCanCode/apimanager/internal/codec"
	"github.com/GriffinCanCode/apimanager/internal/config"
	"github.com/GriffinCanCode/apimanager/internal/logging"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/GriffinCanCode/apimanager/internal/trust"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type requestFlags struct {
	method        string
	headers       []string
	params        []string
	data          string
	timeout       time.Duration
	encoding      string
	debug         bool
	pinning       string
	backend       string
	endpoint      bool
	metrics       bool
	skipProbe     bool
	includeStatus bool
}

func newRequestCommand() *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "request <url|endpoint>",
		Short: "Issue one request and print the response body",
		Long: `Issue one request and print the response body to stdout.

Any completed HTTP exchange prints its body, whatever the status code; the
status is written to stderr. The command fails only when no response arrived
(offline, transport failure, cancellation).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.method, "method", "X", "GET", "HTTP method")
	f.StringArrayVarP(&flags.headers, "header", "H", nil, "Request header as key=value (repeatable)")
	f.StringArrayVarP(&flags.params, "param", "p", nil, "Request parameter as key=value (repeatable)")
	f.StringVarP(&flags.data, "data", "d", "", "JSON object merged into the parameters")
	f.DurationVar(&flags.timeout, "timeout", 0, "Request timeout (default API_TIMEOUT)")
	f.StringVar(&flags.encoding, "encoding", "json", "Parameter encoding for non-GET requests: json or url")
	f.BoolVar(&flags.debug, "debug", false, "Log request and response details to stderr")
	f.StringVar(&flags.pinning, "pinning", "", "Pinning mode: disabled, certificate or publicKey (default API_PINNING_MODE)")
	f.StringVar(&flags.backend, "backend", "", "Transport backend: resty or retryablehttp (default API_BACKEND)")
	f.BoolVarP(&flags.endpoint, "endpoint", "e", false, "Resolve the argument relative to API_ROOT_URL")
	f.BoolVar(&flags.metrics, "metrics", false, "Print request metrics to stderr once the request finishes, failed or not")
	f.BoolVar(&flags.skipProbe, "no-connectivity-check", false, "Skip the local connectivity check")
	f.BoolVarP(&flags.includeStatus, "include", "i", false, "Print the status line to stdout before the body")

	return cmd
}

func runRequest(cmd *cobra.Command, target string, flags requestFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, flags); err != nil {
		return err
	}

	method, err := types.ParseMethod(flags.method)
	if err != nil {
		return err
	}
	encoding, err := types.ParseEncoding(flags.encoding)
	if err != nil {
		return err
	}
	opts, err := requestOptions(flags, encoding)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	m, err := apimanager.New(cfg, apimanager.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	if flags.endpoint {
		target = m.Resolve(target)
	}

	status, body, err := m.Fetch(cmd.Context(), target, method, opts...)
	if err != nil {
		logger.Debug("Request failed", zap.String("url", target), zap.Int("status", status), zap.Error(err))
		err = fmt.Errorf("%s %s: %w", method, target, err)
	} else {
		err = writeResponse(cmd, status, body, flags.includeStatus)
	}

	if flags.metrics {
		if werr := m.Metrics().WriteText(cmd.ErrOrStderr()); werr != nil {
			err = errors.Join(err, fmt.Errorf("failed to write metrics: %w", werr))
		}
	}
	return err
}

func writeResponse(cmd *cobra.Command, status int, body []byte, includeStatus bool) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "HTTP %d\n", status)
	out := cmd.OutOrStdout()
	if includeStatus {
		fmt.Fprintf(out, "HTTP %d\n\n", status)
	}
	_, err := out.Write(body)
	return err
}

func applyFlags(cfg *config.Config, flags requestFlags) error {
	if flags.debug {
		cfg.API.Debug = true
	}
	if flags.skipProbe {
		cfg.API.ConnectivityCheck = false
	}
	if flags.timeout > 0 {
		cfg.API.Timeout = flags.timeout
	}
	if flags.pinning != "" {
		mode, err := trust.ParsePinningMode(flags.pinning)
		if err != nil {
			return err
		}
		cfg.Trust.PinningMode = mode
	}
	if flags.backend != "" {
		cfg.Transport.Backend = strings.ToLower(flags.backend)
	}
	return cfg.Validate()
}

func requestOptions(flags requestFlags, encoding types.Encoding) ([]apimanager.RequestOption, error) {
	opts := []apimanager.RequestOption{apimanager.WithEncoding(encoding)}

	for _, h := range flags.headers {
		key, value, err := splitPair(h)
		if err != nil {
			return nil, fmt.Errorf("invalid --header: %w", err)
		}
		opts = append(opts, apimanager.WithHeader(key, value))
	}

	if flags.data != "" {
		params, err := codec.Decode[map[string]interface{}](codec.JSON, []byte(flags.data))
		if err != nil {
			return nil, fmt.Errorf("invalid --data, expected a JSON object: %w", err)
		}
		opts = append(opts, apimanager.WithParams(params))
	}

	for _, p := range flags.params {
		key, value, err := splitPair(p)
		if err != nil {
			return nil, fmt.Errorf("invalid --param: %w", err)
		}
		opts = append(opts, apimanager.WithParam(key, value))
	}

	return opts, nil
}

func splitPair(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%q is not key=value", s)
	}
	return key, value, nil
}
