package main

import (
	"context"
	"fmt"

	"github.com/sadopc/restclient/internal/mock"
)

func (a *app) mockCmd(ctx context.Context, args []string) int {
	fs := a.newFlagSet("mock")
	portFlag := fs.Int("port", 8080, "Port to listen on")
	latencyFlag := fs.Duration("latency", 0, "Artificial response latency (e.g., 200ms, 1s)")
	errorRateFlag := fs.Float64("error-rate", 0, "Random error rate (0.0-1.0)")
	corsOriginFlag := fs.String("cors-origin", "*", "Access-Control-Allow-Origin header value")
	envelopeFlag := fs.String("envelope", string(mock.EnvelopeData), "List envelope: bare, data, result")
	seedFlag := fs.String("seed", "", "YAML file with initial products and transactions")

	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient mock [flags]\n\n")
		fmt.Fprintf(a.stderr, "Start an in-memory products/transactions backend that answers like the\n")
		fmt.Fprintf(a.stderr, "PHP API: %s and %s.\n", mock.ProductPath, mock.TransactionPath)
		fmt.Fprintf(a.stderr, "CORS headers are included by default.\n\n")
		fmt.Fprintf(a.stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(a.stderr, "\nExamples:\n")
		fmt.Fprintf(a.stderr, "  restclient mock\n")
		fmt.Fprintf(a.stderr, "  restclient mock --port 3000 --envelope bare\n")
		fmt.Fprintf(a.stderr, "  restclient mock --latency 200ms --error-rate 0.1\n")
		fmt.Fprintf(a.stderr, "  restclient mock --seed shop.yaml\n")
		fmt.Fprintf(a.stderr, "\nPoint the client at it with:\n")
		fmt.Fprintf(a.stderr, "  export RESTCLIENT_PRODUCT_URL=http://localhost:8080%s\n", mock.ProductPath)
		fmt.Fprintf(a.stderr, "  export RESTCLIENT_TRANSACTION_URL=http://localhost:8080%s\n", mock.TransactionPath)
	}

	if code, ok := parse(fs, args); !ok {
		return code
	}

	if *errorRateFlag < 0 || *errorRateFlag > 1 {
		return a.usageError(fs, "error-rate must be between 0.0 and 1.0")
	}
	if *portFlag < 0 || *portFlag > 65535 {
		return a.usageError(fs, "port must be between 0 and 65535")
	}
	envelope, err := mock.ParseEnvelope(*envelopeFlag)
	if err != nil {
		return a.usageError(fs, "%v", err)
	}

	seed := mock.DefaultSeed()
	if *seedFlag != "" {
		seed, err = mock.LoadSeed(*seedFlag)
		if err != nil {
			return a.usageError(fs, "%v", err)
		}
	}

	opts := []mock.Option{
		mock.WithPort(*portFlag),
		mock.WithEnvelope(envelope),
		mock.WithCORSOrigin(*corsOriginFlag),
		mock.WithLogger(a.log),
	}
	if *latencyFlag > 0 {
		opts = append(opts, mock.WithLatency(*latencyFlag))
	}
	if *errorRateFlag > 0 {
		opts = append(opts, mock.WithErrorRate(*errorRateFlag))
	}
	srv := mock.New(seed, opts...)

	fmt.Fprintf(a.stderr, "Mock backend on http://localhost:%d\n", *portFlag)
	for _, r := range srv.Routes() {
		fmt.Fprintf(a.stderr, "  %-7s %s\n", r.Method, r.Path)
	}
	if *latencyFlag > 0 {
		fmt.Fprintf(a.stderr, "Artificial latency: %s\n", latencyFlag.String())
	}
	if *errorRateFlag > 0 {
		fmt.Fprintf(a.stderr, "Error rate: %.0f%%\n", *errorRateFlag*100)
	}

	if err := srv.Start(ctx); err != nil {
		return a.fail(err)
	}
	return exitOK
}
