package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/attestd/cloud-secure-area/common"
	"github.com/attestd/cloud-secure-area/httpserver"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String("metrics-addr")
	enablePprof := cCtx.Bool("pprof")
	drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var StoreURIFlag = &cli.StringFlag{
	Name:  "store-uri",
	Value: "file:///var/lib/cloud-secure-area",
	Usage: "key store backend URI (file://, vault://, mem://)",
}

var ResourcesDirFlag = &cli.StringFlag{
	Name:  "resources-dir",
	Value: "/etc/cloud-secure-area",
	Usage: "directory holding provisioned resources (root certificate and key)",
}

var RootCertResourceFlag = &cli.StringFlag{
	Name:  "root-cert-resource",
	Usage: "resource name of the external attestation root certificate PEM",
}

var RootKeyResourceFlag = &cli.StringFlag{
	Name:  "root-key-resource",
	Usage: "resource name of the external attestation root private key PEM",
}

var RekeyingIntervalFlag = &cli.DurationFlag{
	Name:  "rekeying-interval",
	Value: 0,
	Usage: "delegate processor rekeying interval, 0 disables",
}

var RequireDeviceAttestationFlag = &cli.BoolFlag{
	Name:  "require-device-attestation",
	Value: false,
	Usage: "require callers to present device attestation evidence",
}

var AllowedSignerDigestFlag = &cli.StringSliceFlag{
	Name:  "allowed-signer-digest",
	Usage: "hex digest of an allowed command signer, repeatable",
}

var LockoutMaxAttemptsFlag = &cli.IntFlag{
	Name:  "lockout-max-attempts",
	Value: 0,
	Usage: "failed attempts before lockout, 0 disables",
}

var LockoutSecondsFlag = &cli.Int64Flag{
	Name:  "lockout-seconds",
	Value: 0,
	Usage: "lockout duration in seconds",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
