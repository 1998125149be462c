package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/attestd/cloud-secure-area/cmd/flags"
	"github.com/attestd/cloud-secure-area/cryptoutils"
	"github.com/attestd/cloud-secure-area/httpserver"
	"github.com/attestd/cloud-secure-area/interfaces"
	"github.com/attestd/cloud-secure-area/keymaterial"
	"github.com/attestd/cloud-secure-area/processor"
	"github.com/attestd/cloud-secure-area/resources"
	"github.com/attestd/cloud-secure-area/securearea"
	"github.com/attestd/cloud-secure-area/storage"
)

var SecureAreaServiceLogFlag = flags.LogServiceFlagFn("secure-area")

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

func main() {
	app := &cli.App{
		Name:  "secure-area",
		Usage: "Serve the cloud secure area command API",
		Flags: append([]cli.Flag{
			ListenAddrFlag,
			flags.StoreURIFlag,
			flags.ResourcesDirFlag,
			flags.RootCertResourceFlag,
			flags.RootKeyResourceFlag,
			flags.RekeyingIntervalFlag,
			flags.RequireDeviceAttestationFlag,
			flags.AllowedSignerDigestFlag,
			flags.LockoutMaxAttemptsFlag,
			flags.LockoutSecondsFlag,
			SecureAreaServiceLogFlag,
		}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String(ListenAddrFlag.Name)
			storeURI := cCtx.String(flags.StoreURIFlag.Name)
			resourcesDir := cCtx.String(flags.ResourcesDirFlag.Name)

			certResource := cCtx.String(flags.RootCertResourceFlag.Name)
			if certResource == "" {
				certResource = resources.DefaultRootCertificate
			}
			keyResource := cCtx.String(flags.RootKeyResourceFlag.Name)
			if keyResource == "" {
				keyResource = resources.DefaultRootPrivateKey
			}

			// Setup logger
			logger := flags.SetupLogger(cCtx)

			// Load the operator-provisioned root material
			loader := resources.NewLoader(resourcesDir)
			certBytes, err := loader.Resolve(certResource)
			if err != nil {
				logger.Error("Failed to load root certificate", "err", err)
				return err
			}
			keyBytes, err := loader.Resolve(keyResource)
			if err != nil {
				logger.Error("Failed to load root private key", "err", err)
				return err
			}

			rootCert, err := cryptoutils.NewRootCertPEM(certBytes)
			if err != nil {
				logger.Error("Invalid root certificate", "err", err)
				return err
			}
			rootKey, err := cryptoutils.NewRootKeyPEM(keyBytes)
			if err != nil {
				logger.Error("Invalid root private key", "err", err)
				return err
			}

			// Storage backend
			store, err := storage.NewKeyStoreFactory(logger).KeyStoreFor(storeURI)
			if err != nil {
				logger.Error("Failed to create key store", "err", err, "uri", storeURI)
				return err
			}
			logger.Info("Using key store", "store", store.Name(), "location", store.LocationURI())

			builder, err := keymaterial.NewChainBuilder(rootCert, rootKey)
			if err != nil {
				logger.Error("Failed to create chain builder", "err", err)
				return err
			}

			policy := interfaces.ProcessorPolicy{
				RekeyingInterval:         cCtx.Duration(flags.RekeyingIntervalFlag.Name),
				RequireDeviceAttestation: cCtx.Bool(flags.RequireDeviceAttestationFlag.Name),
				AllowedSignerDigests:     cCtx.StringSlice(flags.AllowedSignerDigestFlag.Name),
				Lockout: interfaces.LockoutPolicy{
					MaxFailedAttempts: cCtx.Int(flags.LockoutMaxAttemptsFlag.Name),
					Duration:          time.Duration(cCtx.Int64(flags.LockoutSecondsFlag.Name)) * time.Second,
				},
			}

			service, err := securearea.New(securearea.Config{
				Bootstrapper: keymaterial.NewBootstrapper(store, builder, logger),
				NewProcessor: func(cfg interfaces.ProcessorConfig) (interfaces.CommandProcessor, error) {
					return processor.NewStub(cfg, logger)
				},
				Policy: policy,
				Log:    logger,
			})
			if err != nil {
				logger.Error("Failed to create service", "err", err)
				return err
			}

			// Bootstrap failures are fatal, the server must not come up
			// without its root identity.
			if err := service.Initialize(context.Background()); err != nil {
				logger.Error("Failed to initialize secure area", "err", err)
				return err
			}

			srv, err := httpserver.New(flags.ConfigureServer(cCtx, logger, listenAddr), httpserver.NewHandler(service, logger))
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			srv.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			srv.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
