package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nystya/atomic-kv/config"
	"github.com/Nystya/atomic-kv/controller"
	pbservice "github.com/Nystya/atomic-kv/grpc/atomickv"
	"github.com/Nystya/atomic-kv/repository/database"
	"github.com/Nystya/atomic-kv/service"
	"github.com/dapr/kit/logger"
	"google.golang.org/grpc"
)

var log = logger.NewLogger("atomickv")

func main() {
	log.Info("Reading config")
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Could not read config: %v", err)
	}

	log.SetOutputLevel(logger.LogLevel(cfg.LogLevel))
	log.EnableJSONOutput(cfg.LogJSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infof("Initializing %s storage...", cfg.Backend)

	db, err := database.Open(ctx, cfg.Backend, cfg.WalConfig, cfg.RedisConfig, logger.NewLogger("atomickv.database"))
	if err != nil {
		log.Fatalf("Could not open storage: %v", err)
	}

	if closer, ok := db.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	log.Info("Initializing transaction manager...")

	manager := service.NewAtomicManager(db, cfg.HistorySize, logger.NewLogger("atomickv.manager"))
	store := service.NewTransactionStore(db, manager, logger.NewLogger("atomickv.store"))

	storeServer := controller.NewStoreServer(store, logger.NewLogger("atomickv.controller"))

	log.Info("Getting listener on: ", cfg.ListenAddr())

	lis, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		log.Fatalf("Failed to start listening: %v", err)
	}

	grpcServer := grpc.NewServer()
	pbservice.RegisterAtomicStoreServer(grpcServer, storeServer)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		log.Infof("Received %v, shutting down", sig)
		grpcServer.GracefulStop()
	}()

	log.Info("Starting server...")

	if err := grpcServer.Serve(lis); err != nil {
		log.Errorf("Failed to serve: %v", err)
	}
}
