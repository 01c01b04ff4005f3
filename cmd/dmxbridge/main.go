package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dmxnet"
	"dmxnet/internal/bridge"
	"dmxnet/internal/config"
	"dmxnet/internal/logger"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}

	sender, err := dmxnet.NewSender(dmxnet.Config{
		Host:    cfg.DMX.Host,
		Port:    cfg.DMX.Port,
		Refresh: time.Duration(cfg.DMX.RefreshMs) * time.Millisecond,
		SendAll: cfg.DMX.SendAll,
		Iface:   cfg.DMX.Iface,
	}, dmxnet.WithLogger(log.Entry))
	if err != nil {
		log.With(logger.Fields{"module": "dmx"}).Errorf("error while creating the dmx sender. %v", err)
		os.Exit(1)
	}
	log.With(logger.Fields{"module": "dmx"}).Debug("NewSender created ok")

	b := bridge.NewBridge(log, bridge.Conf{
		ClientID:      cfg.MQTT.ClientID,
		Schema:        "tcp",
		Host:          cfg.MQTT.Host,
		Port:          cfg.MQTT.Port,
		User:          cfg.MQTT.User,
		Password:      cfg.MQTT.Password,
		TopicPrefix:   cfg.Bridge.TopicPrefix,
		DiscoverEvery: time.Duration(cfg.Bridge.DiscoverSec) * time.Second,
	}, sender)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	// Transport failures not tied to a specific call land here.
	go func() {
		for err := range sender.Errors() {
			log.With(logger.Fields{"module": "dmx"}).Errorf("transport: %v", err)
		}
	}()

	if err = b.Start(ctx); err != nil {
		log.Error("failed to start MQTT bridge:", err.Error())
		cancel()
	}

	<-ctx.Done()

	if err := b.Stop(); err != nil {
		log.Error("failed to stop MQTT bridge:", err.Error())
	}

	if err := sender.Close(); err != nil {
		log.Error("failed to close dmx sender:", err.Error())
	}

	log.Info("shutdown complete")
}
