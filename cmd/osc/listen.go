package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grailapp/go-osc/osc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	listenCmd.Flags().StringVarP(&listenStrategy, "strategy", "s", "blocking", "Dispatch strategy (blocking, threaded, forked)")
	listenCmd.Flags().StringVarP(&listenConfigPath, "config", "c", "", "Listener config file path")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen <bindAddress>",
	Short: "Receive OSC packets and print them",
	Args:  cobra.MaximumNArgs(1),
	Run:   listen,
}
var listenStrategy string
var listenConfigPath string

func listen(_ *cobra.Command, args []string) {
	cfg := &listenConfig{Bind: "127.0.0.1:8765", Strategy: listenStrategy}
	if listenConfigPath != "" {
		loaded, err := loadListenConfig(listenConfigPath)
		if err != nil {
			logrus.Fatalf("error loading config [%s] (%v)", listenConfigPath, err)
		}
		cfg = loaded
	}
	if len(args) == 1 {
		cfg.Bind = args[0]
	}

	strategy, err := osc.ParseStrategy(cfg.Strategy)
	if err != nil {
		logrus.Fatalf("error selecting strategy (%v)", err)
	}

	server := &osc.Server{
		Addr:        cfg.Bind,
		Strategy:    strategy,
		ReadTimeout: time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		StopGrace:   time.Duration(cfg.StopGraceMs) * time.Millisecond,
		Handler: osc.HandlerFunc(func(addr net.Addr, at time.Time, packet osc.Packet) {
			printPacket(addr, at, packet)
		}),
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		<-sigs
		if err := server.Stop(); err != nil {
			logrus.Errorf("error stopping (%v)", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil {
		logrus.Fatalf("error serving [%s] (%v)", cfg.Bind, err)
	}
}

func printPacket(addr net.Addr, at time.Time, packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		fmt.Printf("%s [%s] %s\n", at.Format(time.RFC3339Nano), addr, p)
	case *osc.Bundle:
		fmt.Printf("%s [%s] #bundle tt=%d elements=%d\n", at.Format(time.RFC3339Nano), addr, uint64(p.Timetag), len(p.Elements))
		for _, elem := range p.Elements {
			printPacket(addr, at, elem)
		}
	}
}
