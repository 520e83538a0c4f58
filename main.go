package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rootsploit/autoscope/internal/cli"
	"github.com/rootsploit/autoscope/internal/exec"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Child tools run in their own process groups, so they must be killed explicitly
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan error, 1)
	go func() { done <- cli.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			exec.KillAllProcesses()
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
	case <-sigChan:
		fmt.Fprintf(os.Stderr, "\n[!] Received interrupt signal, stopping running tools...\n")
		cancel()
		exec.KillAllProcesses()

		// let the runner record the interrupted scan and write the report
		select {
		case <-done:
		case <-sigChan:
		case <-time.After(shutdownGrace):
			fmt.Fprintf(os.Stderr, "[!] Shutdown timed out, exiting\n")
		}
		os.Exit(130)
	}
}
