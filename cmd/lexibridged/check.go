// cmd/lexibridged/check.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/conn"
	"github.com/openavctl/lexibridge/internal/protocol"
)

var (
	checkHost string
	checkPort int
)

// checkCmd is the reachability validation the configuration flow runs
// before persisting settings: one connect, one disconnect, nothing
// else on the wire.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate that the receiver is reachable",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkHost, "host", "", "Receiver host (required)")
	checkCmd.Flags().IntVar(&checkPort, "port", protocol.DefaultPort, "Receiver control port")
	checkCmd.MarkFlagRequired("host")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := zap.NewNop()

	cm := conn.New(conn.Config{
		Host:        checkHost,
		Port:        checkPort,
		DialTimeout: protocol.DefaultConnectTimeout,
	}, log)

	start := time.Now()
	if !cm.Connect() {
		return fmt.Errorf("receiver at %s:%d is not reachable", checkHost, checkPort)
	}
	cm.Disconnect()

	fmt.Printf("receiver at %s:%d reachable (%.0fms)\n",
		checkHost, checkPort, time.Since(start).Seconds()*1000)
	return nil
}
