// cmd/lexibridged/probe.go
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/conn"
	"github.com/openavctl/lexibridge/internal/dispatch"
	"github.com/openavctl/lexibridge/internal/protocol"
)

var (
	probeHost     string
	probePort     int
	probeSessions int
	probeGap      time.Duration
	probeHold     time.Duration
)

// probeCmd observes how the receiver treats repeated short sessions.
// The device's multi-client eviction behavior is undocumented, so this
// reports what actually happens instead of assuming a rule.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe session tolerance with repeated short connections",
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeHost, "host", "", "Receiver host (required)")
	probeCmd.Flags().IntVar(&probePort, "port", protocol.DefaultPort, "Receiver control port")
	probeCmd.Flags().IntVar(&probeSessions, "sessions", 10, "Number of sessions to open")
	probeCmd.Flags().DurationVar(&probeGap, "gap", time.Second, "Pause between sessions")
	probeCmd.Flags().DurationVar(&probeHold, "hold", 0, "Idle time to hold each session open before querying")
	probeCmd.MarkFlagRequired("host")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	log := zap.NewNop()

	var failures int
	for i := 1; i <= probeSessions; i++ {
		cm := conn.New(conn.Config{
			Host:        probeHost,
			Port:        probePort,
			DialTimeout: protocol.DefaultConnectTimeout,
		}, log)
		disp := dispatch.New(cm, protocol.DefaultReadTimeout, log)

		start := time.Now()
		if !cm.Connect() {
			failures++
			fmt.Printf("session %2d: connect FAILED\n", i)
			time.Sleep(probeGap)
			continue
		}

		if probeHold > 0 {
			time.Sleep(probeHold)
		}

		payload := disp.SendQuery(protocol.BuildQuery(protocol.CmdVolume))
		elapsed := time.Since(start)
		cm.Disconnect()

		if payload == nil {
			failures++
			fmt.Printf("session %2d: connected but volume query FAILED (%.0fms)\n",
				i, elapsed.Seconds()*1000)
		} else {
			fmt.Printf("session %2d: volume=%d (%.0fms)\n",
				i, payload[0], elapsed.Seconds()*1000)
		}

		time.Sleep(probeGap)
	}

	fmt.Printf("done: %d/%d sessions failed\n", failures, probeSessions)
	if failures == probeSessions {
		return fmt.Errorf("all sessions failed")
	}
	return nil
}
