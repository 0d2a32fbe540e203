package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// monitorCommand groups thin HTTP subcommands that drive release monitors on
// a running serve instance.
func monitorCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Manage release monitors on a running server",
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the running server")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start <release>",
			Short: "Start monitoring a release",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				body, err := json.Marshal(map[string]string{"release": args[0]})
				if err != nil {
					return err
				}
				return monitorRequest(cmd, http.MethodPost, serverURL+"/api/v1/monitors", bytes.NewReader(body))
			},
		},
		&cobra.Command{
			Use:   "stop <release>",
			Short: "Stop monitoring a release",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return monitorRequest(cmd, http.MethodDelete, serverURL+"/api/v1/monitors/"+args[0], nil)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List active release monitors",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return monitorRequest(cmd, http.MethodGet, serverURL+"/api/v1/monitors", nil)
			},
		},
	)
	return cmd
}

func monitorRequest(cmd *cobra.Command, method, url string, body io.Reader) error {
	req, err := http.NewRequestWithContext(cmd.Context(), method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(data))
	}
	if len(bytes.TrimSpace(data)) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(bytes.TrimSpace(data)))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	}
	return nil
}
