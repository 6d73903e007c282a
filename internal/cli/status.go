package cli

import (
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/spf13/cobra"
)

type deviceStatus struct {
	RequestsProcessed int64 `json:"requestsProcessed"`
	UptimeSeconds     int64 `json:"uptimeSeconds"`
}

func newDeviceStatus(s *devapi.Status) deviceStatus {
	return deviceStatus{
		RequestsProcessed: s.RequestsProcessed,
		UptimeSeconds:     s.UptimeSeconds,
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the device request counter and uptime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			status, err := client.GetStatus(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(newDeviceStatus(status))
		},
	}
}
