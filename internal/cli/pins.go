package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/spf13/cobra"
)

type pinLevel struct {
	Pin   int          `json:"pin"`
	Value devapi.Level `json:"value"`
}

type pinMode struct {
	Pin  int            `json:"pin"`
	Mode devapi.PinMode `json:"mode"`
}

func (a *app) readCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read PIN",
		Short: "Read the analog value of one pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := parsePin(args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			value, err := client.ReadPin(cmd.Context(), pin)
			if err != nil {
				return err
			}
			return a.printJSON(devapi.PinValue{Pin: pin, Value: value})
		},
	}
}

func (a *app) readPinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read-pins PIN...",
		Short: "Read several analog pins in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pins, err := parsePins(args)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			values, err := client.ReadPins(cmd.Context(), pins)
			if err != nil {
				return err
			}
			return a.printJSON(values)
		},
	}
}

func (a *app) writeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "write PIN VALUE",
		Short: "Write HIGH, LOW or an integer to one pin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := parsePin(args[0])
			if err != nil {
				return err
			}
			value, err := devapi.ParseLevel(args[1])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.WritePin(cmd.Context(), pin, value); err != nil {
				return err
			}
			return a.printResult(pinLevel{Pin: pin, Value: value})
		},
	}
}

func (a *app) writePinsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "write-pins PIN=VALUE...",
		Short: "Write several pins in one request, in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writes := make([]devapi.PinWrite, 0, len(args))
			for _, arg := range args {
				pinStr, valueStr, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid write %q: expected PIN=VALUE", arg)
				}
				pin, err := parsePin(pinStr)
				if err != nil {
					return err
				}
				value, err := devapi.ParseLevel(valueStr)
				if err != nil {
					return err
				}
				writes = append(writes, devapi.PinWrite{Pin: pin, Value: value})
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.WritePins(cmd.Context(), writes); err != nil {
				return err
			}
			return a.printResult(writes)
		},
	}
}

func (a *app) modeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mode PIN [MODE]",
		Short: "Configure a pin mode (default OUTPUT)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := parsePin(args[0])
			if err != nil {
				return err
			}
			mode := devapi.ModeOutput
			if len(args) == 2 {
				mode = devapi.PinMode(args[1])
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.SetPinMode(cmd.Context(), pin, mode); err != nil {
				return err
			}
			return a.printResult(pinMode{Pin: pin, Mode: mode})
		},
	}
}

func (a *app) busyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "busy PIN",
		Short: "Use a pin as the IR transmission busy indicator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := parsePin(args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.SetBusyPin(cmd.Context(), pin); err != nil {
				return err
			}
			return a.printResult(pinMode{Pin: pin, Mode: devapi.ModeBusy})
		},
	}
}

func parsePin(s string) (int, error) {
	pin, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || pin < 0 {
		return 0, fmt.Errorf("invalid pin %q", s)
	}
	return pin, nil
}

func parsePins(args []string) ([]int, error) {
	var pins []int
	for _, arg := range args {
		for _, p := range strings.Split(arg, ",") {
			if p == "" {
				continue
			}
			pin, err := parsePin(p)
			if err != nil {
				return nil, err
			}
			pins = append(pins, pin)
		}
	}
	return pins, nil
}
