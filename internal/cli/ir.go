package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/spf13/cobra"
)

type sentIR struct {
	Codes  []devapi.IRCode `json:"codes"`
	Repeat int             `json:"repeat,omitempty"`
}

type ledTable struct {
	Commands map[string]uint32 `json:"commands"`
	Aliases  map[string]string `json:"aliases"`
}

func (a *app) sendIRCommand() *cobra.Command {
	var repeat int
	var legacy bool
	cmd := &cobra.Command{
		Use:   "send-ir ENTRY...",
		Short: "Send a NEC sequence",
		Long: `Send a NEC/32 sequence. Each ENTRY is a code ("16712445" or "0xFF02FD"),
a code with a delay in microseconds ("0xFF02FD:40000") or a JSON
code-dictionary ('{"code":16712445,"delay":40000}').`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := parseIREntries(args)
			if err != nil {
				return err
			}
			build := devapi.BuildNECSequence
			if legacy {
				build = devapi.BuildNECSequenceMerged
			}
			codes, err := build(entries...)
			if err != nil {
				return err
			}
			return a.sendCodes(cmd, codes, repeat)
		},
	}
	cmd.Flags().IntVarP(&repeat, "repeat", "r", 0, "send the sequence again N times")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "merge the NEC header into the first code")
	return cmd
}

func (a *app) ledCommand() *cobra.Command {
	var repeat int
	var delay int
	cmd := &cobra.Command{
		Use:   "led NAME...",
		Short: "Press LED remote buttons by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := devapi.NECSequenceForLEDs(delay, args...)
			if err != nil {
				return err
			}
			return a.sendCodes(cmd, codes, repeat)
		},
	}
	cmd.Flags().IntVarP(&repeat, "repeat", "r", 0, "send the sequence again N times")
	cmd.Flags().IntVar(&delay, "delay", 0, "delay after each press in microseconds")
	return cmd
}

func (a *app) ledsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leds",
		Short: "List LED remote commands and aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ledTable{
				Commands: map[string]uint32{},
				Aliases:  devapi.LEDAliases(),
			}
			for _, name := range devapi.LEDCommandNames() {
				code, _ := devapi.LookupLEDCode(name)
				table.Commands[name] = code
			}
			return a.printJSON(table)
		},
	}
}

func (a *app) sendCodes(cmd *cobra.Command, codes []devapi.IRCode, repeat int) error {
	if repeat < 0 {
		return fmt.Errorf("invalid repeat %d", repeat)
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	if err := client.SendIRCodes(cmd.Context(), codes, repeat); err != nil {
		return err
	}
	return a.printResult(sentIR{Codes: codes, Repeat: repeat})
}

func parseIREntries(args []string) ([]devapi.NECEntry, error) {
	raw := make([]any, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		switch {
		case strings.HasPrefix(arg, "{"):
			dec := json.NewDecoder(strings.NewReader(arg))
			dec.UseNumber()
			var m map[string]any
			if err := dec.Decode(&m); err != nil {
				return nil, fmt.Errorf("%w: code-dictionary %q: %v", devapi.ErrInvalidCodeEntry, arg, err)
			}
			if dec.More() {
				return nil, fmt.Errorf("%w: code-dictionary %q: trailing data", devapi.ErrInvalidCodeEntry, arg)
			}
			raw = append(raw, m)
		case strings.Contains(arg, ":"):
			codeStr, delayStr, _ := strings.Cut(arg, ":")
			code, err := parseCode(codeStr)
			if err != nil {
				return nil, err
			}
			delay, err := strconv.Atoi(delayStr)
			if err != nil {
				return nil, fmt.Errorf("invalid delay %q", delayStr)
			}
			raw = append(raw, []any{code, delay})
		default:
			code, err := parseCode(arg)
			if err != nil {
				return nil, err
			}
			raw = append(raw, code)
		}
	}
	return devapi.ParseNECEntries(raw)
}

func parseCode(s string) (uint32, error) {
	code, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid code %q", s)
	}
	return uint32(code), nil
}
