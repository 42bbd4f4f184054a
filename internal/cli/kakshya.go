package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/kakshya"
	"github.com/roach88/dasha/internal/system"
)

// KakshyaOptions holds flags for the kakshya command.
type KakshyaOptions struct {
	*RootOptions
	Sign string
}

// KakshyaOutput holds located or listed divisions.
type KakshyaOutput struct {
	Divisions []kakshya.Division `json:"divisions" yaml:"divisions" toml:"divisions"`
}

// WriteText implements Text.
func (o KakshyaOutput) WriteText(w io.Writer) error {
	for _, d := range o.Divisions {
		if _, err := fmt.Fprintf(w, "%-11s %d/8  %-9s %s  %s\n",
			d.Sign, d.Number, d.Ruler, d.Start.FormatDMS(), d.End.FormatDMS()); err != nil {
			return err
		}
	}
	return nil
}

// NewKakshyaCommand creates the kakshya command.
func NewKakshyaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KakshyaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "kakshya [longitude...]",
		Short: "Show the 1/8-sign kakshya division",
		Long: `Show the kakshya (one eighth of a sign, 3°45′) containing each
longitude, or list the eight divisions of a sign.

Examples:
  dasha kakshya 3:45 123.5
  dasha kakshya --sign Leo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKakshya(opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Sign, "sign", "", "list the divisions of a sign")

	return cmd
}

func runKakshya(opts *KakshyaOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Sign != "" {
		divs, err := kakshya.Divisions(signName(opts.Sign))
		if err != nil {
			return formatter.Fail(err)
		}
		return formatter.Success(KakshyaOutput{Divisions: divs})
	}
	if len(args) == 0 {
		return formatter.Fail(NewExitError(ExitCommandError, "at least one longitude or --sign is required"))
	}

	lons, err := parseLongitudes(args)
	if err != nil {
		return formatter.Fail(err)
	}
	out := KakshyaOutput{Divisions: make([]kakshya.Division, 0, len(lons))}
	for _, lon := range lons {
		d, err := kakshya.Locate(cmd.Context(), lon)
		if err != nil {
			return formatter.Fail(err)
		}
		out.Divisions = append(out.Divisions, d)
	}
	return formatter.Success(out)
}

// signName accepts any capitalization of a sign name.
func signName(s string) system.Ruler {
	for _, sign := range system.Signs {
		if strings.EqualFold(string(sign), s) {
			return sign
		}
	}
	return system.Ruler(s)
}
