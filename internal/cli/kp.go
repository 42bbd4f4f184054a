package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/kp"
)

// KPOptions holds flags for the kp command.
type KPOptions struct {
	*RootOptions
	Table bool
}

// KPOutput holds the lords at each requested longitude.
type KPOutput struct {
	Lords []kp.Lords `json:"lords" yaml:"lords" toml:"lords"`
}

// WriteText implements Text.
func (o KPOutput) WriteText(w io.Writer) error {
	for _, l := range o.Lords {
		if _, err := fmt.Fprintf(w, "%s  %s (%s)  %s  star %s  sub %s  sub-sub %s  #%d\n",
			l.Longitude.FormatDMS(), l.Sign, l.SignLord, l.Nakshatra,
			l.StarLord, l.SubLord, l.SubSubLord, l.Segment); err != nil {
			return err
		}
	}
	return nil
}

// KPTableOutput is the full sub-lord table.
type KPTableOutput struct {
	Segments []kp.Segment `json:"segments" yaml:"segments" toml:"segments"`
}

// WriteText implements Text.
func (o KPTableOutput) WriteText(w io.Writer) error {
	for _, s := range o.Segments {
		if _, err := fmt.Fprintf(w, "%3d  %-14s %-14s %-11s %-17s %-8s %-8s\n",
			s.Number, s.Start.FormatDMS(), s.End.FormatDMS(), s.Sign, s.Nakshatra, s.StarLord, s.SubLord); err != nil {
			return err
		}
	}
	return nil
}

// NewKPCommand creates the kp command.
func NewKPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KPOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "kp [longitude...]",
		Short: "Show KP sign, star, sub and sub-sub lords",
		Long: `Show the Krishnamurti Paddhati lordship chain at one or more sidereal
longitudes, or print the 249-segment sub-lord table.

Examples:
  dasha kp 100 45:20 359:59:59
  dasha kp --table --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKP(opts, args, cmd)
		},
	}
	cmd.Flags().BoolVar(&opts.Table, "table", false, "print the full sub-lord table")

	return cmd
}

func runKP(opts *KPOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Table {
		return formatter.Success(KPTableOutput{Segments: kp.Table()})
	}
	if len(args) == 0 {
		return formatter.Fail(NewExitError(ExitCommandError, "at least one longitude or --table is required"))
	}

	lons, err := parseLongitudes(args)
	if err != nil {
		return formatter.Fail(err)
	}
	out := KPOutput{Lords: make([]kp.Lords, 0, len(lons))}
	for _, lon := range lons {
		l, err := kp.LordsAt(cmd.Context(), lon)
		if err != nil {
			return formatter.Fail(err)
		}
		out.Lords = append(out.Lords, l)
	}
	return formatter.Success(out)
}
