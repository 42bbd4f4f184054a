package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/engine"
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/system"
)

// SystemsOutput lists registered systems.
type SystemsOutput struct {
	Systems []ir.SystemRecord `json:"systems" yaml:"systems" toml:"systems"`
}

// WriteText implements Text.
func (o SystemsOutput) WriteText(w io.Writer) error {
	for _, s := range o.Systems {
		rulers := make([]string, len(s.Rulers))
		for i, r := range s.Rulers {
			rulers[i] = fmt.Sprintf("%s %d", r.Ruler, r.Weight)
		}
		if _, err := fmt.Fprintf(w, "%-12s %-12s %-6s %-10s balance=%s\n  %s\n",
			s.ID, s.Name, s.Axis, cycleString(s), balanceString(s.Balance), strings.Join(rulers, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// balanceString renders a rule as kind(param=value, ...), spans in DMS.
func balanceString(b ir.BalanceRule) string {
	var params []string
	if b.Start != 0 {
		params = append(params, "start="+domain.Value(b.Start).FormatDMS())
	}
	if b.Span != 0 {
		params = append(params, "span="+domain.Value(b.Span).FormatDMS())
	}
	if b.Offset != 0 {
		params = append(params, fmt.Sprintf("offset=%d", b.Offset))
	}
	if len(b.Groups) > 0 {
		groups := make([]string, len(b.Groups))
		for i, g := range b.Groups {
			groups[i] = fmt.Sprint(g)
		}
		params = append(params, "groups="+strings.Join(groups, "/"))
	}
	if len(params) == 0 {
		return b.Kind
	}
	return b.Kind + "(" + strings.Join(params, ", ") + ")"
}

func cycleString(s ir.SystemRecord) string {
	if s.Axis == string(system.AxisZodiac) {
		return domain.Value(s.Cycle).FormatDMS()
	}
	cycle := domain.Value(s.Cycle)
	if cycle%domain.Year == 0 {
		return fmt.Sprintf("%dy", cycle/domain.Year)
	}
	return fmt.Sprintf("%dns", s.Cycle)
}

// NewSystemsCommand creates the systems command.
func NewSystemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "systems [id...]",
		Short: "List registered period systems",
		Long: `List the built-in systems and any custom systems from the systems
directory, with their ruler tables and balance rules.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystems(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runSystems(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, err := opts.Registry()
	if err != nil {
		return formatter.Fail(err)
	}
	if len(ids) == 0 {
		return formatter.Success(SystemsOutput{Systems: engine.DescribeAll(reg)})
	}

	out := SystemsOutput{Systems: make([]ir.SystemRecord, 0, len(ids))}
	for _, id := range ids {
		def, err := reg.Resolve(system.ID(strings.ToUpper(id)))
		if err != nil {
			return formatter.Fail(err)
		}
		out.Systems = append(out.Systems, engine.Describe(def))
	}
	return formatter.Success(out)
}
