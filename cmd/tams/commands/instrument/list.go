package instrument

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/pkg/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all instruments",
	RunE:  runList,
}

// InstrumentList is a list of instruments for table rendering.
type InstrumentList []catalog.Instrument

// Headers implements TableRenderer.
func (il InstrumentList) Headers() []string {
	return []string{"ID", "NAME"}
}

// Rows implements TableRenderer.
func (il InstrumentList) Rows() [][]string {
	rows := make([][]string, 0, len(il))
	for _, i := range il {
		rows = append(rows, []string{fmt.Sprintf("%d", i.InstrumentID), i.Name})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cat, err := cmdutil.OpenCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	instruments, err := cat.ListInstruments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list instruments: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, instruments, len(instruments) == 0, "No instruments found.", InstrumentList(instruments))
}
