package cli

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/wooctl/internal/application/orders"
)

// GlobalFlags are the persistent flags shared by every command
type GlobalFlags struct {
	ConfigPath  string
	StoreDriver string
	Verbose     bool
}

// Register adds the global flags to the root command
func (f *GlobalFlags) Register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.ConfigPath, "config", "config.yaml", "Path to the config file (environment variables are used when it is missing)")
	pf.StringVar(&f.StoreDriver, "store", "", "Store backend: rest or wpdb (overrides config)")
	pf.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
}

// OrderFlags are the filters and output options of the order command
type OrderFlags struct {
	Type   string
	Start  string
	End    string
	Format string
}

// Register adds the order flags to cmd
func (f *OrderFlags) Register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.Type, "type", "", "Only list orders with this status (wc- prefix optional)")
	fs.StringVar(&f.Start, "start", "", "Only list orders created on or after this date")
	fs.StringVar(&f.End, "end", "", "Only list orders created on or before this date")
	fs.StringVar(&f.Format, "format", FormatTable, "List output format: table or json")
}

// ListRequest converts the filters to an orders.ListRequest
func (f OrderFlags) ListRequest() orders.ListRequest {
	return orders.ListRequest{
		Type:  f.Type,
		Start: f.Start,
		End:   f.End,
	}
}

// SandboxFlags are the options of the sandbox commands
type SandboxFlags struct {
	DatabasePath string
	Addr         string
	Force        bool
}
