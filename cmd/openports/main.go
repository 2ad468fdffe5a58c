package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"openports/config"
	"openports/logging"
	"openports/lookup"
	"openports/monitor"
	"openports/netstat"
	"openports/ports"
	"openports/process"
	"openports/report"
)

var version = "dev"

// collaborators that touch the host, replaced in tests
var (
	newSource = func() netstat.Source { return netstat.NewPsutilSource() }
	newNames  = newNameResolver
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	configPath   string
	pidSort      bool
	portSort     bool
	sort         string
	bare         bool
	listening    bool
	dns          bool
	regex        string
	continuous   int
	strictFilter bool
	dnsTimeout   time.Duration
	servicesFile string
	verbose      bool
}

// exitError carries the process exit code out of the command
type exitError struct {
	code     int
	err      error
	reported bool // already shown to the user
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(normalizeArgs(args))

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if !errors.As(err, &ee) {
		// flag parsing errors
		printError(stderr, err)
		fmt.Fprintln(stderr, cmd.UsageString())
		return exitUsage
	}
	if !ee.reported {
		printError(stderr, ee.err)
	}
	return ee.code
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "openports",
		Short: "List open ports and the programs that own them",
		Long: `List open ports and corresponding programs. Optionally filter by program
name or connection details, and refresh the listing on an interval.
Similar to "netstat -anob" joined with a process listing, with a more concise output.

Note: --regex never matches against DNS names, even with --dns enabled.`,
		Example: `  openports -pd -r "(chrome|msedge|opera)" -c 5
    # sort by local port (-p) with DNS names (-d), only for programs matching
    # the expression (-r), refreshing every 5 seconds (-c 5)`,
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opts)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			return execute(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.SortFlags = false
	f.BoolVarP(&opts.pidSort, "pid", "i", false, "Sort by PID")
	f.BoolVarP(&opts.portSort, "port", "p", false, "Sort by Port")
	f.StringVarP(&opts.sort, "sort", "s", string(ports.SortProgram), "Sort by PID, Port, or Program")
	f.BoolVarP(&opts.bare, "bare", "b", false, "Bare output, suitable for scripts")
	f.BoolVarP(&opts.listening, "listening", "l", false, "Show only listening connections")
	f.BoolVarP(&opts.dns, "dns", "d", false, "Resolve IP addresses to domain names")
	f.StringVarP(&opts.regex, "regex", "r", "", "Regex pattern to filter output")
	f.IntVarP(&opts.continuous, "continuous", "c", 0, "Continuously monitor network connections at specified interval in seconds")
	f.Lookup("continuous").NoOptDefVal = fmt.Sprint(int(monitor.DefaultInterval / time.Second))
	f.BoolVar(&opts.strictFilter, "strict-filter", false, "Abort on an invalid --regex instead of showing unfiltered output")
	f.DurationVar(&opts.dnsTimeout, "dns-timeout", lookup.DefaultDNSTimeout, "Timeout for each reverse DNS lookup")
	f.StringVar(&opts.servicesFile, "services", lookup.DefaultServicesFile, "Services database used for port names")
	f.StringVar(&opts.configPath, "config", "", "YAML file with default settings")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostics")

	return cmd
}

// resolveConfig layers explicitly set flags over the config file
func resolveConfig(flags *pflag.FlagSet, opts options) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return cfg, err
	}

	if flags.Changed("sort") {
		cfg.Sort = opts.sort
	}
	switch {
	case opts.pidSort:
		cfg.Sort = string(ports.SortPID)
	case opts.portSort:
		cfg.Sort = string(ports.SortPort)
	}
	if flags.Changed("bare") {
		cfg.Bare = opts.bare
	}
	if flags.Changed("listening") {
		cfg.Listening = opts.listening
	}
	if flags.Changed("dns") {
		cfg.DNS = opts.dns
	}
	if flags.Changed("regex") {
		cfg.Regex = opts.regex
	}
	if flags.Changed("continuous") {
		interval := opts.continuous
		cfg.Continuous = &interval
	}
	if flags.Changed("strict-filter") {
		cfg.StrictFilter = opts.strictFilter
	}
	if flags.Changed("dns-timeout") {
		cfg.DNSTimeout = opts.dnsTimeout
	}
	if flags.Changed("services") {
		cfg.ServicesFile = opts.servicesFile
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}

	return cfg, cfg.Validate()
}

func execute(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	logging.SetVerbose(cfg.Verbose)
	log := logging.New("openports")

	if cfg.StrictFilter {
		if _, err := ports.CompileFilter(cfg.Regex); err != nil {
			return &exitError{code: exitUsage, err: err}
		}
	}

	opts := report.Options{}
	if !cfg.Bare {
		table, fromFile, err := lookup.LoadServices(cfg.ServicesFile)
		if err != nil {
			log.Warn("Using built-in service names: ", err)
			table = lookup.BuiltinServices()
		}
		log.Infoln("Loaded", table.Len(), "service names, from file:", fromFile)
		opts.Services = table
	}
	if cfg.DNS {
		opts.DNS = lookup.NewDNSResolver(cfg.DNSTimeout)
	}

	renderer := report.NewRenderer(stdout, report.NewState(cfg.Bare), opts)
	names := process.NewCachedResolver(newNames())
	loop := monitor.New(newSource(), names, renderer, cfg.Monitor())
	loop.OnFilterError = func(err error) {
		printError(stderr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := loop.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		code := exitFailure
		var fe *ports.FilterError
		if errors.As(err, &fe) {
			code = exitUsage
		}
		return &exitError{code: code, err: err}
	}
	if ctx.Err() != nil {
		// user cancellation ends the run cleanly even after a filter error
		fmt.Fprintln(stdout, "\nMonitoring stopped.")
		return nil
	}
	if err := loop.FilterError(); err != nil {
		return &exitError{code: exitUsage, err: err, reported: true}
	}
	return nil
}

func printError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "Error: %v\n", err)
}

// normalizeArgs lets the optional interval of -c/--continuous be given as a
// separate argument ("-c 5", "-pdc 5"), which pflag only accepts as "-c=5".
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if takesInterval(arg) && i+1 < len(args) && isDigits(args[i+1]) {
			out = append(out, arg+"="+args[i+1])
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}

// boolShorthands are the short flags that may precede c in a cluster like -pdc
const boolShorthands = "ipbldv"

func takesInterval(arg string) bool {
	if arg == "--continuous" {
		return true
	}
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' || !strings.HasSuffix(arg, "c") {
		return false
	}
	for _, r := range arg[1 : len(arg)-1] {
		if !strings.ContainsRune(boolShorthands, r) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
