// Shapes CLI - runs object scripts against a shape-based object heap
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/shapes/config"
	"github.com/chazu/shapes/vm"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	configDir := flag.String("config", "", "Directory containing shapes.toml (default: search upward from the current directory)")
	verbosity := flag.Int("v", 0, "Log verbosity (overrides [log] verbosity when non-zero)")
	share := flag.Bool("share", false, "Share transitions between objects with the same property history")
	stats := flag.Bool("stats", false, "Print heap and cache statistics after running")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shapes [options] [scripts...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs object scripts (stdin when no script is given) against a fresh heap.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nScript commands:\n")
		fmt.Fprintf(os.Stderr, "  new NAME              # object with no properties\n")
		fmt.Fprintf(os.Stderr, "  clone NAME SRC        # structural copy of SRC\n")
		fmt.Fprintf(os.Stderr, "  set NAME PROP VALUE   # VALUE: 42, 1.5, true, false, nil, #sym\n")
		fmt.Fprintf(os.Stderr, "  get NAME PROP\n")
		fmt.Fprintf(os.Stderr, "  shape NAME | inspect NAME | stats\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *verbosity != 0 {
		cfg.Log.Verbosity = *verbosity
	}
	if *share {
		cfg.Shapes.ShareTransitions = true
	}

	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	log := commonlog.GetLogger("shapes")

	vmInst, err := vm.NewVMWithConfig(cfg.VMConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating heap: %v\n", err)
		os.Exit(1)
	}
	defer vmInst.Close()

	runner := NewRunner(vmInst, os.Stdout)
	if err := runScripts(runner, flag.Args()); err != nil {
		log.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *stats {
		runner.PrintStats()
	}
}

func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func runScripts(r *Runner, paths []string) error {
	if len(paths) == 0 {
		return r.Run(os.Stdin)
	}
	for _, path := range paths {
		if err := runFile(r, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func runFile(r *Runner, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Run(f)
}
