// dtab CLI - build a dispatch table from a hierarchy fixture
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/dtab/dispatch"
	"github.com/chazu/dtab/fixture"
	"github.com/chazu/dtab/hierarchy"
	"github.com/chazu/dtab/profile"
	"github.com/chazu/dtab/snapshot"
)

func main() {
	fixturePath := flag.String("fixture", "", "Hierarchy fixture (TOML)")
	profilePath := flag.String("profile", "", "Selector call-count profile database (SQLite)")
	outPath := flag.String("o", "", "Write a CBOR snapshot of the packed table")
	showStats := flag.Bool("stats", false, "Print build statistics")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dtab -fixture hierarchy.toml [options]\n\n")
		fmt.Fprintf(os.Stderr, "Builds the virtual dispatch table for a class-hierarchy fixture.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dtab -fixture app.toml -stats                # Print packing statistics\n")
		fmt.Fprintf(os.Stderr, "  dtab -fixture app.toml -o table.cbor         # Write the table snapshot\n")
		fmt.Fprintf(os.Stderr, "  dtab -fixture app.toml -profile calls.db     # Use profiled call counts\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	if *fixturePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	h, des, staticMeta := fixture.MustLoad(*fixturePath)

	var meta hierarchy.MetadataSource = staticMeta
	if *profilePath != "" {
		store, err := profile.Open(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening profile: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		meta = &profile.Overlay{Base: staticMeta, Store: store}
	}

	builder := dispatch.NewBuilder(h, des, meta)
	out, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building table: %v\n", err)
		os.Exit(1)
	}

	if *showStats {
		fmt.Println(out.Stats())
	}

	if *outPath != "" {
		// Without a compiled module there are no real function indices;
		// an empty registry leaves every slot at the null funcref.
		snap, err := snapshot.Capture(h, out, hierarchy.StaticFunctions{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error capturing snapshot: %v\n", err)
			os.Exit(1)
		}
		data, err := snapshot.Marshal(snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote %s (%d bytes)\n", *outPath, len(data))
		}
	}
}
