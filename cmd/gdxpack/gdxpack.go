// Command gdxpack rebuilds the sheet images of a libgdx texture atlas from a
// directory holding one image per sprite.
//
// Sheets are written next to the manifest unless -out_dir says otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-gdxatlas/packer"
)

var (
	parallelism = flag.Int("parallelism", runtime.GOMAXPROCS(0), "how many sheets to work on at once")
	ext         = flag.String("ext", ".png", "extension of the sprite images read")
	outDir      = flag.String("out_dir", "", "directory to write sheets into; defaults to the manifest's directory")
	strict      = flag.Bool("strict", false, "exit with status 2 if any sheet or sprite was skipped")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <manifest> <sprite_dir>\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Loads a libgdx texture atlas (.atlas) and packs all sprites from the sprite directory into texture sheets.\n\n")
		flag.PrintDefaults()
	}
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	opts := packer.Options{
		ManifestPath: flag.Arg(0),
		Dir:          flag.Arg(1),
		Parallelism:  *parallelism,
		Ext:          *ext,
		OutDir:       *outDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	report, err := packer.Pack(ctx, opts)
	stop()
	if err != nil {
		glog.Exitf("FATAL: %v", err)
	}
	glog.Infof("%s: %s", opts.ManifestPath, report.Summary())
	if *strict && report.Failed() > 0 {
		glog.Flush()
		os.Exit(2)
	}
}
