// Command gdxunpack cuts every sprite named in a libgdx texture atlas out of
// its sheet image and saves it as an individual image.
//
// Sheet images are looked up next to the manifest. The destination directory
// is created when it does not exist yet.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"runtime"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-gdxatlas/imageprint"
	"badc0de.net/pkg/go-gdxatlas/packer"
)

var (
	parallelism = flag.Int("parallelism", runtime.GOMAXPROCS(0), "how many sheets to work on at once")
	ext         = flag.String("ext", ".png", "extension, and thus format, of the sprite images written")
	strict      = flag.Bool("strict", false, "exit with status 2 if any sheet or sprite was skipped")
	preview     = flag.Bool("preview", false, "print every extracted sprite on the terminal")
	blanks      = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize    = flag.Bool("downsize", true, "whether to shrink previews to fit the terminal")

	printMode = imageprint.Mode24Bit
)

func init() {
	flag.Var(&printMode, "print_mode", "how to print previews: 24bit, 256, none, iterm or rasterm")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <manifest> <destination_dir>\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Loads a libgdx texture atlas (.atlas) and saves each sprite as an individual image into the destination directory.\n\n")
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
	}
	if *preview {
		p := &imageprint.Printer{Mode: printMode, Blanks: *blanks, Downsize: *downsize}
		opts.Preview = func(name string, img image.Image) {
			if err := p.Print(name, img); err != nil {
				glog.Warningf("preview of %s: %v", name, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	report, err := packer.Unpack(ctx, opts)
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
