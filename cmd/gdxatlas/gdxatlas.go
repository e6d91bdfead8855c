// Command gdxatlas prints the sheets and sprites of a libgdx texture atlas
// as JSON or YAML descriptors. Pass - to read the manifest from stdin.
//
// With -validate, sprites whose geometry does not fit are reported too.
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-gdxatlas/atlas"
	"badc0de.net/pkg/go-gdxatlas/paths"
)

var (
	format   = flag.String("format", "json", "output format: json or yaml")
	validate = flag.Bool("validate", false, "report sprites which do not fit their sheet or canvas, and exit with status 2 if there are any")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <manifest|->\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	text, err := paths.ReadManifest(flag.Arg(0))
	if err != nil {
		glog.Exitf("FATAL: %v", err)
	}
	sheets, err := atlas.Parse(text)
	if err != nil {
		glog.Exitf("FATAL: %v", err)
	}

	switch *format {
	case "json":
		err = atlas.WriteJSON(os.Stdout, sheets)
	case "yaml":
		err = atlas.WriteYAML(os.Stdout, sheets)
	default:
		glog.Exitf("FATAL: unknown format %q", *format)
	}
	if err != nil {
		glog.Exitf("FATAL: writing descriptors: %v", err)
	}

	if *validate {
		bad := 0
		for _, sheet := range sheets {
			for _, err := range sheet.Validate() {
				glog.Errorf("%s: %v", sheet.Filename, err)
				bad++
			}
		}
		if bad > 0 {
			glog.Flush()
			os.Exit(2)
		}
	}
}
