// Command gdxatlasweb serves a libgdx texture atlas for browsing: an index
// page, its descriptors, sheet images, individual sprites and animations.
//
// The manifest is reloaded whenever it, or an image next to it, changes.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"badc0de.net/pkg/go-gdxatlas/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for gdxatlasweb")
	manifestPath  = flag.String("manifest", "", "path to the .atlas manifest to serve")
	spritesDir    = flag.String("sprites_dir", "", "if set, sheets are composed from the sprite images in this directory instead of read from disk")
	ext           = flag.String("ext", ".png", "extension of the sprite images in -sprites_dir")
	watch         = flag.Bool("watch", true, "whether to reload the manifest when files change")
	banner        = flag.Bool("banner", true, "whether to print a banner on startup")
)

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if *manifestPath == "" {
		glog.Exitf("FATAL: -manifest is required")
	}
	if *banner {
		figure.NewFigure("gdxatlasweb", "", true).Print()
	}

	h, err := web.NewHandler(*manifestPath, *spritesDir, *ext)
	if err != nil {
		glog.Exitf("FATAL: %v", err)
	}

	if *watch {
		w, err := web.NewHandlerWatcher(h)
		if err != nil {
			glog.Errorf("not watching for changes: %v", err)
		} else {
			defer w.Close()
			go web.ReloadOnChange(context.Background(), h, w)
		}
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	// x/net/trace registers itself on the default mux.
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux)

	glog.Infof("serving %s on %s", *manifestPath, *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.LoggingHandler(os.Stderr, handlers.CompressHandler(r))))
}
