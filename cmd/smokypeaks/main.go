// smokypeaks serves the Smoky Peaks Cabins website.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/tstromberg/smokypeaks/pkg/contact"
	"github.com/tstromberg/smokypeaks/pkg/photos"
	"github.com/tstromberg/smokypeaks/pkg/planner"
	"github.com/tstromberg/smokypeaks/pkg/site"
)

var (
	configPath = flag.String("config", "", "path to a TOML configuration file")
	addr       = flag.String("addr", "", "host:port to bind to")
	photoDir   = flag.String("photos", "", "directory with one subdirectory of JPEGs per cabin")
	outDir     = flag.String("out", "", "output directory for resized photos and exports")
	assetDir   = flag.String("assets", "", "extra static files to copy into exports")
	watchFlag  = flag.Bool("watch", false, "watch --photos for changes and reload them")
	exportFlag = flag.Bool("export", false, "write the site as static HTML into --out and exit")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	c := site.DefaultConfig()
	if *configPath != "" {
		var err error
		c, err = site.LoadConfig(*configPath, c)
		if err != nil {
			klog.Exitf("config: %v", err)
		}
	}

	// flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			c.Addr = *addr
		case "photos":
			c.PhotoDir = *photoDir
		case "out":
			c.OutDir = *outDir
		case "assets":
			c.AssetDir = *assetDir
		}
	})
	if key := os.Getenv("GOOGLE_AI_API_KEY"); key != "" {
		c.GeminiAPIKey = key
	}

	content, err := site.LoadContent()
	if err != nil {
		klog.Exitf("content: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := site.NewServer(c, content, guide(ctx, c), mailer(c))
	defer srv.Close()

	if err := srv.LoadPhotos(); err != nil {
		klog.Exitf("photos: %v", err)
	}

	if *exportFlag {
		if c.OutDir == "" {
			klog.Exitf("--out is required with --export")
		}
		if err := srv.Export(c.OutDir); err != nil {
			klog.Exitf("export failed: %v", err)
		}
		klog.Infof("exported to %s", c.OutDir)
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	g.Go(func() error {
		return srv.Sessions().RunReaper(ctx, c.SessionIdle, time.Minute)
	})
	if *watchFlag && c.PhotoDir != "" {
		g.Go(func() error {
			return photos.Watch(ctx, c.PhotoDir, site.PropertyIDs(), func() {
				if err := srv.LoadPhotos(); err != nil {
					klog.Errorf("reload photos: %v", err)
				}
			})
		})
	}

	if err := g.Wait(); err != nil {
		klog.Exitf("%v", err)
	}
}

// guide returns the itinerary generator, or nil when no API key is set.
func guide(ctx context.Context, c site.Config) planner.Generator {
	if c.GeminiAPIKey == "" {
		klog.Warningf("GOOGLE_AI_API_KEY is not set: the trip planner will apologize to every visitor")
		return nil
	}
	g, err := planner.NewGemini(ctx, c.GeminiAPIKey, c.GeminiModel)
	if err != nil {
		klog.Exitf("gemini: %v", err)
	}
	return g
}

// mailer returns an SMTP mailer when a relay is configured.
func mailer(c site.Config) contact.Mailer {
	if c.SMTP.Host == "" {
		return nil
	}
	if c.SMTP.To == "" {
		c.SMTP.To = c.ContactTo
	}
	m, err := contact.NewSMTPMailer(c.SMTP)
	if err != nil {
		klog.Exitf("smtp: %v", err)
	}
	return m
}
