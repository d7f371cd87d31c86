package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	bolt "go.etcd.io/bbolt"

	"indikit/pkg/drivers/custom"
	"indikit/pkg/drivers/dome"
	"indikit/pkg/drivers/dustcap"
	"indikit/pkg/drivers/filterwheel"
	"indikit/pkg/drivers/focuser"
	"indikit/pkg/drivers/gps"
	"indikit/pkg/drivers/lightbox"
	"indikit/pkg/indikit"
	"indikit/pkg/indikit/store"
)

// driver is what the host needs from each device beyond the entry points.
type driver interface {
	indikit.Device
	SetConfigStore(indikit.ConfigStore)
	InitProperties() error
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	log.Info("indikit host")

	profiles, err := indikit.LoadProfiles(c.String("profiles"))
	if err != nil {
		return err
	}

	db, err := bolt.Open(c.String("db"), 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer db.Close()

	st := store.New(db)
	loop := indikit.NewEventLoop(log.WithField("component", "host"))

	drivers := []driver{
		dome.New(loop, profiles.Get("dome"), log.WithField("device", "dome")),
		dustcap.New(loop, profiles.Get("dustcap"), log.WithField("device", "dustcap")),
		filterwheel.New(loop, profiles.Get("filterwheel"), log.WithField("device", "filterwheel")),
		focuser.New(loop, profiles.Get("focuser"), log.WithField("device", "focuser")),
		gps.New(loop, profiles.Get("gps"), log.WithField("device", "gps")),
		lightbox.New(loop, profiles.Get("lightbox"), log.WithField("device", "lightbox")),
		custom.New(loop, profiles.Get("custom"), log.WithField("device", "custom")),
	}

	for _, d := range drivers {
		d.SetConfigStore(st)
		if err := d.InitProperties(); err != nil {
			return fmt.Errorf("failed to init properties for %s: %v", d.Name(), err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(ctx); err != nil {
			log.Errorf("Event loop failed: %v", err)
		}
	}()

	// Publish the always-visible properties once the loop is running.
	for _, d := range drivers {
		loop.Post(d.GetProperties)
	}

	dr := indikit.NewDiscoveryResponder("0.0.0.0", c.Int("port"), log.WithField("component", "discovery"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dr.Run(ctx); err != nil {
			log.Errorf("Discovery responder failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down...")
	wg.Wait()

	// The loop is stopped; disconnect whatever is still connected so
	// transports close cleanly.
	for _, d := range drivers {
		if d.Connected() {
			if err := d.Disconnect(); err != nil {
				log.Errorf("Failed to disconnect %s: %v", d.Name(), err)
			}
		}
	}

	log.Info("Host stopped")
	return nil
}

func main() {
	app := cli.App{
		Name:  "indikit-host",
		Usage: "Run the indikit example device drivers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
				Value:   false,
				EnvVars: []string{"DEBUG"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Control port advertised to discovery probes",
				Value:   7624,
				EnvVars: []string{"INDIKIT_PORT"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the configuration database",
				Value:   "indikit.db",
				EnvVars: []string{"INDIKIT_DB"},
			},
			&cli.StringFlag{
				Name:    "profiles",
				Usage:   "Path to the device profile file",
				Value:   "profiles.yaml",
				EnvVars: []string{"INDIKIT_PROFILES"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
