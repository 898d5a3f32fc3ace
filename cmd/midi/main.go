// command midi checks that midi is working.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	gm "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/pfcm/cymaglyph/midi"
	"github.com/pfcm/cymaglyph/midi/gomidi"
)

var (
	listFlag = flag.Bool("list", false, "list the input ports and exit")
	portFlag = flag.String("port", "", "`name` of the input port to listen to. Leave empty to listen to all of them")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("midi: ")
	defer gm.CloseDriver()

	if *listFlag {
		for _, p := range gomidi.Ports() {
			fmt.Println(p)
		}
		return
	}

	l := gomidi.All()
	if *portFlag != "" {
		l = gomidi.Port(*portFlag)
	}

	g, ctx := errgroup.WithContext(interruptContext())
	d := midi.Listen(ctx, l)
	c := d.Subscribe()
	g.Go(func() error {
		for m := range c {
			fmt.Println(m)
		}
		return nil
	})
	g.Go(func() error {
		if err := d.Wait(); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	log.Printf("all done, %d messages dropped", d.Dropped())
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
