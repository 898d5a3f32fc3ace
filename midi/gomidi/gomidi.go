// package gomidi provides midi.Listeners for the input ports of whatever
// gomidi driver the binary registers, usually rtmididrv.
package gomidi

import (
	"context"
	"fmt"

	gm "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/pfcm/cymaglyph/midi"
)

// Ports returns the names of the available input ports.
func Ports() []string {
	var names []string
	for _, p := range gm.GetInPorts() {
		names = append(names, p.String())
	}
	return names
}

// Port returns a Listener for the named input port, or the first port if the
// name is empty. The port is looked up when the Listener is called.
func Port(name string) midi.Listener {
	return func(ctx context.Context, f func([]byte)) error {
		var (
			in  drivers.In
			err error
		)
		if name == "" {
			in, err = gm.InPort(0)
		} else {
			in, err = gm.FindInPort(name)
		}
		if err != nil {
			return fmt.Errorf("finding midi port %q: %w", name, err)
		}
		stop, err := gm.ListenTo(in, func(msg gm.Message, _ int32) {
			f(msg.Bytes())
		})
		if err != nil {
			return fmt.Errorf("listening to %v: %w", in, err)
		}
		defer stop()
		<-ctx.Done()
		return ctx.Err()
	}
}

// All returns a Listener for every available input port.
func All() midi.Listener {
	return func(ctx context.Context, f func([]byte)) error {
		ports := gm.GetInPorts()
		if len(ports) == 0 {
			return fmt.Errorf("no midi input ports")
		}
		for _, in := range ports {
			stop, err := gm.ListenTo(in, func(msg gm.Message, _ int32) {
				f(msg.Bytes())
			})
			if err != nil {
				return fmt.Errorf("listening to %v: %w", in, err)
			}
			defer stop()
		}
		<-ctx.Done()
		return ctx.Err()
	}
}
