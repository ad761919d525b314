package app

import (
	"context"
	"time"

	"github.com/keskad/loco/pkgs/z21"
)

// MonitorAction connects, subscribes to the given categories, and prints
// every dispatched event until ctx is cancelled (e.g. SIGINT at the CLI
// layer).
func (app *LocoApp) MonitorAction(ctx context.Context, categories []string) error {
	if err := app.connect(ctx); err != nil {
		return err
	}
	defer func() { _ = app.client.Disconnect() }()

	for _, raw := range categories {
		if err := app.client.SubscribeCategory(z21.EventCategory(raw)); err != nil {
			return err
		}
	}

	tok := app.client.Subscribe(func(ev z21.Event) {
		app.P.Printf("[%s] %+v\n", ev.Kind, ev)
	})
	defer app.client.Unsubscribe(tok)

	<-ctx.Done()
	return nil
}

// DiscoverAction broadcasts a discovery probe and prints every reply.
func (app *LocoApp) DiscoverAction(window time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), window+time.Second)
	defer cancel()
	stations, err := z21.Discover(ctx, app.Config.Server.Port, window)
	if err != nil {
		return err
	}
	if len(stations) == 0 {
		app.P.Printf("no stations found\n")
		return nil
	}
	for _, s := range stations {
		app.P.Printf("%s  code=0x%02X\n", s.Address.String(), byte(s.Code))
	}
	return nil
}
