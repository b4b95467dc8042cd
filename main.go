//go:build js && wasm

package main

import (
	"context"
	"net/url"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/activestate"
	"github.com/vcrobe/adminnav/avatar"
	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dialogs"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/fetch"
	"github.com/vcrobe/adminnav/history"
	"github.com/vcrobe/adminnav/navigation"
	"github.com/vcrobe/adminnav/profile"
	"github.com/vcrobe/adminnav/signals"
	"github.com/vcrobe/adminnav/storage"
	"github.com/vcrobe/adminnav/swap"
)

// configScript is the id of an optional <script type="application/yaml">
// carrying overrides of the default selectors and messages.
const configScript = "adminnav-config"

func loadConfig(doc dom.Document) (*config.Config, error) {
	el := doc.Query("#" + configScript)
	if el == nil {
		return config.DefaultConfig(), nil
	}
	return config.Parse([]byte(el.InnerHTML()))
}

func main() {
	doc := dom.NewBrowserDocument()

	cfg, err := loadConfig(doc)
	if err != nil {
		console.Error("adminnav: invalid configuration, using defaults: ", err.Error())
		cfg = config.DefaultConfig()
	}
	logger := console.NewLogger(cfg.Debug)

	region := doc.Query(cfg.Content.Region)
	if region == nil {
		logger.Warn("content region not found, navigation disabled", zap.String("selector", cfg.Content.Region))
		select {}
	}

	location := js.Global().Get("location")
	base, err := url.Parse(location.Get("href").String())
	if err != nil {
		logger.Error("parsing page url", zap.Error(err))
	}

	d := events.NewDelegator(logger)
	events.Listen(d, "click")

	swapper := swap.New(region, doc, cfg, logger)
	swapper.AddReinitializer(swap.BootstrapWidgets())
	swapper.AddReinitializer(swap.DOMEvent(cfg.Content.LoadedEvent))
	swapper.BindDismiss(d)

	// ready is fired by page scripts that render active-state markup late.
	ready := signals.New(struct{}{})
	tracker := activestate.New(doc, cfg, logger)
	tracker.Bind(d)
	tracker.Watch(ready)

	orch := navigation.New(
		fetch.New(cfg.Request, fetch.WithBaseURL(base), fetch.WithLogger(logger)),
		swapper,
		tracker,
		history.NewBridge(history.NewBrowser(), logger),
		cfg,
		navigation.WithLogger(logger),
	)
	orch.Bind(d)
	orch.Start()
	orch.SetCurrentURL(location.Get("pathname").String() + location.Get("search").String())

	toggles := profile.New(doc, storage.Local{}, cfg, func(u string) {
		location.Set("href", u)
	}, logger)
	toggles.Restore()
	toggles.Bind(d)

	uploader := avatar.NewUploader(cfg,
		avatar.WithBaseURL(base),
		avatar.WithLogger(logger),
		avatar.WithTokenSources(
			avatar.GlobalToken(cfg.Avatar.CSRFGlobal),
			avatar.CookieToken(avatar.DocumentCookie, cfg.Avatar.CSRFCookie),
			avatar.MetaToken(doc, cfg.Avatar.CSRFMeta),
		))
	widget := avatar.NewWidget(doc, uploader, dialogs.Browser{}, cfg,
		avatar.WithPicker(avatar.Picker(doc, cfg.Avatar.Input)),
		avatar.WithWidgetLogger(logger))
	if widget.Present() {
		widget.Bind(d)
		widget.Watch(context.Background())
	}

	exposeAPI(orch, ready, logger)
	logger.Info("navigation ready", zap.String("region", cfg.Content.Region))

	select {}
}

// exposeAPI publishes window.AdminNav for scripts on the page:
// loadContent(url, callback(html, error)) and ready(). The callback is not
// invoked when a newer navigation overtakes the load.
func exposeAPI(orch *navigation.Orchestrator, ready *signals.Signal[struct{}], logger *zap.Logger) {
	loadContent := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		target := args[0].String()
		var callback js.Value
		if len(args) > 1 && args[1].Type() == js.TypeFunction {
			callback = args[1]
		}
		go orch.LoadContent(context.Background(), target, func(html string, err error) {
			if callback.IsUndefined() {
				return
			}
			if err != nil {
				callback.Invoke(js.Null(), err.Error())
				return
			}
			callback.Invoke(html, js.Null())
		})
		return nil
	})
	readyFn := js.FuncOf(func(this js.Value, args []js.Value) any {
		ready.Set(struct{}{})
		return nil
	})

	js.Global().Set("AdminNav", map[string]any{
		"loadContent": loadContent,
		"ready":       readyFn,
	})
	logger.Debug("window.AdminNav registered")
}
