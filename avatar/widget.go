package avatar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/config"
	"github.com/vcrobe/adminnav/console"
	"github.com/vcrobe/adminnav/dialogs"
	"github.com/vcrobe/adminnav/dom"
	"github.com/vcrobe/adminnav/events"
	"github.com/vcrobe/adminnav/vdom"
)

// Widget drives the sidebar avatar: it opens the file picker, shows the
// preview and upload progress, and swaps in the stored picture.
type Widget struct {
	doc      dom.Document
	uploader *Uploader
	dialog   dialogs.Dialog
	cfg      config.AvatarConfig
	msgs     config.MessagesConfig
	logger   *zap.Logger

	pick  func()
	now   func() time.Time
	after func(time.Duration, func())
}

// WidgetOption configures a Widget.
type WidgetOption func(*Widget)

// WithPicker sets the function that opens the file picker.
func WithPicker(pick func()) WidgetOption {
	return func(w *Widget) { w.pick = pick }
}

// WithClock replaces time.Now and time.AfterFunc.
func WithClock(now func() time.Time, after func(time.Duration, func())) WidgetOption {
	return func(w *Widget) {
		w.now = now
		w.after = after
	}
}

// WithWidgetLogger sets the logger.
func WithWidgetLogger(l *zap.Logger) WidgetOption {
	return func(w *Widget) { w.logger = l }
}

// NewWidget creates a Widget.
func NewWidget(doc dom.Document, uploader *Uploader, dialog dialogs.Dialog, cfg *config.Config, opts ...WidgetOption) *Widget {
	w := &Widget{
		doc:      doc,
		uploader: uploader,
		dialog:   dialog,
		cfg:      cfg.Avatar,
		msgs:     cfg.Messages,
		now:      time.Now,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = console.OrNop(w.logger).Named("avatar")
	return w
}

// Present reports whether the avatar trigger and file input are on the page.
func (w *Widget) Present() bool {
	return w.doc.Query(w.cfg.Trigger) != nil && w.doc.Query(w.cfg.Input) != nil
}

// Bind opens the picker when the avatar is clicked. The click does not
// reach the profile accordion.
func (w *Widget) Bind(d *events.Delegator) (off func()) {
	return d.On("click", w.cfg.Trigger, func(e *events.Event, _ dom.Element) {
		e.StopPropagation()
		if w.pick != nil {
			w.pick()
		}
	})
}

func (w *Widget) overlay() dom.Element {
	trigger := w.doc.Query(w.cfg.Trigger)
	if trigger == nil {
		return nil
	}
	return trigger.Query(w.cfg.Overlay)
}

func (w *Widget) setOverlay(el dom.Element, markup string) {
	if el == nil {
		return
	}
	if err := el.SetInnerHTML(markup); err != nil {
		w.logger.Warn("updating overlay", zap.Error(err))
	}
}

func overlayMarkup(icon, text string) string {
	return vdom.HTML(vdom.Icon(icon), vdom.Span(text, nil))
}

// Handle validates and uploads f. preview, when set, is shown in the avatar
// image right away and kept if the upload fails.
func (w *Widget) Handle(ctx context.Context, f File, preview string) error {
	if err := w.uploader.Validate(f); err != nil {
		w.reject(err)
		return err
	}

	img := w.doc.Query(w.cfg.Image)
	if img != nil && preview != "" {
		img.SetAttr("src", preview)
	}

	overlay := w.overlay()
	var original string
	if overlay != nil {
		original = overlay.InnerHTML()
	}
	w.setOverlay(overlay, overlayMarkup("fas fa-spinner fa-spin", w.msgs.Uploading))

	res, err := w.uploader.Upload(ctx, f)
	if err != nil {
		msg := w.msgs.UploadFailed
		var ue *UploadError
		if errors.As(err, &ue) && ue.Message != "" {
			msg = ue.Message
		}
		w.logger.Error("uploading avatar", zap.Error(err))
		w.dialog.Alert(msg)
		w.setOverlay(overlay, original)
		return err
	}

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = w.msgs.UploadError
		}
		w.dialog.Alert("Error: " + msg)
		w.setOverlay(overlay, original)
		return fmt.Errorf("upload rejected: %s", msg)
	}

	if img != nil && res.AvatarURL != "" {
		img.SetAttr("src", fmt.Sprintf("%s?t=%d", res.AvatarURL, w.now().UnixMilli()))
	}
	w.setOverlay(overlay, overlayMarkup("fas fa-check", w.msgs.Uploaded))
	w.after(w.cfg.RestoreWait, func() { w.setOverlay(overlay, original) })
	w.logger.Info("avatar updated", zap.String("url", res.AvatarURL))
	return nil
}

func (w *Widget) reject(err error) {
	switch {
	case errors.Is(err, ErrNotImage):
		w.dialog.Alert(w.msgs.NotAnImage)
	case errors.Is(err, ErrTooLarge):
		w.dialog.Alert(w.msgs.TooLarge)
	}
}
