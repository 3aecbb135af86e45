package main

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"strings"
	"sync"

	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/messages"
	"github.com/vakinha/checkout/internal/platform/qrcode"
)

// terminalView draws the payment modal as lines of text. The countdown is
// kept on a single line rewritten in place.
type terminalView struct {
	out      io.Writer
	msgs     *messages.Catalog
	renderer *qrcode.Renderer

	mu        sync.Mutex
	surface   *image.Gray
	inline    bool // cursor sits after the countdown line
	copyLabel string
	submit    bool
	settled   chan struct{}
	once      sync.Once
}

func newTerminalView(out io.Writer, msgs *messages.Catalog, renderer *qrcode.Renderer) *terminalView {
	return &terminalView{
		out:      out,
		msgs:     msgs,
		renderer: renderer,
		submit:   true,
		settled:  make(chan struct{}),
	}
}

// Settled is closed once the code expired or the payment was confirmed.
func (v *terminalView) Settled() <-chan struct{} { return v.settled }

func (v *terminalView) println(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.printlnLocked(format, args...)
}

func (v *terminalView) printlnLocked(format string, args ...any) {
	if v.inline {
		fmt.Fprintln(v.out)
		v.inline = false
	}
	fmt.Fprintf(v.out, format+"\n", args...)
}

func (v *terminalView) ShowLoading() {
	v.println("%s", v.msgs.Get(messages.ModalLoading))
}

func (v *terminalView) ShowPayment(p domain.PaymentPresentation) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.surface = nil
	if v.renderer != nil {
		if n, err := v.renderer.Modules(p.PixCode); err == nil {
			v.surface = image.NewGray(image.Rect(0, 0, n, n))
		}
	}
	v.printlnLocked("%s: %s", v.msgs.Get(messages.SummaryTotal), amount.FormatBRL(p.Total))
	v.printlnLocked("PIX copia e cola:\n%s", p.PixCode)
}

func (v *terminalView) ShowError(message string) {
	v.println("Erro: %s", message)
}

func (v *terminalView) UpdateCountdown(display string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "\rExpira em %s", display)
	v.inline = true
}

func (v *terminalView) MarkExpired() {
	v.println("%s", v.msgs.Get(messages.ModalExpired))
	v.once.Do(func() { close(v.settled) })
}

func (v *terminalView) MarkPaid() {
	v.println("%s", v.msgs.Get(messages.ModalPaid))
	v.once.Do(func() { close(v.settled) })
}

func (v *terminalView) Hide() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inline {
		fmt.Fprintln(v.out)
		v.inline = false
	}
	v.surface = nil
}

func (v *terminalView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	v.submit = enabled
	v.mu.Unlock()
}

func (v *terminalView) SetCopyLabel(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if label == v.copyLabel {
		return
	}
	v.copyLabel = label
	v.printlnLocked("[%s]", label)
}

func (v *terminalView) CodeSurface() draw.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.surface == nil {
		return nil
	}
	return v.surface
}

func (v *terminalView) ShowCode() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.surface == nil {
		return
	}
	v.printlnLocked("%s", strings.TrimRight(qrcode.HalfBlocks(v.surface), "\n"))
}

func (v *terminalView) HideCode() {
	v.println("%s", v.msgs.Get(messages.ModalQRUnavailable))
}

func (v *terminalView) submitEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submit
}
