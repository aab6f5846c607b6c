// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/pdiddy/spire-tally/pkg/types"
)

const (
	DefaultBarScale  = 5.0
	DefaultBarHeight = 14.0
	DefaultQRSize    = 72.0

	font       = "Helvetica"
	margin     = 50.0
	lineHeight = 16.0
	barGap     = 8.0
	bannerRule = "======================================"
	headRule   = "--------------------"
)

// palette is cycled per bar so neighbouring bars are distinguishable.
var palette = [][3]int{
	{214, 39, 40},
	{31, 119, 180},
	{44, 160, 44},
	{255, 127, 14},
	{148, 103, 189},
	{140, 86, 75},
	{227, 119, 194},
	{127, 127, 127},
	{188, 189, 34},
	{23, 190, 207},
}

// Renderer writes planned reports to PDF files.
type Renderer struct {
	cfg types.ReportConfig
	log *zap.Logger
}

// NewRenderer returns a Renderer. Zero sizes in cfg take their defaults and
// a nil logger discards output.
func NewRenderer(cfg types.ReportConfig, log *zap.Logger) *Renderer {
	if cfg.BarScale <= 0 {
		cfg.BarScale = DefaultBarScale
	}
	if cfg.BarHeight <= 0 {
		cfg.BarHeight = DefaultBarHeight
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = DefaultQRSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{cfg: cfg, log: log}
}

// Emit writes the summary report for s to path.
func (r *Renderer) Emit(path string, s Summary) error {
	return r.render(path, s.DeckID, Plan(s))
}

// EmitVoid writes the void report for id to path.
func (r *Renderer) EmitVoid(path string, id types.DeckID) error {
	return r.render(path, id, PlanVoid(id))
}

func (r *Renderer) render(path string, id types.DeckID, blocks []Block) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.cfg.Compress)
	pdf.SetTitle("SpireDeck "+id.String(), true)
	pdf.SetCreator("spire-tally", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	d := &drawer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		cfg: r.cfg,
	}

	if r.cfg.QRCode {
		if err := d.stamp(id); err != nil {
			r.log.Warn("qr stamp skipped", zap.String("deck_id", id.String()), zap.Error(err))
		}
	}

	bar := 0
	for _, b := range blocks {
		if b.Kind == BlockBar {
			d.bar(b, palette[bar%len(palette)])
			bar++
			continue
		}
		d.block(b)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	r.log.Debug("report written",
		zap.String("path", path),
		zap.Int("blocks", len(blocks)),
		zap.Int("pages", pdf.PageCount()))
	return nil
}

// drawer holds one document's drawing state.
type drawer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	cfg types.ReportConfig
}

func (d *drawer) line(style string, size float64, text string) {
	d.pdf.SetFont(font, style, size)
	d.pdf.CellFormat(0, lineHeight, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *drawer) block(b Block) {
	switch b.Kind {
	case BlockBanner:
		d.line("B", 14, bannerRule)
		d.line("B", 14, b.Text)
		d.line("B", 14, bannerRule)
	case BlockField:
		d.line("", 12, b.Line())
	case BlockHeading:
		d.pdf.Ln(lineHeight / 2)
		d.line("B", 12, headRule)
		d.line("B", 12, b.Line())
		d.line("B", 12, headRule)
	case BlockText:
		d.pdf.SetFont(font, "", 11)
		d.pdf.MultiCell(0, lineHeight, d.tr(b.Text), "", "L", false)
	case BlockMarker:
		d.pdf.Ln(lineHeight)
		d.line("B", 28, b.Text)
	}
}

// bar draws a label row followed by a filled bar cost*BarScale points long.
// Bars longer than the printable width are clipped to it.
func (d *drawer) bar(b Block, rgb [3]int) {
	pageW, pageH := d.pdf.GetPageSize()
	left, _, right, bottom := d.pdf.GetMargins()

	rowH := lineHeight + d.cfg.BarHeight + barGap
	if d.pdf.GetY()+rowH > pageH-bottom {
		d.pdf.AddPage()
	}

	d.pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
	d.line("", 10, b.Line())
	d.pdf.SetTextColor(0, 0, 0)

	width := float64(b.Entry.Cost) * d.cfg.BarScale
	if avail := pageW - left - right; width > avail {
		width = avail
	}
	y := d.pdf.GetY()
	if width > 0 {
		d.pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
		d.pdf.Rect(left, y, width, d.cfg.BarHeight, "F")
	}
	d.pdf.SetY(y + d.cfg.BarHeight + barGap)
}

// stamp places the deck ID QR code at the top right of the first page.
func (d *drawer) stamp(id types.DeckID) error {
	png, err := QRCode(id, int(d.cfg.QRSize*4))
	if err != nil {
		return err
	}

	name := "qr-" + id.String()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if err := d.pdf.Error(); err != nil {
		// fpdf errors are sticky; the report is still written without the stamp.
		d.pdf.ClearError()
		return fmt.Errorf("registering qr image: %w", err)
	}

	pageW, _ := d.pdf.GetPageSize()
	_, top, right, _ := d.pdf.GetMargins()
	x := pageW - right - d.cfg.QRSize
	d.pdf.ImageOptions(name, x, top, d.cfg.QRSize, d.cfg.QRSize, false, opts, 0, "")
	return nil
}
