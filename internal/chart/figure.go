package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/tbvplot/internal/utils"
)

// ErrUnsupportedFormat is returned for output paths whose extension has no renderer.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Range is a closed axis interval.
type Range struct{ Min, Max float64 }

// Options describes a figure's fixed layout.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	X, Y   Range
	Legend bool
	// EqualAspect resizes Height at render time so one data unit spans the
	// same length on both axes, whatever room the labels take.
	EqualAspect bool
	// Width and Height of the canvas. Height defaults to Width.
	Width, Height vg.Length
	// DPI applies to raster formats only.
	DPI int
}

// DefaultSize is the canvas edge used when Options leaves Width/Height unset.
const DefaultSize = 6.5 * vg.Inch

// Figure is one chart under construction.
type Figure struct {
	p       *plot.Plot
	opt     Options
	series  int
	dropped int
}

// New creates an empty figure.
func New(opt Options) *Figure {
	if opt.Width <= 0 {
		opt.Width = DefaultSize
	}
	if opt.Height <= 0 {
		opt.Height = opt.Width
	}
	if opt.DPI <= 0 {
		opt.DPI = 300
	}
	p := plot.New()
	p.Title.Text = opt.Title
	p.X.Label.Text = opt.XLabel
	p.Y.Label.Text = opt.YLabel
	p.Legend.Top = true
	p.Legend.Left = true
	return &Figure{p: p, opt: opt}
}

// AddErrorSeries draws pts as markers with x and y error bars. Each call
// takes the next color and marker shape. Non-finite points are skipped and
// counted in Dropped.
func (f *Figure) AddErrorSeries(label string, pts Points) error {
	idx := f.series
	f.series++
	pts, dropped := pts.Finite()
	f.dropped += dropped
	if pts.Len() == 0 {
		return nil
	}
	c := plotutil.Color(idx)

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("series %q: %w", label, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = plotutil.Shape(idx)
	s.GlyphStyle.Radius = vg.Points(2)

	xe, err := plotter.NewXErrorBars(pts)
	if err != nil {
		return fmt.Errorf("series %q x errors: %w", label, err)
	}
	xe.LineStyle.Color = c
	ye, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return fmt.Errorf("series %q y errors: %w", label, err)
	}
	ye.LineStyle.Color = c

	f.p.Add(xe, ye, s)
	if f.opt.Legend && label != "" {
		f.p.Legend.Add(label, s)
	}
	return nil
}

// AddGuide draws the y = x line from lo to hi.
func (f *Figure) AddGuide(lo, hi float64) error {
	l, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return fmt.Errorf("guide: %w", err)
	}
	l.LineStyle.Color = color.Black
	l.LineStyle.Width = vg.Points(1)
	f.p.Add(l)
	return nil
}

// SetRange replaces both axis ranges.
func (f *Figure) SetRange(x, y Range) {
	f.opt.X, f.opt.Y = x, y
}

// Dropped returns the number of non-finite points skipped so far.
func (f *Figure) Dropped() int { return f.dropped }

// Series returns how many series were added.
func (f *Figure) Series() int { return f.series }

// applyRange must run after every Add, which widens the axes to fit data.
func (f *Figure) applyRange() {
	f.p.X.Min, f.p.X.Max = f.opt.X.Min, f.opt.X.Max
	f.p.Y.Min, f.p.Y.Max = f.opt.Y.Min, f.opt.Y.Max
}

// Axes returns the axis ranges as drawn by the last render.
func (f *Figure) Axes() (x, y Range) {
	return Range{Min: f.p.X.Min, Max: f.p.X.Max}, Range{Min: f.p.Y.Min, Max: f.p.Y.Max}
}

// fitAspect adjusts Height until the data area matches the axis spans. The
// padding around the data area depends slightly on tick labels, so the fit
// is refined once.
func (f *Figure) fitAspect() {
	if !f.opt.EqualAspect {
		return
	}
	xs, ys := f.opt.X.Max-f.opt.X.Min, f.opt.Y.Max-f.opt.Y.Min
	if xs <= 0 || ys <= 0 {
		return
	}
	for i := 0; i < 2; i++ {
		w, h := f.dataSize()
		f.opt.Height += w*vg.Length(ys/xs) - h
	}
}

// dataSize measures the data area for the current canvas size.
func (f *Figure) dataSize() (w, h vg.Length) {
	da := f.p.DataCanvas(draw.New(vgimg.New(f.opt.Width, f.opt.Height)))
	return da.Max.X - da.Min.X, da.Max.Y - da.Min.Y
}

// WriteTo renders the figure in the given format (pdf, svg, eps, png, jpg,
// jpeg, tif, tiff).
func (f *Figure) WriteTo(w io.Writer, format string) error {
	f.applyRange()
	f.fitAspect()
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case "pdf", "svg", "eps":
		wt, err := f.p.WriterTo(f.opt.Width, f.opt.Height, format)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		if _, err := wt.WriteTo(w); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		return nil
	case "png", "jpg", "jpeg", "tif", "tiff":
		c := vgimg.NewWith(vgimg.UseWH(f.opt.Width, f.opt.Height), vgimg.UseDPI(f.opt.DPI))
		f.p.Draw(draw.New(c))
		var wt io.WriterTo
		switch format {
		case "png":
			wt = vgimg.PngCanvas{Canvas: c}
		case "jpg", "jpeg":
			wt = vgimg.JpegCanvas{Canvas: c}
		default:
			wt = vgimg.TiffCanvas{Canvas: c}
		}
		if _, err := wt.WriteTo(w); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		return nil
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// Format returns the renderer name for path's extension.
func Format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "pdf", "svg", "eps", "png", "jpg", "jpeg", "tif", "tiff":
		return ext, nil
	case "":
		return "", fmt.Errorf("%s: no extension: %w", path, ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Save renders to path, choosing the format from its extension. The file is
// replaced atomically.
func (f *Figure) Save(path string) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.WriteTo(&buf, format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
