package charts

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-fonts/liberation/liberationsansregular"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/pingcap/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	tilePadding  = 20 // pixels
	captionSize  = 14 // points
	captionSpace = 2 * captionSize
)

var (
	captionFont     *truetype.Font
	captionFontErr  error
	captionFontOnce sync.Once
)

func loadCaptionFont() (*truetype.Font, error) {
	captionFontOnce.Do(func() {
		captionFont, captionFontErr = freetype.ParseFont(liberationsansregular.TTF)
	})
	return captionFont, captionFontErr
}

// Caption turns a chart file name such as "load-cpu_clients.png" into
// "Load Cpu Clients".
func Caption(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

// Tile lays PNG charts out in a grid of the given number of columns, each
// captioned with its name, and writes the mosaic to path.
func Tile(path string, files []string, columns int) error {
	if len(files) == 0 {
		return errors.New("nothing to tile")
	}
	if columns < 1 {
		columns = 1
	}
	f, err := loadCaptionFont()
	if err != nil {
		return errors.Annotate(err, "load caption font")
	}

	images := make([]image.Image, len(files))
	var maxWidth, maxHeight int
	for i, file := range files {
		img, err := openImage(file)
		if err != nil {
			return err
		}
		images[i] = img
		maxWidth = max(maxWidth, img.Bounds().Dx())
		maxHeight = max(maxHeight, img.Bounds().Dy())
	}

	rows := (len(files) + columns - 1) / columns
	cols := min(columns, len(files))
	cellHeight := maxHeight + captionSpace
	tiled := image.NewRGBA(image.Rect(0, 0, maxWidth*cols+tilePadding*(cols+1), cellHeight*rows+tilePadding*(rows+1)))
	draw.Draw(tiled, tiled.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	for i, img := range images {
		row, col := i/columns, i%columns
		sp := image.Point{X: col*maxWidth + (col+1)*tilePadding, Y: row*cellHeight + (row+1)*tilePadding}
		if err = addLabel(tiled, f, sp.X, sp.Y, Caption(files[i])); err != nil {
			return err
		}
		top := sp.Add(image.Point{Y: captionSpace})
		draw.Draw(tiled, image.Rectangle{Min: top, Max: top.Add(img.Bounds().Size())}, img, img.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, tiled); err != nil {
		return errors.Annotatef(err, "encode %s", path)
	}
	return writeAtomic(path, &buf)
}

func openImage(file string) (image.Image, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer fh.Close()
	img, err := png.Decode(fh)
	if err != nil {
		return nil, errors.Annotatef(err, "decode %s", file)
	}
	return img, nil
}

func addLabel(img *image.RGBA, f *truetype.Font, x, y int, label string) error {
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(captionSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.Black))

	// y is the top of the text; freetype wants the baseline
	pt := freetype.Pt(x, y+int(c.PointToFixed(captionSize)>>6))
	if _, err := c.DrawString(label, pt); err != nil {
		return errors.Annotatef(err, "draw caption %q", label)
	}
	return nil
}
