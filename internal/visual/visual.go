package visual

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrSizeMismatch = errors.New("screenshot size differs from baseline")

type MismatchError struct {
	Name          string
	DiffPixels    int
	MaxDiffPixels int
	ActualPath    string
	DiffPath      string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("screenshot %s differs from baseline in %d pixels (allowed %d), see %s",
		e.Name, e.DiffPixels, e.MaxDiffPixels, e.DiffPath)
}

type Comparator struct {
	Fs            afero.Fs
	Dir           string
	MaxDiffPixels int
	// Threshold is the tolerated per-channel change in [0, 1].
	Threshold float64
}

type Result struct {
	Baseline   string
	Created    bool
	DiffPixels int
	Pixels     int
}

func (c Comparator) path(name, suffix string) string {
	return filepath.Join(c.Dir, name+suffix+".png")
}

// Compare checks actual, a PNG, against the baseline stored under name.
func (c Comparator) Compare(name string, actual []byte) (Result, error) {
	res := Result{Baseline: c.path(name, "")}

	got, err := png.Decode(bytes.NewReader(actual))
	if err != nil {
		return res, fmt.Errorf("decode screenshot %s: %w", name, err)
	}
	res.Pixels = got.Bounds().Dx() * got.Bounds().Dy()

	stored, err := afero.ReadFile(c.Fs, res.Baseline)
	if errors.Is(err, afero.ErrFileNotFound) {
		if err := c.write(res.Baseline, actual); err != nil {
			return res, err
		}
		res.Created = true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read baseline %s: %w", res.Baseline, err)
	}

	want, err := png.Decode(bytes.NewReader(stored))
	if err != nil {
		return res, fmt.Errorf("decode baseline %s: %w", res.Baseline, err)
	}

	if got.Bounds().Size() != want.Bounds().Size() {
		if err := c.write(c.path(name, "-actual"), actual); err != nil {
			return res, err
		}
		return res, fmt.Errorf("%w: %s is %v, baseline %v",
			ErrSizeMismatch, name, got.Bounds().Size(), want.Bounds().Size())
	}

	diff, n := c.diff(want, got)
	res.DiffPixels = n
	if n <= c.MaxDiffPixels {
		return res, nil
	}

	mismatch := &MismatchError{
		Name:          name,
		DiffPixels:    n,
		MaxDiffPixels: c.MaxDiffPixels,
		ActualPath:    c.path(name, "-actual"),
		DiffPath:      c.path(name, "-diff"),
	}
	if err := c.write(mismatch.ActualPath, actual); err != nil {
		return res, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, diff); err != nil {
		return res, fmt.Errorf("encode diff for %s: %w", name, err)
	}
	if err := c.write(mismatch.DiffPath, buf.Bytes()); err != nil {
		return res, err
	}

	return res, mismatch
}

var (
	diffColor = color.RGBA{R: 255, A: 255}
	fadeColor = color.Gray{Y: 230}
)

// diff counts differing pixels and renders them red over a faded copy of
// the baseline.
func (c Comparator) diff(want, got image.Image) (*image.RGBA, int) {
	wb, gb := want.Bounds(), got.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, wb.Dx(), wb.Dy()))
	limit := c.Threshold * 255

	n := 0
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			w := color.RGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y)).(color.RGBA)
			g := color.RGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y)).(color.RGBA)

			if channelDelta(w, g) > limit {
				n++
				out.Set(x, y, diffColor)
				continue
			}

			gray := color.GrayModel.Convert(w).(color.Gray)
			if gray.Y < fadeColor.Y {
				gray.Y = fadeColor.Y - (fadeColor.Y-gray.Y)/4
			}
			out.Set(x, y, gray)
		}
	}
	return out, n
}

func channelDelta(a, b color.RGBA) float64 {
	d := max(absDiff(a.R, b.R), absDiff(a.G, b.G), absDiff(a.B, b.B), absDiff(a.A, b.A))
	return float64(d)
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func (c Comparator) write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if exists, _ := afero.DirExists(c.Fs, dir); !exists {
		if err := c.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(c.Fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}
