package resources

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"path"
	"strings"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
)

// NotFound returns an application error for a missing resource.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "image not found: %s", res)
}

// --- Images ---------------------------------------------------------------

// ImagePromise is the pending result of resolving an image.
type ImagePromise interface {
	// Size blocks until the image header has been read and returns the
	// intrinsic size of the image, one pixel per CSS px.
	Size(ctx context.Context) (dimen.LogicalSize, error)
}

type sizePlusErr struct {
	size dimen.LogicalSize
	err  error
}

type imageLoader struct {
	ch <-chan sizePlusErr
}

func (loader imageLoader) Size(ctx context.Context) (dimen.LogicalSize, error) {
	select {
	case <-ctx.Done():
		return dimen.LogicalSize{}, core.Canceled(ctx)
	case r := <-loader.ch:
		return r.size, r.err
	}
}

// ResolveImage starts reading the header of image name from fsys. Only the
// image configuration is decoded, pixels are not loaded. PNG, JPEG and GIF
// images are supported. URLs with a scheme other than "file" cannot be
// resolved.
//
// The returned promise may be awaited once.
func ResolveImage(fsys fs.FS, name string) ImagePromise {
	ch := make(chan sizePlusErr, 1)
	go func(ch chan<- sizePlusErr) {
		defer close(ch)
		ch <- decodeSize(fsys, name)
	}(ch)
	return imageLoader{ch: ch}
}

func decodeSize(fsys fs.FS, name string) (result sizePlusErr) {
	fname, ok := localName(name)
	if !ok || fsys == nil {
		result.err = NotFound(name)
		return
	}
	file, err := fsys.Open(fname)
	if err != nil {
		result.err = core.WrapError(err, core.EMISSING, "image not found: %s", name)
		return
	}
	defer file.Close()
	config, format, err := image.DecodeConfig(file)
	if err != nil {
		result.err = core.WrapError(err, core.EINVALID, "cannot read image %s", name)
		return
	}
	tracer().Debugf("image %s: %s %d×%d", name, format, config.Width, config.Height)
	result.size = dimen.LogicalSize{
		Inline: dimen.Dimen(config.Width) * dimen.PX,
		Block:  dimen.Dimen(config.Height) * dimen.PX,
	}
	return
}

// localName turns an image reference into a path valid for io/fs.
func localName(name string) (string, bool) {
	name = strings.TrimPrefix(name, "file://")
	if strings.Contains(name, "://") || strings.HasPrefix(name, "data:") {
		return "", false
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	return name, fs.ValidPath(name)
}
