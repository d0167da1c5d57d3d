package resources

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFile(t *testing.T, w, h int) *fstest.MapFile {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return &fstest.MapFile{Data: buf.Bytes()}
}

func TestResolveImage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	fsys := fstest.MapFS{"images/fox.png": pngFile(t, 40, 30)}
	for _, name := range []string{"images/fox.png", "/images/fox.png", "file://images/fox.png"} {
		size, err := ResolveImage(fsys, name).Size(context.Background())
		require.NoError(t, err, name)
		assert.Equal(t, dimen.LogicalSize{Inline: 40 * dimen.PX, Block: 30 * dimen.PX}, size, name)
	}
}

func TestImageNotFound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	fsys := fstest.MapFS{"broken.png": &fstest.MapFile{Data: []byte("no png")}}
	_, err := ResolveImage(fsys, "missing.png").Size(context.Background())
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = ResolveImage(fsys, "https://example.com/fox.png").Size(context.Background())
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = ResolveImage(fsys, "../outside.png").Size(context.Background())
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = ResolveImage(fsys, "broken.png").Size(context.Background())
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestAwaitCanceled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := imageLoader{ch: make(chan sizePlusErr)}
	_, err := blocked.Size(ctx)
	assert.Equal(t, core.ECONNECTION, core.Code(err))
}
