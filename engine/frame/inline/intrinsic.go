package inline

import (
	"context"

	"github.com/npillmayer/boxflow/core"
	"github.com/npillmayer/boxflow/core/dimen"
)

// IntrinsicSizes returns the min-content and max-content inline sizes of a
// paragraph. Min-content is the widest unbreakable segment, max-content the
// widest run of text between forced breaks. Hanging spaces do not count.
// Floats contribute their own intrinsic sizes.
func IntrinsicSizes(ctx context.Context, env *Env, p *Paragraph) (min, max dimen.Dimen, err error) {
	if p == nil || env == nil {
		return 0, 0, core.Error(core.EINVALID, "intrinsic sizing needs a paragraph")
	}
	m := newMeasurer(ctx, env, p)
	m.intrinsic = true
	segs := m.segments()
	m.minContent = true
	for _, s := range segs {
		w, hang := m.segmentWidth(s.Start, s.End)
		min = dimen.Max(min, w-hang)
	}
	m.minContent = false
	var line, hang dimen.Dimen
	for _, s := range segs {
		var w dimen.Dimen
		w, hang = m.segmentWidth(s.Start, s.End)
		line += w
		if s.Mandatory {
			max = dimen.Max(max, line-hang)
			line, hang = 0, 0
		}
	}
	max = dimen.Max(max, line-hang)
	if env.Atomics != nil {
		for _, it := range p.Items {
			if it.Kind != FloatItem {
				continue
			}
			fmin, fmax, ferr := env.Atomics.IntrinsicSizes(ctx, it.Node)
			if ferr != nil {
				return 0, 0, ferr
			}
			min, max = dimen.Max(min, fmin), dimen.Max(max, fmax)
		}
	}
	max = dimen.Max(min, max)
	tracer().Debugf("intrinsic sizes of paragraph #%d: %s…%s", p.Root, min.PxString(), max.PxString())
	return min, max, m.err
}
