package dimen

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseDimen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "boxflow.core")
	defer teardown()
	//
	d, _, err := ParseDimen("12px")
	if err != nil {
		t.Errorf("(1) %s", err.Error())
	} else if d != 12*PX {
		t.Errorf("(1) expected d to be 12px (%d), is %d", 12*PX, d)
	}
	//
	d, _, err = ParseDimen("0")
	if err != nil {
		t.Errorf("(2) %s", err.Error())
	} else if d != 0 {
		t.Errorf("(2) expected d to be 0, is %d", d)
	}
	//
	d, ispcnt, err := ParseDimen("20%")
	if err != nil {
		t.Errorf("(3) %s", err.Error())
	} else if ispcnt != true {
		t.Errorf("(3) expected percentage-marker to be true, is %v", ispcnt)
	} else if d != 2000 {
		t.Errorf("(3) expected 20%% to be scaled to 2000, is %d", d)
	}
	//
	d, _, err = ParseDimen("1.5px")
	if err != nil {
		t.Errorf("(4) %s", err.Error())
	} else if d != PX+PX/2 {
		t.Errorf("(4) expected 1.5px, is %s", d.PxString())
	}
	//
	if _, _, err = ParseDimen("12em"); err == nil {
		t.Errorf("(5) expected font relative unit to be rejected")
	}
}

func TestPxString(t *testing.T) {
	cases := []struct {
		d    Dimen
		want string
	}{
		{800 * PX, "800"},
		{0, "0"},
		{PX / 2, "0.5"},
		{-20 * PX, "-20"},
		{Infinity, "inf"},
	}
	for i, c := range cases {
		if got := c.d.PxString(); got != c.want {
			t.Errorf("(%d) expected %q, got %q", i, c.want, got)
		}
	}
}

func TestLogicalGeometry(t *testing.T) {
	p := LogicalPoint{Inline: 10 * PX, Block: 5 * PX}
	q := p.Add(LogicalPoint{Inline: 1 * PX, Block: 1 * PX})
	if q.String() != "(11, 6)" {
		t.Errorf("expected (11, 6), got %s", q)
	}
	s := LogicalSize{Inline: 800 * PX}
	if s.String() != "800×0" {
		t.Errorf("expected 800×0, got %s", s)
	}
	sides := LogicalSides{BlockStart: 1, InlineEnd: 2, BlockEnd: 3, InlineStart: 4}
	if sides.InlineSum() != 6 || sides.BlockSum() != 4 {
		t.Errorf("unexpected sums for %v", sides)
	}
	if Clamp(5, 10, 1) != 10 {
		t.Errorf("expected min to win over max")
	}
}
