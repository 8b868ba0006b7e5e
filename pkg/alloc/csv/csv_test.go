package csv

import (
	"strings"
	"testing"

	"github.com/matzehuels/minimalloc/pkg/alloc/buffer"
	"github.com/matzehuels/minimalloc/pkg/alloc/interval"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	pkgerrors "github.com/matzehuels/minimalloc/pkg/errors"
)

func TestToCSVMinimal(t *testing.T) {
	p := problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 4),
		},
		Capacity: 10,
	}
	got := ToCSV(p, nil, false)
	want := "id,lower,upper,size\na,0,5,4\n"
	if got != want {
		t.Errorf("ToCSV = %q, want %q", got, want)
	}
}

func TestToCSVOldFormatShiftsUpperByOne(t *testing.T) {
	p := problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 4),
		},
		Capacity: 10,
	}
	got := ToCSV(p, nil, true)
	want := "id,start,end,size\na,0,4,4\n"
	if got != want {
		t.Errorf("ToCSV(oldFormat) = %q, want %q", got, want)
	}
}

func TestToCSVIncludesOptionalColumnsOnlyWhenUsed(t *testing.T) {
	p := problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 4),
		},
		Capacity: 10,
	}
	got := ToCSV(p, nil, false)
	if strings.Contains(got, "alignment") || strings.Contains(got, "hint") || strings.Contains(got, "gaps") {
		t.Errorf("ToCSV should omit unused optional columns, got %q", got)
	}
}

func TestToCSVWithSolution(t *testing.T) {
	p := problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 4),
		},
		Capacity: 10,
	}
	sol := problem.NewSolution(p, []int64{2})
	got := ToCSV(p, &sol, false)
	want := "id,lower,upper,size,offset\na,0,5,4,2\n"
	if got != want {
		t.Errorf("ToCSV with solution = %q, want %q", got, want)
	}
}

func TestToCSVGapsFormat(t *testing.T) {
	w := interval.New(0, 1)
	b := buffer.New("a", interval.New(0, 10), 2)
	b.Gaps = []buffer.Gap{
		{Lifespan: interval.New(2, 4)},
		{Lifespan: interval.New(6, 8), Window: &w},
	}
	p := problem.Problem{Buffers: []buffer.Buffer{b}, Capacity: 10}
	got := ToCSV(p, nil, false)
	if !strings.Contains(got, "2-4 6-8@0:1") {
		t.Errorf("ToCSV gaps = %q, want to contain %q", got, "2-4 6-8@0:1")
	}
}

func TestFromCSVRoundTrip(t *testing.T) {
	input := "id,lower,upper,size,alignment,hint,gaps\n" +
		"a,0,10,4,2,5,2-4 6-8@0:1\n"
	p, err := FromCSV(input)
	if err != nil {
		t.Fatalf("FromCSV error: %v", err)
	}
	if len(p.Buffers) != 1 {
		t.Fatalf("len(Buffers) = %d, want 1", len(p.Buffers))
	}
	b := p.Buffers[0]
	if b.ID != "a" || b.Lifespan != interval.New(0, 10) || b.Size != 4 || b.Alignment != 2 {
		t.Errorf("buffer = %+v, mismatched basic fields", b)
	}
	if b.Hint == nil || *b.Hint != 5 {
		t.Errorf("Hint = %v, want 5", b.Hint)
	}
	if len(b.Gaps) != 2 {
		t.Fatalf("len(Gaps) = %d, want 2", len(b.Gaps))
	}
	if b.Gaps[0].Lifespan != interval.New(2, 4) || b.Gaps[0].Window != nil {
		t.Errorf("Gaps[0] = %+v, want [2,4) with no window", b.Gaps[0])
	}
	if b.Gaps[1].Lifespan != interval.New(6, 8) || b.Gaps[1].Window == nil || *b.Gaps[1].Window != interval.New(0, 1) {
		t.Errorf("Gaps[1] = %+v, want [6,8)@[0,1)", b.Gaps[1])
	}
}

func TestFromCSVOldFormatColumns(t *testing.T) {
	input := "buffer_id,start,end,size\na,0,4,4\n"
	p, err := FromCSV(input)
	if err != nil {
		t.Fatalf("FromCSV error: %v", err)
	}
	if p.Buffers[0].Lifespan != interval.New(0, 5) {
		t.Errorf("Lifespan = %v, want [0,5) (end is inclusive, +1 adjustment)", p.Buffers[0].Lifespan)
	}
}

func TestFromCSVBeginColumn(t *testing.T) {
	input := "buffer,begin,upper,size\na,0,5,4\n"
	p, err := FromCSV(input)
	if err != nil {
		t.Fatalf("FromCSV error: %v", err)
	}
	if p.Buffers[0].Lifespan != interval.New(0, 5) {
		t.Errorf("Lifespan = %v, want [0,5)", p.Buffers[0].Lifespan)
	}
}

func TestFromCSVOffsetColumnBecomesFixedOffset(t *testing.T) {
	input := "id,lower,upper,size,offset\na,0,5,4,2\n"
	p, err := FromCSV(input)
	if err != nil {
		t.Fatalf("FromCSV error: %v", err)
	}
	if p.Buffers[0].Offset == nil || *p.Buffers[0].Offset != 2 {
		t.Errorf("Offset = %v, want fixed at 2", p.Buffers[0].Offset)
	}
}

func TestFromCSVMissingRequiredColumn(t *testing.T) {
	input := "id,lower,size\na,0,4\n"
	_, err := FromCSV(input)
	if pkgerrors.GetCode(err) != pkgerrors.CodeNotFound {
		t.Errorf("error = %v, want CodeNotFound", err)
	}
}

func TestFromCSVMalformedInteger(t *testing.T) {
	input := "id,lower,upper,size\na,0,five,4\n"
	_, err := FromCSV(input)
	if pkgerrors.GetCode(err) != pkgerrors.CodeInvalidArgument {
		t.Errorf("error = %v, want CodeInvalidArgument", err)
	}
}

func TestFromCSVDuplicateColumns(t *testing.T) {
	input := "id,lower,upper,size,size\na,0,5,4,4\n"
	_, err := FromCSV(input)
	if pkgerrors.GetCode(err) != pkgerrors.CodeInvalidArgument {
		t.Errorf("error = %v, want CodeInvalidArgument", err)
	}
}

func TestRoundTripThroughBothFormats(t *testing.T) {
	p := problem.Problem{
		Buffers: []buffer.Buffer{
			buffer.New("a", interval.New(0, 5), 4),
			buffer.New("b", interval.New(2, 8), 3),
		},
		Capacity: 10,
	}
	for _, old := range []bool{false, true} {
		csvText := ToCSV(p, nil, old)
		got, err := FromCSV(csvText)
		if err != nil {
			t.Fatalf("FromCSV(ToCSV(..., old=%v)) error: %v", old, err)
		}
		for i, b := range got.Buffers {
			if b.ID != p.Buffers[i].ID || b.Lifespan != p.Buffers[i].Lifespan || b.Size != p.Buffers[i].Size {
				t.Errorf("old=%v: buffer %d = %+v, want %+v", old, i, b, p.Buffers[i])
			}
		}
	}
}
