package mdrtf

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// tableRTF builds the expected rows for cell boundaries edges.
func tableRTF(edges []int, rows ...[]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString("\\trowd\\trgaph150\n")
		for _, x := range edges {
			b.WriteString(`\cellx` + strconv.Itoa(x) + "\n")
		}
		for _, cell := range row {
			b.WriteString(cell + "\\intbl\\cell\n")
		}
		b.WriteString("\\row \n")
	}
	b.WriteString(`\pard`)
	return b.String()
}

func TestTableDefaultWidths(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"| A | B |", "|---|---|", "| 1 | 2 |", "after"})
	want := para(tableRTF([]int{2000, 4000}, []string{"A", "B"}, []string{"1", "2"})) + para("after")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestTableNeedsThreeRows(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"| a |", "| b |"})
	if want := para("| a |") + para("| b |"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestTableColumnWidthsAreSticky(t *testing.T) {
	t.Parallel()
	lines := []string{
		"<!---CW:2000:4000:-->",
		"| A | B |",
		"|---|---|",
		"| 1 | 2 |",
		"",
		"| C | D |",
		"|---|---|",
		"| 3 | 4 |",
	}
	got := convertBody(t, lines)
	edges := []int{2000, 6000}
	want := para(tableRTF(edges, []string{"A", "B"}, []string{"1", "2"})) +
		para("") +
		para(tableRTF(edges, []string{"C", "D"}, []string{"3", "4"}))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestTableTooFewWidthsFallsBack(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"<!---CW:1500:-->", "| A | B |", "|-|-|", "| 1 | 2 |"})
	if !strings.Contains(got, "\\cellx2000\n\\cellx4000\n") {
		t.Fatalf("expected default boundaries, got %q", got)
	}
}

func TestTableRowsFitHeader(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"| A | B |", "|---|---|", "| 1 |", "| 2 | 3 | 4 |"})
	want := para(tableRTF([]int{2000, 4000},
		[]string{"A", "B"},
		[]string{"1", ""},
		[]string{"2", "3"},
	))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestTableCellsAreRendered(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{
		"| Name | Link |",
		"|---|---|",
		"| **{x}** \\| y | [go](https://go.dev) |",
	})
	want := para(tableRTF([]int{2000, 4000},
		[]string{"Name", "Link"},
		[]string{
			`\b \'7bx\'7d\b0  \'7c y`,
			`{\field{\*\fldinst{HYPERLINK "https://go.dev"}}{\fldrslt{\ul\cf6 go}}}\cf1 `,
		},
	))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitRow(t *testing.T) {
	t.Parallel()
	got := splitRow("  | a |  b | c  |")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("cells (-want +got):\n%s", diff)
	}
}

func TestParseColumnWidths(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []int
	}{
		{"2000:4000:-->", []int{2000, 4000}},
		{" 100 : x : 300 -->", []int{100, 300}},
		{"-->", nil},
		{"0:-5:7-->", []int{7}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, parseColumnWidths(tc.in)); diff != "" {
			t.Fatalf("parseColumnWidths(%q) (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestTableHeaderImageResolvedOnce(t *testing.T) {
	t.Parallel()
	calls := 0
	resolver := ImageResolverFunc(func(context.Context, string) ([]byte, error) {
		calls++
		return nil, errors.New("offline")
	})
	convertBody(t, []string{"| ![a](a.png) | b |", "|---|---|", "| 1 | 2 |"}, WithImageResolver(resolver))
	if calls != 1 {
		t.Fatalf("resolver called %d times for one image", calls)
	}
}
