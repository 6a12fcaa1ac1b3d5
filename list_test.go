package mdrtf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const bullet = `\cf5  \u8226?  \cf1 `

func TestOrderedListRenumbers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{
			name: "repeated numbers",
			in:   []string{"5. a", "5. b"},
			want: para(`\cf5 1.  \cf1 a`) + para(`\cf5 2.  \cf1 b`),
		},
		{
			name: "paren delimiter",
			in:   []string{"1) a", "7) b"},
			want: para(`\cf5 1)  \cf1 a`) + para(`\cf5 2)  \cf1 b`),
		},
		{
			name: "lone item stays plain",
			in:   []string{"3. only"},
			want: para("3. only"),
		},
		{
			name: "blank line keeps list open",
			in:   []string{"1. a", "2. b", "", "9. c"},
			want: para(`\cf5 1.  \cf1 a`) + para(`\cf5 2.  \cf1 b`) + para("") + para(`\cf5 3.  \cf1 c`),
		},
		{
			name: "text restarts numbering",
			in:   []string{"4. a", "4. b", "text", "4. c", "4. d"},
			want: para(`\cf5 1.  \cf1 a`) + para(`\cf5 2.  \cf1 b`) + para("text") +
				para(`\cf5 1.  \cf1 c`) + para(`\cf5 2.  \cf1 d`),
		},
		{
			name: "wide source marker",
			in:   []string{"100. a", "100. b"},
			want: para(`\cf5   1. \cf1 a`) + para(`\cf5   2. \cf1 b`),
		},
		{
			name: "styled item",
			in:   []string{"1. **a**", "2. b"},
			want: para(`\cf5 1.  \cf1 \b a\b0 `) + para(`\cf5 2.  \cf1 b`),
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := convertBody(t, tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderedListsDisabled(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"5. a", "5. b"}, WithOrderedLists(false))
	if want := para("5. a") + para("5. b"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUnorderedList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{
			name: "dash",
			in:   []string{"- a", "- b"},
			want: para(bullet+"a") + para(bullet+"b"),
		},
		{
			name: "star",
			in:   []string{"* a", "* *b*"},
			want: para(bullet+"a") + para(bullet+`\i b\i0 `),
		},
		{
			name: "plus",
			in:   []string{"+ a", "+ b", "after"},
			want: para(bullet+"a") + para(bullet+"b") + para("after"),
		},
		{
			name: "lone item stays plain",
			in:   []string{"- a"},
			want: para("- a"),
		},
		{
			name: "lone star item is literal",
			in:   []string{"* a"},
			want: para(`\'2a a`),
		},
		{
			name: "mixed markers do not start a list",
			in:   []string{"- a", "+ b"},
			want: para("- a") + para("+ b"),
		},
		{
			name: "open list accepts a different marker",
			in:   []string{"- a", "- b", "+ c"},
			want: para(bullet+"a") + para(bullet+"b") + para(bullet+"c"),
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := convertBody(t, tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnorderedListsDisabled(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"- a", "- b"}, WithUnorderedLists(false))
	if want := para("- a") + para("- b"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBulletDoesNotResetOrderedNumbering(t *testing.T) {
	t.Parallel()
	got := convertBody(t, []string{"1. a", "1. b", "- x", "- y", "1. c"})
	want := para(`\cf5 1.  \cf1 a`) + para(`\cf5 2.  \cf1 b`) +
		para(bullet+"x") + para(bullet+"y") + para(`\cf5 3.  \cf1 c`)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}
