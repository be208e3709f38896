package dataset

import (
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{
			name:     "plain rows",
			input:    "a,b,c\nd,e,f\n",
			expected: [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:     "trailing row without newline",
			input:    "a,b\nc,d",
			expected: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:     "quoted comma",
			input:    "\"a,b\",c\n",
			expected: [][]string{{"a,b", "c"}},
		},
		{
			name:     "escaped quote inside quoted field",
			input:    "\"say \"\"hi\"\"\",x\n",
			expected: [][]string{{`say "hi"`, "x"}},
		},
		{
			name:     "newline inside quoted field",
			input:    "\"line1\nline2\",x\n",
			expected: [][]string{{"line1\nline2", "x"}},
		},
		{
			name:     "CR stripped outside quotes",
			input:    "a,b\r\nc,d\r\n",
			expected: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:     "CR stripped inside quotes too",
			input:    "\"a\rb\",c\n",
			expected: [][]string{{"ab", "c"}},
		},
		{
			name:     "unterminated quote consumes the rest",
			input:    "a,\"no end\nstill going",
			expected: [][]string{{"a", "no end\nstill going"}},
		},
		{
			name:     "empty row emitted for blank line",
			input:    "a\n\nb\n",
			expected: [][]string{{"a"}, {""}, {"b"}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "quoted field at row end",
			input:    "a,\"b\"\nc,d\n",
			expected: [][]string{{"a", "b"}, {"c", "d"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Decode(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

// Decoding an encoded row set must yield the same rows, especially with
// quote/comma/newline-containing fields.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	rowSets := [][][]string{
		{{"a", "b"}, {"c", "d"}},
		{{"has,comma", "has\"quote", "has\nnewline"}},
		{{"", "", ""}},
		{{"mixed, \"all\"\nthree", "plain"}},
	}

	for _, rows := range rowSets {
		got := Decode(Encode(rows))
		if !reflect.DeepEqual(got, rows) {
			t.Errorf("round trip of %v produced %v", rows, got)
		}
	}
}
