package synthesizer

import "testing"

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare array",
			input: `[{"a":1}]`,
			want:  `[{"a":1}]`,
		},
		{
			name:  "array wrapped in prose",
			input: "Here are the tasks:\n[{\"a\":1},{\"b\":2}]\nLet me know if you need more.",
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "markdown fenced array",
			input: "```json\n[{\"a\":1}]\n```",
			want:  `[{"a":1}]`,
		},
		{
			name:  "nested arrays",
			input: `[{"actions":["call","email"]}]`,
			want:  `[{"actions":["call","email"]}]`,
		},
		{
			name:  "brackets inside strings",
			input: `[{"title":"Follow up [urgent]"}]`,
			want:  `[{"title":"Follow up [urgent]"}]`,
		},
		{
			name:  "escaped quotes inside strings",
			input: `[{"title":"He said \"pay up]\" twice"}]`,
			want:  `[{"title":"He said \"pay up]\" twice"}]`,
		},
		{
			name:  "picks first array of several",
			input: `[1,2] trailing [3,4]`,
			want:  `[1,2]`,
		},
		{
			name:    "no array",
			input:   `{"not":"an array"}`,
			wantErr: true,
		},
		{
			name:    "unterminated array",
			input:   `[{"a":1}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
