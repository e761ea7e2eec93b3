package agent

import "testing"

func TestUnmarshalArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want AddItemArgs
	}{
		{"well formed", `{"item_name":"beef taco","quantity":2}`, AddItemArgs{"beef taco", 2}},
		{"single quotes", `{'item_name': 'beef taco'}`, AddItemArgs{"beef taco", 0}},
		{"trailing comma", `{"item_name":"water",}`, AddItemArgs{"water", 0}},
		{"unquoted keys", `{item_name: "water", quantity: 3}`, AddItemArgs{"water", 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AddItemArgs
			if err := unmarshalArgs([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshalArgs: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalArgsEmpty(t *testing.T) {
	var got AddItemArgs
	if err := unmarshalArgs(nil, &got); err != nil {
		t.Fatalf("unmarshalArgs(nil): %v", err)
	}
	if got != (AddItemArgs{}) {
		t.Fatalf("got %+v, want zero", got)
	}
}

func TestUnmarshalArgsTypeErrorNotRepaired(t *testing.T) {
	// A type mismatch is not a syntax problem; repair must not mask it.
	var got AddItemArgs
	if err := unmarshalArgs([]byte(`{"item_name": 42}`), &got); err == nil {
		t.Fatal("expected error for mistyped field")
	}
}
