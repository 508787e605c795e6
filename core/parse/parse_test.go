package parse

import (
	"testing"
)

type person struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestParseStringAs_Primitives(t *testing.T) {
	t.Run("string passthrough", func(t *testing.T) {
		got, err := ParseStringAs[string]("plain text answer")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "plain text answer" {
			t.Errorf("expected passthrough, got %q", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		got, err := ParseStringAs[bool](" true ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Error("expected true")
		}
	})

	t.Run("int", func(t *testing.T) {
		got, err := ParseStringAs[int]("42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	})

	t.Run("float", func(t *testing.T) {
		got, err := ParseStringAs[float64]("3.14")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3.14 {
			t.Errorf("expected 3.14, got %f", got)
		}
	})

	t.Run("invalid int", func(t *testing.T) {
		if _, err := ParseStringAs[int]("forty-two"); err == nil {
			t.Error("expected error for non-numeric input")
		}
	})
}

func TestParseStringAs_Struct(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		got, err := ParseStringAs[person](`{"name":"John","age":30}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "John" || got.Age != 30 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("repairable JSON", func(t *testing.T) {
		got, err := ParseStringAs[person](`{name: 'John', age: 30}`)
		if err != nil {
			t.Fatalf("expected repair to succeed: %v", err)
		}
		if got.Name != "John" || got.Age != 30 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("fenced JSON", func(t *testing.T) {
		got, err := ParseStringAs[person]("```json\n{\"name\":\"Ada\",\"age\":36}\n```")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "Ada" || got.Age != 36 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("map", func(t *testing.T) {
		got, err := ParseStringAs[map[string]any](`{"a": 1}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["a"] != float64(1) {
			t.Errorf("unexpected map: %+v", got)
		}
	})

	t.Run("slice", func(t *testing.T) {
		got, err := ParseStringAs[[]int](`[1, 2, 3]`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 || got[2] != 3 {
			t.Errorf("unexpected slice: %v", got)
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFences(tc.in); got != tc.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
