package retrieval

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "korean question",
			input: "이노커브는 어떤 회사인가요?",
			want:  []string{"이노커브는", "어떤", "회사인가요?"},
		},
		{
			name:  "drops stop words",
			input: "그 프로젝트 및 일정 등",
			want:  []string{"프로젝트", "일정"},
		},
		{
			name:  "drops single character tokens",
			input: "a 수 b 개발",
			want:  []string{"개발"},
		},
		{
			name:  "splits on commas and periods",
			input: "백엔드,프론트엔드.인프라",
			want:  []string{"백엔드", "프론트엔드", "인프라"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only stop words",
			input: "이 그 저",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	// Re-tokenizing the joined token list must reproduce it: separators
	// never survive into a token, and a kept token is never dropped later.
	queries := []string{
		"이노커브는 어떤 회사인가요?",
		"재권이가 맡은 프로젝트, 그리고 일정.",
		"AI 컨설팅 및 backend 개발",
	}
	for _, q := range queries {
		once := Tokenize(q)
		twice := Tokenize(strings.Join(once, " "))
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Tokenize(%q) not idempotent: %v then %v", q, once, twice)
		}
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	input := "재권이가 맡은 프로젝트, 그리고 일정."
	first := Tokenize(input)
	for i := 0; i < 5; i++ {
		if got := Tokenize(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("Tokenize not deterministic: %v vs %v", got, first)
		}
	}
}
