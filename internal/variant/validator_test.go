package variant

import (
	"testing"

	"github.com/abhisek/examgen/internal/question"
)

func TestStructuralValidator(t *testing.T) {
	v := &StructuralValidator{}
	auto := question.Template{Format: question.FormatMultipleChoice, AutoAlternatives: true, Program: "x = choice([1])", AlternativeCount: 3}
	literal := question.Template{Format: question.FormatMultipleChoice, Alternatives: []string{"a", "b", "", "c"}}

	tests := []struct {
		name    string
		variant Variant
		tpl     question.Template
		wantErr bool
	}{
		{
			name:    "valid",
			variant: Variant{Format: question.FormatMultipleChoice, Body: "q", Alternatives: []string{"a", "b", "c"}},
			tpl:     auto,
		},
		{
			name:    "empty body",
			variant: Variant{Format: question.FormatMultipleChoice, Body: " ", Alternatives: []string{"a", "b", "c"}},
			tpl:     auto,
			wantErr: true,
		},
		{
			name:    "wrong count",
			variant: Variant{Format: question.FormatMultipleChoice, Body: "q", Alternatives: []string{"a", "b"}},
			tpl:     auto,
			wantErr: true,
		},
		{
			name:    "empty alternative",
			variant: Variant{Format: question.FormatMultipleChoice, Body: "q", Alternatives: []string{"a", "", "c"}},
			tpl:     auto,
			wantErr: true,
		},
		{
			name:    "single alternative",
			variant: Variant{Format: question.FormatMultipleChoice, Body: "q", Alternatives: []string{"a"}},
			tpl:     question.Template{Format: question.FormatMultipleChoice},
			wantErr: true,
		},
		{
			name:    "manual skips blank literals",
			variant: Variant{Format: question.FormatMultipleChoice, Body: "q", Alternatives: []string{"a", "b", "c"}},
			tpl:     literal,
		},
		{
			name:    "manual count differs from literals",
			variant: Variant{Format: question.FormatMultipleChoice, Body: "q", Alternatives: []string{"a", "b", "c", "d"}},
			tpl:     literal,
			wantErr: true,
		},
		{
			name:    "true false with alternatives",
			variant: Variant{Format: question.FormatTrueFalse, Body: "q", Alternatives: []string{"a"}},
			tpl:     question.Template{Format: question.FormatTrueFalse},
			wantErr: true,
		},
		{
			name:    "open",
			variant: Variant{Format: question.FormatOpen, Body: "q"},
			tpl:     question.Template{Format: question.FormatOpen},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.variant, tt.tpl)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestContainmentValidator(t *testing.T) {
	v := &ContainmentValidator{}
	auto := question.Template{Format: question.FormatMultipleChoice, AutoAlternatives: true, Program: "x = choice([1])"}

	ok := &Variant{Format: question.FormatMultipleChoice, Correct: "b", CorrectIndex: 1, Alternatives: []string{"a", "b", "c"}}
	if err := v.Validate(ok, auto); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	misplaced := &Variant{Format: question.FormatMultipleChoice, Correct: "b", CorrectIndex: 0, Alternatives: []string{"a", "b", "c"}}
	if err := v.Validate(misplaced, auto); err == nil {
		t.Error("expected error for misplaced correct answer")
	}

	twice := &Variant{Format: question.FormatMultipleChoice, Correct: "b", CorrectIndex: 1, Alternatives: []string{"b", "b", "c"}}
	err := v.Validate(twice, auto)
	if err == nil {
		t.Fatal("expected error for duplicated correct answer")
	}
	if !err.Retryable {
		t.Error("duplicated correct answer should be retryable")
	}

	dup := &Variant{Format: question.FormatMultipleChoice, Correct: "a", CorrectIndex: 0, Alternatives: []string{"a", "c", "c"}}
	if err := v.Validate(dup, auto); err == nil {
		t.Error("expected error for duplicate distractors")
	}
	if err := v.Validate(dup, question.Template{Format: question.FormatMultipleChoice}); err != nil {
		t.Errorf("manual alternatives may repeat distractors: %v", err)
	}
}
