package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/M4dhxv/Financial-Analysis/internal/dataset"
	"github.com/M4dhxv/Financial-Analysis/internal/schema"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "no time column",
			err:      &schema.DetectionError{Kind: schema.KindNoTimeColumnFound, Reason: "no column reached period parse ratio 0.90"},
			wantCode: "SCH001",
		},
		{
			name:     "no measures",
			err:      fmt.Errorf("analyze: %w", &schema.DetectionError{Kind: schema.KindNoMeasuresFound, Reason: "x"}),
			wantCode: "SCH002",
		},
		{
			name:     "invalid thresholds",
			err:      errors.New("invalid thresholds:\n  - workers must be at least 1"),
			wantCode: "SCH003",
		},
		{
			name:     "file too large",
			err:      errors.New("file too large: 200MB exceeds limit"),
			wantCode: "FILE001",
		},
		{
			name:     "bad csv",
			err:      errors.New("invalid csv at line 3: extraneous quote"),
			wantCode: "FILE002",
		},
		{
			name:     "empty file",
			err:      dataset.ErrEmptyInput,
			wantCode: "FILE005",
		},
		{
			name:     "header only",
			err:      dataset.ErrNoDataRows,
			wantCode: "FILE005",
		},
		{
			name:     "duplicate header",
			err:      errors.New(`invalid table: table "x": duplicate column "A" at positions 1 and 2`),
			wantCode: "FILE006",
		},
		{
			name:     "busy",
			err:      ErrTooManyAnalyses,
			wantCode: "ANL001",
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("analyze: %w", context.DeadlineExceeded),
			wantCode: "ANL003",
		},
		{
			name:     "run not found",
			err:      fmt.Errorf("get run abc: %w", ErrRunNotFound),
			wantCode: "RUN001",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("EMPTY FILE"),
			wantCode: "FILE005",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned an empty message")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyAnalyses)

	expected := "System is busy running other analyses (Code: ANL001). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", errors.New("no measure columns found"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
