// errors_test.go - unit tests for the typed error kind

package synthcore

import (
	"errors"
	"testing"
)

func TestErrorf_MessageIncludesKindAndFormat(t *testing.T) {
	err := Errorf(KindNotFound, "asset %q missing", "kick.wav")
	want := `NotFound: asset "kick.wav" missing`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_SupportsErrorsAs(t *testing.T) {
	var target *Error
	err := error(Errorf(KindResourceExhausted, "pool exhausted"))
	if !errors.As(err, &target) {
		t.Fatal("errors.As failed to match *Error")
	}
	if target.Kind != KindResourceExhausted {
		t.Errorf("Kind = %v, want KindResourceExhausted", target.Kind)
	}
}

func TestKind_StringCoversAllValues(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindInvalidArgument, "InvalidArgument"},
		{KindNotFound, "NotFound"},
		{KindCorruptCache, "CorruptCache"},
		{KindDecodeFailure, "DecodeFailure"},
		{KindResourceExhausted, "ResourceExhausted"},
		{Kind(99), "Unknown"},
	}
	for _, tc := range tests {
		if got := tc.k.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.k, got, tc.want)
		}
	}
}
