package params

import (
	"strconv"
	"strings"
	"testing"
)

func TestDispatch_HelpListsEveryCommandSorted(t *testing.T) {
	s := NewStore()
	out, err := s.Dispatch("help", nil)
	if err != nil {
		t.Fatalf("Dispatch(help): %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 3 {
		t.Fatalf("help lines = %v, want 3 command names", lines)
	}
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Errorf("help output not sorted: %v", lines)
		}
	}
}

func TestDispatch_GetReturnsCurrentThreshold(t *testing.T) {
	s := NewStore()
	out, err := s.Dispatch("get", []string{"streamBufSizeThreshold"})
	if err != nil {
		t.Fatalf("Dispatch(get): %v", err)
	}
	if out != strconv.Itoa(s.Config().StreamBufSizeThreshold) {
		t.Errorf("get result = %q, want %q", out, strconv.Itoa(s.Config().StreamBufSizeThreshold))
	}
}

func TestDispatch_GetUnknownParameterErrors(t *testing.T) {
	s := NewStore()
	if _, err := s.Dispatch("get", []string{"bogus"}); err == nil {
		t.Fatal("expected error for an unknown parameter name")
	}
}

func TestDispatch_SetUpdatesStoredConfig(t *testing.T) {
	s := NewStore()
	if _, err := s.Dispatch("set", []string{"streamBufSizeThreshold", "42"}); err != nil {
		t.Fatalf("Dispatch(set): %v", err)
	}
	if s.Config().StreamBufSizeThreshold != 42 {
		t.Errorf("StreamBufSizeThreshold = %d, want 42", s.Config().StreamBufSizeThreshold)
	}
}

func TestDispatch_SetInvalidIntegerErrorsWithoutMutating(t *testing.T) {
	s := NewStore()
	before := s.Config().StreamBufSizeThreshold
	if _, err := s.Dispatch("set", []string{"streamBufSizeThreshold", "not-a-number"}); err == nil {
		t.Fatal("expected error for a non-integer value")
	}
	if s.Config().StreamBufSizeThreshold != before {
		t.Error("a failed set should not mutate the stored config")
	}
}

func TestDispatch_UnknownCommandErrors(t *testing.T) {
	s := NewStore()
	if _, err := s.Dispatch("frobnicate", nil); err == nil {
		t.Fatal("expected error for an unregistered command name")
	}
}

func TestDispatch_WrongArgumentCountErrors(t *testing.T) {
	s := NewStore()
	if _, err := s.Dispatch("get", nil); err == nil {
		t.Fatal("expected error for get with zero arguments")
	}
	if _, err := s.Dispatch("set", []string{"streamBufSizeThreshold"}); err == nil {
		t.Fatal("expected error for set with only one argument")
	}
}
