package config

import "testing"

func TestDefault_MatchesDocumentedBaseline(t *testing.T) {
	if got := Default().StreamBufSizeThreshold; got != 700_000 {
		t.Errorf("Default().StreamBufSizeThreshold = %d, want 700000", got)
	}
}

func TestLoad_ValidXMLOverridesRecognizedProperty(t *testing.T) {
	raw := []byte(`<config><property name="streamBufSizeThreshold">12345</property></config>`)
	cfg, warnings, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if cfg.StreamBufSizeThreshold != 12345 {
		t.Errorf("StreamBufSizeThreshold = %d, want 12345", cfg.StreamBufSizeThreshold)
	}
}

func TestLoad_UnknownPropertyWarnsAndIsIgnored(t *testing.T) {
	raw := []byte(`<config><property name="bogusSetting">x</property></config>`)
	cfg, warnings, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if cfg.StreamBufSizeThreshold != Default().StreamBufSizeThreshold {
		t.Error("unknown property should not change any recognized field")
	}
}

func TestLoad_InvalidIntegerWarnsAndKeepsDefault(t *testing.T) {
	raw := []byte(`<config><property name="streamBufSizeThreshold">not-a-number</property></config>`)
	cfg, warnings, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if cfg.StreamBufSizeThreshold != Default().StreamBufSizeThreshold {
		t.Error("invalid integer should leave the default value untouched")
	}
}

func TestLoad_MalformedXMLReturnsError(t *testing.T) {
	if _, _, err := Load([]byte(`<config><property`)); err == nil {
		t.Fatal("expected a parse error for malformed XML")
	}
}
