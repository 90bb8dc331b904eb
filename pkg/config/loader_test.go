package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"github.com/epithet-ssh/tlv/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadFromFile_Codec_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codec.yaml", `
max_value_size: 4096
stop_at_end_of_contents: true
min_length_octets: 2
`)

	cfg, err := config.LoadFromFile[config.Codec](path)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.MaxValueSize == nil || *cfg.MaxValueSize != 4096 {
		t.Errorf("unexpected max_value_size: %v", cfg.MaxValueSize)
	}
	if !cfg.StopAtEndOfContents {
		t.Error("expected stop_at_end_of_contents to be true")
	}
	if cfg.MinLengthOctets != 2 {
		t.Errorf("unexpected min_length_octets: %d", cfg.MinLengthOctets)
	}
}

func TestLoadFromFile_Codec_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codec.json", `{"max_value_size": 128}`)

	cfg, err := config.LoadFromFile[config.Codec](path)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.MaxValueSize == nil || *cfg.MaxValueSize != 128 {
		t.Errorf("unexpected max_value_size: %v", cfg.MaxValueSize)
	}
	if cfg.StopAtEndOfContents {
		t.Error("expected stop_at_end_of_contents to default to false")
	}
}

func TestLoadFromFile_Profiles_TOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "profiles.toml", `
[emv]
stop_at_end_of_contents = true

[bulk]
max_value_size = 1048576
min_length_octets = 4
`)

	profiles, err := config.LoadFromFile[map[string]config.Codec](path)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if len(*profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(*profiles))
	}
	if !(*profiles)["emv"].StopAtEndOfContents {
		t.Error("expected emv profile to stop at end of contents")
	}
	bulk := (*profiles)["bulk"]
	if bulk.MaxValueSize == nil || *bulk.MaxValueSize != 1048576 || bulk.MinLengthOctets != 4 {
		t.Errorf("unexpected bulk profile: %+v", bulk)
	}
}

func TestLoadFromFile_Codec_CUE(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codec.cue", `
max_value_size: 64 * 1024
min_length_octets: 1
`)

	cfg, err := config.LoadFromFile[config.Codec](path)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	if cfg.MaxValueSize == nil || *cfg.MaxValueSize != 65536 {
		t.Errorf("unexpected max_value_size: %v", cfg.MaxValueSize)
	}
	if cfg.MinLengthOctets != 1 {
		t.Errorf("unexpected min_length_octets: %d", cfg.MinLengthOctets)
	}
}

func TestLoadFromFile_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", "package codec\n\nmax_value_size: 256\n")
	writeFile(t, dir, "b.cue", "package codec\n\nstop_at_end_of_contents: true\n")

	cfg, err := config.LoadFromFile[config.Codec](dir)
	if err != nil {
		t.Fatalf("failed to load directory: %v", err)
	}

	if cfg.MaxValueSize == nil || *cfg.MaxValueSize != 256 || !cfg.StopAtEndOfContents {
		t.Errorf("expected both files to be unified, got %+v", cfg)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := config.LoadFromFile[config.Codec](filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadFromFile_WrongType(t *testing.T) {
	path := writeFile(t, t.TempDir(), "codec.yaml", "max_value_size: lots\n")

	if _, err := config.LoadFromFile[config.Codec](path); err == nil {
		t.Fatal("expected a decode error for a string max_value_size")
	}
}

func TestLoadValueFromReader(t *testing.T) {
	val, err := config.LoadValueFromReader(strings.NewReader(`
decode:
  template: "{{tag}}"
max_value_size: 10
`))
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	tmpl, err := val.LookupPath(cue.ParsePath("decode.template")).String()
	if err != nil {
		t.Fatalf("lookup decode.template: %v", err)
	}
	if tmpl != "{{tag}}" {
		t.Errorf("unexpected template: %q", tmpl)
	}

	n, err := val.LookupPath(cue.ParsePath("max_value_size")).Int64()
	if err != nil {
		t.Fatalf("lookup max_value_size: %v", err)
	}
	if n != 10 {
		t.Errorf("unexpected max_value_size: %d", n)
	}
}

func TestLoadValueFromReader_Invalid(t *testing.T) {
	if _, err := config.LoadValueFromReader(strings.NewReader("a: [1, 2")); err == nil {
		t.Fatal("expected a parse error")
	}
}
