package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the strategy file. The raw bytes come back even
// when parsing fails so callers can log what was on disk.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read strategy: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, data, nil
}

// LoadOrDefault is Load, falling back to Default when path does not exist.
// fallback (may be nil) adjusts the defaults before validation. found
// reports whether the file was read.
func LoadOrDefault(path string, fallback func(*Config)) (cfg *Config, found bool, err error) {
	cfg, _, err = Load(path)
	switch {
	case err == nil:
		return cfg, true, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, err
	}

	cfg = Default()
	if fallback != nil {
		fallback(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// Parse decodes YAML over Default and validates the result.
// 파일에 없는 필드는 기본값 유지, 오타 필드는 즉시 실패
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode strategy: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Hash fingerprints cfg as hex SHA-256 over its JSON encoding.
// encoding/json은 map 키를 정렬하므로 같은 설정은 같은 해시
func Hash(cfg *Config) (string, error) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(cfg); err != nil {
		return "", fmt.Errorf("hash strategy: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
