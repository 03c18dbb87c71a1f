// Package seed 读取种子数据：内置的默认 YAML，或外部 YAML/TOML 文件
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/d-oit/do-multitenant-prompt-manager-sub000/internal/store"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

// 支持的格式
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Default 内置默认种子
func Default() (store.Fixtures, error) {
	return Decode(defaultFixtures, FormatYAML)
}

// Decode 按格式解析种子数据
func Decode(data []byte, format string) (store.Fixtures, error) {
	var f store.Fixtures
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return store.Fixtures{}, fmt.Errorf("parse yaml seed: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return store.Fixtures{}, fmt.Errorf("parse toml seed: %w", err)
		}
	default:
		return store.Fixtures{}, fmt.Errorf("unsupported seed format: %s", format)
	}
	return f, nil
}

// FormatOf 由扩展名判断格式
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown seed file type: %s", path)
	}
}

// LoadFile 读取种子文件
func LoadFile(path string) (store.Fixtures, error) {
	format, err := FormatOf(path)
	if err != nil {
		return store.Fixtures{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Fixtures{}, fmt.Errorf("read seed file: %w", err)
	}
	return Decode(data, format)
}

// Resolve path 为空时返回内置默认种子
func Resolve(path string) (store.Fixtures, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Apply 解析种子并写入 store，原有数据会被替换
func Apply(s *store.Store, path string) error {
	f, err := Resolve(path)
	if err != nil {
		return err
	}
	if err := s.Load(f); err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	return nil
}
