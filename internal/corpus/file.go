// Package corpus reads and writes the seed, LEGO and basket files the pipeline runs on.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a supported file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported file extension %q in %s, use .json, .yml or .yaml", filepath.Ext(path), path)
}

func isCorpusFile(path string, info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	_, err := FormatOf(path)
	return err == nil
}

func readFile[T any](path string) (T, error) {
	var result T

	format, err := FormatOf(path)
	if err != nil {
		return result, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	if err := Decode(content, format, &result); err != nil {
		return result, fmt.Errorf("Decode(%s) > %w", path, err)
	}
	return result, nil
}

// Decode unmarshals content in the given format.
func Decode(content []byte, format Format, v any) error {
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(content))
		if err := decoder.Decode(v); err != nil {
			return fmt.Errorf("json.Decoder.Decode() > %w%s", err, positionalHint(err))
		}
		return nil
	case FormatYAML:
		if err := yaml.Unmarshal(content, v); err != nil {
			return fmt.Errorf("yaml.Unmarshal() > %w%s", err, positionalHint(err))
		}
		return nil
	}
	return fmt.Errorf("unsupported format %q", format)
}

// positionalHint explains the usual cause of an array where an object is expected.
func positionalHint(err error) string {
	message := err.Error()
	if strings.Contains(message, "cannot unmarshal array") || strings.Contains(message, "!!seq into") {
		return ". Pairs must be objects with labelled \"known\" and \"target\" fields, not [known, target] arrays"
	}
	return ""
}

// Encode marshals v in the given format. Map keys are sorted by both encoders, so output is stable.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("json.Encoder.Encode() > %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("yaml.Encoder.Encode() > %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("yaml.Encoder.Close() > %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// WriteFile encodes data in the format implied by the path's extension.
func WriteFile[T any](path string, data T) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	content, err := Encode(data, format)
	if err != nil {
		return fmt.Errorf("Encode(%s) > %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// corpusFile is a decoded file with its path
type corpusFile[T any] struct {
	path     string
	contents T
}

// loadFiles decodes every file under dir accepted by filter, in lexical path order
func loadFiles[T any](dir string, filter func(path string, info os.FileInfo) bool) ([]corpusFile[T], error) {
	var files []corpusFile[T]

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !filter(path, info) {
			return nil
		}

		contents, err := readFile[T](path)
		if err != nil {
			return fmt.Errorf("readFile(%s) > %w", path, err)
		}

		files = append(files, corpusFile[T]{
			path:     path,
			contents: contents,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.Walk(%s) > %w", dir, err)
	}

	return files, nil
}
