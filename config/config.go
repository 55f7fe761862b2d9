// Package config reads the optional stamping configuration file. The
// file mirrors the command-line flags with kebab-case keys; explicit
// flags take precedence over file values.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Mask mirrors the mask-related flags.
type Mask struct {
	Top          bool    `yaml:"top"`
	Bottom       bool    `yaml:"bottom"`
	TopHeight    float64 `yaml:"top-height"`
	BottomHeight float64 `yaml:"bottom-height"`
	AllPages     bool    `yaml:"all-pages"`
	Color        string  `yaml:"color"`
}

// File is the YAML schema. Pointer fields distinguish "absent" from a
// zero value so flag overrides can be applied cleanly.
type File struct {
	Title        *string `yaml:"title"`
	FooterLeft   *string `yaml:"footer-left"`
	FooterCenter *string `yaml:"footer-center"`
	FooterRight  *string `yaml:"footer-right"`
	Date         *string `yaml:"date"`
	Font         *string `yaml:"font"`
	HeaderFont   *string `yaml:"header-font"`
	FooterFont   *string `yaml:"footer-font"`
	FontFile     *string `yaml:"font-file"`
	PageNumbers  *bool   `yaml:"page-numbers"`
	PageTotal    *bool   `yaml:"page-total"`
	Markdown     *bool   `yaml:"markdown"`
	Mask         *Mask   `yaml:"mask"`
}

// Load reads and strictly decodes a config file. Unknown keys are
// rejected so a typoed option fails loudly instead of being ignored.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Decode(data, path)
}

// Decode parses config bytes; name labels errors.
func Decode(data []byte, name string) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("parse config %s: %w", name, err)
	}
	return f, nil
}
