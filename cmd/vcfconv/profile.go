package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/JonMunkholm/xls2vcard/internal/core"
)

// Profile is a saved column mapping. JSON profiles are read by the same
// decoder since JSON is valid YAML.
type Profile struct {
	Mapping core.FieldMapping      `yaml:"mapping"`
	Phones  []core.PhoneDescriptor `yaml:"phones"`
	Group   string                 `yaml:"group"`
	Label   string                 `yaml:"label"`
}

// LoadProfile reads a YAML or JSON profile. Unknown keys are rejected so a
// typo does not silently drop a field.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	return ParseProfile(f, filepath.Base(path))
}

// ParseProfile decodes a profile from r; name is used in error messages.
func ParseProfile(r io.Reader, name string) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", name, err)
	}
	return &p, nil
}

// mappingFlags registers the flags shared by convert and report.
func mappingFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "YAML or JSON mapping profile")
	cmd.Flags().String("mapping", "", `field mapping as JSON, e.g. {"first_name":"First"}`)
	cmd.Flags().String("phones", "", `phone columns as JSON, e.g. [{"column":"Mobile","label":"cell"}]`)
	cmd.Flags().String("group", "", "column used as the vCard category when the mapping has no group")
	cmd.Flags().String("label", "", "text prepended to every formatted name")
}

// convertRequest merges the profile with explicit flags; flags win.
func convertRequest(cmd *cobra.Command, file *core.Upload) (core.ConvertRequest, error) {
	req := core.ConvertRequest{File: file}

	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		p, err := LoadProfile(path)
		if err != nil {
			return req, err
		}
		req.Mapping, req.Phones, req.GroupColumn, req.NameLabel = p.Mapping, p.Phones, p.Group, p.Label
	}

	if cmd.Flags().Changed("mapping") {
		raw, _ := cmd.Flags().GetString("mapping")
		m, err := core.ParseFieldMapping(raw)
		if err != nil {
			return req, err
		}
		req.Mapping = m
	}
	if cmd.Flags().Changed("phones") {
		raw, _ := cmd.Flags().GetString("phones")
		phones, err := core.ParsePhoneDescriptors(raw)
		if err != nil {
			return req, err
		}
		req.Phones = phones
	}
	if cmd.Flags().Changed("group") {
		req.GroupColumn, _ = cmd.Flags().GetString("group")
	}
	if cmd.Flags().Changed("label") {
		label, _ := cmd.Flags().GetString("label")
		req.NameLabel = strings.TrimSpace(label)
	}
	return req, nil
}

// readUpload loads a spreadsheet from disk.
func readUpload(path string) (*core.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &core.Upload{Name: filepath.Base(path), Data: data}, nil
}

// writeOutput writes data to path, or to the command's stdout for "" or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
